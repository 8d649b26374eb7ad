package dataframe

import (
	"encoding/json"
	"fmt"
	"time"
)

type FieldType string

const (
	FieldTypeTime    FieldType = "time"
	FieldTypeNumber  FieldType = "number"
	FieldTypeString  FieldType = "string"
	FieldTypeBoolean FieldType = "boolean"
)

// TimeFieldName is the name of the designated time column.
const TimeFieldName = "time"

// ListValueFieldName is the single column of listing frames.
const ListValueFieldName = "value"

// FrameMeta carries backend metadata for a frame. A non-empty NextToken means
// the backend has more pages for the query that produced the frame.
type FrameMeta struct {
	NextToken     string `json:"nextToken,omitempty"`
	ExecutedQuery string `json:"executedQuery,omitempty"`
}

type Field struct {
	Name   string
	Type   FieldType
	Unit   string
	Values Values
}

// Frame is a named table: an optional time column plus value columns of equal length.
type Frame struct {
	Name   string
	RefID  string
	Fields []Field
	Meta   *FrameMeta
}

func NewTimeField(values ...time.Time) Field {
	return Field{Name: TimeFieldName, Type: FieldTypeTime, Values: Vector[time.Time](values)}
}

func NewNumberField(name, unit string, values ...float64) Field {
	return Field{Name: name, Type: FieldTypeNumber, Unit: unit, Values: Vector[float64](values)}
}

func NewStringField(name string, values ...string) Field {
	return Field{Name: name, Type: FieldTypeString, Values: Vector[string](values)}
}

func NewBoolField(name string, values ...bool) Field {
	return Field{Name: name, Type: FieldTypeBoolean, Values: Vector[bool](values)}
}

func (f Field) Len() int {
	if f.Values == nil {
		return 0
	}
	return f.Values.Len()
}

// Rows is derived from the first field; Validate checks the others agree.
func (fr Frame) Rows() int {
	if len(fr.Fields) == 0 {
		return 0
	}
	return fr.Fields[0].Len()
}

// Validate reports a frame whose columns have unequal lengths.
func (fr Frame) Validate() error {
	rows := fr.Rows()
	for _, f := range fr.Fields {
		if f.Len() != rows {
			return fmt.Errorf("frame %q field %q has %d rows, expected %d", fr.Name, f.Name, f.Len(), rows)
		}
	}
	return nil
}

// TimeField returns the index of the designated time column, or -1.
func (fr Frame) TimeField() int {
	for i, f := range fr.Fields {
		if f.Name == TimeFieldName && f.Type == FieldTypeTime {
			return i
		}
	}
	return -1
}

// NextToken returns the continuation token carried in the frame metadata.
func (fr Frame) NextToken() string {
	if fr.Meta == nil {
		return ""
	}
	return fr.Meta.NextToken
}

type fieldJSON struct {
	Name   string            `json:"name"`
	Type   FieldType         `json:"type"`
	Config map[string]string `json:"config"`
	Values []any             `json:"values"`
}

func (f Field) MarshalJSON() ([]byte, error) {
	out := fieldJSON{
		Name:   f.Name,
		Type:   f.Type,
		Config: map[string]string{},
		Values: make([]any, 0, f.Len()),
	}
	if f.Unit != "" {
		out.Config["unit"] = f.Unit
	}

	for i := 0; i < f.Len(); i++ {
		v := f.Values.At(i)
		if t, ok := v.(time.Time); ok {
			v = t.UnixMilli()
		}
		out.Values = append(out.Values, v)
	}

	return json.Marshal(out)
}

func (fr Frame) MarshalJSON() ([]byte, error) {
	fields := fr.Fields
	if fields == nil {
		fields = []Field{}
	}

	return json.Marshal(struct {
		Name   string     `json:"name,omitempty"`
		RefID  string     `json:"refId,omitempty"`
		Fields []Field    `json:"fields"`
		Meta   *FrameMeta `json:"meta,omitempty"`
		Length int        `json:"length"`
	}{
		Name:   fr.Name,
		RefID:  fr.RefID,
		Fields: fields,
		Meta:   fr.Meta,
		Length: fr.Rows(),
	})
}
