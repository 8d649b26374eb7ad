package datasource

import (
	"context"
	"dashcache/internal/dataframe"
	"dashcache/internal/models"
	"fmt"
)

// ListMetrics returns the metric names matching filter and dimensions.
func (d *DataSource) ListMetrics(ctx context.Context, dimensions []models.Dimension, filter string) ([]string, error) {
	return d.list(ctx, models.Query{
		RefID:      "listMetrics",
		QueryType:  models.QueryTypeListMetrics,
		Dimensions: dimensions,
		Filter:     filter,
	})
}

// ListDimensionKeys returns the dimension keys available next to the selected dimensions.
func (d *DataSource) ListDimensionKeys(ctx context.Context, filter string, selected []models.Dimension) ([]string, error) {
	return d.list(ctx, models.Query{
		RefID:      "listDimensionKeys",
		QueryType:  models.QueryTypeListDimensionKeys,
		Dimensions: selected,
		Filter:     filter,
	})
}

// ListDimensionValues returns the values of key available next to the selected dimensions.
func (d *DataSource) ListDimensionValues(ctx context.Context, key, filter string, selected []models.Dimension) ([]string, error) {
	return d.list(ctx, models.Query{
		RefID:        "listDimensionValues",
		QueryType:    models.QueryTypeListDimensionValues,
		DimensionKey: key,
		Dimensions:   selected,
		Filter:       filter,
	})
}

func (d *DataSource) list(ctx context.Context, q models.Query) ([]string, error) {
	rsp, err := Collect(d.RunQuery(ctx, q, models.Request{}))
	if err != nil {
		return nil, err
	}

	if len(rsp.Frames) == 0 {
		return nil, fmt.Errorf("%s: %w", q.QueryType, ErrNoData)
	}

	return stringValues(rsp.Frames[0], dataframe.ListValueFieldName)
}

func stringValues(frame dataframe.Frame, name string) ([]string, error) {
	for _, f := range frame.Fields {
		if f.Name != name {
			continue
		}
		values, ok := f.Values.(dataframe.Vector[string])
		if !ok {
			return nil, fmt.Errorf("field %q holds %T", name, f.Values)
		}
		return append([]string(nil), values...), nil
	}
	return nil, fmt.Errorf("field %q: %w", name, ErrNoData)
}
