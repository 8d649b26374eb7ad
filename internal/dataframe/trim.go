package dataframe

import (
	"dashcache/internal/timerange"
	"fmt"
	"time"
)

// TrimTimeSeries keeps the rows of an ascending time series whose time lies in
// (r.From, r.To]. With lastObservation set, the row just before r.From is kept
// as well. Frames without fields come back empty and frames without a time
// column come back unchanged.
func TrimTimeSeries(frame Frame, r timerange.AbsoluteRange, lastObservation bool) (Frame, error) {
	if len(frame.Fields) == 0 {
		return emptyFrame(frame), nil
	}

	idx := frame.TimeField()
	if idx < 0 {
		return frame, nil
	}

	if err := frame.Validate(); err != nil {
		return Frame{}, err
	}

	times, ok := Times(frame.Fields[idx].Values)
	if !ok {
		return Frame{}, fmt.Errorf("frame %q: time field holds %T", frame.Name, frame.Fields[idx].Values)
	}

	from, to := trimBounds(times, r, lastObservation)
	return sliceFrame(frame, from, to), nil
}

// TrimTimeSeriesReversed is TrimTimeSeries for a frame ordered newest first.
// The result keeps the descending order.
func TrimTimeSeriesReversed(frame Frame, r timerange.AbsoluteRange, lastObservation bool) (Frame, error) {
	if len(frame.Fields) == 0 {
		return emptyFrame(frame), nil
	}

	if frame.TimeField() < 0 {
		return frame, nil
	}

	trimmed, err := TrimTimeSeries(reverseFrame(frame), r, lastObservation)
	if err != nil {
		return Frame{}, err
	}

	return reverseFrame(trimmed), nil
}

func trimBounds(times Vector[time.Time], r timerange.AbsoluteRange, lastObservation bool) (int, int) {
	// from is exclusive
	from := firstAfter(times, r.From)
	if from < len(times) && lastObservation {
		from = max(from-1, 0)
	}

	// to is inclusive
	to := firstAfter(times, r.To)
	if to < from {
		to = from
	}

	return from, to
}

func firstAfter(times Vector[time.Time], t time.Time) int {
	for i, v := range times {
		if v.After(t) {
			return i
		}
	}
	return len(times)
}

func sliceFrame(frame Frame, from, to int) Frame {
	out := frame
	out.Fields = make([]Field, len(frame.Fields))
	for i, f := range frame.Fields {
		f.Values = f.Values.Slice(from, to)
		out.Fields[i] = f
	}
	return out
}

func reverseFrame(frame Frame) Frame {
	out := frame
	out.Fields = make([]Field, len(frame.Fields))
	for i, f := range frame.Fields {
		f.Values = f.Values.Reverse()
		out.Fields[i] = f
	}
	return out
}

func emptyFrame(frame Frame) Frame {
	out := frame
	out.Fields = nil
	return out
}
