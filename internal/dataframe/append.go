package dataframe

// AppendMatchingFrames appends the rows of each frame in next onto the frame
// in base with the same identity, returning a new slice. Frames without a
// match in base are added as they are. Neither input is modified.
//
// Overlapping timestamps are not de-duplicated; callers request
// non-overlapping ranges.
func AppendMatchingFrames(base, next []Frame) []Frame {
	out := make([]Frame, len(base), len(base)+len(next))
	copy(out, base)

	for _, frame := range next {
		idx := findMatchingFrame(out, frame)
		if idx < 0 {
			out = append(out, frame)
			continue
		}

		merged, ok := appendFrame(out[idx], frame)
		if !ok {
			out = append(out, frame)
			continue
		}
		out[idx] = merged
	}

	return out
}

func findMatchingFrame(frames []Frame, frame Frame) int {
	for i, f := range frames {
		if f.RefID == frame.RefID && f.Name == frame.Name && sameLayout(f, frame) {
			return i
		}
	}
	return -1
}

func sameLayout(a, b Frame) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i].Name != b.Fields[i].Name || a.Fields[i].Type != b.Fields[i].Type {
			return false
		}
	}
	return true
}

func appendFrame(base, next Frame) (Frame, bool) {
	out := base
	out.Fields = make([]Field, len(base.Fields))
	for i, f := range base.Fields {
		values, err := concatValues(f.Values, next.Fields[i].Values)
		if err != nil {
			return Frame{}, false
		}
		f.Values = values
		out.Fields[i] = f
	}

	// the newest page decides whether more data is pending
	out.Meta = next.Meta

	return out, true
}

func concatValues(a, b Values) (Values, error) {
	switch {
	case a == nil && b == nil:
		return nil, nil
	case a == nil:
		return b.Slice(0, b.Len()), nil
	case b == nil:
		return a.Slice(0, a.Len()), nil
	}
	return a.Concat(b)
}
