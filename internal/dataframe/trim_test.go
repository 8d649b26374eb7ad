package dataframe

import (
	"dashcache/internal/timerange"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// 2024-05-28T00:00:00Z
	t0 = time.UnixMilli(1716854400000).UTC()

	window = timerange.AbsoluteRange{From: t0, To: t0.Add(15 * time.Minute)}
)

func ms(offset int64) time.Time {
	return t0.Add(time.Duration(offset) * time.Millisecond)
}

func rotationsFrame(times []time.Time, values []float64) Frame {
	return Frame{
		Name:  "Demo Turbine Asset 1",
		RefID: "A",
		Fields: []Field{
			NewTimeField(times...),
			NewNumberField("RotationsPerSecond", "RPS", values...),
		},
	}
}

func TestTrimTimeSeries(t *testing.T) {
	input := rotationsFrame(
		[]time.Time{ms(0), ms(1), ms(900000), ms(900001)},
		[]float64{0, 1, 2, 3},
	)

	tests := []struct {
		name            string
		frame           Frame
		lastObservation bool
		expected        Frame
	}{
		{
			name:     "keeps rows in (from, to]",
			frame:    input,
			expected: rotationsFrame([]time.Time{ms(1), ms(900000)}, []float64{1, 2}),
		},
		{
			name:            "keeps one row before from with last observation",
			frame:           input,
			lastObservation: true,
			expected:        rotationsFrame([]time.Time{ms(0), ms(1), ms(900000)}, []float64{0, 1, 2}),
		},
		{
			name:     "keeps everything inside the window",
			frame:    rotationsFrame([]time.Time{ms(1), ms(900000)}, []float64{1, 2}),
			expected: rotationsFrame([]time.Time{ms(1), ms(900000)}, []float64{1, 2}),
		},
		{
			name:     "drops everything before from",
			frame:    rotationsFrame([]time.Time{ms(-1), ms(0)}, []float64{1, 2}),
			expected: rotationsFrame([]time.Time{}, []float64{}),
		},
		{
			name:            "last observation does not resurrect rows when nothing is in range",
			frame:           rotationsFrame([]time.Time{ms(-1), ms(0)}, []float64{1, 2}),
			lastObservation: true,
			expected:        rotationsFrame([]time.Time{}, []float64{}),
		},
		{
			name:     "drops everything after to",
			frame:    rotationsFrame([]time.Time{ms(900001), ms(900002)}, []float64{1, 2}),
			expected: rotationsFrame([]time.Time{}, []float64{}),
		},
		{
			name:     "frame without fields becomes empty",
			frame:    Frame{Name: "empty", RefID: "A", Fields: []Field{}},
			expected: Frame{Name: "empty", RefID: "A"},
		},
		{
			name:     "frame without time field passes through",
			frame:    Frame{Name: "child", RefID: "B", Fields: []Field{NewStringField("name", "child")}},
			expected: Frame{Name: "child", RefID: "B", Fields: []Field{NewStringField("name", "child")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TrimTimeSeries(tt.frame, window, tt.lastObservation)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("TrimTimeSeries() mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.expected.Rows(), got.Rows())
		})
	}
}

func TestTrimTimeSeriesReversed(t *testing.T) {
	input := rotationsFrame(
		[]time.Time{ms(900001), ms(900000), ms(1), ms(0)},
		[]float64{3, 2, 1, 0},
	)

	t.Run("keeps rows in (from, to] newest first", func(t *testing.T) {
		got, err := TrimTimeSeriesReversed(input, window, false)
		require.NoError(t, err)

		expected := rotationsFrame([]time.Time{ms(900000), ms(1)}, []float64{2, 1})
		if diff := cmp.Diff(expected, got); diff != "" {
			t.Errorf("TrimTimeSeriesReversed() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("keeps the older observation last", func(t *testing.T) {
		got, err := TrimTimeSeriesReversed(input, window, true)
		require.NoError(t, err)

		expected := rotationsFrame([]time.Time{ms(900000), ms(1), ms(0)}, []float64{2, 1, 0})
		if diff := cmp.Diff(expected, got); diff != "" {
			t.Errorf("TrimTimeSeriesReversed() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("input is left untouched", func(t *testing.T) {
		_, err := TrimTimeSeriesReversed(input, window, false)
		require.NoError(t, err)

		times, ok := Times(input.Fields[0].Values)
		require.True(t, ok)
		assert.True(t, times[0].Equal(ms(900001)))
		assert.Equal(t, 4, input.Rows())
	})
}

func TestTrimTimeSeriesErrors(t *testing.T) {
	t.Run("unequal columns", func(t *testing.T) {
		frame := rotationsFrame([]time.Time{ms(1), ms(2)}, []float64{1})
		_, err := TrimTimeSeries(frame, window, false)
		assert.Error(t, err)
	})

	t.Run("time field without time values", func(t *testing.T) {
		frame := Frame{Fields: []Field{{Name: TimeFieldName, Type: FieldTypeTime, Values: Vector[int64]{1, 2}}}}
		_, err := TrimTimeSeries(frame, window, false)
		assert.Error(t, err)
	})
}

func TestTrimmedFrameDoesNotAliasInput(t *testing.T) {
	input := rotationsFrame([]time.Time{ms(1), ms(2), ms(3)}, []float64{1, 2, 3})

	got, err := TrimTimeSeries(input, window, false)
	require.NoError(t, err)

	merged := AppendMatchingFrames([]Frame{got}, []Frame{rotationsFrame([]time.Time{ms(4)}, []float64{4})})
	require.Len(t, merged, 1)
	assert.Equal(t, 4, merged[0].Rows())
	assert.Equal(t, 3, input.Rows())
	assert.Equal(t, Vector[float64]{1, 2, 3}, input.Fields[1].Values)
}
