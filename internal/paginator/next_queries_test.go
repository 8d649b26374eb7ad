package paginator

import (
	"dashcache/internal/dataframe"
	"dashcache/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextQueries(t *testing.T) {
	request := models.Request{
		RequestID: "Q112",
		Targets: []models.Query{
			{RefID: "A", QueryType: models.QueryTypeGetMetricHistory},
			{RefID: "B", QueryType: models.QueryTypeGetMetricHistory},
		},
	}

	withToken := func(refID, token string) dataframe.Frame {
		f := dataframe.Frame{RefID: refID}
		if token != "" {
			f.Meta = &dataframe.FrameMeta{NextToken: token}
		}
		return f
	}

	tests := []struct {
		name     string
		frames   []dataframe.Frame
		expected []models.Query
	}{
		{
			name:     "no frames",
			expected: nil,
		},
		{
			name:     "no tokens",
			frames:   []dataframe.Frame{withToken("A", ""), withToken("B", "")},
			expected: nil,
		},
		{
			name:   "token for one target",
			frames: []dataframe.Frame{withToken("A", ""), withToken("B", "tok-b")},
			expected: []models.Query{
				{RefID: "B", QueryType: models.QueryTypeGetMetricHistory, NextToken: "tok-b"},
			},
		},
		{
			name:   "first token per target wins",
			frames: []dataframe.Frame{withToken("A", "tok-1"), withToken("A", "tok-2")},
			expected: []models.Query{
				{RefID: "A", QueryType: models.QueryTypeGetMetricHistory, NextToken: "tok-1"},
			},
		},
		{
			name:     "token for unknown target",
			frames:   []dataframe.Frame{withToken("Z", "tok-z")},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextQueries(request, models.Response{Frames: tt.frames})
			assert.Equal(t, tt.expected, got)
		})
	}

	assert.Empty(t, request.Targets[0].NextToken, "targets are not modified")
}
