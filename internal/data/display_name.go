package data

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/prometheus/common/model"
)

// formatDisplayName expands a display name template such as
// "{{site}} {{metric}}" with the metric id, the query dimensions and the
// series labels. Templates that fail to expand give an empty name.
func formatDisplayName(displayName, metricID string, dims map[string]string, labels model.Metric) string {
	if displayName == "" {
		return ""
	}

	values := map[string]string{"metric": metricID}
	for k, v := range dims {
		values[k] = v
	}
	for k, v := range labels {
		values[string(k)] = string(v)
	}

	tmpl, err := template.New("display_name").
		Option("missingkey=zero").
		Parse(strings.ReplaceAll(displayName, "{{", "{{."))
	if err != nil {
		return ""
	}

	var b bytes.Buffer
	if err := tmpl.Execute(&b, values); err != nil {
		return ""
	}

	return b.String()
}

// seriesName is the frame name of a series: the expanded display name, or
// the label set of the series.
func seriesName(displayName, metricID string, dims map[string]string, labels model.Metric) string {
	if name := formatDisplayName(displayName, metricID, dims, labels); name != "" {
		return name
	}

	if len(labels) == 0 {
		return metricID
	}

	if _, ok := labels[model.MetricNameLabel]; !ok && metricID != "" {
		named := labels.Clone()
		named[model.MetricNameLabel] = model.LabelValue(metricID)
		return named.String()
	}

	return labels.String()
}
