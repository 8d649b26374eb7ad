package data

import (
	"dashcache/internal/models"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/common/model"
)

var (
	reMetricName = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	reLabelName  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// selector builds `metric{k="v",...}` for a metric and dimensions. An empty
// metric selects by dimensions alone.
func selector(metric string, dims []models.Dimension) (string, error) {
	if metric != "" && !reMetricName.MatchString(metric) {
		return "", fmt.Errorf("invalid metric name %q", metric)
	}

	matchers, err := dimensionMatchers(dims)
	if err != nil {
		return "", err
	}

	if metric == "" && len(matchers) == 0 {
		return "", fmt.Errorf("selector needs a metric or at least one dimension")
	}

	if len(matchers) == 0 {
		return metric, nil
	}
	return metric + "{" + strings.Join(matchers, ",") + "}", nil
}

func dimensionMatchers(dims []models.Dimension) ([]string, error) {
	sorted := append([]models.Dimension(nil), dims...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	matchers := make([]string, 0, len(sorted))
	for _, d := range sorted {
		if !reLabelName.MatchString(d.Key) {
			return nil, fmt.Errorf("invalid dimension key %q", d.Key)
		}
		matchers = append(matchers, d.Key+"="+strconv.Quote(d.Value))
	}
	return matchers, nil
}

// matchSelectors returns the series selectors used to scope label listings.
func matchSelectors(metric string, dims []models.Dimension) ([]string, error) {
	if metric == "" && len(dims) == 0 {
		return nil, nil
	}
	sel, err := selector(metric, dims)
	if err != nil {
		return nil, err
	}
	return []string{sel}, nil
}

var aggregateFunctions = map[models.AggregateType]string{
	models.AggregateAverage: "avg_over_time",
	models.AggregateMaximum: "max_over_time",
	models.AggregateMinimum: "min_over_time",
}

// aggregateExpr wraps sel in the range function for agg, one window per step.
func aggregateExpr(sel string, agg models.AggregateType, step time.Duration) (string, error) {
	if agg == "" {
		agg = models.AggregateAverage
	}

	fn, ok := aggregateFunctions[agg]
	if !ok {
		return "", fmt.Errorf("unsupported aggregate type %q", agg)
	}

	return fmt.Sprintf("%s(%s[%s])", fn, sel, model.Duration(step)), nil
}
