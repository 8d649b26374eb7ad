package models

type QueryType string

const (
	QueryTypeListDimensionKeys   QueryType = "ListDimensionKeys"
	QueryTypeListDimensionValues QueryType = "ListDimensionValues"
	QueryTypeListMetrics         QueryType = "ListMetrics"
	QueryTypeGetMetricValue      QueryType = "GetMetricValue"
	QueryTypeGetMetricHistory    QueryType = "GetMetricHistory"
	QueryTypeGetMetricAggregate  QueryType = "GetMetricAggregate"
)

type TimeOrder string

const (
	TimeOrderAscending  TimeOrder = "ASCENDING"
	TimeOrderDescending TimeOrder = "DESCENDING"
)

type AggregateType string

const (
	AggregateAverage AggregateType = "AVERAGE"
	AggregateMaximum AggregateType = "MAXIMUM"
	AggregateMinimum AggregateType = "MINIMUM"
)

type DatasourceRef struct {
	Type string `json:"type,omitempty" yaml:"type"`
	UID  string `json:"uid,omitempty" yaml:"uid"`
}

type Metric struct {
	MetricID   string `json:"metricId" yaml:"metric_id"`
	MetricName string `json:"metricName,omitempty" yaml:"metric_name"`
}

type Dimension struct {
	ID    string `json:"id" yaml:"id"`
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Query is a single target of a panel request.
type Query struct {
	RefID         string            `json:"refId" yaml:"ref_id"`
	Datasource    *DatasourceRef    `json:"datasource,omitempty" yaml:"datasource"`
	QueryType     QueryType         `json:"queryType" yaml:"query_type"`
	Metrics       []Metric          `json:"metrics,omitempty" yaml:"metrics"`
	Dimensions    []Dimension       `json:"dimensions,omitempty" yaml:"dimensions"`
	QueryOptions  map[string]string `json:"queryOptions,omitempty" yaml:"query_options"`
	DisplayName   string            `json:"displayName,omitempty" yaml:"display_name"`
	AggregateType AggregateType     `json:"aggregateType,omitempty" yaml:"aggregate_type"`
	DimensionKey  string            `json:"dimensionKey,omitempty" yaml:"dimension_key"`
	Filter        string            `json:"filter,omitempty" yaml:"filter"`
	Hide          bool              `json:"hide,omitempty" yaml:"hide"`

	// ClientCache set to false opts the query, and the request holding it, out of caching.
	ClientCache     *bool     `json:"clientCache,omitempty" yaml:"client_cache"`
	LastObservation bool      `json:"lastObservation,omitempty" yaml:"last_observation"`
	TimeOrdering    TimeOrder `json:"timeOrdering,omitempty" yaml:"time_ordering"`
	NextToken       string    `json:"nextToken,omitempty" yaml:"-"`
}

func (q Query) ClientCacheEnabled() bool {
	return q.ClientCache == nil || *q.ClientCache
}

// HasIdentity reports whether the query carries enough identity to be matched
// to a cache entry and to its results.
func (q Query) HasIdentity() bool {
	return q.RefID != "" && q.QueryType != ""
}

// IsDescending reports whether rows come back newest first.
func (q Query) IsDescending() bool {
	return IsTimeOrderingQueryType(q.QueryType) && q.TimeOrdering == TimeOrderDescending
}

// IsKnownQueryType reports whether t is one of the supported query types.
func IsKnownQueryType(t QueryType) bool {
	switch t {
	case QueryTypeListDimensionKeys, QueryTypeListDimensionValues, QueryTypeListMetrics,
		QueryTypeGetMetricValue, QueryTypeGetMetricHistory, QueryTypeGetMetricAggregate:
		return true
	}
	return false
}

func IsMetricQuery(t QueryType) bool {
	return t == QueryTypeGetMetricValue || t == QueryTypeGetMetricHistory || t == QueryTypeGetMetricAggregate
}

// IsRangeSeriesQueryType reports whether results of t are series over the
// request range, which is what makes them reusable as a cached prefix.
func IsRangeSeriesQueryType(t QueryType) bool {
	return t == QueryTypeGetMetricHistory || t == QueryTypeGetMetricAggregate
}

func IsTimeOrderingQueryType(t QueryType) bool {
	return t == QueryTypeGetMetricHistory || t == QueryTypeGetMetricAggregate
}

// QueryTypeInfo describes a query type offered to editors.
type QueryTypeInfo struct {
	Label        string    `json:"label"`
	Value        QueryType `json:"value"`
	Description  string    `json:"description"`
	DefaultQuery Query     `json:"defaultQuery"`
}

var QueryTypeInfos = []QueryTypeInfo{
	{
		Label:       "Get metric history",
		Value:       QueryTypeGetMetricHistory,
		Description: "Gets the history of a metric.",
	},
	{
		Label:       "Get metric value",
		Value:       QueryTypeGetMetricValue,
		Description: "Gets a metrics current value.",
	},
	{
		Label:        "Get metric aggregate",
		Value:        QueryTypeGetMetricAggregate,
		Description:  "Gets a metrics aggregate value.",
		DefaultQuery: Query{AggregateType: AggregateAverage},
	},
}

// ChangeQueryType switches q to the type described by info, filling in the
// type's defaults for anything q leaves unset.
func ChangeQueryType(q Query, info QueryTypeInfo) Query {
	if q.QueryType == info.Value {
		return q
	}

	out := q
	out.QueryType = info.Value
	if out.AggregateType == "" {
		out.AggregateType = info.DefaultQuery.AggregateType
	}
	return out
}
