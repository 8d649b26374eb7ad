package metrics

const Namespace = "dashcache"

const (
	CacheNameRelativeRange = "relative_range"
)

const (
	CacheOperationTypeGet          = "get"
	CacheOperationTypeSet          = "set"
	CacheOperationTypeListAll      = "list_all"
	CacheOperationTypeDelete       = "delete"
	CacheOperationTypeCountEntries = "count_entries"
)

const (
	CacheMissReasonDisabled   = "disabled"
	CacheMissReasonRange      = "range"
	CacheMissReasonNoEntry    = "no_entry"
	CacheMissReasonStale      = "stale"
	CacheMissReasonMalformed  = "malformed"
	CacheMissReasonKeyFailure = "key"
)

const DataSourceTypePrometheus = "prometheus"
