package constvars

const (
	ResponseSuccess = "success"
	ResponseUnknown = "unknown"
)

const (
	ResponseRunsFetched    = "runs fetched"
	ResponseResultsFetched = "results fetched"
	ResponseServiceHealthy = "service is healthy"
)
