package constvars

type ContextKey string

const (
	ResourceRuns        = "runs"
	ResourceResults     = "results"
	ResourceInstruments = "instruments"
	ResourceAssays      = "assays"
)

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
)

const (
	REQUEST_ID_PREFIX    = "LIMS_SVC_"
	CONNECTION_ID_PREFIX = "LIMS_MLLP_"
)

const (
	RedisKeyMessageLockFormat = "lims:mllp:message:%s"
	RunIngestedEventType      = "run.ingested"
	ArchiveObjectNameFormat   = "%s/%s.hl7"
	ArchiveObjectDateLayout   = "2006/01/02"
	ResultsCSVFileNameFormat  = "%s_run-%d-results.csv"
	ResultsCSVTimeLayout      = "2006-01-02-15-04-05"
)

const (
	PartialSpecimenPolicyReject = "reject"
	PartialSpecimenPolicySkip   = "skip"
)

const (
	AppPaginationUrlFormat   = "%s?page=%d&page_size=%d"
	AppDefaultPage           = 1
	AppDefaultPageSize       = 20
	AppMaxPageSize           = 200
	AppEnvironmentProduction = "production"
)
