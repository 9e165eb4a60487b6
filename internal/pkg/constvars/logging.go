package constvars

const (
	LoggingRequestIDKey      = "request_id"
	LoggingOperationKey      = "operation"
	LoggingDurationKey       = "duration"
	LoggingSuccessKey        = "success"
	LoggingErrorCodeKey      = "error_code"
	LoggingErrorMessageKey   = "error_message"
	LoggingErrorKindKey      = "error_kind"
	LoggingMethodKey         = "method"
	LoggingEndpointKey       = "endpoint"
	LoggingRemoteAddrKey     = "remote_addr"
	LoggingUserAgentKey      = "user_agent"
	LoggingQueryKey          = "query"
	LoggingStatusCodeKey     = "status_code"
	LoggingResponseLengthKey = "response_length"

	LoggingStateKey             = "state"
	LoggingFrameSizeKey         = "frame_size"
	LoggingControlIDKey         = "control_id"
	LoggingAckCodeKey           = "ack_code"
	LoggingSpecimenCountKey     = "specimen_count"
	LoggingSpecimenIndexKey     = "specimen_index"
	LoggingPathKey              = "path"
	LoggingInstrumentIDKey      = "instrument_id"
	LoggingInstrumentKey        = "instrument"
	LoggingAssayIDKey           = "assay_id"
	LoggingLisCodeKey           = "lis_code"
	LoggingRunIDKey             = "run_id"
	LoggingRunCountKey          = "run_count"
	LoggingResultCountKey       = "result_count"
	LoggingDuplicateKey         = "duplicate"
	LoggingMessageTypeKey       = "message_type"
	LoggingSampleIDKey          = "sample_id"
	LoggingSkippedCountKey      = "skipped_count"
	LoggingRedisKey             = "redis_key"
	LoggingLockValueKey         = "lock_value"
	LoggingLockExpirationKey    = "lock_expiration"
	LoggingLockStoredValueKey   = "lock_stored_value"
	LoggingLockExpectedValueKey = "lock_expected_value"
	LoggingBucketKey            = "bucket"
	LoggingObjectKey            = "object"
	LoggingQueueKey             = "queue"
	LoggingAddressKey           = "address"
)
