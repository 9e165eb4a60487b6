package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"oneof":    "must be one of [%s]",
	"min":      "must be at least %s",
	"max":      "maximum at %s",
	"len":      "must be %s characters long",
	"numeric":  "must be a number",
	"gt":       "must be greater than %s",
	"gte":      "must be greater than or equal to %s",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"oneof": true,
	"min":   true,
	"max":   true,
	"len":   true,
	"gt":    true,
	"gte":   true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientResourceNotFound              = "the requested resource was not found"
	ErrClientMessageRejected               = "message rejected"
	ErrClientMessageInProgress             = "message already in progress"
	ErrClientServerLongRespond             = "the server took too long to respond"
)

// Error messages for developers
const (
	ErrDevInvalidInput             = "invalid input"
	ErrDevCannotParseJSON          = "cannot parse JSON into struct or other data types"
	ErrDevCannotMarshalJSON        = "cannot convert struct or other data types to JSON"
	ErrDevURLParamIDValidation     = "URL param '%s' is not a valid id"
	ErrDevServerProcess            = "server failed to process the request"
	ErrDevServerDeadlineExceeded   = "server deadline exceeded"
	ErrDevValidationFailed         = "validation failed"
	ErrDevResourceNotFound         = "%s not found"
	ErrDevDBFailedToFindData       = "failed to find data on database"
	ErrDevDBFailedToInsertData     = "failed to insert data into database"
	ErrDevDBFailedToIterateDataset = "failed to iterate dataset from database"
	ErrDevDBTransaction            = "failed to run database transaction"
	ErrDevDBUniqueConstraintRace   = "unique constraint violated by concurrent insert on %s"

	// Framing messages
	ErrDevFrameRejected = "frame rejected: %s"
	ErrDevFrameTooLarge = "frame exceeds %d bytes before end sequence"

	// Message messages
	ErrDevMalformedMessage       = "malformed message: %s"
	ErrDevUnsupportedMessage     = "unsupported message type %s"
	ErrDevVersionPatternNotFound = "software string %q lacks a version token"
	ErrDevFieldExtraction        = "field extraction failed at %s"
	ErrDevInvalidAckKind         = "invalid acknowledgment kind %q"

	// Redis messages
	ErrDevRedisGetNoData  = "redis key '%s' has no data"
	ErrDevRedisSetData    = "failed to set data into redis"
	ErrDevRedisDeleteData = "failed to delete data from redis"
	ErrDevRedisUnlock     = "failed to release redis lock"

	// Minio messages
	ErrDevMinioFailedToCreateObject = "failed to create object on bucket %s"

	// RabbitMQ messages
	ErrDevRabbitMQPublishMessage = "failed to publish message into queue %s"
)

const (
	ErrFileLocationUnknown = "file location unknown"
	ErrLineLocationUnknown = "line location unknown"
	ErrFunctionNameUnknown = "function name unknown"
)
