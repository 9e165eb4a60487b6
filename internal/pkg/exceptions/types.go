package exceptions

import (
	"fmt"
	"limslite-service/internal/pkg/constvars"
)

var (
	ErrURLParamIDValidation = func(err error, paramName string) *CustomError {
		return BuildNewCustomError(err, KindInvalidInput, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevURLParamIDValidation, paramName))
	}
	ErrInputValidation = func(err error) *CustomError {
		return BuildNewCustomError(err, KindInvalidInput, constvars.StatusBadRequest, FormatFirstValidationError(err), constvars.ErrDevValidationFailed)
	}
	ErrResourceNotFound = func(err error, resource string) *CustomError {
		return BuildNewCustomError(err, KindNotFound, constvars.StatusNotFound, constvars.ErrClientResourceNotFound, fmt.Sprintf(constvars.ErrDevResourceNotFound, resource))
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, KindUnknown, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON)
	}
	ErrCannotParseJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, KindInvalidInput, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON)
	}
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return BuildNewCustomError(err, KindUnknown, constvars.StatusServiceUnavailable, constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded)
	}
	ErrServerProcess = func(err error) *CustomError {
		return BuildNewCustomError(err, KindUnknown, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevServerProcess)
	}
)

// Framing and message errors
var (
	ErrFrameRejected = func(err error, reason string) *CustomError {
		return BuildNewCustomError(err, KindFrameRejected, constvars.StatusBadRequest, constvars.ErrClientMessageRejected, fmt.Sprintf(constvars.ErrDevFrameRejected, reason))
	}
	ErrFrameTooLarge = func(err error, limit int) *CustomError {
		return BuildNewCustomError(err, KindFrameTooLarge, constvars.StatusBadRequest, constvars.ErrClientMessageRejected, fmt.Sprintf(constvars.ErrDevFrameTooLarge, limit))
	}
	ErrMalformedMessage = func(err error, reason string) *CustomError {
		return BuildNewCustomError(err, KindMalformedMessage, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevMalformedMessage, reason))
	}
	ErrUnsupportedMessage = func(err error, messageType string) *CustomError {
		return BuildNewCustomError(err, KindUnsupportedMessage, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevUnsupportedMessage, messageType))
	}
	ErrVersionPatternNotFound = func(err error, software string) *CustomError {
		return BuildNewCustomError(err, KindVersionPatternNotFound, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevVersionPatternNotFound, software))
	}
	ErrFieldExtraction = func(err error, path string) *CustomError {
		return BuildNewCustomError(err, KindFieldExtractionError, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevFieldExtraction, path))
	}
	ErrInvalidAckKind = func(err error, kind string) *CustomError {
		return BuildNewCustomError(err, KindInvalidAckKind, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevInvalidAckKind, kind))
	}
	ErrMessageInProgress = func(err error) *CustomError {
		return BuildNewCustomError(err, KindMessageInProgress, constvars.StatusConflict, constvars.ErrClientMessageInProgress, constvars.ErrClientMessageInProgress)
	}
)

// Postgres errors
var (
	ErrPostgresDBFindData = func(err error) *CustomError {
		return BuildNewCustomError(err, KindPersistenceError, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToFindData)
	}
	ErrPostgresDBInsertData = func(err error) *CustomError {
		return BuildNewCustomError(err, KindPersistenceError, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToInsertData)
	}
	ErrPostgresDBIterateDataset = func(err error) *CustomError {
		return BuildNewCustomError(err, KindPersistenceError, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBFailedToIterateDataset)
	}
	ErrPostgresDBTransaction = func(err error) *CustomError {
		return BuildNewCustomError(err, KindPersistenceError, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevDBTransaction)
	}
	ErrUniqueConstraintRace = func(err error, resource string) *CustomError {
		return BuildNewCustomError(err, KindUniqueConstraintRace, constvars.StatusConflict, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevDBUniqueConstraintRace, resource))
	}
)

// Redis errors
var (
	ErrRedisGetNoData = func(err error, key string) *CustomError {
		return BuildNewCustomError(err, KindIntegration, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRedisGetNoData, key))
	}
	ErrRedisSetData = func(err error) *CustomError {
		return BuildNewCustomError(err, KindIntegration, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSetData)
	}
	ErrRedisDeleteData = func(err error) *CustomError {
		return BuildNewCustomError(err, KindIntegration, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDeleteData)
	}
	ErrRedisUnlock = func(err error) *CustomError {
		return BuildNewCustomError(err, KindIntegration, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisUnlock)
	}
)

// Minio and RabbitMQ errors
var (
	ErrMinioCreateObject = func(err error, bucketName string) *CustomError {
		return BuildNewCustomError(err, KindIntegration, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevMinioFailedToCreateObject, bucketName))
	}
	ErrRabbitMQPublishMessage = func(err error, queue string) *CustomError {
		return BuildNewCustomError(err, KindIntegration, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQPublishMessage, queue))
	}
)
