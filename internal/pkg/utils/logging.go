package utils

import (
	"context"
	"errors"
	"time"

	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"

	"go.uber.org/zap"
)

// RequestIDFromContext returns the request or connection id carried by ctx.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	return requestID
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, requestID)
}

// ErrorFields expands err into structured fields, including the kind and
// recorded locations when err carries a CustomError.
func ErrorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}

	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		fields = append(fields,
			zap.String(constvars.LoggingErrorKindKey, string(customErr.Kind)),
			zap.String(constvars.LoggingErrorMessageKey, customErr.DevMessage),
		)
		for _, location := range customErr.Locations {
			fields = append(fields, zap.Any("location", map[string]interface{}{
				"file":          location.File,
				"line":          location.Line,
				"function_name": location.FunctionName,
			}))
		}
	}
	return fields
}

func LogOperation(logger *zap.Logger, operation string, requestID string, fn func() error) error {
	start := time.Now()

	logger.Debug("Operation started",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOperationKey, operation),
	)

	err := fn()

	duration := time.Since(start)

	if err != nil {
		fields := []zap.Field{
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOperationKey, operation),
			zap.Duration(constvars.LoggingDurationKey, duration),
			zap.Bool(constvars.LoggingSuccessKey, false),
		}
		logger.Error("Operation failed", append(fields, ErrorFields(err)...)...)
		return err
	}

	logger.Info("Operation completed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOperationKey, operation),
		zap.Duration(constvars.LoggingDurationKey, duration),
		zap.Bool(constvars.LoggingSuccessKey, true),
	)

	return nil
}
