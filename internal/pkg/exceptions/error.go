package exceptions

import (
	"errors"
	"fmt"
	"limslite-service/internal/pkg/constvars"
	"runtime"
)

// Kind classifies a failure so callers can decide what goes on the wire
// without inspecting error text.
type Kind string

const (
	KindUnknown                Kind = "Unknown"
	KindFrameRejected          Kind = "FrameRejected"
	KindFrameTooLarge          Kind = "FrameTooLarge"
	KindMalformedMessage       Kind = "MalformedMessage"
	KindUnsupportedMessage     Kind = "UnsupportedMessage"
	KindVersionPatternNotFound Kind = "VersionPatternNotFound"
	KindFieldExtractionError   Kind = "FieldExtractionError"
	KindUniqueConstraintRace   Kind = "UniqueConstraintRace"
	KindPersistenceError       Kind = "PersistenceError"
	KindInvalidAckKind         Kind = "InvalidAckKind"
	KindMessageInProgress      Kind = "MessageInProgress"
	KindNotFound               Kind = "NotFound"
	KindInvalidInput           Kind = "InvalidInput"
	KindIntegration            Kind = "Integration"
)

type CustomError struct {
	Kind          Kind       `json:"-"`
	StatusCode    int        `json:"status_code"`
	Success       bool       `json:"success"`
	ClientMessage string     `json:"message"`
	DevMessage    string     `json:"dev_message,omitempty"`
	Locations     []Location `json:"locations,omitempty"`
	Err           error      `json:"-"`
}

type Location struct {
	File         string
	Line         int
	FunctionName string
}

func (e *CustomError) Error() string {
	if len(e.Locations) == 0 {
		return e.DevMessage
	}
	location := e.Locations[0]
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, location.File, location.Line, location.FunctionName)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// BuildNewCustomError wraps err with a kind and messages. When err is already
// a CustomError of the same kind, the caller location is appended instead of
// nesting another layer.
func BuildNewCustomError(err error, kind Kind, statusCode int, clientMessage, devMessage string) *CustomError {
	location := getLocation(3)

	var existing *CustomError
	if errors.As(err, &existing) && existing.Kind == kind {
		existing.Locations = append(existing.Locations, location)
		return existing
	}

	if err != nil {
		devMessage = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}

	return &CustomError{
		Kind:          kind,
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		DevMessage:    devMessage,
		Locations:     []Location{location},
		Err:           err,
	}
}

// KindOf reports the kind of the outermost CustomError in err's chain.
func KindOf(err error) Kind {
	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether any CustomError in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var customErr *CustomError
		if !errors.As(err, &customErr) {
			return false
		}
		if customErr.Kind == kind {
			return true
		}
		err = customErr.Err
	}
	return false
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         constvars.ErrFileLocationUnknown,
			Line:         0,
			FunctionName: constvars.ErrFunctionNameUnknown,
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
