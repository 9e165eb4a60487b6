package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"limslite-service/internal/pkg/constvars"
	"limslite-service/internal/pkg/exceptions"
	"limslite-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// ErrorHandler turns a panicking handler into a 500 response carrying the
// request id instead of dropping the connection.
func (m *Middlewares) ErrorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			var err error
			switch x := rec.(type) {
			case string:
				err = errors.New(x)
			case error:
				err = x
			default:
				err = fmt.Errorf("panic: %v", x)
			}

			m.Log.Error("ErrorHandler recovered panic",
				zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFromContext(r.Context())),
				zap.String(constvars.LoggingMethodKey, r.Method),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
				zap.ByteString("stack", debug.Stack()),
				zap.Error(err),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrServerProcess(err))
		}()
		next.ServeHTTP(w, r)
	})
}
