package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit caps dashboard requests per client IP per second.
func (m *Middlewares) RateLimit() func(next http.Handler) http.Handler {
	return httprate.LimitByIP(m.InternalConfig.Dashboard.MaxRequests, time.Second)
}
