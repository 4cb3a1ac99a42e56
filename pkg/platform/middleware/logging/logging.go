// Package logging emits one structured line per request and feeds the HTTP
// collectors. Mount it after requestid so every line carries a request_id.
package logging

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/stinkypony1968-a11y/physician-dossier/pkg/requestcontext"
)

// Observer receives per-request measurements. *metrics.Metrics satisfies it.
type Observer interface {
	Observe(route, method, status string, seconds float64)
	TrackInFlight() func()
}

// Middleware logs each request at info level with latency and status, and
// forwards the measurement to the observer when one is wired.
func Middleware(logger *slog.Logger, observer Observer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			var done func()
			if observer != nil {
				done = observer.TrackInFlight()
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if done != nil {
				done()
			}

			elapsed := time.Since(start)
			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			if observer != nil {
				observer.Observe(route, r.Method, strconv.Itoa(status), elapsed.Seconds())
			}

			logger.InfoContext(r.Context(), "request completed",
				"request_id", requestcontext.RequestID(r.Context()),
				"method", r.Method,
				"route", route,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"client_ip", requestcontext.ClientIP(r.Context()),
				"duration_ms", elapsed.Milliseconds(),
			)
		})
	}
}

// routePattern is only populated once chi has matched, so it must be read
// after next.ServeHTTP returns. Unmatched requests report their raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
