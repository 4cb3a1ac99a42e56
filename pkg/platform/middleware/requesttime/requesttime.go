// Package requesttime pins one "now" per request. Everything downstream of
// this middleware that asks requestcontext.Now(ctx) sees the same instant,
// so a dossier's GeneratedAt and its audit events always agree.
package requesttime

import (
	"net/http"
	"time"

	"github.com/stinkypony1968-a11y/physician-dossier/pkg/requestcontext"
)

// Middleware captures the arrival time and stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
