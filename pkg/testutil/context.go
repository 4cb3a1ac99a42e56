package testutil

import (
	"net/http"
	"time"

	"github.com/stinkypony1968-a11y/physician-dossier/pkg/requestcontext"
)

// WithRequestID stamps a request ID onto the request context,
// simulating what the request-ID middleware would do.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	return req.WithContext(ctx)
}

// WithSubject stamps an authenticated subject onto the request context,
// simulating what the auth middleware would do for a valid bearer token.
func WithSubject(req *http.Request, subject string) *http.Request {
	ctx := requestcontext.WithSubject(req.Context(), subject)
	return req.WithContext(ctx)
}

// WithFixedTime pins the request-scoped clock, so handlers under test
// produce deterministic timestamps.
func WithFixedTime(req *http.Request, t time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), t)
	return req.WithContext(ctx)
}
