// Package requestid assigns every request a correlation ID. Inbound
// X-Request-ID headers are trusted so IDs survive proxy hops; otherwise a
// fresh UUID is minted. The ID rides the request context and is echoed on
// the response for client-side correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stinkypony1968-a11y/physician-dossier/pkg/requestcontext"
)

// Header is the inbound and outbound correlation header.
const Header = "X-Request-ID"

// Middleware populates the request context with a request ID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
