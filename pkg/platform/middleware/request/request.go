// Package request provides the request-id middleware. Every request gets a
// correlation id so log lines from one request can be stitched together.
package request

import (
	"net/http"

	"github.com/google/uuid"

	"trafficwatch/pkg/requestcontext"
)

const headerRequestID = "X-Request-Id"

// ID assigns a request id, honoring one supplied by an upstream proxy.
func ID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
