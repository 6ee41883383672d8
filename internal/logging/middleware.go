package logging

import (
	"net/http"

	"github.com/oklog/ulid/v2"
)

const requestIDLogKey = "request_id"

// Middleware derives a request-scoped logger carrying a ULID request ID, the
// method, and the endpoint, and stores it in the request context. Handlers
// retrieve it with L(ctx).
func Middleware(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestID := ulid.Make().String()
		mLogger := L(ctx).With(
			StringAttr(requestIDLogKey, requestID),
			StringAttr("method", r.Method),
			StringAttr("endpoint", r.URL.Path),
		)

		w.Header().Set("X-Request-ID", requestID)

		ctx = ContextWithLogger(ctx, mLogger)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}
