package middleware

import (
	"net/http"
	"strings"

	apperrors "github.com/iBubenok/restaurant-booking-system/pkg/errors"
	httpx "github.com/iBubenok/restaurant-booking-system/pkg/http"
)

// RequireJSON rejects mutating requests whose Content-Type is not
// application/json. GET, HEAD, DELETE and OPTIONS pass through.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := r.Header.Get("Content-Type")
			if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
				appErr := apperrors.New(
					"UNSUPPORTED_MEDIA_TYPE",
					"Content-Type must be application/json",
					http.StatusUnsupportedMediaType,
				)
				_ = httpx.WriteError(w, appErr)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// MaxRequestSize caps the request body. Reads past the limit fail inside
// the handler's decoder with a clear error instead of exhausting memory.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
