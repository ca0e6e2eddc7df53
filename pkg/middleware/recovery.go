package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "github.com/iBubenok/restaurant-booking-system/pkg/errors"
	httpx "github.com/iBubenok/restaurant-booking-system/pkg/http"
	"github.com/iBubenok/restaurant-booking-system/pkg/logger"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					requestID, _ := r.Context().Value(RequestIDKey).(string)

					log.Error("panic recovered",
						"request_id", requestID,
						"method", r.Method,
						"path", r.URL.Path,
						"panic", fmt.Sprintf("%v", rec),
						"stack", string(debug.Stack()),
					)

					appErr := apperrors.Internal("internal server error", nil)
					if err := httpx.WriteError(w, appErr); err != nil {
						log.Error("failed to write panic response", "error", err)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
