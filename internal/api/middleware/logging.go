package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// logEntry collects fields set further down the chain.
type logEntry struct {
	visitor string
}

// RequestLogger logs every request once it completes and turns panics into
// a 500 response.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	log = log.With().Str("component", "http").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			entry := &logEntry{}
			r = r.WithContext(context.WithValue(r.Context(), entryContextKey, entry))

			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error().
						Str("request_id", middleware.GetReqID(r.Context())).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("error", fmt.Sprint(rec)).
						Msg("panic recovered")
					if ww.Status() == 0 {
						respondError(ww, "internal server error", http.StatusInternalServerError)
					}
				}

				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				ev := log.Info()
				if status >= http.StatusInternalServerError {
					ev = log.Warn()
				}
				ev.Str("request_id", middleware.GetReqID(r.Context())).
					Str("visitor", entry.visitor).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", status).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request completed")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
