package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// withLogging writes one access log line per request. For ROP calls the
// line also names the session and the operation.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)
		start := time.Now()
		uri, method := r.RequestURI, r.Method

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		event := log.Info().
			Str("uri", uri).
			Str("method", method).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Int("size", ww.BytesWritten())

		// the route context is filled in by the router while next runs
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				event = event.Str("route", pattern)
			}
			if sid := rctx.URLParam("session"); sid != "" {
				event = event.Str("session", sid)
			}
			if rop := rctx.URLParam("rop"); rop != "" {
				event = event.Str("rop", rop)
			}
		}
		event.Send()
	})
}
