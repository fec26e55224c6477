package http

import (
	"net/http"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
)

// hideMethodNotAllowed replaces chi's 405 answer. A path requested with a
// method it does not serve is reported as missing, which keeps the ROP
// surface from being enumerated by method probing.
func hideMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	logger.FromRequest(r).Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("method not served")
	http.NotFound(w, r)
}
