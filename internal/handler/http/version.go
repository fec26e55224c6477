package http

import (
	"io"
	"net/http"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
)

// getServerVersion answers with the bare version string.
func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := io.WriteString(w, h.services.AppInfoService.GetAppVersion(r.Context())); err != nil {
		logger.FromRequest(r).Debug().Err(err).Msg("failed to write version")
	}
}

// getServerInfo answers with the version and the number of open sessions.
func (h *Handler) getServerInfo(w http.ResponseWriter, r *http.Request) {
	info := h.services.AppInfoService.GetServerInfo(r.Context())
	if _, err := utils.WriteJSON(w, info, http.StatusOK); err != nil {
		logger.FromRequest(r).Debug().Err(err).Msg("failed to write server info")
	}
}
