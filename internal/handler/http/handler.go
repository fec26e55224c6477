package http

import (
	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/service"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
)

type Handler struct {
	services *service.Services

	// signer checks ROP request bodies. Nil disables the check.
	signer *utils.Signer

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.Server, logger *logger.Logger) *Handler {
	h := &Handler{
		services: services,
		logger:   logger,
	}
	if cfg.HashKey != "" {
		h.signer = utils.NewSigner(cfg.HashKey)
	}
	logger.Info().Bool("body_hmac", h.signer != nil).Msg("http handler created")
	return h
}
