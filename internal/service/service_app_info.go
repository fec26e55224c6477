package service

import (
	"context"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/models"
)

// appInfoService reports what the server is running. sessions may be nil
// when the server runs without a ROP endpoint.
type appInfoService struct {
	version  string
	sessions *SessionManager
	logger   *logger.Logger
}

func NewAppInfoService(cfg config.App, sessions *SessionManager, log *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}
	return &appInfoService{version: cfg.Version, sessions: sessions, logger: log}, nil
}

func (s *appInfoService) GetAppVersion(context.Context) string {
	return s.version
}

func (s *appInfoService) GetServerInfo(context.Context) models.ServerInfo {
	var open int
	if s.sessions != nil {
		open = s.sessions.Count()
	}
	return models.ServerInfo{Version: s.version, Sessions: open}
}
