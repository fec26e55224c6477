package service

import (
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/crypto"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/store"
)

type Services struct {
	AuthService    AuthService
	RopService     RopService
	AppInfoService AppInfoService

	// Sessions is shared by the ROP service and the session janitor.
	Sessions *SessionManager
}

func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	sessions := NewSessionManager()

	appInfo, err := NewAppInfoService(cfg.App, sessions, logger)
	if err != nil {
		return nil, fmt.Errorf("app info service: %w", err)
	}

	return &Services{
		AuthService: NewAuthService(storages.UserRepository, storages.MailboxRepository,
			crypto.NewPasswordHasher(), cfg.App, logger),
		RopService:     NewRopService(storages.MailboxRepository, sessions, cfg, logger),
		AppInfoService: appInfo,
		Sessions:       sessions,
	}, nil
}
