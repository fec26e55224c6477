package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// NewAppInfoService
// ─────────────────────────────────────────────

func TestNewAppInfoService_Success(t *testing.T) {
	svc, err := NewAppInfoService(config.App{Version: "1.0.0"}, NewSessionManager(), logger.Nop())

	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestNewAppInfoService_EmptyVersion_ReturnsError(t *testing.T) {
	svc, err := NewAppInfoService(config.App{Version: ""}, NewSessionManager(), logger.Nop())

	assert.Nil(t, svc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersionIsNotSpecified))
}

// ─────────────────────────────────────────────
// GetAppVersion
// ─────────────────────────────────────────────

func TestGetAppVersion_ReturnsConfiguredVersion(t *testing.T) {
	svc, err := NewAppInfoService(config.App{Version: "v1.2.3-beta+build.42"}, nil, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3-beta+build.42", svc.GetAppVersion(context.Background()))
}

func TestGetAppVersion_CancelledContext_StillReturnsVersion(t *testing.T) {
	svc, err := NewAppInfoService(config.App{Version: "1.0.0"}, nil, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, "1.0.0", svc.GetAppVersion(ctx))
}

// ─────────────────────────────────────────────
// GetServerInfo
// ─────────────────────────────────────────────

func TestGetServerInfo_CountsSessions(t *testing.T) {
	sessions := NewSessionManager()
	svc, err := NewAppInfoService(config.App{Version: "2.0.0"}, sessions, logger.Nop())
	require.NoError(t, err)

	sessions.Open("alice")
	s := sessions.Open("bob")
	require.NoError(t, sessions.Close(s.ID, "bob"))

	info := svc.GetServerInfo(context.Background())
	assert.Equal(t, "2.0.0", info.Version)
	assert.Equal(t, 1, info.Sessions)
}

func TestGetServerInfo_WithoutSessionManager(t *testing.T) {
	svc, err := NewAppInfoService(config.App{Version: "2.0.0"}, nil, logger.Nop())
	require.NoError(t, err)

	assert.Zero(t, svc.GetServerInfo(context.Background()).Sessions)
}
