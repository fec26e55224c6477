package http

import (
	"testing"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/service"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler_StoresDependencies(t *testing.T) {
	svc := &service.Services{}
	log := logger.Nop()

	h := NewHandler(svc, config.Server{}, log)

	require.NotNil(t, h)
	assert.Equal(t, svc, h.services)
	assert.Equal(t, log, h.logger)
	assert.Nil(t, h.signer)
}

func TestNewHandler_HashKey(t *testing.T) {
	h := NewHandler(&service.Services{}, config.Server{HashKey: "k"}, logger.Nop())

	require.NotNil(t, h.signer)
	assert.Equal(t, utils.HashString("body", "k"), h.signer.SignHex([]byte("body")))
}
