package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		service  string
		db       Pinger
		want     healthpb.HealthCheckResponse_ServingStatus
		wantCode codes.Code
	}{
		{name: "no database", want: healthpb.HealthCheckResponse_SERVING},
		{name: "database up", service: ServiceName, db: pingerFunc(func(context.Context) error { return nil }), want: healthpb.HealthCheckResponse_SERVING},
		{name: "database down", db: pingerFunc(func(context.Context) error { return errors.New("refused") }), want: healthpb.HealthCheckResponse_NOT_SERVING},
		{name: "unknown service", service: "other.Service", wantCode: codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(nil, tt.db, logger.Nop())

			resp, err := h.Check(context.Background(), &healthpb.HealthCheckRequest{Service: tt.service})

			if tt.wantCode != codes.OK {
				assert.Equal(t, tt.wantCode, status.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.GetStatus())
		})
	}
}

func TestCheck_PingHasDeadline(t *testing.T) {
	h := NewHandler(nil, pingerFunc(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	}), logger.Nop())

	_, err := h.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
}
