package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/mock"
	"github.com/MKhiriev/go-ics-sync/internal/store"
	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestProvisionDomain(t *testing.T) {
	domain := config.Domain{ID: 3, OrgID: 1, Name: "example.org"}

	tests := []struct {
		name    string
		cfg     config.App
		err     error
		calls   int
		wantErr bool
	}{
		{name: "no domain configured", cfg: config.App{}},
		{name: "created", cfg: config.App{Domain: domain, DefaultQuotaKiB: 1024}, calls: 1},
		{name: "already there", cfg: config.App{Domain: domain}, err: fmt.Errorf("create: %w", store.ErrStoreExists), calls: 1},
		{name: "database failure", cfg: config.App{Domain: domain}, err: errors.New("db down"), calls: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock.NewMockMailboxRepository(ctrl)
			repo.EXPECT().
				CreateDomain(gomock.Any(), models.Domain{DomainID: 3, OrgID: 1, Name: "example.org"}, tt.cfg.DefaultQuotaKiB).
				Return(models.Store{}, tt.err).
				Times(tt.calls)

			err := provisionDomain(context.Background(), repo, tt.cfg)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
