// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/service"
	"github.com/MKhiriev/go-ics-sync/internal/store"
	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// Mock AuthService
// ─────────────────────────────────────────────

// mockAuthService implements service.AuthService for unit tests.
// Each method field can be overridden per test case.
type mockAuthService struct {
	registerUserFn func(ctx context.Context, user models.User) (models.User, error)
	loginFn        func(ctx context.Context, user models.User) (models.User, error)
	createTokenFn  func(ctx context.Context, user models.User) (models.Token, error)
	parseTokenFn   func(ctx context.Context, tokenString string) (models.Token, error)
}

func (m *mockAuthService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	return m.registerUserFn(ctx, user)
}

func (m *mockAuthService) Login(ctx context.Context, user models.User) (models.User, error) {
	return m.loginFn(ctx, user)
}

func (m *mockAuthService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	return m.createTokenFn(ctx, user)
}

func (m *mockAuthService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	return m.parseTokenFn(ctx, tokenString)
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func newHandlerWithAuth(t *testing.T, auth service.AuthService) *Handler {
	t.Helper()
	svcs := &service.Services{
		AppInfoService: &mockAppInfoService{version: "test"},
		AuthService:    auth,
	}
	return NewHandler(svcs, config.Server{}, logger.Nop())
}

func userBody(t *testing.T, u models.User) string {
	t.Helper()
	b, err := json.Marshal(u)
	require.NoError(t, err)
	return string(b)
}

var validUser = models.User{Login: "alice", Password: "secret"}

func issueToken(signed string) func(context.Context, models.User) (models.Token, error) {
	return func(context.Context, models.User) (models.Token, error) {
		return models.Token{SignedString: signed}, nil
	}
}

// ─────────────────────────────────────────────
// register
// ─────────────────────────────────────────────

func TestRegister(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		registerErr error
		tokenErr    error
		wantStatus  int
		wantHeader  string
	}{
		{name: "success", wantStatus: http.StatusOK, wantHeader: "Bearer abc.def.ghi"},
		{name: "invalid JSON", body: "{invalid json}", wantStatus: http.StatusBadRequest},
		{name: "invalid data", registerErr: service.ErrInvalidDataProvided, wantStatus: http.StatusBadRequest},
		{name: "login taken", registerErr: fmt.Errorf("create user: %w", store.ErrLoginAlreadyExists), wantStatus: http.StatusConflict},
		{name: "unexpected error", registerErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
		{name: "token fails", tokenErr: service.ErrTokenCreationFailed, wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthService{
				registerUserFn: func(_ context.Context, u models.User) (models.User, error) {
					return u, tt.registerErr
				},
				createTokenFn: func(context.Context, models.User) (models.Token, error) {
					return models.Token{SignedString: "abc.def.ghi"}, tt.tokenErr
				},
			}
			body := tt.body
			if body == "" {
				body = userBody(t, validUser)
			}
			h := newHandlerWithAuth(t, auth)
			req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(body))
			rec := httptest.NewRecorder()

			h.register(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantHeader, rec.Header().Get("Authorization"))
		})
	}
}

// ─────────────────────────────────────────────
// login
// ─────────────────────────────────────────────

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		loginErr   error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "invalid data", loginErr: service.ErrInvalidDataProvided, wantStatus: http.StatusBadRequest},
		{name: "unknown user", loginErr: store.ErrNoUserWasFound, wantStatus: http.StatusUnauthorized},
		{name: "wrong password", loginErr: fmt.Errorf("verify: %w", service.ErrWrongPassword), wantStatus: http.StatusUnauthorized},
		{name: "unexpected error", loginErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser models.User
			auth := &mockAuthService{
				loginFn: func(_ context.Context, u models.User) (models.User, error) {
					gotUser = u
					return models.User{UserID: 7, Login: u.Login}, tt.loginErr
				},
				createTokenFn: issueToken("x.y.z"),
			}
			h := newHandlerWithAuth(t, auth)
			req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(userBody(t, validUser)))
			rec := httptest.NewRecorder()

			h.login(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "alice", gotUser.Login)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "Bearer x.y.z", rec.Header().Get("Authorization"))
			}
		})
	}
}

func TestLogin_InvalidJSON(t *testing.T) {
	h := newHandlerWithAuth(t, &mockAuthService{})
	req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(""))
	rec := httptest.NewRecorder()

	h.login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
