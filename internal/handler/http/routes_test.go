package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/service"
	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/stretchr/testify/assert"
)

// ---- Helper ----

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	h := &Handler{
		logger: logger.Nop(),
		services: &service.Services{
			AuthService: &mockAuthService{
				registerUserFn: func(_ context.Context, u models.User) (models.User, error) { return u, nil },
				loginFn:        func(_ context.Context, u models.User) (models.User, error) { return u, nil },
				createTokenFn:  issueToken("stub"),
				parseTokenFn: func(context.Context, string) (models.Token, error) {
					return models.Token{UserID: 1, Login: "alice"}, nil
				},
			},
			AppInfoService: &mockAppInfoService{version: "test-version"},
			RopService: &mockRopService{
				openSessionFn:  func(context.Context) (string, error) { return testSession, nil },
				closeSessionFn: func(context.Context, string) error { return nil },
			},
		},
	}
	return h.Init()
}

func validAuthHeader() string { return "Bearer stub-token" }

// ---- Public routes: reachable without auth ----

func TestInit_PublicRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/user/register"},
		{http.MethodPost, "/api/user/login"},
		{http.MethodGet, "/api/version/"},
		{http.MethodGet, "/api/info"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.NotEqual(t, http.StatusNotFound, rr.Code,
				"route should be registered: %s %s", tt.method, tt.path)
			assert.NotEqual(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

// ---- Protected routes: 401 without token ----

func TestInit_ProtectedRoutes_RequireAuth(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/rop/session"},
		{http.MethodDelete, "/api/rop/session/" + testSession},
		{http.MethodPost, "/api/rop/" + testSession + "/Logon"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

// ---- Protected routes: reachable with token ----

func TestInit_ProtectedRoutes_WithToken(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodPost, "/api/rop/session", http.StatusCreated},
		{http.MethodDelete, "/api/rop/session/" + testSession, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", validAuthHeader())
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

// ---- Wrong method / unknown path ----

func TestInit_WrongMethod(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/user/register"},
		{http.MethodPut, "/api/version/"},
		{http.MethodGet, "/api/rop/session"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", validAuthHeader())
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusNotFound, rr.Code)
		})
	}
}

func TestInit_UnknownPath(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// ---- Global middleware ----

func TestInit_SetsTraceID(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/version/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.NotEmpty(t, rr.Header().Get(traceIDHeader))
}

func TestInit_EchoesTraceID(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/version/", nil)
	req.Header.Set(traceIDHeader, "trace-123")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "trace-123", rr.Header().Get(traceIDHeader))
}
