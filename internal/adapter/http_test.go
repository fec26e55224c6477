// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL, hashKey string) *httpRopClient {
	t.Helper()
	c, err := NewHTTPRopClient(config.Adapter{BaseURL: serverURL, RequestTimeout: 5 * time.Second, HashKey: hashKey}, logger.Nop())
	require.NoError(t, err)
	return c.(*httpRopClient)
}

func signedToken(t *testing.T) string {
	t.Helper()
	tok, err := utils.GenerateJWTToken("ics", 7, "alice", time.Hour, "sign-key")
	require.NoError(t, err)
	return tok.SignedString
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "localhost:8080", want: "http://localhost:8080"},
		{raw: " https://ics.example.org/ ", want: "https://ics.example.org"},
		{raw: "", wantErr: true},
		{raw: "http://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogin_KeepsToken(t *testing.T) {
	token := signedToken(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/login", r.URL.Path)
		var u models.User
		require.NoError(t, json.NewDecoder(r.Body).Decode(&u))
		assert.Equal(t, "alice", u.Login)
		w.Header().Set("Authorization", "Bearer "+token)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "")
	got, err := c.Login(context.Background(), models.User{Login: "alice", Password: "secret"})

	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "alice", got.Login)
	assert.Equal(t, token, c.Token())
}

func TestRegister_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{status: http.StatusBadRequest, want: ErrBadRequest},
		{status: http.StatusUnauthorized, want: ErrUnauthorized},
		{status: http.StatusConflict, want: ErrConflict},
		{status: http.StatusInternalServerError, want: ErrInternalServerError},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, "").Register(context.Background(), models.User{Login: "alice"})

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegister_MissingBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, "").Register(context.Background(), models.User{Login: "alice"})

	assert.Error(t, err)
}

func TestSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/rop/session":
			utils.WriteJSON(w, models.SessionResponse{SessionID: "sid-1"}, http.StatusCreated)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/rop/session/sid-1":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "")
	c.SetToken(" tok ")

	sid, err := c.OpenSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sid)

	require.NoError(t, c.CloseSession(context.Background(), sid))
	assert.ErrorIs(t, c.CloseSession(context.Background(), "other"), ErrNotFound)
}

func TestServerInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, models.ServerInfo{Version: "1.2.3", Sessions: 2}, http.StatusOK)
	}))
	defer srv.Close()

	info, err := newTestClient(t, srv.URL, "").ServerInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.ServerInfo{Version: "1.2.3", Sessions: 2}, info)
}

func TestCall(t *testing.T) {
	tests := []struct {
		name     string
		result   mapi.ErrorCode
		wantErr  error
		wantHout uint32
	}{
		{name: "success", result: mapi.EcSuccess, wantHout: 4},
		{name: "warning is not an error", result: mapi.SyncWClientChangeNewer, wantHout: 4},
		{name: "failure", result: mapi.EcAccessDenied, wantErr: mapi.EcAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/rop/sid-1/OpenFolder", r.URL.Path)
				assert.Empty(t, r.Header.Get(BodyHMACHeader))
				var req models.RopRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, uint64(0x0D0001), req.FolderID)

				resp := models.RopResponse{Result: uint32(tt.result), ResultName: tt.result.Error()}
				if !tt.result.Failed() {
					resp.Handle = 4
				}
				utils.WriteJSON(w, resp, http.StatusOK)
			}))
			defer srv.Close()

			resp, err := newTestClient(t, srv.URL, "").Call(context.Background(), "sid-1", "OpenFolder",
				models.RopRequest{Handle: 1, FolderID: 0x0D0001})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, uint32(tt.result), resp.Result)
			assert.Equal(t, tt.wantHout, resp.Handle)
		})
	}
}

func TestCall_SignsBody(t *testing.T) {
	const key = "shared-hmac-key"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, utils.HashString(string(body), key), r.Header.Get(BodyHMACHeader))
		utils.WriteJSON(w, models.RopResponse{}, http.StatusOK)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, key).Call(context.Background(), "sid", "Release", models.RopRequest{Handle: 3})

	require.NoError(t, err)
}

func TestCall_TransportStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Integrity check failed", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, "").Call(context.Background(), "sid", "Logon", models.RopRequest{})

	assert.ErrorIs(t, err, ErrBadRequest)
}
