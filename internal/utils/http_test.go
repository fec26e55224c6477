package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name       string
		data       any
		status     int
		wantStatus int
		wantBody   string
		wantErr    bool
	}{
		{
			name:       "rop response",
			data:       models.SessionResponse{SessionID: "s1"},
			status:     http.StatusCreated,
			wantStatus: http.StatusCreated,
			wantBody:   `{"session_id":"s1"}`,
		},
		{
			name:       "not marshalable",
			data:       make(chan int),
			status:     http.StatusOK,
			wantStatus: http.StatusInternalServerError,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			n, err := WriteJSON(w, tt.data, tt.status)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantErr {
				require.Error(t, err)
				assert.Zero(t, n)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.wantBody), n)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    models.RopRequest
		wantErr bool
	}{
		{name: "known fields", body: `{"hin":4,"private":true,"account_id":9}`, want: models.RopRequest{Handle: 4, Private: true, AccountID: 9}},
		{name: "empty object", body: `{}`},
		{name: "unknown field", body: `{"hin":4,"handle":4}`, wantErr: true},
		{name: "truncated", body: `{"hin":`, wantErr: true},
		{name: "two values", body: `{} {}`, wantErr: true},
		{name: "trailing whitespace", body: "{\"hin\":1}\n", want: models.RopRequest{Handle: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.RopRequest
			err := DecodeJSON(strings.NewReader(tt.body), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(nil))
	assert.True(t, IsBlank([]byte(" \n\t")))
	assert.False(t, IsBlank([]byte(" {}")))
}
