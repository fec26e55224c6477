package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/service"
	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// injectLogger puts l into the request context the way withTraceID does.
func injectLogger(r *http.Request, l zerolog.Logger) *http.Request {
	return r.WithContext(l.WithContext(r.Context()))
}

func TestWithLogging_TableTest(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		status       int
		body         string
		wantContains []string
	}{
		{
			name:   "GET 200",
			method: http.MethodGet,
			path:   "/api/version/",
			status: http.StatusOK,
			body:   "OK",
			wantContains: []string{
				`"method":"GET"`,
				`"uri":"/api/version/"`,
				`"status":200`,
				`"duration":`,
				`"size":2`,
			},
		},
		{
			name:         "POST 201 empty body",
			method:       http.MethodPost,
			path:         "/api/rop/session",
			status:       http.StatusCreated,
			wantContains: []string{`"method":"POST"`, `"status":201`, `"size":0`},
		},
		{
			name:         "DELETE 404",
			method:       http.MethodDelete,
			path:         "/api/rop/session/x",
			status:       http.StatusNotFound,
			body:         "not found",
			wantContains: []string{`"status":404`, `"size":9`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &Handler{logger: logger.Nop()}
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			req := injectLogger(httptest.NewRequest(tt.method, tt.path, nil), zerolog.New(&buf))
			rr := httptest.NewRecorder()
			h.withLogging(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			for _, want := range tt.wantContains {
				assert.Contains(t, buf.String(), want)
			}
			assert.NotContains(t, buf.String(), `"route"`, "no router, no route pattern")
		})
	}
}

func TestWithLogging_NoStatusWritten(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{logger: logger.Nop()}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := injectLogger(httptest.NewRequest(http.MethodGet, "/", nil), zerolog.New(&buf))
	h.withLogging(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"status":0`)
}

func TestWithLogging_RopCallThroughRouter(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{
		logger: &logger.Logger{Logger: zerolog.New(&buf)},
		services: &service.Services{
			AuthService: &mockAuthService{parseTokenFn: func(context.Context, string) (models.Token, error) {
				return models.Token{UserID: 7, Login: "alice"}, nil
			}},
			RopService: &mockRopService{logonFn: func(context.Context, string, bool, uint32) (uint32, error) {
				return 1, nil
			}},
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/rop/"+testSession+"/Logon", strings.NewReader(`{"private":true}`))
	req.Header.Set("Authorization", "Bearer token")
	rr := httptest.NewRecorder()
	h.Init().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	out := buf.String()
	assert.Contains(t, out, `"route":"/api/rop/{session}/{rop}"`)
	assert.Contains(t, out, `"session":"`+testSession+`"`)
	assert.Contains(t, out, `"rop":"Logon"`)
	assert.Contains(t, out, `"trace_id":"`)
}

func TestWithLogging_PanicNotSuppressed(t *testing.T) {
	h := &Handler{logger: logger.Nop()}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := injectLogger(httptest.NewRequest(http.MethodGet, "/", nil), zerolog.Nop())
	assert.Panics(t, func() {
		h.withLogging(next).ServeHTTP(httptest.NewRecorder(), req)
	})
}
