// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, b []byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(b)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return &buf
}

func gunzip(t *testing.T, r io.Reader) string {
	t.Helper()
	zr, err := gzip.NewReader(r)
	require.NoError(t, err)
	defer zr.Close()
	b, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(b)
}

func TestGZip(t *testing.T) {
	ropReply := `{"result":0,"result_name":"ecSuccess","data":"` + strings.Repeat("QUJD", 512) + `"}`

	tests := []struct {
		name            string
		acceptEncoding  string
		contentEncoding string
		requestBody     string
		compressRequest bool
		wantStatus      int
		wantGzipped     bool
	}{
		{name: "compress when accepted", acceptEncoding: "gzip", wantStatus: http.StatusOK, wantGzipped: true},
		{name: "plain when not accepted", wantStatus: http.StatusOK},
		{name: "gzip among several encodings", acceptEncoding: "deflate, gzip;q=1.0, br", wantStatus: http.StatusOK, wantGzipped: true},
		{name: "decode gzipped request", contentEncoding: "gzip", requestBody: `{"hin":1}`, compressRequest: true, wantStatus: http.StatusOK},
		{name: "decode request and compress reply", acceptEncoding: "gzip", contentEncoding: "gzip", requestBody: `{"hin":2}`, compressRequest: true, wantStatus: http.StatusOK, wantGzipped: true},
		{name: "corrupt gzip request", contentEncoding: "gzip", requestBody: "not gzipped", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.requestBody != "" {
					body, err := io.ReadAll(r.Body)
					require.NoError(t, err)
					assert.Equal(t, tt.requestBody, string(body))
					assert.Empty(t, r.Header.Get("Content-Encoding"))
				}
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(ropReply))
			})

			var body io.Reader
			if tt.requestBody != "" {
				if tt.compressRequest {
					body = gzipBytes(t, []byte(tt.requestBody))
				} else {
					body = strings.NewReader(tt.requestBody)
				}
			}
			req := httptest.NewRequest(http.MethodPost, "/api/rop/s/FastTransferSourceGetBuffer", body)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			if tt.contentEncoding != "" {
				req.Header.Set("Content-Encoding", tt.contentEncoding)
			}
			rr := httptest.NewRecorder()

			withGZip(next).ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			if tt.wantGzipped {
				assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
				assert.Less(t, rr.Body.Len(), len(ropReply))
				assert.Equal(t, ropReply, gunzip(t, rr.Body))
			} else {
				assert.Empty(t, rr.Header().Get("Content-Encoding"))
				assert.Equal(t, ropReply, rr.Body.String())
			}
		})
	}
}

func TestGZip_ConcurrentRequests(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	})
	handler := withGZip(next)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := strings.Repeat(string(rune('a'+i)), 100+i)
			req := httptest.NewRequest(http.MethodPost, "/", gzipBytes(t, []byte(payload)))
			req.Header.Set("Content-Encoding", "gzip")
			req.Header.Set("Accept-Encoding", "gzip")
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, payload, gunzip(t, rr.Body))
		}(i)
	}
	wg.Wait()
}

func TestGZip_NoContentIsNotCompressed(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodDelete, "/api/rop/session/s", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()

	withGZip(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Header().Get("Content-Encoding"))
	assert.Zero(t, rr.Body.Len())
	assert.Equal(t, "Accept-Encoding", rr.Header().Get("Vary"))
}

func TestHasToken(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{header: "", want: false},
		{header: "gzip", want: true},
		{header: "GZIP", want: true},
		{header: "deflate, gzip;q=0.5", want: true},
		{header: "gzip;q=0", want: false},
		{header: "x-gzip", want: false},
		{header: "br, identity", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, hasToken(tt.header, "gzip"))
		})
	}
}

func TestGzipBody_CloseTwice(t *testing.T) {
	zr, err := gzip.NewReader(gzipBytes(t, []byte("x")))
	require.NoError(t, err)
	b := &gzipBody{Reader: zr, src: io.NopCloser(strings.NewReader(""))}

	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}
