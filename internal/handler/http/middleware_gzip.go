package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

var (
	gzipWriters = sync.Pool{New: func() any { return gzip.NewWriter(io.Discard) }}
	gzipReaders = sync.Pool{New: func() any { return new(gzip.Reader) }}
)

// withGZip inflates gzip request bodies and compresses replies for clients
// that accept gzip. Large FastTransfer buffers travel as base64 in JSON, so
// replies compress well.
func withGZip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasToken(r.Header.Get("Content-Encoding"), "gzip") && r.Body != nil {
			zr := gzipReaders.Get().(*gzip.Reader)
			if err := zr.Reset(r.Body); err != nil {
				gzipReaders.Put(zr)
				http.Error(w, "Invalid gzip data", http.StatusBadRequest)
				return
			}
			r.Body = &gzipBody{Reader: zr, src: r.Body}
			r.Header.Del("Content-Encoding")
			r.Header.Del("Content-Length")
			r.ContentLength = -1
		}

		if !hasToken(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gw := &gzipResponseWriter{ResponseWriter: w}
		defer gw.finish()
		next.ServeHTTP(gw, r)
	})
}

// hasToken reports whether a comma-separated header such as
// "deflate, gzip;q=0.8" lists token with a non-zero quality.
func hasToken(header, token string) bool {
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), token) {
			continue
		}
		q, found := strings.CutPrefix(strings.TrimSpace(params), "q=")
		if !found {
			return true
		}
		v, err := strconv.ParseFloat(q, 64)
		return err == nil && v > 0
	}
	return false
}

// gzipBody returns its reader to the pool on Close.
type gzipBody struct {
	*gzip.Reader
	src io.ReadCloser
}

func (b *gzipBody) Close() error {
	if b.Reader == nil {
		return nil
	}
	_ = b.Reader.Close()
	gzipReaders.Put(b.Reader)
	b.Reader = nil
	return b.src.Close()
}

// gzipResponseWriter starts compressing when the header is written. Replies
// that cannot carry a body are passed through untouched.
type gzipResponseWriter struct {
	http.ResponseWriter
	zw          *gzip.Writer
	wroteHeader bool
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.Header()
	h.Add("Vary", "Accept-Encoding")
	if status != http.StatusNoContent && status != http.StatusNotModified && h.Get("Content-Encoding") == "" {
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
		w.zw = gzipWriters.Get().(*gzip.Writer)
		w.zw.Reset(w.ResponseWriter)
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.zw == nil {
		return w.ResponseWriter.Write(data)
	}
	return w.zw.Write(data)
}

// finish flushes the gzip trailer and recycles the writer.
func (w *gzipResponseWriter) finish() {
	if w.zw == nil {
		return
	}
	_ = w.zw.Close()
	gzipWriters.Put(w.zw)
	w.zw = nil
}
