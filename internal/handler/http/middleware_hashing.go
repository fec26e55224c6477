package http

import (
	"bytes"
	"encoding/hex"
	"io"
	"net/http"
)

// BodyHMACHeader carries the hex HMAC-SHA256 of a ROP request body.
const BodyHMACHeader = "X-Body-HMAC"

// withBodyHMAC rejects ROP requests whose body does not match the HMAC in
// BodyHMACHeader. It does nothing unless the server has a hash key.
func (h *Handler) withBodyHMAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.signer == nil {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.logger.Err(err).Str("func", "*Handler.withBodyHMAC").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		// restore request body
		r.Body = io.NopCloser(bytes.NewReader(body))

		got, err := hex.DecodeString(r.Header.Get(BodyHMACHeader))
		if err != nil || len(got) == 0 {
			h.logger.Error().Str("func", "*Handler.withBodyHMAC").Msg("missing or malformed body hmac")
			http.Error(w, "Integrity check failed", http.StatusBadRequest)
			return
		}

		if !h.signer.Verify(body, got) {
			h.logger.Error().Str("func", "*Handler.withBodyHMAC").
				Str("hash from request", hex.EncodeToString(got)).
				Str("hashed body", h.signer.SignHex(body)).
				Msg("hashes are not equal")
			http.Error(w, "Integrity check failed", http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
