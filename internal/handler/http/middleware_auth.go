package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/service"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
)

// auth admits requests carrying a valid bearer token and puts the
// principal into the request context. ROP sessions are bound to the
// login, so a token without one is refused like an invalid token.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		header := r.Header.Get("Authorization")
		if header == "" {
			log.Debug().Msg("request without credentials")
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		raw, err := utils.ParseBearerToken(header)
		if err != nil {
			log.Debug().Err(err).Send()
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		token, err := h.services.AuthService.ParseToken(r.Context(), raw)
		switch {
		case errors.Is(err, service.ErrTokenIsExpiredOrInvalid):
			log.Info().Err(err).Msg("rejected token")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		case err != nil:
			log.Err(err).Msg("failed to parse token")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		case token.Anonymous():
			log.Warn().Int64("user_id", token.UserID).Msg("token carries no login")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := utils.WithPrincipal(r.Context(), token.UserID, token.Login)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
