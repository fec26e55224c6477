package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/service"
	"github.com/MKhiriev/go-ics-sync/internal/store"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
	"github.com/MKhiriev/go-ics-sync/models"
)

// principalFunc authenticates or creates the principal described by a
// register/login body.
type principalFunc func(ctx context.Context, user models.User) (models.User, error)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	h.issuePrincipalToken(w, r, "*Handler.register", h.services.AuthService.RegisterUser)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	h.issuePrincipalToken(w, r, "*Handler.login", func(ctx context.Context, user models.User) (models.User, error) {
		found, err := h.services.AuthService.Login(ctx, user)
		// an unknown login must look exactly like a wrong password
		if errors.Is(err, store.ErrNoUserWasFound) {
			err = service.ErrWrongPassword
		}
		return found, err
	})
}

// issuePrincipalToken decodes a models.User, passes it to auth and answers
// with the JWT of the resulting principal in the Authorization header.
func (h *Handler) issuePrincipalToken(w http.ResponseWriter, r *http.Request, fn string, auth principalFunc) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var user models.User
	if err := utils.DecodeJSON(r.Body, &user); err != nil {
		log.Err(err).Str("func", fn).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	principal, err := auth(ctx, user)
	if err != nil {
		status := statusFromError(err)
		log.Err(err).Str("func", fn).Str("login", user.Login).Int("status", status).Msg("authentication failed")
		http.Error(w, http.StatusText(status), status)
		return
	}

	token, err := h.services.AuthService.CreateToken(ctx, principal)
	if err != nil {
		log.Err(err).Str("func", fn).Msg("creation of token failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	log.Debug().Str("func", fn).Int64("account_id", principal.UserID).Str("login", principal.Login).Msg("token issued")
	w.Header().Set("Authorization", "Bearer "+token.SignedString)
	w.WriteHeader(http.StatusOK)
}
