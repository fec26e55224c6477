package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-ics-sync/internal/service"
	"github.com/MKhiriev/go-ics-sync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:     http.StatusBadRequest,
	service.ErrWrongPassword:           http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrNoPrincipal:             http.StatusUnauthorized,
	service.ErrNoSession:               http.StatusNotFound,
	service.ErrSessionOwner:            http.StatusForbidden,

	store.ErrLoginAlreadyExists: http.StatusConflict,
	store.ErrNoUserWasFound:     http.StatusNotFound,
	store.ErrStoreNotFound:      http.StatusNotFound,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
