package service

import (
	"errors"

	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/internal/store"
)

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrVersionIsNotSpecified = errors.New("version is not specified")

	// ErrNoPrincipal is returned when a ROP arrives without an
	// authenticated login in its context.
	ErrNoPrincipal = errors.New("no authenticated principal")
	// ErrNoSession is returned when a ROP names a session that was never
	// opened or has already expired.
	ErrNoSession = errors.New("no such session")
	// ErrSessionOwner is returned when a session is used by a principal
	// other than the one that opened it.
	ErrSessionOwner = errors.New("session belongs to another principal")
	// ErrNoHandle is returned when a ROP names a handle that is not in the
	// session's table.
	ErrNoHandle = errors.New("no such handle")
	// ErrWrongObject is returned when the handle holds an object the ROP
	// cannot act on.
	ErrWrongObject = errors.New("handle holds the wrong kind of object")
	// ErrHandleTableFull is returned when a session holds too many objects.
	ErrHandleTableFull = errors.New("handle table is full")
)

// ResultCode maps the outcome of a ROP to the code returned to the client.
// Codes returned by the engine pass through; Go errors without a code
// become ecError.
func ResultCode(err error) mapi.ErrorCode {
	if err == nil {
		return mapi.EcSuccess
	}
	var code mapi.ErrorCode
	if errors.As(err, &code) {
		return code
	}
	switch {
	case errors.Is(err, ErrNoHandle), errors.Is(err, ErrNoSession):
		return mapi.EcNullObject
	case errors.Is(err, ErrWrongObject):
		return mapi.EcNotSupported
	case errors.Is(err, ErrSessionOwner), errors.Is(err, ErrNoPrincipal):
		return mapi.EcAccessDenied
	case errors.Is(err, ics.ErrNotFound), errors.Is(err, store.ErrStoreNotFound):
		return mapi.EcNotFound
	case errors.Is(err, ics.ErrExists):
		return mapi.EcDuplicateName
	case errors.Is(err, ics.ErrBufferTooSmall):
		return mapi.EcBufferTooSmall
	}
	return mapi.CodeFromError(err)
}
