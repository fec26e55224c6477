package mapi

import (
	"errors"
	"fmt"
)

// Codec errors. Every Pull and Push method reports one of these (possibly
// wrapped) and leaves the cursor in an unspecified but bounded position.
var (
	// ErrBufSize is returned when a read would cross the end of the input or
	// a write would overflow a fixed-capacity output buffer.
	ErrBufSize = errors.New("buffer size exceeded")

	// ErrFormat is returned when the input is structurally invalid: a bad
	// boolean byte, a zero count where one is required, a size field that
	// disagrees with the payload.
	ErrFormat = errors.New("invalid wire format")

	// ErrAlloc is returned when a declared size is too large to allocate.
	ErrAlloc = errors.New("allocation failed")

	// ErrCharCnv is returned when a string cannot be converted between
	// UTF-8 and UTF-16LE.
	ErrCharCnv = errors.New("character conversion failed")

	// ErrBadSwitch is returned when a discriminator (property type,
	// restriction type, action type) has no known decoding rule.
	ErrBadSwitch = errors.New("unknown discriminator")
)

// ErrorCode is a ROP result code. Zero means success. Codes with the high
// bit clear and a non-zero value are warnings.
type ErrorCode uint32

// ROP result codes used by the synchronization engine.
const (
	EcSuccess         ErrorCode = 0
	EcError           ErrorCode = 0x80004005
	EcNotSupported    ErrorCode = 0x80040102
	EcNotImplemented  ErrorCode = 0x80040FFF
	EcInvalidParam    ErrorCode = 0x80070057
	EcAccessDenied    ErrorCode = 0x80070005
	EcNotFound        ErrorCode = 0x8004010F
	EcUnknownFlags    ErrorCode = 0x80040106
	EcDuplicateName   ErrorCode = 0x80040604
	EcNotInitialized  ErrorCode = 0x80040605
	EcQuotaExceeded   ErrorCode = 0x000004D9
	EcBufferTooSmall  ErrorCode = 0x0000047D
	EcNullObject      ErrorCode = 0x000004B9
	EcRPCFormat       ErrorCode = 0x000004B6
	EcNotEnoughMemory ErrorCode = 0x8007000E
	EcInvalidObject   ErrorCode = 0x80040108

	SyncEIgnore            ErrorCode = 0x80040801
	SyncEConflict          ErrorCode = 0x80040802
	SyncENoParent          ErrorCode = 0x80040803
	SyncWClientChangeNewer ErrorCode = 0x00040821
)

var codeNames = map[ErrorCode]string{
	EcSuccess:              "ecSuccess",
	EcError:                "ecError",
	EcNotSupported:         "ecNotSupported",
	EcNotImplemented:       "ecNotImplemented",
	EcInvalidParam:         "ecInvalidParam",
	EcAccessDenied:         "ecAccessDenied",
	EcNotFound:             "ecNotFound",
	EcUnknownFlags:         "ecUnknownFlags",
	EcDuplicateName:        "ecDuplicateName",
	EcNotInitialized:       "ecNotInitialized",
	EcQuotaExceeded:        "ecQuotaExceeded",
	EcBufferTooSmall:       "ecBufferTooSmall",
	EcNullObject:           "ecNullObject",
	EcRPCFormat:            "ecRpcFormat",
	EcNotEnoughMemory:      "ecNotEnoughMemory",
	EcInvalidObject:        "ecInvalidObject",
	SyncEIgnore:            "SYNC_E_IGNORE",
	SyncEConflict:          "SYNC_E_CONFLICT",
	SyncENoParent:          "SYNC_E_NO_PARENT",
	SyncWClientChangeNewer: "SYNC_W_CLIENT_CHANGE_NEWER",
}

// Error implements error so codes can travel through wrapped error chains.
func (c ErrorCode) Error() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ec%#08x", uint32(c))
}

// Failed reports whether c is an error (as opposed to success or a warning).
func (c ErrorCode) Failed() bool {
	return c&0x80000000 != 0 || c == EcQuotaExceeded || c == EcBufferTooSmall ||
		c == EcNullObject || c == EcRPCFormat
}

// CodeFromError extracts the ROP result code carried by err. Codec errors map
// to ecRpcFormat or ecNotEnoughMemory and any other error to ecError.
func CodeFromError(err error) ErrorCode {
	if err == nil {
		return EcSuccess
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	switch {
	case errors.Is(err, ErrAlloc):
		return EcNotEnoughMemory
	case errors.Is(err, ErrBufSize), errors.Is(err, ErrFormat),
		errors.Is(err, ErrCharCnv), errors.Is(err, ErrBadSwitch):
		return EcRPCFormat
	}
	return EcError
}
