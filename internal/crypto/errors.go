package crypto

import "errors"

var (
	// ErrMalformedHash is returned when a stored hash is not a PHC-encoded
	// argon2id string.
	ErrMalformedHash = errors.New("malformed password hash")
	// ErrIncompatibleVersion is returned for hashes made by another
	// argon2 version.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)
