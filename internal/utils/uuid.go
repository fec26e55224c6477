package utils

import "github.com/google/uuid"

// NewID returns a time-ordered UUIDv7. It falls back to a random UUID when
// the v7 generator cannot read the clock sequence.
func NewID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
