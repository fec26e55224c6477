package models

import "time"

// User is a principal. It logs on to its private store and, as a guest
// or delegate, to the stores shared with it. UserID doubles as the account
// id of the private store.
type User struct {
	UserID int64  `json:"-"`
	Login  string `json:"login"`
	Name   string `json:"name"`

	// Password is only set on register and login requests. AuthHash is
	// the stored argon2id encoding of it.
	Password string `json:"password,omitempty"`
	AuthHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
