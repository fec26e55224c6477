package models

import "github.com/golang-jwt/jwt/v5"

// Token is an issued or verified access token.
//
// It doubles as the claim set: the registered claims carry the issuer,
// the user id as "sub" and the validity window, and Login travels as a
// private claim naming the principal that store permissions are granted to.
type Token struct {
	*jwt.Token `json:"-"`
	jwt.RegisteredClaims

	// SignedString is the compact form sent in the Authorization header.
	SignedString string `json:"-"`
	UserID       int64  `json:"-"`
	Login        string `json:"login"`
}

// String returns the compact signed form.
func (t *Token) String() string {
	return t.SignedString
}

// Anonymous reports whether the token names no principal.
func (t *Token) Anonymous() bool {
	return t.Login == ""
}
