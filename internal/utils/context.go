// Package utils holds small helpers shared by the server and the client:
// request context keys, HMAC hashing, JSON over HTTP, JWT handling and the
// REST client constructor.
package utils

import "context"

type contextKey string

func (c contextKey) String() string {
	return string(c)
}

// Keys under which the auth middleware stores the authenticated principal.
var (
	UserIDCtxKey = contextKey("userID")
	LoginCtxKey  = contextKey("login")
)

// WithPrincipal returns a copy of ctx carrying the user id and login.
func WithPrincipal(ctx context.Context, userID int64, login string) context.Context {
	ctx = context.WithValue(ctx, UserIDCtxKey, userID)
	return context.WithValue(ctx, LoginCtxKey, login)
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}

// GetLoginFromContext reports false for a missing or empty login.
func GetLoginFromContext(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(LoginCtxKey).(string)
	return login, ok && login != ""
}
