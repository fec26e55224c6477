package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKey_String(t *testing.T) {
	assert.Equal(t, "userID", UserIDCtxKey.String())
	assert.Equal(t, "login", LoginCtxKey.String())
}

func TestWithPrincipal(t *testing.T) {
	ctx := WithPrincipal(context.Background(), 42, "alice")

	userID, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)

	login, ok := GetLoginFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", login)
}

func TestGetUserIDFromContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		wantID int64
		wantOK bool
	}{
		{name: "missing", ctx: context.Background()},
		{name: "wrong type", ctx: context.WithValue(context.Background(), UserIDCtxKey, "42")},
		{name: "untyped int", ctx: context.WithValue(context.Background(), UserIDCtxKey, 42)},
		{name: "foreign key", ctx: context.WithValue(context.Background(), contextKey("uid"), int64(42))},
		{name: "zero", ctx: context.WithValue(context.Background(), UserIDCtxKey, int64(0)), wantOK: true},
		{name: "set", ctx: context.WithValue(context.Background(), UserIDCtxKey, int64(7)), wantID: 7, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := GetUserIDFromContext(tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestGetLoginFromContext(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		wantLogin string
		wantOK    bool
	}{
		{name: "missing", ctx: context.Background()},
		{name: "empty", ctx: context.WithValue(context.Background(), LoginCtxKey, "")},
		{name: "wrong type", ctx: context.WithValue(context.Background(), LoginCtxKey, 1)},
		{name: "set", ctx: context.WithValue(context.Background(), LoginCtxKey, "john"), wantLogin: "john", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			login, ok := GetLoginFromContext(tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantLogin, login)
			}
		})
	}
}
