// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client side of the ROP HTTP API.
//
// [RopClient] hides the transport from icsctl. HTTP statuses of account and
// session calls map onto the sentinel errors in errors.go; the MAPI result
// of a ROP call comes back as a [mapi.ErrorCode] error when it is a
// failure, and in [models.RopResponse.Result] either way.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-ics-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/rop_client_mock.go -package=mock

// RopClient talks to an ICS server.
type RopClient interface {
	// SetToken stores the bearer token sent with authenticated calls.
	SetToken(token string)
	Token() string

	// Register creates an account and keeps the issued token.
	Register(ctx context.Context, user models.User) (models.Token, error)
	// Login authenticates and keeps the issued token.
	Login(ctx context.Context, user models.User) (models.Token, error)
	// ServerInfo reports the server version and open session count.
	ServerInfo(ctx context.Context) (models.ServerInfo, error)

	OpenSession(ctx context.Context) (string, error)
	CloseSession(ctx context.Context, sid string) error

	// Call runs one ROP in session sid. A failing result code is returned
	// as a [mapi.ErrorCode] alongside the decoded response.
	Call(ctx context.Context, sid, rop string, req models.RopRequest) (models.RopResponse, error)
}
