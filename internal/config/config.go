// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container of the ICS
// server and its CLI. It is populated by merging values from environment
// variables, command-line flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token parameters, mailbox limits and the version.
	App App `envPrefix:"APP_"`

	// Storage holds the mailbox database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds listener addresses, timeouts and ROP buffer limits.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the settings of the HTTP client used by icsctl.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds the settings of the session janitor.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration of the persistence backends.
type Storage struct {
	// DB holds the mailbox database connection settings.
	DB DB `envPrefix:"DB_"`
}

// App holds application-level configuration values.
type App struct {
	// TokenSignKey is the secret key used to sign and verify JWT tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued JWT token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long a JWT token remains valid.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// MaxMessages is the message count above which FastTransfer uploads
	// into a store are refused. Zero disables the check.
	// Env: APP_MAX_MESSAGES
	MaxMessages uint32 `env:"MAX_MESSAGES"`

	// DefaultQuotaKiB is the storage quota given to new mailboxes, in KiB.
	// Zero means unlimited.
	// Env: APP_DEFAULT_QUOTA_KIB
	DefaultQuotaKiB uint32 `env:"DEFAULT_QUOTA_KIB"`

	// Domain is the domain new users are provisioned into. A zero ID
	// leaves users without a domain and disables public store logons.
	Domain Domain `envPrefix:"DOMAIN_"`

	// Version is exposed via the /api/version/ endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Domain describes the domain whose public store the server provisions
// at startup.
type Domain struct {
	// Env: APP_DOMAIN_ID
	ID uint32 `env:"ID" json:"id"`
	// Env: APP_DOMAIN_ORG_ID
	OrgID uint32 `env:"ORG_ID" json:"org_id"`
	// Env: APP_DOMAIN_NAME
	Name string `env:"NAME" json:"name"`
}

// Server holds network, timeout and buffer settings of the inbound
// transport layer.
type Server struct {
	// HTTPAddress is the TCP address of the HTTP server ("host:port").
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the TCP address of the gRPC health server.
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout is the maximum duration of a single request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// RopHeadroom is the room left in a ROP response buffer, passed to
	// FastTransferSourceGetBuffer as the protocol headroom.
	// Env: SERVER_ROP_HEADROOM
	RopHeadroom uint16 `env:"ROP_HEADROOM"`

	// HashKey, when set, makes the server verify the HMAC-SHA256 of every
	// ROP request body sent in the X-Body-HMAC header.
	// Env: SERVER_HASH_KEY
	HashKey string `env:"HASH_KEY"`
}

// DB holds connection settings for the mailbox database. A DSN starting
// with postgres:// or postgresql:// selects PostgreSQL (pgx); anything else
// is opened as a SQLite file.
type DB struct {
	// DSN is the data source name.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI" json:"dsn"`

	// MaxOpenConns caps the PostgreSQL connection pool. SQLite always uses
	// a single connection.
	// Env: STORAGE_DB_MAX_OPEN_CONNS
	MaxOpenConns int `env:"MAX_OPEN_CONNS" json:"max_open_conns"`
}

// Adapter holds the settings of the HTTP client used by icsctl.
type Adapter struct {
	// BaseURL is the server root, e.g. "http://localhost:8080".
	// Env: ADAPTER_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout bounds every outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// HashKey signs ROP request bodies; it must match Server.HashKey.
	// Env: ADAPTER_HASH_KEY
	HashKey string `env:"HASH_KEY"`
}

// Workers holds the settings of the session janitor.
type Workers struct {
	// JanitorInterval is how often idle sessions are looked for.
	// Env: WORKERS_JANITOR_INTERVAL
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL"`

	// SessionIdleTimeout is how long a session may stay unused before its
	// handles are released.
	// Env: WORKERS_SESSION_IDLE_TIMEOUT
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT"`
}

// GetStructuredConfig loads, merges, and validates the server
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Defaults fill whatever is still unset.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(nil).
		withJSON().
		withDefaults().
		build()
}

// GetClientConfig loads the icsctl configuration. flags carries the values
// bound to the command line; it sits above the environment and below the
// JSON file named by flags.JSONFilePath or CONFIG.
func GetClientConfig(flags *StructuredConfig) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withConfig(flags).
		withJSON().
		withDefaults().
		buildClient()
}
