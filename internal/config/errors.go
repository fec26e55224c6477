package config

import "errors"

// One error per configuration group; validate wraps them with the field
// at fault.
var (
	ErrInvalidAppConfigs     = errors.New("invalid app configuration")
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	ErrInvalidServerConfigs  = errors.New("invalid server configuration")
	ErrInvalidWorkerConfigs  = errors.New("invalid worker configuration")
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
)
