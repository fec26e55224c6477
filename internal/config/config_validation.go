// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.TokenSignKey == "" {
		return fmt.Errorf("%w: token sign key is empty", ErrInvalidAppConfigs)
	}
	if cfg.App.TokenDuration <= 0 {
		return fmt.Errorf("%w: token duration must be positive", ErrInvalidAppConfigs)
	}

	if cfg.App.Domain.ID != 0 && cfg.App.Domain.Name == "" {
		return fmt.Errorf("%w: domain %d has no name", ErrInvalidAppConfigs, cfg.App.Domain.ID)
	}

	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: dsn is empty", ErrInvalidStorageConfigs)
	}

	if cfg.Server.HTTPAddress == "" {
		return fmt.Errorf("%w: http address is empty", ErrInvalidServerConfigs)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidServerConfigs)
	}

	if cfg.Workers.JanitorInterval <= 0 || cfg.Workers.SessionIdleTimeout <= 0 {
		return fmt.Errorf("%w: janitor interval and idle timeout must be positive", ErrInvalidWorkerConfigs)
	}

	return nil
}

// validateAdapter checks the settings icsctl needs.
func (cfg *StructuredConfig) validateAdapter() error {
	if cfg.Adapter.BaseURL == "" {
		return fmt.Errorf("%w: base url is empty", ErrInvalidAdapterConfigs)
	}
	if cfg.Adapter.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidAdapterConfigs)
	}
	return nil
}
