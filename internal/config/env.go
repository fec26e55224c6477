// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from the process environment.
func parseEnv(cfg *StructuredConfig) error {
	return parseEnviron(cfg, nil)
}

// parseEnviron fills cfg from environ, or from the process environment when
// environ is nil. Keys follow the `env`/`envPrefix` tags of
// [StructuredConfig], e.g. STORAGE_DB_DATABASE_URI.
func parseEnviron(cfg *StructuredConfig, environ map[string]string) error {
	opts := env.Options{Environment: environ}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}
