package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
)

type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	config, err := b.merge()
	if err != nil {
		return nil, err
	}

	return config, config.validate()
}

// buildClient merges like build but only checks the adapter group.
func (b *configBuilder) buildClient() (*StructuredConfig, error) {
	config, err := b.merge()
	if err != nil {
		return nil, err
	}

	return config, config.validateAdapter()
}

func (b *configBuilder) merge() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, nil
}

// withConfig adds an already populated source, e.g. values bound to the
// flags of a CLI command.
func (b *configBuilder) withConfig(cfg *StructuredConfig) *configBuilder {
	b.configs = append(b.configs, cfg)
	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

// withFlags parses args, or the process arguments when args is nil.
func (b *configBuilder) withFlags(args []string) *configBuilder {
	if args == nil {
		args = os.Args[1:]
	}
	flags, err := ParseFlags(args)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, flags)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string

	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
		}
	}

	if jsonPath == "" {
		return b
	}

	jsonCfg, err := parseJSON(jsonPath)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, jsonCfg)
	return b
}

// withDefaults puts the built-in defaults underneath every other source.
func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append([]*StructuredConfig{defaults()}, b.configs...)
	return b
}

func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   "go-ics-sync",
			TokenDuration: time.Hour,
			MaxMessages:   1000000,
		},
		Storage: Storage{DB: DB{DSN: "file:ics.db?_foreign_keys=on", MaxOpenConns: 10}},
		Server: Server{
			HTTPAddress:    "localhost:8080",
			GRPCAddress:    "localhost:9090",
			RequestTimeout: 30 * time.Second,
			RopHeadroom:    0x8000,
		},
		Adapter: Adapter{
			BaseURL:        "http://localhost:8080",
			RequestTimeout: 30 * time.Second,
		},
		Workers: Workers{
			JanitorInterval:    time.Minute,
			SessionIdleTimeout: 15 * time.Minute,
		},
	}
}
