package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// fileConfig is the layout of the JSON config file. Durations are written
// as Go duration strings or as nanosecond counts.
type fileConfig struct {
	App struct {
		TokenSignKey    string   `json:"token_sign_key"`
		TokenIssuer     string   `json:"token_issuer"`
		TokenDuration   Duration `json:"token_duration"`
		MaxMessages     uint32   `json:"max_messages"`
		DefaultQuotaKiB uint32   `json:"default_quota_kib"`
		Version         string   `json:"version"`
		Domain          Domain   `json:"domain"`
	} `json:"app"`

	Storage struct {
		DB DB `json:"db"`
	} `json:"storage"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		GRPCAddress    string   `json:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout"`
		RopHeadroom    uint16   `json:"rop_headroom"`
		HashKey        string   `json:"hash_key"`
	} `json:"server"`

	Adapter struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
		HashKey        string   `json:"hash_key"`
	} `json:"adapter"`

	Workers struct {
		JanitorInterval    Duration `json:"janitor_interval"`
		SessionIdleTimeout Duration `json:"session_idle_timeout"`
	} `json:"workers"`
}

// parseJSON reads the config file at path. Unknown keys are rejected so a
// misspelt setting does not silently fall back to its default.
func parseJSON(path string) (*StructuredConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err = dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("error decoding json configs %s: %w", path, err)
	}

	return fc.structured(), nil
}

func (fc *fileConfig) structured() *StructuredConfig {
	var cfg StructuredConfig

	cfg.App = App{
		TokenSignKey:    fc.App.TokenSignKey,
		TokenIssuer:     fc.App.TokenIssuer,
		TokenDuration:   time.Duration(fc.App.TokenDuration),
		MaxMessages:     fc.App.MaxMessages,
		DefaultQuotaKiB: fc.App.DefaultQuotaKiB,
		Domain:          fc.App.Domain,
		Version:         fc.App.Version,
	}
	cfg.Storage.DB = fc.Storage.DB

	cfg.Server = Server{
		HTTPAddress:    fc.Server.HTTPAddress,
		GRPCAddress:    fc.Server.GRPCAddress,
		RequestTimeout: time.Duration(fc.Server.RequestTimeout),
		RopHeadroom:    fc.Server.RopHeadroom,
		HashKey:        fc.Server.HashKey,
	}
	cfg.Adapter = Adapter{
		BaseURL:        fc.Adapter.BaseURL,
		RequestTimeout: time.Duration(fc.Adapter.RequestTimeout),
		HashKey:        fc.Adapter.HashKey,
	}
	cfg.Workers = Workers{
		JanitorInterval:    time.Duration(fc.Workers.JanitorInterval),
		SessionIdleTimeout: time.Duration(fc.Workers.SessionIdleTimeout),
	}
	return &cfg
}

// Duration decodes "90s"-style strings as well as plain nanosecond counts.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}

	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", b)
	}
	*d = Duration(n)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
