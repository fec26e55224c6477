package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/pflag"
)

// NetAddress is a listen address given on the command line. An empty host
// listens on every interface.
type NetAddress struct {
	Host string
	Port int
}

var (
	errAddressForm = errors.New("need address in a form `host:port`")
	errPortRange   = errors.New("port number must be in range 1..65535")
	errAddressHost = errors.New("host must be an IP address or localhost")
)

// ParseFlags reads the server command line. Unset flags leave their field
// zero so lower-priority sources can fill it.
//
//	-a, --address             HTTP listen address host:port
//	    --grpc-address        gRPC listen address host:port
//	-d, --database-dsn        database DSN
//	-c, --config              JSON config file
//	-k, --hash-key            key of the ROP request body HMAC
//	    --token-sign-key, --token-issuer, --token-duration
//	    --request-timeout
//	    --max-messages, --quota, --domain-id, --domain-name
//	    --janitor-interval, --session-idle-timeout
func ParseFlags(args []string) (*StructuredConfig, error) {
	var (
		cfg        StructuredConfig
		httpAddr   NetAddress
		grpcAddr   NetAddress
		domainID   uint32
		domainName string
	)

	fs := pflag.NewFlagSet("ics-server", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.VarP(&httpAddr, "address", "a", "HTTP listen address host:port")
	fs.Var(&grpcAddr, "grpc-address", "gRPC listen address host:port")
	fs.StringVarP(&cfg.Storage.DB.DSN, "database-dsn", "d", "", "database DSN")
	fs.StringVarP(&cfg.JSONFilePath, "config", "c", "", "JSON config file path")
	fs.StringVarP(&cfg.Server.HashKey, "hash-key", "k", "", "key of the ROP request body HMAC")
	fs.DurationVar(&cfg.Server.RequestTimeout, "request-timeout", 0, "per request timeout")

	fs.StringVar(&cfg.App.TokenSignKey, "token-sign-key", "", "token signing key")
	fs.StringVar(&cfg.App.TokenIssuer, "token-issuer", "", "token issuer")
	fs.DurationVar(&cfg.App.TokenDuration, "token-duration", 0, "token lifetime")
	fs.Uint32Var(&cfg.App.MaxMessages, "max-messages", 0, "message count limit of a store")
	fs.Uint32Var(&cfg.App.DefaultQuotaKiB, "quota", 0, "default store quota in KiB")
	fs.Uint32Var(&domainID, "domain-id", 0, "domain new users are provisioned into")
	fs.StringVar(&domainName, "domain-name", "", "name of that domain")

	fs.DurationVar(&cfg.Workers.JanitorInterval, "janitor-interval", 0, "idle session scan interval")
	fs.DurationVar(&cfg.Workers.SessionIdleTimeout, "session-idle-timeout", 0, "idle time before a session is released")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg.Server.HTTPAddress = httpAddr.String()
	cfg.Server.GRPCAddress = grpcAddr.String()
	if domainID != 0 || domainName != "" {
		cfg.App.Domain = Domain{ID: domainID, Name: domainName}
	}
	return &cfg, nil
}

func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set accepts host:port where host is empty, localhost or an IP literal.
func (a *NetAddress) Set(s string) error {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return fmt.Errorf("%w: %w", errAddressForm, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("%w: %w", errAddressForm, err)
	}
	if port < 1 || port > 65535 {
		return errPortRange
	}
	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		return errAddressHost
	}

	a.Host, a.Port = host, port
	return nil
}

// Type names the value in pflag usage output.
func (a *NetAddress) Type() string {
	return "host:port"
}
