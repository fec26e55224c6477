package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MKhiriev/go-ics-sync/internal/adapter"
	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const tokenEnv = "ICSCTL_TOKEN"

var errNoToken = errors.New("no token: run icsctl login or set " + tokenEnv)

// cli holds what the commands share: the flags bound onto the client
// configuration and the collaborators built from it.
type cli struct {
	flags   config.StructuredConfig
	token   string
	verbose bool

	out, errOut io.Writer
	build       models.BuildInfo

	newLogger func() *logger.Logger
	newClient func(cfg config.Adapter, log *logger.Logger) (adapter.RopClient, error)
	copyText  func(string) error

	log  *logger.Logger
	rops adapter.RopClient
}

func newCLI(out, errOut io.Writer) *cli {
	return &cli{
		out:       out,
		errOut:    errOut,
		build:     models.BuildInfo{Version: buildVersion, Date: buildDate, Commit: buildCommit},
		newLogger: func() *logger.Logger { return logger.NewClientLogger("icsctl") },
		newClient: adapter.NewHTTPRopClient,
		copyText:  clipboard.WriteAll,
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "icsctl",
		Short: "Command-line client of the ICS synchronization server",
		Long: `icsctl talks to an ICS server over its HTTP ROP API.

It registers and logs in principals, runs single ROPs against a session
and performs incremental folder synchronizations, keeping the state
between runs in a file.

Commands:
  register    Create an account and print its token
  login       Log in and print a token
  info        Show the server version and open sessions
  session     Open or close a ROP session
  rop         Run one ROP in a session
  sync        Download the changes of a folder`,
		Version:           c.build.Short(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&c.flags.Adapter.BaseURL, "server", "s", "", "server root URL (default http://localhost:8080)")
	pf.DurationVar(&c.flags.Adapter.RequestTimeout, "timeout", 0, "timeout of every request (default 30s)")
	pf.StringVarP(&c.flags.Adapter.HashKey, "hash-key", "k", "", "key signing ROP request bodies")
	pf.StringVarP(&c.flags.JSONFilePath, "config", "c", "", "JSON configuration file")
	pf.StringVarP(&c.token, "token", "t", "", "bearer token (env "+tokenEnv+")")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "log debug messages")

	root.AddCommand(
		newRegisterCmd(c),
		newLoginCmd(c),
		newInfoCmd(c),
		newVersionCmd(c),
		newSessionCmd(c),
		newRopCmd(c),
		newSyncCmd(c),
	)
	return root
}

// setup loads the configuration and builds the client before any command
// runs.
func (c *cli) setup(*cobra.Command, []string) error {
	cfg, err := config.GetClientConfig(&c.flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c.log = c.newLogger()
	if !c.verbose {
		c.log = c.log.AtLevel(zerolog.InfoLevel)
	}

	c.rops, err = c.newClient(cfg.Adapter, c.log)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	if c.token == "" {
		c.token = os.Getenv(tokenEnv)
	}
	if c.token != "" {
		c.rops.SetToken(c.token)
	}
	return nil
}

func (c *cli) requireToken() error {
	if c.token == "" {
		return errNoToken
	}
	return nil
}
