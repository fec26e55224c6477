package main

import (
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/tui"
	"github.com/spf13/cobra"
)

func newInfoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the server version and open sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := c.rops.ServerInfo(cmd.Context())
			if err != nil {
				return fmt.Errorf("server info: %w", err)
			}
			fmt.Fprintln(c.out, tui.RenderInfo(c.build, &info))
			return nil
		},
	}
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the build of icsctl",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(c.out, tui.RenderInfo(c.build, nil))
		},
	}
}
