package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Open or close a ROP session",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "open",
			Short: "Open a session and print its id",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := c.requireToken(); err != nil {
					return err
				}
				sid, err := c.rops.OpenSession(cmd.Context())
				if err != nil {
					return fmt.Errorf("open session: %w", err)
				}
				fmt.Fprintln(c.out, sid)
				return nil
			},
		},
		&cobra.Command{
			Use:   "close [session]",
			Short: "Close a session and release its handles",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.requireToken(); err != nil {
					return err
				}
				if err := c.rops.CloseSession(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("close session: %w", err)
				}
				return nil
			},
		},
	)
	return cmd
}
