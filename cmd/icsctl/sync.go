package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/MKhiriev/go-ics-sync/internal/client"
	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/internal/tui"
	"github.com/spf13/cobra"
)

type syncFlags struct {
	opts      client.DownloadOptions
	statePath string
	outPath   string
	plain     bool
}

func newSyncCmd(c *cli) *cobra.Command {
	var f syncFlags
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download the changes of a folder",
		Long: `Download the changes of a folder since the last run.

The change stream is written to --out. With --state, the state saved by
the previous run is uploaded first and the new state is written back to
the same file, so repeated runs only fetch what changed in between.

Examples:
  # Full synchronization of the inbox
  icsctl sync --out inbox.fxs

  # Incremental synchronization of the folder hierarchy
  icsctl sync --folder 9 --hierarchy --state hierarchy.state --out tree.fxs

  # Public folders, without the progress view
  icsctl sync --public --folder 2 --plain --out public.fxs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireToken(); err != nil {
				return err
			}
			return c.runSync(cmd.Context(), f)
		},
	}

	fl := cmd.Flags()
	fl.Uint64Var(&f.opts.FolderID, "folder", mapi.PrivateFIDInbox, "folder id")
	fl.BoolVar(&f.opts.Public, "public", false, "log on to the public store")
	fl.Uint32Var(&f.opts.AccountID, "account", 0, "mailbox to open (default: own)")
	fl.BoolVar(&f.opts.Hierarchy, "hierarchy", false, "synchronize subfolders instead of messages")
	fl.Uint16Var(&f.opts.SyncFlags, "sync-flags", ics.SyncFlagUnicode|ics.SyncFlagNormal|ics.SyncFlagReadState, "SyncConfigure flags")
	fl.Uint32Var(&f.opts.ExtraFlags, "extra-flags", 0, "SyncConfigure extra flags")
	fl.Uint8Var(&f.opts.SendOptions, "send-options", ics.SendUnicode, "SyncConfigure send options")
	fl.Uint16Var(&f.opts.BufferSize, "buffer", client.DefaultBufferSize, "transfer buffer size")
	fl.StringVar(&f.statePath, "state", "", "file holding the state between runs")
	fl.StringVarP(&f.outPath, "out", "o", "changes.fxs", "file the change stream is written to")
	fl.BoolVar(&f.plain, "plain", false, "print progress lines instead of the progress view")
	return cmd
}

func (c *cli) runSync(ctx context.Context, f syncFlags) error {
	if f.statePath != "" {
		state, err := os.ReadFile(f.statePath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read state: %w", err)
		}
		f.opts.State = state
	}

	out, err := os.Create(f.outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	app := client.NewApp(c.rops, c.log)
	job := func(ctx context.Context, report client.ProgressFunc) (client.Result, error) {
		return app.Download(ctx, f.opts, out, report)
	}

	var res client.Result
	if f.plain {
		res, err = job(ctx, c.printProgress)
	} else {
		res, err = tui.RunTransfer(ctx, fmt.Sprintf("Synchronizing folder %#x", f.opts.FolderID), job)
	}
	if err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	if f.statePath != "" {
		if err = os.WriteFile(f.statePath, res.State, 0o600); err != nil {
			return fmt.Errorf("write state: %w", err)
		}
	}

	fmt.Fprintf(c.out, "%d changes, %d deletions, %d read states, %d bytes\n",
		res.Changes, res.Deletions, res.ReadStates, res.Bytes)
	return nil
}

func (c *cli) printProgress(p client.Progress) {
	fmt.Fprintf(c.errOut, "%d/%d %s %d bytes\n", p.Step, p.Steps, p.Status, p.Bytes)
}
