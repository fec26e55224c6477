package client

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/MKhiriev/go-ics-sync/internal/adapter"
	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/models"
)

// DefaultBufferSize is the transfer buffer size asked for when
// DownloadOptions.BufferSize is zero.
const DefaultBufferSize uint16 = 0x7000

// DownloadOptions selects what to synchronize.
type DownloadOptions struct {
	// Public logs on to the public store of the caller's domain.
	Public bool
	// AccountID names the mailbox to open. Zero opens the caller's own.
	AccountID uint32
	FolderID  uint64
	// Hierarchy synchronizes the subfolders instead of the messages.
	Hierarchy   bool
	SyncFlags   uint16
	ExtraFlags  uint32
	SendOptions uint8
	BufferSize  uint16
	// State is the state stream saved after the previous run. Empty means
	// a full synchronization.
	State []byte
}

// Progress is reported after every buffer of the change stream.
type Progress struct {
	Status ics.TransferStatus
	// Step and Steps are the server's position in the stream.
	Step, Steps uint16
	Bytes       int64
	Counts
}

// Counts tallies the change headers seen in a stream.
type Counts struct {
	Changes    int
	Deletions  int
	ReadStates int
}

// Result describes a finished download.
type Result struct {
	Bytes int64
	Counts
	// State is the state stream to pass to the next run.
	State []byte
}

// App runs synchronization jobs against one server.
type App struct {
	rops   adapter.RopClient
	logger *logger.Logger
}

// NewApp returns an App that talks to the server through rops. The caller
// is expected to have logged rops in.
func NewApp(rops adapter.RopClient, logger *logger.Logger) *App {
	return &App{rops: rops, logger: logger}
}

// Download opens a session, runs the download and closes the session.
func (a *App) Download(ctx context.Context, opts DownloadOptions, out io.Writer, report ProgressFunc) (Result, error) {
	sid, err := a.rops.OpenSession(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if err := a.rops.CloseSession(context.WithoutCancel(ctx), sid); err != nil {
			a.logger.Warn().Err(err).Str("session", sid).Msg("failed to close session")
		}
	}()

	run := &download{
		rops:   a.rops,
		sid:    sid,
		opts:   opts,
		report: report,
		logger: a.logger,
	}
	return run.run(ctx, out)
}

// download is one run of the ROP sequence inside a session.
type download struct {
	rops    adapter.RopClient
	sid     string
	opts    DownloadOptions
	report  ProgressFunc
	logger  *logger.Logger
	handles []uint32
}

func (d *download) run(ctx context.Context, out io.Writer) (res Result, err error) {
	defer d.releaseAll(ctx)

	logon, err := d.open(ctx, "Logon", models.RopRequest{
		Private:   !d.opts.Public,
		AccountID: d.opts.AccountID,
	})
	if err != nil {
		return Result{}, err
	}
	folder, err := d.open(ctx, "OpenFolder", models.RopRequest{Handle: logon, FolderID: d.opts.FolderID})
	if err != nil {
		return Result{}, err
	}

	syncType := ics.SyncContents
	if d.opts.Hierarchy {
		syncType = ics.SyncHierarchy
	}
	sync, err := d.open(ctx, "SyncConfigure", models.RopRequest{
		Handle:      folder,
		SyncType:    uint8(syncType),
		SyncFlags:   d.opts.SyncFlags,
		ExtraFlags:  d.opts.ExtraFlags,
		SendOptions: d.opts.SendOptions,
	})
	if err != nil {
		return Result{}, err
	}

	if len(d.opts.State) > 0 {
		if err = uploadState(ctx, d.rops, d.sid, sync, d.opts.State); err != nil {
			return Result{}, err
		}
	}

	res.Bytes, res.Counts, err = d.stream(ctx, sync, out, d.report)
	if err != nil {
		return Result{}, err
	}

	state, err := d.open(ctx, "SyncGetTransferState", models.RopRequest{Handle: sync})
	if err != nil {
		return Result{}, err
	}
	var buf bytes.Buffer
	if _, _, err = d.stream(ctx, state, &buf, nil); err != nil {
		return Result{}, fmt.Errorf("read state: %w", err)
	}
	res.State = buf.Bytes()

	d.logger.Debug().
		Str("session", d.sid).
		Uint64("folder_id", d.opts.FolderID).
		Int64("bytes", res.Bytes).
		Int("changes", res.Changes).
		Int("deletions", res.Deletions).
		Msg("download finished")
	return res, nil
}

// open runs a ROP that produces a handle and remembers it for release.
func (d *download) open(ctx context.Context, rop string, req models.RopRequest) (uint32, error) {
	resp, err := d.rops.Call(ctx, d.sid, rop, req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", rop, err)
	}
	d.handles = append(d.handles, resp.Handle)
	return resp.Handle, nil
}

// releaseAll frees the handles in reverse order of creation.
func (d *download) releaseAll(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(d.handles) - 1; i >= 0; i-- {
		if _, err := d.rops.Call(ctx, d.sid, "Release", models.RopRequest{Handle: d.handles[i]}); err != nil {
			d.logger.Warn().Err(err).Uint32("handle", d.handles[i]).Msg("failed to release handle")
		}
	}
	d.handles = nil
}
