package client

import (
	"context"
	"fmt"
	"io"

	"github.com/MKhiriev/go-ics-sync/internal/fxstream"
	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/models"
)

// maxEmptyBuffers bounds how many empty partial buffers are tolerated in a
// row before a transfer is abandoned.
const maxEmptyBuffers = 3

// stream pulls buffers from a FastTransfer source handle until the server
// reports the end of the stream. Every buffer is written to out and fed to
// a parser that counts change headers.
func (d *download) stream(ctx context.Context, handle uint32, out io.Writer, report ProgressFunc) (int64, Counts, error) {
	size := d.opts.BufferSize
	if size == 0 {
		size = DefaultBufferSize
	}
	req := models.RopRequest{Handle: handle, Requested: ics.BufferSizeUseMax, MaxSize: size}

	var (
		total  int64
		counts Counts
		empty  int
	)
	parser := fxstream.NewParser()
	for {
		if err := ctx.Err(); err != nil {
			return total, counts, err
		}
		resp, err := d.rops.Call(ctx, d.sid, "FastTransferSourceGetBuffer", req)
		if err != nil {
			return total, counts, fmt.Errorf("FastTransferSourceGetBuffer: %w", err)
		}
		status := ics.TransferStatus(resp.Status)
		if status == ics.TransferError {
			return total, counts, fmt.Errorf("FastTransferSourceGetBuffer: transfer status %s", status)
		}

		if len(resp.Data) > 0 {
			empty = 0
			if _, err = out.Write(resp.Data); err != nil {
				return total, counts, fmt.Errorf("write stream: %w", err)
			}
			total += int64(len(resp.Data))
			parser.Feed(resp.Data)
			if err = counts.drain(parser); err != nil {
				return total, counts, err
			}
		} else if status != ics.TransferDone {
			if empty++; empty >= maxEmptyBuffers {
				return total, counts, ErrNoProgress
			}
		}

		if report != nil {
			report(Progress{
				Status: status,
				Step:   resp.Progress,
				Steps:  resp.Total,
				Bytes:  total,
				Counts: counts,
			})
		}
		if status == ics.TransferDone {
			return total, counts, parser.Close()
		}
	}
}

// drain consumes every complete atom the parser holds.
func (c *Counts) drain(p *fxstream.Parser) error {
	for {
		atom, ok, err := p.Next()
		if err != nil {
			return fmt.Errorf("parse stream: %w", err)
		}
		if !ok {
			return nil
		}
		switch atom.Marker {
		case fxstream.IncrSyncChg, fxstream.IncrSyncChgPartial:
			c.Changes++
		case fxstream.IncrSyncDel:
			c.Deletions++
		case fxstream.IncrSyncRead:
			c.ReadStates++
		}
	}
}
