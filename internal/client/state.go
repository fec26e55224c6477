package client

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/adapter"
	"github.com/MKhiriev/go-ics-sync/internal/fxstream"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/models"
)

// statePiece is the largest piece sent with one
// SyncUploadStateStreamContinue.
const statePiece = 0x4000

// StateSet is one property of a saved state stream.
type StateSet struct {
	Tag  mapi.PropTag
	Data []byte
}

// ParseState splits a state stream, as returned by SyncGetTransferState,
// into its sets. The stream must be framed by the state markers.
func ParseState(state []byte) ([]StateSet, error) {
	atoms, err := fxstream.ReadAll(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadState, err)
	}
	if len(atoms) < 2 || atoms[0].Marker != fxstream.IncrSyncStateBegin ||
		atoms[len(atoms)-1].Marker != fxstream.IncrSyncStateEnd {
		return nil, fmt.Errorf("%w: missing state markers", ErrBadState)
	}

	sets := make([]StateSet, 0, len(atoms)-2)
	for _, atom := range atoms[1 : len(atoms)-1] {
		if atom.IsMarker() {
			return nil, fmt.Errorf("%w: unexpected %s", ErrBadState, atom)
		}
		data, ok := atom.Prop.Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not binary", ErrBadState, atom.Prop.Tag)
		}
		sets = append(sets, StateSet{Tag: atom.Prop.Tag, Data: data})
	}
	return sets, nil
}

// uploadState sends every set of a saved state to a synchronization
// context.
func uploadState(ctx context.Context, rops adapter.RopClient, sid string, handle uint32, state []byte) error {
	sets, err := ParseState(state)
	if err != nil {
		return err
	}
	for _, set := range sets {
		if _, err = rops.Call(ctx, sid, "SyncUploadStateStreamBegin", models.RopRequest{
			Handle:    handle,
			StateTag:  uint32(set.Tag),
			StateSize: uint32(len(set.Data)),
		}); err != nil {
			return fmt.Errorf("SyncUploadStateStreamBegin %s: %w", set.Tag, err)
		}
		for off := 0; off < len(set.Data); off += statePiece {
			end := min(off+statePiece, len(set.Data))
			if _, err = rops.Call(ctx, sid, "SyncUploadStateStreamContinue", models.RopRequest{
				Handle: handle,
				Data:   set.Data[off:end],
			}); err != nil {
				return fmt.Errorf("SyncUploadStateStreamContinue %s: %w", set.Tag, err)
			}
		}
		if _, err = rops.Call(ctx, sid, "SyncUploadStateStreamEnd", models.RopRequest{Handle: handle}); err != nil {
			return fmt.Errorf("SyncUploadStateStreamEnd %s: %w", set.Tag, err)
		}
	}
	return nil
}
