package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// SyncConfigure opens an incremental download of the folder behind hin.
// The change set is computed on the first FastTransferSourceGetBuffer, so
// a client can upload its state in between.
func (r *ropService) SyncConfigure(ctx context.Context, sid string, hin uint32, cfg ics.DownloadConfig) (uint32, error) {
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, folder, err := objectOf[ics.Folder](s, hin, ObjectFolder)
		if err != nil {
			return err
		}
		dc, err := ics.NewDownloadContext(ctx, obj.logon, folder, cfg)
		if err != nil {
			return err
		}
		hout, err = s.add(hin, ObjectICSDownCtx, dc)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.SyncConfigure").
			Uint32("handle", hin).
			Str("sync_type", cfg.SyncType.String()).
			Msg("failed to configure download")
		return 0, err
	}
	return hout, nil
}

func (r *ropService) SyncOpenCollector(ctx context.Context, sid string, hin uint32, contents bool) (uint32, error) {
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, folder, err := objectOf[ics.Folder](s, hin, ObjectFolder)
		if err != nil {
			return err
		}
		syncType := ics.SyncHierarchy
		if contents {
			syncType = ics.SyncContents
		}
		hout, err = s.add(hin, ObjectICSUpCtx, ics.NewUploadContext(obj.logon, folder, syncType))
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.SyncOpenCollector").
			Uint32("handle", hin).
			Msg("failed to open collector")
		return 0, err
	}
	return hout, nil
}

// uploadOf returns the upload context behind hin.
func uploadOf(s *Session, hin uint32) (*ics.UploadContext, error) {
	_, u, err := objectOf[*ics.UploadContext](s, hin, ObjectICSUpCtx)
	return u, err
}

// SyncImportMessageChange opens the imported message for writing below the
// collector. The message is stored by SaveChangesMessage.
func (r *ropService) SyncImportMessageChange(ctx context.Context, sid string, hin uint32, flags uint8, props mapi.TPropvalArray) (uint32, error) {
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		u, err := uploadOf(s, hin)
		if err != nil {
			return err
		}
		draft, err := u.ImportMessageChange(ctx, flags, props)
		if err != nil {
			return err
		}
		hout, err = s.add(hin, ObjectMessage, draft)
		return err
	})
	if err != nil {
		if !isSyncOutcome(err) {
			logger.FromContext(ctx).Err(err).
				Str("func", "ropService.SyncImportMessageChange").
				Uint32("handle", hin).
				Msg("failed to import message change")
		}
		return 0, err
	}
	return hout, nil
}

// isSyncOutcome reports whether err is an expected answer to a stale or
// conflicting import rather than a failure.
func isSyncOutcome(err error) bool {
	var code mapi.ErrorCode
	if !errors.As(err, &code) {
		return false
	}
	switch code {
	case mapi.SyncEIgnore, mapi.SyncEConflict, mapi.SyncENoParent:
		return true
	}
	return false
}

func (r *ropService) SyncImportReadStateChanges(ctx context.Context, sid string, hin uint32, stats []ics.ReadStat) error {
	err := r.withSession(ctx, sid, func(s *Session) error {
		u, err := uploadOf(s, hin)
		if err != nil {
			return err
		}
		return u.ImportReadStateChanges(ctx, stats)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.SyncImportReadStateChanges").
			Uint32("handle", hin).
			Int("count", len(stats)).
			Msg("failed to import read states")
	}
	return err
}

func (r *ropService) SyncImportHierarchyChange(ctx context.Context, sid string, hin uint32, hier, props mapi.TPropvalArray) (uint64, error) {
	var fid uint64
	err := r.withSession(ctx, sid, func(s *Session) error {
		u, err := uploadOf(s, hin)
		if err != nil {
			return err
		}
		fid, err = u.ImportHierarchyChange(ctx, hier, props)
		return err
	})
	if err != nil {
		if !isSyncOutcome(err) {
			logger.FromContext(ctx).Err(err).
				Str("func", "ropService.SyncImportHierarchyChange").
				Uint32("handle", hin).
				Msg("failed to import hierarchy change")
		}
		return 0, err
	}
	return fid, nil
}

func (r *ropService) SyncImportDeletes(ctx context.Context, sid string, hin uint32, flags uint8, props mapi.TPropvalArray) error {
	err := r.withSession(ctx, sid, func(s *Session) error {
		u, err := uploadOf(s, hin)
		if err != nil {
			return err
		}
		return u.ImportDeletes(ctx, flags, props)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.SyncImportDeletes").
			Uint32("handle", hin).
			Uint8("flags", flags).
			Msg("failed to import deletes")
	}
	return err
}

// SyncImportMessageMove moves a message the client moved locally. The
// returned message id is always 0.
func (r *ropService) SyncImportMessageMove(ctx context.Context, sid string, hin uint32, move MessageMove) (uint64, error) {
	var newer bool
	err := r.withSession(ctx, sid, func(s *Session) error {
		u, err := uploadOf(s, hin)
		if err != nil {
			return err
		}
		newer, err = u.ImportMessageMove(ctx, move.SourceFolder, move.SourceMessage,
			move.ChangeList, move.DestMessage, move.ChangeNumber)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.SyncImportMessageMove").
			Uint32("handle", hin).
			Msg("failed to import message move")
		return 0, err
	}
	if newer {
		return 0, mapi.SyncWClientChangeNewer
	}
	return 0, nil
}

// stateOf returns the change-tracking state of a download or an upload
// together with whether the context already started.
func stateOf(obj *object) (*ics.State, bool, error) {
	switch v := obj.value.(type) {
	case *ics.DownloadContext:
		return v.State(), v.Started(), nil
	case *ics.UploadContext:
		return v.State(), v.Started(), nil
	}
	return nil, false, fmt.Errorf("%w: %s", ErrWrongObject, obj.typ)
}

// SyncGetTransferState returns a FastTransfer download of the current
// state of a synchronization context.
func (r *ropService) SyncGetTransferState(ctx context.Context, sid string, hin uint32) (uint32, error) {
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, err := s.get(hin)
		if err != nil {
			return err
		}
		state, _, err := stateOf(obj)
		if err != nil {
			return err
		}
		fd := ics.NewFastDownContext(obj.logon)
		if err := fd.MakeState(ctx, state); err != nil {
			return err
		}
		hout, err = s.add(hin, ObjectFastDownCtx, fd)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.SyncGetTransferState").
			Uint32("handle", hin).
			Msg("failed to get transfer state")
		return 0, err
	}
	return hout, nil
}

// withState runs fn on the state of the synchronization context behind
// hin. States can only be uploaded before the context started.
func (r *ropService) withState(ctx context.Context, sid string, hin uint32, fn func(*ics.State) error) error {
	return r.withSession(ctx, sid, func(s *Session) error {
		obj, err := s.get(hin)
		if err != nil {
			return err
		}
		state, started, err := stateOf(obj)
		if err != nil {
			return err
		}
		if started {
			return mapi.EcError
		}
		return fn(state)
	})
}

// SyncUploadStateStreamBegin starts uploading one state set. The announced
// size is not enforced.
func (r *ropService) SyncUploadStateStreamBegin(ctx context.Context, sid string, hin uint32, tag mapi.PropTag, size uint32) error {
	err := r.withState(ctx, sid, hin, func(st *ics.State) error {
		return st.BeginStateStream(tag)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.SyncUploadStateStreamBegin").
			Uint32("handle", hin).
			Str("tag", tag.String()).
			Uint32("size", size).
			Msg("failed to begin state stream")
	}
	return err
}

func (r *ropService) SyncUploadStateStreamContinue(ctx context.Context, sid string, hin uint32, data []byte) error {
	err := r.withState(ctx, sid, hin, func(st *ics.State) error {
		return st.ContinueStateStream(data)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.SyncUploadStateStreamContinue").
			Uint32("handle", hin).
			Int("size", len(data)).
			Msg("failed to continue state stream")
	}
	return err
}

func (r *ropService) SyncUploadStateStreamEnd(ctx context.Context, sid string, hin uint32) error {
	err := r.withState(ctx, sid, hin, func(st *ics.State) error {
		return st.EndStateStream()
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.SyncUploadStateStreamEnd").
			Uint32("handle", hin).
			Msg("failed to end state stream")
	}
	return err
}
