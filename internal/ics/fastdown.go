package ics

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/fxstream"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// FolderContent is a folder loaded for a FastTransfer copy: its
// properties, the ids of its messages and, recursively, its subfolders.
type FolderContent struct {
	ID    uint64
	Props mapi.TPropvalArray

	WithFAI        bool
	WithNormal     bool
	WithSubfolders bool

	FAIMessages    []uint64
	NormalMessages []uint64
	Subfolders     []*FolderContent
}

// storeInternalTags are kept by the store and never travel in a copy.
var storeInternalTags = []mapi.PropTag{
	mapi.PidTagMid,
	mapi.PidTagFolderID,
	mapi.PidTagParentFolderID,
	mapi.PidTagChangeNumber,
}

func stripInternal(props mapi.TPropvalArray) mapi.TPropvalArray {
	out := props.Clone()
	for _, tag := range storeInternalTags {
		out.Erase(tag)
	}
	return out
}

// LoadFolderContent loads a folder for a copy. Folders of another replica
// are represented by a MetaTagNewFXFolder reference only. Subfolders are
// always loaded with their messages and subfolders.
func LoadFolderContent(ctx context.Context, logon *Logon, fid uint64, fai, normal, sub bool) (*FolderContent, error) {
	store := logon.Store
	if !logon.IsOwner() {
		perm, err := logon.permission(ctx, fid)
		if err != nil {
			return nil, fmt.Errorf("check permission of folder %#x: %w", fid, err)
		}
		if perm&(mapi.RightsReadAny|mapi.RightsOwner) == 0 {
			return nil, mapi.EcAccessDenied
		}
	}
	fc := &FolderContent{ID: fid, WithFAI: fai, WithNormal: normal, WithSubfolders: sub}
	if replid := mapi.ReplID(fid); replid != 1 {
		info, err := folderReplicaInfo(logon, fid)
		if err != nil {
			return nil, err
		}
		fc.Props = mapi.TPropvalArray{{Tag: mapi.MetaTagNewFXFolder, Value: info}}
		return fc, nil
	}
	props, err := store.FolderProps(ctx, fid, nil)
	if err != nil {
		return nil, fmt.Errorf("read folder %#x: %w", fid, err)
	}
	fc.Props = stripInternal(props)
	if fai || normal {
		reader := ""
		if !logon.Private {
			reader = logon.Username
		}
		entries, err := store.Contents(ctx, fid, reader)
		if err != nil {
			return nil, fmt.Errorf("list contents of %#x: %w", fid, err)
		}
		for _, e := range entries {
			switch {
			case e.Associated && fai:
				fc.FAIMessages = append(fc.FAIMessages, e.MID)
			case !e.Associated && normal:
				fc.NormalMessages = append(fc.NormalMessages, e.MID)
			}
		}
	}
	if !sub {
		return fc, nil
	}
	children, err := store.Subfolders(ctx, fid)
	if err != nil {
		return nil, fmt.Errorf("list subfolders of %#x: %w", fid, err)
	}
	for _, child := range children {
		cfc, err := LoadFolderContent(ctx, logon, child.FID, true, true, true)
		if err != nil {
			return nil, err
		}
		fc.Subfolders = append(fc.Subfolders, cfc)
	}
	return fc, nil
}

// folderReplicaInfo encodes where a folder of another replica lives.
func folderReplicaInfo(logon *Logon, fid uint64) ([]byte, error) {
	g, ok := logon.ReplicaGUID(mapi.ReplID(fid))
	if !ok {
		return nil, mapi.EcNotFound
	}
	push := mapi.NewPush(0)
	ltid := mapi.LongTermID{GUID: g, GlobalCounter: mapi.GCArray(mapi.GCValue(fid))}
	essdn := fmt.Sprintf("/o=go-ics-sync/ou=Exchange Administrative Group (FYDIBOHF23SPDLT)/cn=Configuration/cn=Servers/cn=%s", g)
	for _, step := range []func() error{
		func() error { return push.Uint32(0) },
		func() error { return push.Uint32(0) },
		func() error { return push.LongTermID(ltid) },
		func() error { return push.Uint32(1) },
		func() error { return push.Uint32(1) },
		func() error { return push.Str(essdn) },
	} {
		if err := step(); err != nil {
			return nil, fmt.Errorf("encode replica info: %w", err)
		}
	}
	return push.Bytes(), nil
}

// FastDownContext produces the stream of a FastTransfer copy or of a
// transfer state, handed out through GetBuffer.
type FastDownContext struct {
	logon   *Logon
	names   *nameCache
	chunker chunker
}

func NewFastDownContext(logon *Logon) *FastDownContext {
	return &FastDownContext{logon: logon, names: newNameCache(logon.Store)}
}

// Done reports whether the last buffer was handed out.
func (f *FastDownContext) Done() bool { return f.chunker.done() }

// GetBuffer returns the next piece of the stream.
func (f *FastDownContext) GetBuffer(requested, maxSize, ropLeft uint16) (Chunk, error) {
	return f.chunker.next(requested, maxSize, ropLeft)
}

func (f *FastDownContext) build(ctx context.Context, fn string, write func(w *fxstream.Writer) error) error {
	w := fxstream.NewWriter(f.names.lookup)
	if err := write(w); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "FastDownContext."+fn).
			Msg("failed to build transfer stream")
		return err
	}
	f.chunker.reset(w.Stream())
	return nil
}

func (f *FastDownContext) writeMessage(ctx context.Context, w *fxstream.Writer, mid uint64) error {
	m, err := f.logon.Store.ReadMessage(ctx, mid)
	if err != nil {
		return fmt.Errorf("read message %#x: %w", mid, err)
	}
	fai, _ := m.Props.Bool(mapi.PrAssociated)
	m.Props = stripInternal(m.Props)
	if err := f.names.resolve(ctx, f.names.collectMessage(nil, m)); err != nil {
		return err
	}
	return w.Message(f.names.knownMessage(m), fai)
}

func (f *FastDownContext) writeFolderContent(ctx context.Context, w *fxstream.Writer, fc *FolderContent) error {
	if err := f.names.resolve(ctx, f.names.collect(nil, fc.Props)); err != nil {
		return err
	}
	if err := w.PropList(f.names.known(fc.Props)); err != nil {
		return err
	}
	if fc.Props.Has(mapi.MetaTagNewFXFolder) {
		return nil
	}
	if fc.WithFAI {
		if err := w.DelProp(mapi.PrFolderAssociatedContents); err != nil {
			return err
		}
		for _, mid := range fc.FAIMessages {
			if err := f.writeMessage(ctx, w, mid); err != nil {
				return err
			}
		}
	}
	if fc.WithNormal {
		if err := w.DelProp(mapi.PrContainerContents); err != nil {
			return err
		}
		for _, mid := range fc.NormalMessages {
			if err := f.writeMessage(ctx, w, mid); err != nil {
				return err
			}
		}
	}
	if !fc.WithSubfolders {
		return nil
	}
	if err := w.DelProp(mapi.PrContainerHierarchy); err != nil {
		return err
	}
	for _, sub := range fc.Subfolders {
		if err := w.Marker(fxstream.StartSubFld); err != nil {
			return err
		}
		if err := f.writeFolderContent(ctx, w, sub); err != nil {
			return err
		}
		if err := w.Marker(fxstream.EndFolder); err != nil {
			return err
		}
		w.Step()
	}
	return nil
}

// MakeTopFolder streams a whole folder framed by StartTopFld and
// EndFolder.
func (f *FastDownContext) MakeTopFolder(ctx context.Context, fc *FolderContent) error {
	return f.build(ctx, "MakeTopFolder", func(w *fxstream.Writer) error {
		if err := w.Marker(fxstream.StartTopFld); err != nil {
			return err
		}
		if err := f.writeFolderContent(ctx, w, fc); err != nil {
			return err
		}
		if err := w.Marker(fxstream.EndFolder); err != nil {
			return err
		}
		w.Step()
		return nil
	})
}

// MakeFolderContent streams the content of a folder without framing.
func (f *FastDownContext) MakeFolderContent(ctx context.Context, fc *FolderContent) error {
	return f.build(ctx, "MakeFolderContent", func(w *fxstream.Writer) error {
		return f.writeFolderContent(ctx, w, fc)
	})
}

// MakeMessageList streams whole messages.
func (f *FastDownContext) MakeMessageList(ctx context.Context, mids []uint64) error {
	return f.build(ctx, "MakeMessageList", func(w *fxstream.Writer) error {
		for _, mid := range mids {
			if err := f.writeMessage(ctx, w, mid); err != nil {
				return err
			}
		}
		return nil
	})
}

// MakeMessageContent streams the properties and children of one message.
func (f *FastDownContext) MakeMessageContent(ctx context.Context, m *mapi.MessageContent) error {
	return f.build(ctx, "MakeMessageContent", func(w *fxstream.Writer) error {
		if err := f.names.resolve(ctx, f.names.collectMessage(nil, m)); err != nil {
			return err
		}
		if err := w.MessageContent(f.names.knownMessage(m), true); err != nil {
			return err
		}
		w.Step()
		return nil
	})
}

// MakeAttachmentContent streams the properties and embedded message of an
// attachment.
func (f *FastDownContext) MakeAttachmentContent(ctx context.Context, a *mapi.AttachmentContent) error {
	return f.build(ctx, "MakeAttachmentContent", func(w *fxstream.Writer) error {
		ids := f.names.collect(nil, a.Props)
		ids = f.names.collectMessage(ids, a.Embedded)
		if err := f.names.resolve(ctx, ids); err != nil {
			return err
		}
		known := &mapi.AttachmentContent{
			Props:    f.names.known(a.Props),
			Embedded: f.names.knownMessage(a.Embedded),
		}
		if err := w.AttachmentContent(known, true); err != nil {
			return err
		}
		w.Step()
		return nil
	})
}

// MakeState streams a change-tracking state between IncrSyncStateBegin and
// IncrSyncStateEnd.
func (f *FastDownContext) MakeState(ctx context.Context, s *State) error {
	return f.build(ctx, "MakeState", func(w *fxstream.Writer) error {
		props, err := s.Serialize()
		if err != nil {
			return err
		}
		if err := w.Marker(fxstream.IncrSyncStateBegin); err != nil {
			return err
		}
		if err := w.PropList(props); err != nil {
			return err
		}
		if err := w.Marker(fxstream.IncrSyncStateEnd); err != nil {
			return err
		}
		w.Step()
		return nil
	})
}
