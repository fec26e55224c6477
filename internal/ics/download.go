package ics

import (
	"context"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-ics-sync/internal/fxstream"
	"github.com/MKhiriev/go-ics-sync/internal/idset"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// Synchronization flags of SyncConfigure.
const (
	SyncFlagUnicode                 uint16 = 0x0001
	SyncFlagNoDeletions             uint16 = 0x0002
	SyncFlagIgnoreNoLongerInScope   uint16 = 0x0004
	SyncFlagReadState               uint16 = 0x0008
	SyncFlagFAI                     uint16 = 0x0010
	SyncFlagNormal                  uint16 = 0x0020
	SyncFlagOnlySpecifiedProperties uint16 = 0x0080
	SyncFlagNoForeignIdentifiers    uint16 = 0x0100
	SyncFlagBestBody                uint16 = 0x2000
	SyncFlagIgnoreSpecifiedOnFAI    uint16 = 0x4000
	SyncFlagProgress                uint16 = 0x8000
)

// Extra flags of SyncConfigure: identifiers added to every change header.
const (
	SyncExtraEID                 uint32 = 0x00000001
	SyncExtraMessageSize         uint32 = 0x00000002
	SyncExtraCN                  uint32 = 0x00000004
	SyncExtraOrderByDeliveryTime uint32 = 0x00000008
)

// Send options shared by SyncConfigure and the FastTransfer copy ROPs.
const (
	SendUnicode      uint8 = 0x01
	SendUseCpid      uint8 = 0x02
	SendRecoverMode  uint8 = 0x04
	SendForceUnicode uint8 = 0x08
	SendPartialItem  uint8 = 0x10
	SendReserved1    uint8 = 0x20
	SendReserved2    uint8 = 0x40

	sendKnown = SendUnicode | SendUseCpid | SendRecoverMode | SendForceUnicode |
		SendPartialItem | SendReserved1 | SendReserved2
)

// CheckSendOptions rejects unknown send options and the combination of
// unicode, code page and recovery mode.
func CheckSendOptions(opts uint8) error {
	if opts&^sendKnown != 0 {
		return mapi.EcInvalidParam
	}
	if opts&SendUnicode != 0 && opts&SendUseCpid != 0 && opts&SendRecoverMode != 0 {
		return mapi.EcInvalidParam
	}
	return nil
}

// DownloadConfig holds the parameters of SyncConfigure.
type DownloadConfig struct {
	SyncType    SyncType
	SendOptions uint8
	SyncFlags   uint16
	// Restriction limits a contents synchronization to matching messages.
	Restriction mapi.Restriction
	ExtraFlags  uint32
	// PropTags are the properties to leave out or, with
	// SyncFlagOnlySpecifiedProperties, the only ones to send.
	PropTags []mapi.PropTag
}

// bodyRewrite drops PR_BODY from an exclusion list that does not also
// exclude PR_HTML, so that at least one body format is always sent.
func bodyRewrite(flags uint16, tags []mapi.PropTag) []mapi.PropTag {
	if flags&SyncFlagOnlySpecifiedProperties != 0 {
		return tags
	}
	i := slices.Index(tags, mapi.PrBody)
	if i < 0 || slices.Contains(tags, mapi.PrHTML) {
		return tags
	}
	return slices.Delete(slices.Clone(tags), i, i+1)
}

// DownloadContext produces the incremental changes of a folder for a
// client holding the state uploaded into State.
type DownloadContext struct {
	logon   *Logon
	folder  Folder
	cfg     DownloadConfig
	state   *State
	names   *nameCache
	started bool
	chunker chunker
}

// NewDownloadContext validates a SyncConfigure request and returns the
// context for it.
func NewDownloadContext(ctx context.Context, logon *Logon, folder Folder, cfg DownloadConfig) (*DownloadContext, error) {
	if cfg.SyncType != SyncContents && cfg.SyncType != SyncHierarchy {
		return nil, mapi.EcInvalidParam
	}
	if err := CheckSendOptions(cfg.SendOptions); err != nil {
		return nil, err
	}
	if cfg.SyncType == SyncHierarchy && cfg.Restriction != nil {
		return nil, mapi.EcInvalidParam
	}
	if cfg.SyncType == SyncContents && !logon.IsOwner() {
		perm, err := logon.permission(ctx, folder.ID)
		if err != nil {
			logger.FromContext(ctx).Err(err).
				Str("func", "NewDownloadContext").
				Uint64("folder_id", folder.ID).
				Msg("failed to check folder permission")
			return nil, fmt.Errorf("check permission: %w", err)
		}
		if perm&(mapi.RightsOwner|mapi.RightsReadAny) == 0 {
			return nil, mapi.EcAccessDenied
		}
	}
	cfg.PropTags = bodyRewrite(cfg.SyncFlags, cfg.PropTags)
	typ := ContentsDown
	if cfg.SyncType == SyncHierarchy {
		typ = HierarchyDown
	}
	return &DownloadContext{
		logon:  logon,
		folder: folder,
		cfg:    cfg,
		state:  NewState(typ, logon),
		names:  newNameCache(logon.Store),
	}, nil
}

func (d *DownloadContext) SyncType() SyncType { return d.cfg.SyncType }

func (d *DownloadContext) ParentFolder() Folder { return d.folder }

// PropTags returns the property list after the body rewrite.
func (d *DownloadContext) PropTags() []mapi.PropTag { return d.cfg.PropTags }

// State returns the state the client uploaded before the first buffer
// and the state after the transfer once it has been materialized.
func (d *DownloadContext) State() *State { return d.state }

// Started reports whether the change set was materialized.
func (d *DownloadContext) Started() bool { return d.started }

// Done reports whether the last buffer was handed out.
func (d *DownloadContext) Done() bool { return d.chunker.done() }

// GetBuffer returns the next piece of the transfer, materializing the
// change set on the first call.
func (d *DownloadContext) GetBuffer(ctx context.Context, requested, maxSize, ropLeft uint16) (Chunk, error) {
	if !d.started {
		if err := d.MakeSync(ctx); err != nil {
			return Chunk{Status: TransferError}, err
		}
	}
	return d.chunker.next(requested, maxSize, ropLeft)
}

// MakeSync computes the changes between the uploaded state and the
// folder, writes them as an incremental change stream and replaces the
// state with the one the client will hold afterwards.
func (d *DownloadContext) MakeSync(ctx context.Context) error {
	w := fxstream.NewWriter(d.names.lookup)
	var err error
	if d.cfg.SyncType == SyncContents {
		err = d.contentsSync(ctx, w)
	} else {
		err = d.hierarchySync(ctx, w)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "DownloadContext.MakeSync").
			Uint64("folder_id", d.folder.ID).
			Str("sync_type", d.cfg.SyncType.String()).
			Msg("failed to build change stream")
		return err
	}
	if err := d.writeState(w); err != nil {
		return err
	}
	d.chunker.reset(w.Stream())
	d.started = true
	return nil
}

func (d *DownloadContext) writeState(w *fxstream.Writer) error {
	props, err := d.state.Serialize()
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
	if err := w.Marker(fxstream.IncrSyncEnd); err != nil {
		return err
	}
	w.Step()
	return nil
}

func (d *DownloadContext) newSet() *idset.IDSet {
	set := idset.New(idset.KindReplID)
	set.RegisterMapping(d.logon.ReplicaGUID)
	return set
}

// filterTag reports whether a property passes the configured list.
func (d *DownloadContext) filterTag(tag mapi.PropTag, fai bool) bool {
	if fai && d.cfg.SyncFlags&SyncFlagIgnoreSpecifiedOnFAI != 0 {
		return true
	}
	listed := slices.ContainsFunc(d.cfg.PropTags, func(t mapi.PropTag) bool { return t.ID() == tag.ID() })
	if d.cfg.SyncFlags&SyncFlagOnlySpecifiedProperties != 0 {
		return listed
	}
	return !listed
}

var messageHeaderTags = []mapi.PropTag{
	mapi.PrSourceKey,
	mapi.PrLastModificationTime,
	mapi.PrChangeKey,
	mapi.PrPredecessorChangeList,
	mapi.PrAssociated,
	mapi.PidTagMid,
	mapi.PrMessageSize,
	mapi.PrMessageSizeExtended,
	mapi.PidTagChangeNumber,
	mapi.PidTagFolderID,
}

// messageBody returns the message properties and children that follow
// IncrSyncMessage.
func (d *DownloadContext) messageBody(m *mapi.MessageContent, fai bool) *mapi.MessageContent {
	out := &mapi.MessageContent{
		Recipients:     m.Recipients,
		Attachments:    m.Attachments,
		HasRecipients:  true,
		HasAttachments: true,
	}
	for _, pv := range m.Props {
		if slices.Contains(messageHeaderTags, pv.Tag) || !d.filterTag(pv.Tag, fai) {
			continue
		}
		out.Props = append(out.Props, pv)
	}
	if d.cfg.SyncFlags&SyncFlagBestBody != 0 && out.Props.Has(mapi.PrHTML) {
		out.Props.Erase(mapi.PrBody)
	}
	if !d.filterTag(mapi.PrMessageRecipients, fai) {
		out.Recipients, out.HasRecipients = nil, false
	}
	if !d.filterTag(mapi.PrMessageAttachments, fai) {
		out.Attachments, out.HasAttachments = nil, false
	}
	return out
}

func (d *DownloadContext) messageHeader(e MessageEntry, m *mapi.MessageContent) mapi.TPropvalArray {
	var h mapi.TPropvalArray
	key, ok := m.Props.Binary(mapi.PrSourceKey)
	if !ok {
		key, _ = d.logon.SourceKey(e.MID)
	}
	h.Set(mapi.PrSourceKey, key)
	for _, tag := range []mapi.PropTag{mapi.PrLastModificationTime, mapi.PrChangeKey, mapi.PrPredecessorChangeList} {
		if v, ok := m.Props.Get(tag); ok {
			h.Set(tag, v)
		}
	}
	h.Set(mapi.PrAssociated, e.Associated)
	if d.cfg.ExtraFlags&SyncExtraEID != 0 {
		h.Set(mapi.PidTagMid, e.MID)
	}
	if d.cfg.ExtraFlags&SyncExtraMessageSize != 0 {
		size, _ := m.Props.Uint32(mapi.PrMessageSize)
		h.Set(mapi.PrMessageSize, size)
	}
	if d.cfg.ExtraFlags&SyncExtraCN != 0 {
		h.Set(mapi.PidTagChangeNumber, e.CN)
	}
	return h
}

func (d *DownloadContext) inScope(ctx context.Context, e MessageEntry) (bool, error) {
	if e.Associated && d.cfg.SyncFlags&SyncFlagFAI == 0 {
		return false, nil
	}
	if !e.Associated && d.cfg.SyncFlags&SyncFlagNormal == 0 {
		return false, nil
	}
	if d.cfg.Restriction == nil {
		return true, nil
	}
	props, err := d.logon.Store.MessageProps(ctx, e.MID, nil)
	if err != nil {
		return false, fmt.Errorf("read message %#x: %w", e.MID, err)
	}
	return mapi.Match(d.cfg.Restriction, props), nil
}

func (d *DownloadContext) contentsSync(ctx context.Context, w *fxstream.Writer) error {
	store := d.logon.Store
	reader := ""
	if !d.logon.Private {
		reader = d.logon.Username
	}
	entries, err := store.Contents(ctx, d.folder.ID, reader)
	if err != nil {
		return fmt.Errorf("list contents: %w", err)
	}
	slices.SortStableFunc(entries, func(a, b MessageEntry) int {
		switch {
		case a.Associated == b.Associated:
			return 0
		case a.Associated:
			return -1
		}
		return 1
	})

	old := d.state
	given, deleted, outOfScope := d.newSet(), d.newSet(), d.newSet()
	readSet, unreadSet := d.newSet(), d.newSet()
	present := make(map[uint64]struct{}, len(entries))
	var maxCN, maxFAICN, maxReadCN uint64
	for _, e := range entries {
		present[e.MID] = struct{}{}
		ok, err := d.inScope(ctx, e)
		if err != nil {
			return err
		}
		if !ok {
			if old.Given.Contains(e.MID) {
				if err := outOfScope.Append(e.MID); err != nil {
					return err
				}
			}
			continue
		}
		if err := given.Append(e.MID); err != nil {
			return err
		}
		seen := old.Seen
		if e.Associated {
			seen = old.SeenFAI
			maxFAICN = max(maxFAICN, mapi.GCValue(e.CN))
		} else {
			maxCN = max(maxCN, mapi.GCValue(e.CN))
		}
		if e.ReadCN != 0 {
			maxReadCN = max(maxReadCN, mapi.GCValue(e.ReadCN))
		}
		if !old.Given.Contains(e.MID) || !seen.Contains(e.CN) {
			if err := d.writeChange(ctx, w, e); err != nil {
				return err
			}
			continue
		}
		if d.cfg.SyncFlags&SyncFlagReadState != 0 && !e.Associated &&
			e.ReadCN != 0 && !old.Read.Contains(e.ReadCN) {
			target := unreadSet
			if e.Read {
				target = readSet
			}
			if err := target.Append(e.MID); err != nil {
				return err
			}
		}
	}
	var derr error
	old.Given.Enumerate(func(mid uint64) bool {
		if _, ok := present[mid]; !ok {
			derr = deleted.Append(mid)
		}
		return derr == nil
	})
	if derr != nil {
		return derr
	}

	if d.cfg.SyncFlags&SyncFlagNoDeletions == 0 {
		if d.cfg.SyncFlags&SyncFlagIgnoreNoLongerInScope != 0 {
			outOfScope = d.newSet()
		}
		if err := d.writeDeletes(w, deleted, outOfScope); err != nil {
			return err
		}
	}
	if d.cfg.SyncFlags&SyncFlagReadState != 0 {
		if err := d.writeReadStates(w, readSet, unreadSet); err != nil {
			return err
		}
	}

	next := NewState(ContentsDown, d.logon)
	next.Given = given
	if err := mergeUpTo(next.Seen, old.Seen, maxCN); err != nil {
		return err
	}
	if err := mergeUpTo(next.SeenFAI, old.SeenFAI, maxFAICN); err != nil {
		return err
	}
	readUpTo := uint64(0)
	if d.cfg.SyncFlags&SyncFlagReadState != 0 {
		readUpTo = maxReadCN
	}
	if err := mergeUpTo(next.Read, old.Read, readUpTo); err != nil {
		return err
	}
	d.state = next
	return nil
}

// mergeUpTo fills dst with old plus every local change number up to gc.
func mergeUpTo(dst, old *idset.IDSet, gc uint64) error {
	if err := dst.Concat(old); err != nil {
		return err
	}
	if gc == 0 {
		return nil
	}
	return dst.AppendRange(1, 1, gc)
}

func (d *DownloadContext) writeChange(ctx context.Context, w *fxstream.Writer, e MessageEntry) error {
	m, err := d.logon.Store.ReadMessage(ctx, e.MID)
	if err != nil {
		return fmt.Errorf("read message %#x: %w", e.MID, err)
	}
	if err := d.names.resolve(ctx, d.names.collectMessage(nil, m)); err != nil {
		return err
	}
	header := d.messageHeader(e, m)
	body := d.names.knownMessage(d.messageBody(m, e.Associated))
	if err := w.Marker(fxstream.IncrSyncChg); err != nil {
		return err
	}
	if err := w.PropList(header); err != nil {
		return err
	}
	if err := w.Marker(fxstream.IncrSyncMessage); err != nil {
		return err
	}
	if err := w.PropList(body.Props); err != nil {
		return err
	}
	if err := w.MessageChildren(body, true); err != nil {
		return err
	}
	w.Step()
	return nil
}

func (d *DownloadContext) writeDeletes(w *fxstream.Writer, deleted, outOfScope *idset.IDSet) error {
	if deleted.IsEmpty() && outOfScope.IsEmpty() {
		return nil
	}
	if err := w.Marker(fxstream.IncrSyncDel); err != nil {
		return err
	}
	if !deleted.IsEmpty() {
		b, err := deleted.SerializeReplID()
		if err != nil {
			return err
		}
		if err := w.Propval(mapi.TaggedPropval{Tag: mapi.MetaTagIdsetDeleted, Value: b}); err != nil {
			return err
		}
	}
	if !outOfScope.IsEmpty() {
		b, err := outOfScope.SerializeReplID()
		if err != nil {
			return err
		}
		if err := w.Propval(mapi.TaggedPropval{Tag: mapi.MetaTagIdsetNoLongerInScope, Value: b}); err != nil {
			return err
		}
	}
	return nil
}

func (d *DownloadContext) writeReadStates(w *fxstream.Writer, read, unread *idset.IDSet) error {
	if read.IsEmpty() && unread.IsEmpty() {
		return nil
	}
	if err := w.Marker(fxstream.IncrSyncRead); err != nil {
		return err
	}
	for _, part := range []struct {
		tag mapi.PropTag
		set *idset.IDSet
	}{
		{mapi.MetaTagIdsetRead, read},
		{mapi.MetaTagIdsetUnread, unread},
	} {
		if part.set.IsEmpty() {
			continue
		}
		b, err := part.set.SerializeReplID()
		if err != nil {
			return err
		}
		if err := w.Propval(mapi.TaggedPropval{Tag: part.tag, Value: b}); err != nil {
			return err
		}
	}
	return nil
}

var folderHeaderTags = []mapi.PropTag{
	mapi.PrParentSourceKey,
	mapi.PrSourceKey,
	mapi.PrLastModificationTime,
	mapi.PrChangeKey,
	mapi.PrPredecessorChangeList,
	mapi.PrDisplayName,
	mapi.PidTagFolderID,
	mapi.PidTagParentFolderID,
	mapi.PidTagChangeNumber,
}

func (d *DownloadContext) hierarchySync(ctx context.Context, w *fxstream.Writer) error {
	old := d.state
	given, deleted := d.newSet(), d.newSet()
	present := make(map[uint64]struct{})
	var maxCN uint64

	var walk func(parent uint64) error
	walk = func(parent uint64) error {
		children, err := d.logon.Store.Subfolders(ctx, parent)
		if err != nil {
			return fmt.Errorf("list subfolders of %#x: %w", parent, err)
		}
		for _, f := range children {
			present[f.FID] = struct{}{}
			if err := given.Append(f.FID); err != nil {
				return err
			}
			maxCN = max(maxCN, mapi.GCValue(f.CN))
			if !old.Given.Contains(f.FID) || !old.Seen.Contains(f.CN) {
				if err := d.writeFolderChange(ctx, w, f); err != nil {
					return err
				}
			}
			if err := walk(f.FID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(d.folder.ID); err != nil {
		return err
	}

	var derr error
	old.Given.Enumerate(func(fid uint64) bool {
		if _, ok := present[fid]; !ok {
			derr = deleted.Append(fid)
		}
		return derr == nil
	})
	if derr != nil {
		return derr
	}
	if d.cfg.SyncFlags&SyncFlagNoDeletions == 0 {
		if err := d.writeDeletes(w, deleted, d.newSet()); err != nil {
			return err
		}
	}

	next := NewState(HierarchyDown, d.logon)
	next.Given = given
	if err := mergeUpTo(next.Seen, old.Seen, maxCN); err != nil {
		return err
	}
	d.state = next
	return nil
}

func (d *DownloadContext) writeFolderChange(ctx context.Context, w *fxstream.Writer, f FolderEntry) error {
	props, err := d.logon.Store.FolderProps(ctx, f.FID, nil)
	if err != nil {
		return fmt.Errorf("read folder %#x: %w", f.FID, err)
	}
	if err := d.names.resolve(ctx, d.names.collect(nil, props)); err != nil {
		return err
	}
	var h mapi.TPropvalArray
	parentKey := []byte{}
	if f.ParentFID != d.folder.ID {
		parentKey, _ = d.logon.SourceKey(f.ParentFID)
	}
	h.Set(mapi.PrParentSourceKey, parentKey)
	key, ok := props.Binary(mapi.PrSourceKey)
	if !ok {
		key, _ = d.logon.SourceKey(f.FID)
	}
	h.Set(mapi.PrSourceKey, key)
	for _, tag := range []mapi.PropTag{mapi.PrLastModificationTime, mapi.PrChangeKey, mapi.PrPredecessorChangeList, mapi.PrDisplayName} {
		if v, ok := props.Get(tag); ok {
			h.Set(tag, v)
		}
	}
	if d.cfg.ExtraFlags&SyncExtraEID != 0 {
		h.Set(mapi.PidTagFolderID, f.FID)
	}
	if d.cfg.ExtraFlags&SyncExtraCN != 0 {
		h.Set(mapi.PidTagChangeNumber, f.CN)
	}
	for _, pv := range d.names.known(props) {
		if slices.Contains(folderHeaderTags, pv.Tag) || !d.filterTag(pv.Tag, false) {
			continue
		}
		h.Set(pv.Tag, pv.Value)
	}
	if err := w.Marker(fxstream.IncrSyncChg); err != nil {
		return err
	}
	if err := w.PropList(h); err != nil {
		return err
	}
	w.Step()
	return nil
}
