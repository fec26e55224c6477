package ics

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// SyncType selects what a synchronization covers.
type SyncType uint8

const (
	SyncContents  SyncType = 1
	SyncHierarchy SyncType = 2
)

func (t SyncType) String() string {
	switch t {
	case SyncContents:
		return "contents"
	case SyncHierarchy:
		return "hierarchy"
	}
	return fmt.Sprintf("sync-type(%d)", uint8(t))
}

// Import flags of SyncImportMessageChange.
const (
	ImportAssociated     uint8 = 0x10
	ImportFailOnConflict uint8 = 0x40
)

// Flags of SyncImportDeletes.
const (
	DeletesHierarchy  uint8 = 0x01
	DeletesHardDelete uint8 = 0x02
)

// TagAccess is what an opened message allows.
type TagAccess uint32

const (
	TagAccessModify TagAccess = 0x01
	TagAccessRead   TagAccess = 0x02
	TagAccessDelete TagAccess = 0x10

	TagAccessAll = TagAccessModify | TagAccessRead | TagAccessDelete
)

// Folder is an open folder: its id and type.
type Folder struct {
	ID   uint64
	Type uint32
}

// ReadStat is one entry of SyncImportReadStateChanges.
type ReadStat struct {
	MessageXID []byte
	MarkAsRead bool
}

// UploadContext applies changes a client collected locally to a folder and
// records them in a change-tracking state, so the next download does not
// send them back.
type UploadContext struct {
	logon    *Logon
	folder   Folder
	syncType SyncType
	state    *State
	started  bool
}

// NewUploadContext returns a collector for the contents or the hierarchy
// of folder.
func NewUploadContext(logon *Logon, folder Folder, syncType SyncType) *UploadContext {
	typ := ContentsUp
	if syncType == SyncHierarchy {
		typ = HierarchyUp
	}
	return &UploadContext{
		logon:    logon,
		folder:   folder,
		syncType: syncType,
		state:    NewState(typ, logon),
	}
}

// MarkStarted records that the first import arrived.
func (u *UploadContext) MarkStarted() { u.started = true }

// Started reports whether any import arrived.
func (u *UploadContext) Started() bool { return u.started }

func (u *UploadContext) SyncType() SyncType { return u.syncType }

func (u *UploadContext) ParentFolder() Folder { return u.folder }

func (u *UploadContext) State() *State { return u.state }

func (u *UploadContext) fail(ctx context.Context, fn string, err error, msg string) error {
	logger.FromContext(ctx).Err(err).
		Str("func", fn).
		Uint64("folder_id", u.folder.ID).
		Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}

// localXID decodes a 22-byte XID of this store into an entry id under
// replica 1.
func (u *UploadContext) localXID(b []byte) (uint64, error) {
	if len(b) != 22 {
		return 0, mapi.EcInvalidParam
	}
	x, err := mapi.XIDFromBytes(b)
	if err != nil || x.GUID != u.logon.GUID() {
		return 0, mapi.EcInvalidParam
	}
	return mapi.MakeEID(1, x.GC()), nil
}

// ImportMessageChange opens the message named by the source key for
// writing. props must hold exactly the source key, the last modification
// time, the change key and the predecessor change list, in that order.
// Stale changes fail with SyncEIgnore; conflicting ones fail with
// SyncEConflict when flags asks for it.
func (u *UploadContext) ImportMessageChange(ctx context.Context, flags uint8, props mapi.TPropvalArray) (*MessageDraft, error) {
	if flags&^(ImportAssociated|ImportFailOnConflict) != 0 {
		return nil, mapi.EcInvalidParam
	}
	if len(props) != 4 ||
		props[0].Tag != mapi.PrSourceKey ||
		props[1].Tag != mapi.PrLastModificationTime ||
		props[2].Tag != mapi.PrChangeKey ||
		props[3].Tag != mapi.PrPredecessorChangeList {
		return nil, mapi.EcInvalidParam
	}
	if u.syncType != SyncContents {
		return nil, mapi.EcNotSupported
	}
	u.MarkStarted()
	sourceKey, _ := props[0].Value.([]byte)
	mid, err := u.localXID(sourceKey)
	if err != nil {
		return nil, err
	}
	store := u.logon.Store
	fid := u.folder.ID
	exists, err := store.MessageExists(ctx, fid, mid)
	if err != nil {
		return nil, u.fail(ctx, "UploadContext.ImportMessageChange", err, "failed to check message")
	}
	access, err := u.messageAccess(ctx, mid, exists)
	if err != nil {
		return nil, err
	}
	assoc := flags&ImportAssociated != 0
	if exists {
		stored, err := store.MessageProps(ctx, mid, []mapi.PropTag{mapi.PrAssociated, mapi.PrPredecessorChangeList})
		if err != nil {
			return nil, u.fail(ctx, "UploadContext.ImportMessageChange", err, "failed to read message")
		}
		isAssoc, _ := stored.Bool(mapi.PrAssociated)
		if isAssoc != assoc {
			return nil, mapi.EcInvalidParam
		}
		incoming, _ := props[3].Value.([]byte)
		result, err := compareStoredPCL(stored, incoming)
		if err != nil {
			return nil, err
		}
		if result&PCLIncludes != 0 {
			return nil, mapi.SyncEIgnore
		}
		if result == PCLConflict && flags&ImportFailOnConflict != 0 {
			return nil, mapi.SyncEConflict
		}
	}
	draft := &MessageDraft{
		logon:      u.logon,
		state:      u.state,
		FolderID:   fid,
		MessageID:  mid,
		Associated: assoc,
		New:        !exists,
		Access:     access,
		Content:    &mapi.MessageContent{},
	}
	for _, pv := range props[1:] {
		draft.Content.Props.Set(pv.Tag, pv.Value)
	}
	return draft, nil
}

// messageAccess resolves what the principal may do with a message the way
// opening it would.
func (u *UploadContext) messageAccess(ctx context.Context, mid uint64, exists bool) (TagAccess, error) {
	if u.logon.IsOwner() {
		return TagAccessAll, nil
	}
	perm, err := u.logon.permission(ctx, u.folder.ID)
	if err != nil {
		return 0, u.fail(ctx, "UploadContext.messageAccess", err, "failed to check folder permission")
	}
	if !exists {
		if perm&mapi.RightsCreate == 0 {
			return 0, mapi.EcAccessDenied
		}
		access := TagAccessRead
		if perm&(mapi.RightsEditAny|mapi.RightsEditOwned) != 0 {
			access |= TagAccessModify
		}
		if perm&(mapi.RightsDeleteAny|mapi.RightsDeleteOwned) != 0 {
			access |= TagAccessDelete
		}
		return access, nil
	}
	if perm&mapi.RightsOwner != 0 {
		return TagAccessAll, nil
	}
	owner, err := u.logon.Store.MessageOwner(ctx, mid, u.logon.Username)
	if err != nil {
		return 0, u.fail(ctx, "UploadContext.messageAccess", err, "failed to check message owner")
	}
	var access TagAccess
	if owner || perm&mapi.RightsReadAny != 0 {
		access |= TagAccessRead
	}
	if perm&mapi.RightsEditAny != 0 || (owner && perm&mapi.RightsEditOwned != 0) {
		access |= TagAccessModify
	}
	if perm&mapi.RightsDeleteAny != 0 || (owner && perm&mapi.RightsDeleteOwned != 0) {
		access |= TagAccessDelete
	}
	return access, nil
}

// ImportReadStateChanges applies read flags. Entries of other replicas,
// associated messages, messages the principal may not touch and messages
// already in the requested state are skipped.
func (u *UploadContext) ImportReadStateChanges(ctx context.Context, stats []ReadStat) error {
	if u.syncType != SyncContents {
		return mapi.EcNotSupported
	}
	u.MarkStarted()
	store := u.logon.Store
	var ownedOnly string
	if !u.logon.IsOwner() {
		perm, err := u.logon.permission(ctx, u.folder.ID)
		if err != nil {
			return u.fail(ctx, "UploadContext.ImportReadStateChanges", err, "failed to check folder permission")
		}
		if perm&mapi.RightsReadAny == 0 {
			ownedOnly = u.logon.Username
		}
	}
	reader := ""
	if !u.logon.Private {
		reader = u.logon.Username
	}
	for _, st := range stats {
		x, err := mapi.XIDFromBytes(st.MessageXID)
		if err != nil {
			return mapi.EcInvalidParam
		}
		if x.GUID != u.logon.GUID() {
			continue
		}
		mid := mapi.MakeEID(1, x.GC())
		if ownedOnly != "" {
			owner, err := store.MessageOwner(ctx, mid, ownedOnly)
			if err != nil {
				return u.fail(ctx, "UploadContext.ImportReadStateChanges", err, "failed to check message owner")
			}
			if !owner {
				continue
			}
		}
		props, err := store.MessageProps(ctx, mid, []mapi.PropTag{mapi.PrAssociated})
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return u.fail(ctx, "UploadContext.ImportReadStateChanges", err, "failed to read message")
		}
		if assoc, _ := props.Bool(mapi.PrAssociated); assoc {
			continue
		}
		read, err := store.ReadState(ctx, reader, mid)
		if err != nil {
			return u.fail(ctx, "UploadContext.ImportReadStateChanges", err, "failed to read message state")
		}
		if read == st.MarkAsRead {
			continue
		}
		readCN, err := store.SetReadState(ctx, reader, mid, st.MarkAsRead)
		if err != nil {
			return u.fail(ctx, "UploadContext.ImportReadStateChanges", err, "failed to set read state")
		}
		if err := u.state.Read.Append(readCN); err != nil {
			return err
		}
	}
	return nil
}

// ImportMessageMove moves a message the client moved into this folder.
// newer reports that the client's change list supersedes the stored one;
// the caller reports it as SyncWClientChangeNewer.
func (u *UploadContext) ImportMessageMove(ctx context.Context, srcFolderXID, srcMessageXID, changeList, dstMessageXID, changeNumber []byte) (newer bool, err error) {
	if len(srcFolderXID) != 22 || len(srcMessageXID) != 22 || len(dstMessageXID) != 22 {
		return false, mapi.EcInvalidParam
	}
	if len(changeNumber) < 17 || len(changeNumber) > 24 {
		return false, mapi.EcInvalidParam
	}
	if u.syncType != SyncContents {
		return false, mapi.EcNotSupported
	}
	u.MarkStarted()
	srcFID, err := u.localXID(srcFolderXID)
	if err != nil {
		return false, err
	}
	srcMID, err := u.localXID(srcMessageXID)
	if err != nil {
		return false, err
	}
	dstMID, err := u.localXID(dstMessageXID)
	if err != nil {
		return false, err
	}
	store := u.logon.Store
	exists, err := store.MessageExists(ctx, srcFID, srcMID)
	if err != nil {
		return false, u.fail(ctx, "UploadContext.ImportMessageMove", err, "failed to check source message")
	}
	if !exists {
		return false, mapi.EcNotFound
	}
	if !u.logon.IsOwner() {
		if err := u.checkMovePermission(ctx, srcFID, srcMID); err != nil {
			return false, err
		}
	}
	props, err := store.MessageProps(ctx, srcMID, []mapi.PropTag{mapi.PrAssociated, mapi.PrPredecessorChangeList})
	if err != nil {
		return false, u.fail(ctx, "UploadContext.ImportMessageMove", err, "failed to read source message")
	}
	assoc, ok := props.Bool(mapi.PrAssociated)
	if !ok {
		return false, mapi.EcNotFound
	}
	result, err := compareStoredPCL(props, changeList)
	if err != nil {
		return false, err
	}
	newer = result == PCLIncluded
	if err := store.MoveMessage(ctx, srcMID, u.folder.ID, dstMID); err != nil {
		return false, u.fail(ctx, "UploadContext.ImportMessageMove", err, "failed to move message")
	}
	if newer {
		pcl := mapi.TPropvalArray{{Tag: mapi.PrPredecessorChangeList, Value: changeList}}
		if err := store.SetMessageProps(ctx, dstMID, pcl); err != nil {
			logger.FromContext(ctx).Warn().Err(err).
				Str("func", "UploadContext.ImportMessageMove").
				Uint64("message_id", dstMID).
				Msg("failed to apply newer change list")
		}
	}
	moved, err := store.MessageProps(ctx, dstMID, []mapi.PropTag{mapi.PidTagChangeNumber})
	if err != nil {
		return false, u.fail(ctx, "UploadContext.ImportMessageMove", err, "failed to read moved message")
	}
	cn, ok := moved.Uint64(mapi.PidTagChangeNumber)
	if !ok {
		return false, u.fail(ctx, "UploadContext.ImportMessageMove", ErrNotFound, "moved message has no change number")
	}
	seen := u.state.Seen
	if assoc {
		seen = u.state.SeenFAI
	}
	if err := seen.Append(cn); err != nil {
		return false, err
	}
	if err := u.state.Given.Append(dstMID); err != nil {
		return false, err
	}
	return newer, nil
}

func (u *UploadContext) checkMovePermission(ctx context.Context, srcFID, srcMID uint64) error {
	store := u.logon.Store
	perm, err := u.logon.permission(ctx, srcFID)
	if err != nil {
		return u.fail(ctx, "UploadContext.checkMovePermission", err, "failed to check source folder permission")
	}
	switch {
	case perm&mapi.RightsDeleteAny != 0:
	case perm&mapi.RightsDeleteOwned != 0:
		owner, err := store.MessageOwner(ctx, srcMID, u.logon.Username)
		if err != nil {
			return u.fail(ctx, "UploadContext.checkMovePermission", err, "failed to check message owner")
		}
		if !owner {
			return mapi.EcAccessDenied
		}
	default:
		return mapi.EcAccessDenied
	}
	perm, err = u.logon.permission(ctx, u.folder.ID)
	if err != nil {
		return u.fail(ctx, "UploadContext.checkMovePermission", err, "failed to check folder permission")
	}
	if perm&mapi.RightsCreate == 0 {
		return mapi.EcAccessDenied
	}
	return nil
}

// MessageDraft is a message opened for writing. Nothing reaches the store
// before Save.
type MessageDraft struct {
	logon *Logon
	state *State

	FolderID   uint64
	MessageID  uint64
	Associated bool
	New        bool
	Access     TagAccess
	Content    *mapi.MessageContent
}

// NewMessageDraft opens an empty message for writing outside of a
// synchronization.
func NewMessageDraft(logon *Logon, fid, mid uint64, assoc bool, access TagAccess) *MessageDraft {
	return &MessageDraft{
		logon:      logon,
		FolderID:   fid,
		MessageID:  mid,
		Associated: assoc,
		New:        true,
		Access:     access,
		Content:    &mapi.MessageContent{},
	}
}

// SetProps sets message properties.
func (d *MessageDraft) SetProps(props mapi.TPropvalArray) error {
	if d.Access&TagAccessModify == 0 {
		return mapi.EcAccessDenied
	}
	for _, pv := range props {
		d.Content.Props.Set(pv.Tag, pv.Value)
	}
	return nil
}

// Save writes the message. When the draft came from a synchronization the
// new change number and the message id are recorded in its state.
func (d *MessageDraft) Save(ctx context.Context) (uint64, error) {
	if d.Access&TagAccessModify == 0 {
		return 0, mapi.EcAccessDenied
	}
	d.Content.Props.Set(mapi.PidTagMid, d.MessageID)
	d.Content.Props.Set(mapi.PrAssociated, d.Associated)
	mid, cn, err := d.logon.Store.WriteMessage(ctx, d.FolderID, d.Content)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "MessageDraft.Save").
			Uint64("folder_id", d.FolderID).
			Uint64("message_id", d.MessageID).
			Msg("failed to write message")
		return 0, fmt.Errorf("save message: %w", err)
	}
	d.New = false
	if d.state == nil {
		return cn, nil
	}
	seen := d.state.Seen
	if d.Associated {
		seen = d.state.SeenFAI
	}
	if err := seen.Append(cn); err != nil {
		return 0, err
	}
	if err := d.state.Given.Append(mid); err != nil {
		return 0, err
	}
	return cn, nil
}
