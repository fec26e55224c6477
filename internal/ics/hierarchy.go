package ics

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

var hierarchyHeader = [...]mapi.PropTag{
	mapi.PrParentSourceKey,
	mapi.PrSourceKey,
	mapi.PrLastModificationTime,
	mapi.PrChangeKey,
	mapi.PrPredecessorChangeList,
	mapi.PrDisplayName,
}

// folderXID maps a 22-byte folder XID to a local folder id. Public stores
// accept folders of other domains of the same organization.
func (u *UploadContext) folderXID(ctx context.Context, b []byte) (uint64, error) {
	if len(b) != 22 {
		return 0, mapi.EcInvalidParam
	}
	x, err := mapi.XIDFromBytes(b)
	if err != nil {
		return 0, mapi.EcInvalidParam
	}
	if x.GUID == u.logon.GUID() {
		return mapi.MakeEID(1, x.GC()), nil
	}
	if u.logon.Private {
		return 0, mapi.EcInvalidParam
	}
	domainID, ok := mapi.DomainIDFromGUID(x.GUID)
	if !ok {
		return 0, mapi.EcInvalidParam
	}
	same, err := u.logon.Store.SameOrganization(ctx, domainID)
	if err != nil {
		return 0, u.fail(ctx, "UploadContext.folderXID", err, "failed to check organization")
	}
	if !same {
		return 0, mapi.EcInvalidParam
	}
	replid, ok, err := u.logon.ResolveReplica(ctx, x.GUID)
	if err != nil {
		return 0, u.fail(ctx, "UploadContext.folderXID", err, "failed to resolve replica")
	}
	if !ok {
		return 0, mapi.EcInvalidParam
	}
	return mapi.MakeEID(replid, x.GC()), nil
}

// parentFolder resolves the parent source key of a hierarchy change. An
// empty key names the folder the synchronization was opened on.
func (u *UploadContext) parentFolder(ctx context.Context, key []byte) (uint64, uint32, error) {
	store := u.logon.Store
	if len(key) == 0 {
		exists, err := store.FolderExists(ctx, u.folder.ID)
		if err != nil {
			return 0, 0, u.fail(ctx, "UploadContext.parentFolder", err, "failed to check folder")
		}
		if !exists {
			return 0, 0, mapi.SyncENoParent
		}
		return u.folder.ID, u.folder.Type, nil
	}
	if len(key) != 22 {
		return 0, 0, mapi.EcInvalidParam
	}
	x, err := mapi.XIDFromBytes(key)
	if err != nil || x.GUID != u.logon.GUID() {
		return 0, 0, mapi.EcInvalidParam
	}
	fid := mapi.MakeEID(1, x.GC())
	props, err := store.FolderProps(ctx, fid, []mapi.PropTag{mapi.PrFolderType})
	if errors.Is(err, ErrNotFound) {
		return 0, 0, mapi.SyncENoParent
	}
	if err != nil {
		return 0, 0, u.fail(ctx, "UploadContext.parentFolder", err, "failed to read parent folder")
	}
	typ, ok := props.Uint32(mapi.PrFolderType)
	if !ok {
		return 0, 0, mapi.SyncENoParent
	}
	return fid, typ, nil
}

// ImportHierarchyChange creates or updates a folder. hier must hold the
// parent source key, source key, last modification time, change key,
// predecessor change list and display name, in that order; props are
// further properties to set. It returns the local folder id.
func (u *UploadContext) ImportHierarchyChange(ctx context.Context, hier, props mapi.TPropvalArray) (uint64, error) {
	if len(hier) != len(hierarchyHeader) {
		return 0, mapi.EcInvalidParam
	}
	for i, tag := range hierarchyHeader {
		if hier[i].Tag != tag {
			return 0, mapi.EcInvalidParam
		}
	}
	if u.syncType != SyncHierarchy {
		return 0, mapi.EcNotSupported
	}
	u.MarkStarted()
	parentKey, _ := hier[0].Value.([]byte)
	parentID, parentType, err := u.parentFolder(ctx, parentKey)
	if err != nil {
		return 0, err
	}
	if parentType == mapi.FolderSearch {
		return 0, mapi.EcNotSupported
	}
	sourceKey, _ := hier[1].Value.([]byte)
	fid, err := u.folderXID(ctx, sourceKey)
	if err != nil {
		return 0, err
	}
	name, _ := hier[5].Value.(string)

	store := u.logon.Store
	exists, err := store.FolderExists(ctx, fid)
	if err != nil {
		return 0, u.fail(ctx, "UploadContext.ImportHierarchyChange", err, "failed to check folder")
	}
	if !exists {
		return u.createFolder(ctx, parentID, fid, hier, props, name)
	}
	return fid, u.updateFolder(ctx, parentID, fid, hier, props, name)
}

func (u *UploadContext) createFolder(ctx context.Context, parentID, fid uint64, hier, props mapi.TPropvalArray, name string) (uint64, error) {
	store := u.logon.Store
	if !u.logon.IsOwner() {
		perm, err := u.logon.permission(ctx, parentID)
		if err != nil {
			return 0, u.fail(ctx, "UploadContext.createFolder", err, "failed to check parent permission")
		}
		if perm&mapi.RightsCreateSubfolder == 0 {
			return 0, mapi.EcAccessDenied
		}
	}
	existing, err := store.FolderByName(ctx, parentID, name)
	if err != nil {
		return 0, u.fail(ctx, "UploadContext.createFolder", err, "failed to look up folder name")
	}
	if existing != 0 {
		return 0, mapi.EcDuplicateName
	}
	cn, err := store.AllocateCN(ctx)
	if err != nil {
		return 0, u.fail(ctx, "UploadContext.createFolder", err, "failed to allocate change number")
	}
	created := mapi.TPropvalArray{
		{Tag: mapi.PidTagFolderID, Value: fid},
		{Tag: mapi.PidTagParentFolderID, Value: parentID},
	}
	for _, pv := range hier[2:] {
		created.Set(pv.Tag, pv.Value)
	}
	created.Set(mapi.PidTagChangeNumber, cn)
	for _, pv := range props {
		created.Set(pv.Tag, pv.Value)
	}
	if !created.Has(mapi.PrFolderType) {
		created.Set(mapi.PrFolderType, mapi.FolderGeneric)
	}
	newID, err := store.CreateFolder(ctx, parentID, created)
	if errors.Is(err, ErrExists) {
		return 0, mapi.EcDuplicateName
	}
	if err != nil {
		return 0, u.fail(ctx, "UploadContext.createFolder", err, "failed to create folder")
	}
	if err := u.state.Seen.Append(cn); err != nil {
		return 0, err
	}
	return newID, nil
}

func (u *UploadContext) updateFolder(ctx context.Context, parentID, fid uint64, hier, props mapi.TPropvalArray, name string) error {
	store := u.logon.Store
	stored, err := store.FolderProps(ctx, fid, []mapi.PropTag{mapi.PidTagParentFolderID, mapi.PrPredecessorChangeList})
	if err != nil {
		return u.fail(ctx, "UploadContext.updateFolder", err, "failed to read folder")
	}
	incoming, _ := hier[4].Value.([]byte)
	result, err := compareStoredPCL(stored, incoming)
	if err != nil {
		return err
	}
	if result&PCLIncludes != 0 {
		return mapi.SyncEIgnore
	}
	if !u.logon.IsOwner() {
		perm, err := u.logon.permission(ctx, fid)
		if err != nil {
			return u.fail(ctx, "UploadContext.updateFolder", err, "failed to check folder permission")
		}
		if perm&mapi.RightsOwner == 0 {
			return mapi.EcAccessDenied
		}
	}
	if oldParent, _ := stored.Uint64(mapi.PidTagParentFolderID); oldParent != parentID {
		if !u.logon.Private {
			return mapi.EcNotSupported
		}
		if mapi.GCValue(fid) < mapi.PrivateFIDCustom {
			return mapi.EcAccessDenied
		}
		if !u.logon.IsOwner() {
			perm, err := u.logon.permission(ctx, parentID)
			if err != nil {
				return u.fail(ctx, "UploadContext.updateFolder", err, "failed to check parent permission")
			}
			if perm&mapi.RightsCreateSubfolder == 0 {
				return mapi.EcAccessDenied
			}
		}
		err := store.MoveFolder(ctx, fid, parentID, name)
		if errors.Is(err, ErrExists) {
			return mapi.EcDuplicateName
		}
		if err != nil {
			return u.fail(ctx, "UploadContext.updateFolder", err, "failed to move folder")
		}
	}
	cn, err := store.AllocateCN(ctx)
	if err != nil {
		return u.fail(ctx, "UploadContext.updateFolder", err, "failed to allocate change number")
	}
	var changed mapi.TPropvalArray
	for _, pv := range hier[2:] {
		changed.Set(pv.Tag, pv.Value)
	}
	changed.Set(mapi.PidTagChangeNumber, cn)
	for _, pv := range props {
		changed.Set(pv.Tag, pv.Value)
	}
	if err := store.SetFolderProps(ctx, fid, changed); err != nil {
		return u.fail(ctx, "UploadContext.updateFolder", err, "failed to update folder")
	}
	return u.state.Seen.Append(cn)
}

// ImportDeletes deletes the messages or folders named in props, a single
// multi-valued binary of source keys. A hierarchy context deletes folders
// and a contents context messages; DeletesHierarchy is only checked
// against the context. Objects that do not exist are skipped.
func (u *UploadContext) ImportDeletes(ctx context.Context, flags uint8, props mapi.TPropvalArray) error {
	if len(props) != 1 || props[0].Tag.Type() != mapi.PtMVBinary {
		return mapi.EcInvalidParam
	}
	keys, _ := props[0].Value.([][]byte)
	hierarchy := flags&DeletesHierarchy != 0
	hard := flags&DeletesHardDelete != 0
	if hierarchy && u.syncType == SyncContents {
		return mapi.EcNotSupported
	}
	u.MarkStarted()
	if u.syncType == SyncHierarchy {
		return u.deleteFolders(ctx, keys, hard)
	}
	return u.deleteMessages(ctx, keys, hard)
}

func (u *UploadContext) deleteMessages(ctx context.Context, keys [][]byte, hard bool) error {
	store := u.logon.Store
	checkOwner := false
	if !u.logon.IsOwner() {
		perm, err := u.logon.permission(ctx, u.folder.ID)
		if err != nil {
			return u.fail(ctx, "UploadContext.deleteMessages", err, "failed to check folder permission")
		}
		switch {
		case perm&(mapi.RightsOwner|mapi.RightsDeleteAny) != 0:
		case perm&mapi.RightsDeleteOwned != 0:
			checkOwner = true
		default:
			return mapi.EcAccessDenied
		}
	}
	mids := make([]uint64, 0, len(keys))
	for _, key := range keys {
		mid, err := u.localXID(key)
		if err != nil {
			return err
		}
		exists, err := store.MessageExists(ctx, u.folder.ID, mid)
		if err != nil {
			return u.fail(ctx, "UploadContext.deleteMessages", err, "failed to check message")
		}
		if !exists {
			continue
		}
		if checkOwner {
			owner, err := store.MessageOwner(ctx, mid, u.logon.Username)
			if err != nil {
				return u.fail(ctx, "UploadContext.deleteMessages", err, "failed to check message owner")
			}
			if !owner {
				return mapi.EcAccessDenied
			}
		}
		mids = append(mids, mid)
	}
	if len(mids) == 0 {
		return nil
	}
	if err := store.DeleteMessages(ctx, u.folder.ID, mids, hard); err != nil {
		return u.fail(ctx, "UploadContext.deleteMessages", err, "failed to delete messages")
	}
	return nil
}

func (u *UploadContext) deleteFolders(ctx context.Context, keys [][]byte, hard bool) error {
	store := u.logon.Store
	for _, key := range keys {
		fid, err := u.folderXID(ctx, key)
		if err != nil {
			return err
		}
		exists, err := store.FolderExists(ctx, fid)
		if err != nil {
			return u.fail(ctx, "UploadContext.deleteFolders", err, "failed to check folder")
		}
		if !exists {
			continue
		}
		if !u.logon.IsOwner() {
			perm, err := u.logon.permission(ctx, fid)
			if err != nil {
				return u.fail(ctx, "UploadContext.deleteFolders", err, "failed to check folder permission")
			}
			if perm&mapi.RightsOwner == 0 {
				return mapi.EcAccessDenied
			}
		}
		search := false
		if u.logon.Private {
			props, err := store.FolderProps(ctx, fid, []mapi.PropTag{mapi.PrFolderType})
			if err != nil {
				return u.fail(ctx, "UploadContext.deleteFolders", err, "failed to read folder")
			}
			typ, _ := props.Uint32(mapi.PrFolderType)
			search = typ == mapi.FolderSearch
		}
		if !search {
			if err := store.EmptyFolder(ctx, fid, hard); err != nil {
				return u.fail(ctx, "UploadContext.deleteFolders", err, "failed to empty folder")
			}
		}
		if err := store.DeleteFolder(ctx, fid, hard); err != nil {
			return u.fail(ctx, "UploadContext.deleteFolders", err, "failed to delete folder")
		}
	}
	return nil
}
