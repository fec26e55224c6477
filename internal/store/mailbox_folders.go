package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// defaultPermissionUser holds the rights of principals without an entry
// of their own.
const defaultPermissionUser = "default"

type folderRow struct {
	parent     uint64
	name       string
	folderType uint32
	cn         uint64
	props      mapi.TPropvalArray
}

func (r *folderRow) all(fid uint64) mapi.TPropvalArray {
	props := r.props.Clone()
	props.Set(mapi.PidTagFolderID, fid)
	props.Set(mapi.PidTagParentFolderID, r.parent)
	props.Set(mapi.PidTagChangeNumber, r.cn)
	props.Set(mapi.PrDisplayName, r.name)
	props.Set(mapi.PrFolderType, r.folderType)
	return props
}

func encodeFolderProps(props mapi.TPropvalArray) ([]byte, error) {
	stored := props.Clone()
	stored.Erase(mapi.PrDisplayName)
	stored.Erase(mapi.PrFolderType)
	return encodeProps(stored)
}

func (m *sqlMailbox) loadFolder(ctx context.Context, q querier, fid uint64) (*folderRow, error) {
	row, err := queryRow(ctx, q, m.db.builder.
		Select("parent_id", "name", "folder_type", "change_num", "props").
		From("folders").
		Where(sq.Eq{"store_id": m.storeID, "folder_id": sqlID(fid)}))
	if err != nil {
		return nil, err
	}
	var parent, folderType, cn int64
	var name string
	var blob []byte
	if err := row.Scan(&parent, &name, &folderType, &cn, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ics.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	props, err := decodeProps(blob)
	if err != nil {
		return nil, err
	}
	return &folderRow{
		parent:     uint64(parent),
		name:       name,
		folderType: uint32(folderType),
		cn:         uint64(cn),
		props:      props,
	}, nil
}

// childByName returns the child of parent named name, or 0.
func (m *sqlMailbox) childByName(ctx context.Context, q querier, parent uint64, name string) (uint64, error) {
	row, err := queryRow(ctx, q, m.db.builder.
		Select("folder_id").
		From("folders").
		Where(sq.Eq{"store_id": m.storeID, "parent_id": sqlID(parent), "name": name}))
	if err != nil {
		return 0, err
	}
	var fid int64
	if err := row.Scan(&fid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return uint64(fid), nil
}

func (m *sqlMailbox) FolderExists(ctx context.Context, fid uint64) (bool, error) {
	_, err := m.loadFolder(ctx, m.db, fid)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ics.ErrNotFound):
		return false, nil
	}
	return false, m.fail(ctx, "sqlMailbox.FolderExists", err, "failed to load folder")
}

// FolderProps returns the stored properties of a folder. Message counts
// are computed only when asked for by tag.
func (m *sqlMailbox) FolderProps(ctx context.Context, fid uint64, tags []mapi.PropTag) (mapi.TPropvalArray, error) {
	f, err := m.loadFolder(ctx, m.db, fid)
	if err != nil {
		return nil, m.fail(ctx, "sqlMailbox.FolderProps", err, "failed to load folder")
	}
	props := f.all(fid)
	if slices.Contains(tags, mapi.PrContentCount) || slices.Contains(tags, mapi.PrAssocContentCount) {
		normal, assoc, err := m.countMessages(ctx, fid)
		if err != nil {
			return nil, m.fail(ctx, "sqlMailbox.FolderProps", err, "failed to count messages")
		}
		props.Set(mapi.PrContentCount, normal)
		props.Set(mapi.PrAssocContentCount, assoc)
	}
	return pick(props, tags), nil
}

func (m *sqlMailbox) countMessages(ctx context.Context, fid uint64) (normal, assoc uint32, err error) {
	row, err := queryRow(ctx, m.db, m.db.builder.
		Select(
			"COALESCE(SUM(CASE WHEN associated THEN 0 ELSE 1 END), 0)",
			"COALESCE(SUM(CASE WHEN associated THEN 1 ELSE 0 END), 0)",
		).
		From("messages").
		Where(sq.Eq{"store_id": m.storeID, "folder_id": sqlID(fid)}))
	if err != nil {
		return 0, 0, err
	}
	var n, a int64
	if err := row.Scan(&n, &a); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return uint32(n), uint32(a), nil
}

// SetFolderProps merges props into a folder. A change number is
// allocated unless props carries one.
func (m *sqlMailbox) SetFolderProps(ctx context.Context, fid uint64, props mapi.TPropvalArray) error {
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		f, err := m.loadFolder(ctx, tx, fid)
		if err != nil {
			return err
		}
		for _, pv := range stripColumns(props) {
			f.props.Set(pv.Tag, pv.Value)
		}
		if name, ok := props.String(mapi.PrDisplayName); ok && name != f.name {
			other, err := m.childByName(ctx, tx, f.parent, name)
			if err != nil {
				return err
			}
			if other != 0 {
				return ics.ErrExists
			}
			f.name = name
		}
		if typ, ok := props.Uint32(mapi.PrFolderType); ok {
			f.folderType = typ
		}
		cn, ok := props.Uint64(mapi.PidTagChangeNumber)
		if !ok {
			if cn, err = m.allocateCN(ctx, tx); err != nil {
				return err
			}
		}
		m.stampChange(&f.props, props, cn)
		blob, err := encodeFolderProps(f.props)
		if err != nil {
			return err
		}
		_, err = exec(ctx, tx, m.db.builder.
			Update("folders").
			Set("name", f.name).
			Set("folder_type", int64(f.folderType)).
			Set("change_num", sqlID(cn)).
			Set("props", blob).
			Where(sq.Eq{"store_id": m.storeID, "folder_id": sqlID(fid)}))
		return err
	})
	if err != nil {
		return m.fail(ctx, "sqlMailbox.SetFolderProps", err, "failed to update folder")
	}
	return nil
}

func (m *sqlMailbox) FolderByName(ctx context.Context, parent uint64, name string) (uint64, error) {
	fid, err := m.childByName(ctx, m.db, parent, name)
	if err != nil {
		return 0, m.fail(ctx, "sqlMailbox.FolderByName", err, "failed to look up folder")
	}
	return fid, nil
}

func (m *sqlMailbox) CreateFolder(ctx context.Context, parent uint64, props mapi.TPropvalArray) (uint64, error) {
	name, ok := props.String(mapi.PrDisplayName)
	if !ok || name == "" {
		return 0, mapi.EcInvalidParam
	}
	var fid uint64
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := m.loadFolder(ctx, tx, parent); err != nil {
			return err
		}
		other, err := m.childByName(ctx, tx, parent, name)
		if err != nil {
			return err
		}
		if other != 0 {
			return ics.ErrExists
		}
		var ok bool
		if fid, ok = props.Uint64(mapi.PidTagFolderID); !ok {
			gc, err := m.allocate(ctx, tx, allocatorEID, 1)
			if err != nil {
				return err
			}
			fid = mapi.MakeEID(1, gc)
		}
		cn, ok := props.Uint64(mapi.PidTagChangeNumber)
		if !ok {
			if cn, err = m.allocateCN(ctx, tx); err != nil {
				return err
			}
		}
		stamped := props.Clone()
		m.stampChange(&stamped, props, cn)
		return m.insertFolder(ctx, tx, fid, parent, cn, stamped)
	})
	if err != nil {
		return 0, m.fail(ctx, "sqlMailbox.CreateFolder", err, "failed to create folder")
	}
	return fid, nil
}

func (m *sqlMailbox) insertFolder(ctx context.Context, q querier, fid, parent, cn uint64, props mapi.TPropvalArray) error {
	name, _ := props.String(mapi.PrDisplayName)
	folderType, ok := props.Uint32(mapi.PrFolderType)
	if !ok {
		folderType = mapi.FolderGeneric
	}
	blob, err := encodeFolderProps(props)
	if err != nil {
		return err
	}
	_, err = exec(ctx, q, m.db.builder.
		Insert("folders").
		Columns("store_id", "folder_id", "parent_id", "name", "folder_type", "change_num", "props").
		Values(m.storeID, sqlID(fid), sqlID(parent), name, int64(folderType), sqlID(cn), blob))
	if err != nil && isUniqueViolation(err) {
		return ics.ErrExists
	}
	return err
}

func (m *sqlMailbox) MoveFolder(ctx context.Context, fid, dstParent uint64, name string) error {
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := m.loadFolder(ctx, tx, fid); err != nil {
			return err
		}
		other, err := m.childByName(ctx, tx, dstParent, name)
		if err != nil {
			return err
		}
		if other != 0 && other != fid {
			return ics.ErrExists
		}
		cn, err := m.allocateCN(ctx, tx)
		if err != nil {
			return err
		}
		_, err = exec(ctx, tx, m.db.builder.
			Update("folders").
			Set("parent_id", sqlID(dstParent)).
			Set("name", name).
			Set("change_num", sqlID(cn)).
			Where(sq.Eq{"store_id": m.storeID, "folder_id": sqlID(fid)}))
		return err
	})
	if err != nil {
		return m.fail(ctx, "sqlMailbox.MoveFolder", err, "failed to move folder")
	}
	return nil
}

// descendants lists every folder below fid, parents before children.
func (m *sqlMailbox) descendants(ctx context.Context, q querier, fid uint64) ([]uint64, error) {
	var out []uint64
	queue := []uint64{fid}
	for len(queue) > 0 {
		children, err := m.subfolders(ctx, q, queue[0])
		if err != nil {
			return nil, err
		}
		queue = queue[1:]
		for _, c := range children {
			out = append(out, c.FID)
			queue = append(queue, c.FID)
		}
	}
	return out, nil
}

func (m *sqlMailbox) deleteFolderMessages(ctx context.Context, q querier, fid uint64) error {
	if _, err := exec(ctx, q, m.db.builder.
		Delete("read_states").
		Where(sq.Eq{"store_id": m.storeID}).
		Where(sq.Expr("message_id IN (SELECT message_id FROM messages WHERE store_id = ? AND folder_id = ?)", m.storeID, sqlID(fid)))); err != nil {
		return err
	}
	_, err := exec(ctx, q, m.db.builder.
		Delete("messages").
		Where(sq.Eq{"store_id": m.storeID, "folder_id": sqlID(fid)}))
	return err
}

func (m *sqlMailbox) deleteFolderRow(ctx context.Context, q querier, fid uint64) error {
	if _, err := exec(ctx, q, m.db.builder.
		Delete("permissions").
		Where(sq.Eq{"store_id": m.storeID, "folder_id": sqlID(fid)})); err != nil {
		return err
	}
	_, err := exec(ctx, q, m.db.builder.
		Delete("folders").
		Where(sq.Eq{"store_id": m.storeID, "folder_id": sqlID(fid)}))
	return err
}

func (m *sqlMailbox) emptyFolder(ctx context.Context, q querier, fid uint64) error {
	if _, err := m.loadFolder(ctx, q, fid); err != nil {
		return err
	}
	below, err := m.descendants(ctx, q, fid)
	if err != nil {
		return err
	}
	if err := m.deleteFolderMessages(ctx, q, fid); err != nil {
		return err
	}
	// children first so no row is left without its parent
	for i := len(below) - 1; i >= 0; i-- {
		if err := m.deleteFolderMessages(ctx, q, below[i]); err != nil {
			return err
		}
		if err := m.deleteFolderRow(ctx, q, below[i]); err != nil {
			return err
		}
	}
	return nil
}

// EmptyFolder removes every message and subfolder of fid. Deletion is
// always permanent; hard is accepted for interface compatibility.
func (m *sqlMailbox) EmptyFolder(ctx context.Context, fid uint64, hard bool) error {
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		return m.emptyFolder(ctx, tx, fid)
	})
	if err != nil {
		return m.fail(ctx, "sqlMailbox.EmptyFolder", err, "failed to empty folder")
	}
	return nil
}

func (m *sqlMailbox) DeleteFolder(ctx context.Context, fid uint64, hard bool) error {
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := m.emptyFolder(ctx, tx, fid); err != nil {
			return err
		}
		return m.deleteFolderRow(ctx, tx, fid)
	})
	if err != nil {
		return m.fail(ctx, "sqlMailbox.DeleteFolder", err, "failed to delete folder")
	}
	return nil
}

func (m *sqlMailbox) subfolders(ctx context.Context, q querier, fid uint64) ([]ics.FolderEntry, error) {
	rows, err := query(ctx, q, m.db.builder.
		Select("folder_id", "change_num").
		From("folders").
		Where(sq.Eq{"store_id": m.storeID, "parent_id": sqlID(fid)}).
		OrderBy("folder_id"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ics.FolderEntry
	for rows.Next() {
		var id, cn int64
		if err := rows.Scan(&id, &cn); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		out = append(out, ics.FolderEntry{FID: uint64(id), ParentFID: fid, CN: uint64(cn)})
	}
	return out, rows.Err()
}

func (m *sqlMailbox) Subfolders(ctx context.Context, fid uint64) ([]ics.FolderEntry, error) {
	out, err := m.subfolders(ctx, m.db, fid)
	if err != nil {
		return nil, m.fail(ctx, "sqlMailbox.Subfolders", err, "failed to list subfolders")
	}
	return out, nil
}

// FolderPermission returns the rights of username on fid, falling back to
// the default entry and then to no rights.
func (m *sqlMailbox) FolderPermission(ctx context.Context, fid uint64, username string) (uint32, error) {
	rows, err := query(ctx, m.db, m.db.builder.
		Select("username", "rights").
		From("permissions").
		Where(sq.Eq{"store_id": m.storeID, "folder_id": sqlID(fid), "username": []string{username, defaultPermissionUser}}))
	if err != nil {
		return 0, m.fail(ctx, "sqlMailbox.FolderPermission", err, "failed to query permissions")
	}
	defer rows.Close()

	var rights uint32
	for rows.Next() {
		var user string
		var r int64
		if err := rows.Scan(&user, &r); err != nil {
			return 0, m.fail(ctx, "sqlMailbox.FolderPermission", fmt.Errorf("%w: %w", ErrScanningRows, err), "failed to scan permission")
		}
		if user == username {
			return uint32(r), nil
		}
		rights = uint32(r)
	}
	if err := rows.Err(); err != nil {
		return 0, m.fail(ctx, "sqlMailbox.FolderPermission", err, "failed to iterate permissions")
	}
	return rights, nil
}

// SetPermission stores the rights of username on fid.
func (m *sqlMailbox) SetPermission(ctx context.Context, fid uint64, username string, rights uint32) error {
	_, err := exec(ctx, m.db, m.db.builder.
		Insert("permissions").
		Columns("store_id", "folder_id", "username", "rights").
		Values(m.storeID, sqlID(fid), username, int64(rights)).
		Suffix("ON CONFLICT (store_id, folder_id, username) DO UPDATE SET rights = excluded.rights"))
	if err != nil {
		return m.fail(ctx, "sqlMailbox.SetPermission", err, "failed to store permission")
	}
	return nil
}
