package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/models"
)

// Allocator rows of a store.
const (
	allocatorCN  = "cn"
	allocatorEID = "eid"
)

const (
	firstForeignReplica uint16 = 2
	firstNamedPropID    uint16 = 0x8000
	lastNamedPropID     uint16 = 0xFFFE
)

// sqlMailbox is the SQL implementation of [ics.Store] for one store, seen
// by one principal. Entry ids and change numbers are kept in BIGINT columns
// as the bit pattern of their 64-bit form.
type sqlMailbox struct {
	db       *DB
	storeID  int64
	username string
	guid     mapi.GUID
}

func replicaGUID(store models.Store) mapi.GUID {
	if store.Private {
		return mapi.MakeUserGUID(store.AccountID)
	}
	return mapi.MakeDomainGUID(store.AccountID)
}

// stampChange records change cn in props. A change key that came with the
// update is kept along with its change list. Otherwise cn becomes the
// change key and is merged into the predecessor change list.
func (m *sqlMailbox) stampChange(props *mapi.TPropvalArray, update mapi.TPropvalArray, cn uint64) {
	if update.Has(mapi.PrChangeKey) && update.Has(mapi.PrPredecessorChangeList) {
		return
	}
	key := mapi.MakeXID(m.guid, cn)
	if b, ok := update.Binary(mapi.PrChangeKey); ok {
		if x, err := mapi.XIDFromBytes(b); err == nil {
			key = x
		}
	}
	var pcl ics.PCL
	if b, ok := props.Binary(mapi.PrPredecessorChangeList); ok {
		pcl, _ = ics.ParsePCL(b)
	}
	props.Set(mapi.PrChangeKey, key.Bytes())
	props.Set(mapi.PrPredecessorChangeList, pcl.Merge(key).Bytes())
}

var _ ics.Store = (*sqlMailbox)(nil)

func (m *sqlMailbox) fail(ctx context.Context, fn string, err error, msg string) error {
	logger.FromContext(ctx).Err(err).
		Str("func", fn).
		Int64("store_id", m.storeID).
		Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}

// allocate advances an allocator by count and returns the first reserved
// value.
func (m *sqlMailbox) allocate(ctx context.Context, q querier, name string, count uint64) (uint64, error) {
	row, err := queryRow(ctx, q, m.db.builder.
		Update("allocators").
		Set("next_value", sq.Expr("next_value + ?", int64(count))).
		Where(sq.Eq{"store_id": m.storeID, "name": name}).
		Suffix("RETURNING next_value"))
	if err != nil {
		return 0, err
	}
	var next int64
	if err := row.Scan(&next); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrStoreNotFound
		}
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return uint64(next) - count, nil
}

func (m *sqlMailbox) allocateCN(ctx context.Context, q querier) (uint64, error) {
	gc, err := m.allocate(ctx, q, allocatorCN, 1)
	if err != nil {
		return 0, err
	}
	return mapi.MakeEID(1, gc), nil
}

func (m *sqlMailbox) AllocateCN(ctx context.Context) (uint64, error) {
	cn, err := m.allocateCN(ctx, m.db)
	if err != nil {
		return 0, m.fail(ctx, "sqlMailbox.AllocateCN", err, "failed to allocate change number")
	}
	return cn, nil
}

func (m *sqlMailbox) AllocateIDs(ctx context.Context, count uint32) (uint64, error) {
	if count == 0 {
		return 0, mapi.EcInvalidParam
	}
	gc, err := m.allocate(ctx, m.db, allocatorEID, uint64(count))
	if err != nil {
		return 0, m.fail(ctx, "sqlMailbox.AllocateIDs", err, "failed to allocate ids")
	}
	return mapi.MakeEID(1, gc), nil
}

// ReplicaID looks a GUID up in the replica table and registers it under
// the next free id when it is new. The second result is false when the
// id range is used up.
func (m *sqlMailbox) ReplicaID(ctx context.Context, g mapi.GUID) (uint16, bool, error) {
	var id uint16
	var ok bool
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		row, err := queryRow(ctx, tx, m.db.builder.
			Select("replid").
			From("replica_mapping").
			Where(sq.Eq{"store_id": m.storeID, "guid": g.Bytes()}))
		if err != nil {
			return err
		}
		var existing int64
		switch err := row.Scan(&existing); {
		case err == nil:
			id, ok = uint16(existing), true
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		row, err = queryRow(ctx, tx, m.db.builder.
			Select("COALESCE(MAX(replid), 0)").
			From("replica_mapping").
			Where(sq.Eq{"store_id": m.storeID}))
		if err != nil {
			return err
		}
		var maxID int64
		if err := row.Scan(&maxID); err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		next := max(maxID+1, int64(firstForeignReplica))
		if next > 0xFFFF {
			return nil
		}
		if _, err := exec(ctx, tx, m.db.builder.
			Insert("replica_mapping").
			Columns("store_id", "replid", "guid").
			Values(m.storeID, next, g.Bytes())); err != nil {
			return err
		}
		id, ok = uint16(next), true
		return nil
	})
	if err != nil {
		return 0, false, m.fail(ctx, "sqlMailbox.ReplicaID", err, "failed to map replica")
	}
	return id, ok, nil
}

// orgOf returns the organization of a domain, or 0 for an unknown one.
func (m *sqlMailbox) orgOf(ctx context.Context, domainID int64) (int64, error) {
	row, err := queryRow(ctx, m.db, m.db.builder.
		Select("org_id").
		From("domains").
		Where(sq.Eq{"domain_id": domainID}))
	if err != nil {
		return 0, err
	}
	var org int64
	if err := row.Scan(&org); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return org, nil
}

func (m *sqlMailbox) SameOrganization(ctx context.Context, domainID uint32) (bool, error) {
	row, err := queryRow(ctx, m.db, m.db.builder.
		Select("domain_id").
		From("stores").
		Where(sq.Eq{"store_id": m.storeID}))
	if err != nil {
		return false, m.fail(ctx, "sqlMailbox.SameOrganization", err, "failed to build query")
	}
	var own int64
	if err := row.Scan(&own); err != nil {
		return false, m.fail(ctx, "sqlMailbox.SameOrganization", err, "failed to load store domain")
	}
	if own == int64(domainID) {
		return true, nil
	}
	ownOrg, err := m.orgOf(ctx, own)
	if err != nil {
		return false, m.fail(ctx, "sqlMailbox.SameOrganization", err, "failed to load organization")
	}
	otherOrg, err := m.orgOf(ctx, int64(domainID))
	if err != nil {
		return false, m.fail(ctx, "sqlMailbox.SameOrganization", err, "failed to load organization")
	}
	return ownOrg != 0 && ownOrg == otherOrg, nil
}

func (m *sqlMailbox) StoreProps(ctx context.Context, tags []mapi.PropTag) (mapi.TPropvalArray, error) {
	row, err := queryRow(ctx, m.db, m.db.builder.
		Select("quota_kib").
		From("stores").
		Where(sq.Eq{"store_id": m.storeID}))
	if err != nil {
		return nil, m.fail(ctx, "sqlMailbox.StoreProps", err, "failed to build query")
	}
	var quota int64
	if err := row.Scan(&quota); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrStoreNotFound
		}
		return nil, m.fail(ctx, "sqlMailbox.StoreProps", err, "failed to load store")
	}

	row, err = queryRow(ctx, m.db, m.db.builder.
		Select(
			"COALESCE(SUM(size), 0)",
			"COALESCE(SUM(CASE WHEN associated THEN 0 ELSE 1 END), 0)",
			"COALESCE(SUM(CASE WHEN associated THEN 1 ELSE 0 END), 0)",
		).
		From("messages").
		Where(sq.Eq{"store_id": m.storeID}))
	if err != nil {
		return nil, m.fail(ctx, "sqlMailbox.StoreProps", err, "failed to build query")
	}
	var size, normal, assoc int64
	if err := row.Scan(&size, &normal, &assoc); err != nil {
		return nil, m.fail(ctx, "sqlMailbox.StoreProps", err, "failed to count messages")
	}

	props := mapi.TPropvalArray{
		{Tag: mapi.PrMessageSizeExtended, Value: uint64(size)},
		{Tag: mapi.PrContentCount, Value: uint32(normal)},
		{Tag: mapi.PrAssocContentCount, Value: uint32(assoc)},
	}
	if quota > 0 {
		props = append(props, mapi.TaggedPropval{Tag: mapi.PrStorageQuotaLimit, Value: uint32(quota)})
	}
	return pick(props, tags), nil
}

func (m *sqlMailbox) NamedPropNames(ctx context.Context, ids []uint16) (map[uint16]mapi.PropertyName, error) {
	out := make(map[uint16]mapi.PropertyName, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]int64, len(ids))
	for i, id := range ids {
		keys[i] = int64(id)
	}
	rows, err := query(ctx, m.db, m.db.builder.
		Select("prop_id", "kind", "guid", "lid", "name").
		From("named_props").
		Where(sq.Eq{"store_id": m.storeID, "prop_id": keys}))
	if err != nil {
		return nil, m.fail(ctx, "sqlMailbox.NamedPropNames", err, "failed to query named properties")
	}
	defer rows.Close()

	for rows.Next() {
		var id, kind, lid int64
		var guid []byte
		var name string
		if err := rows.Scan(&id, &kind, &guid, &lid, &name); err != nil {
			return nil, m.fail(ctx, "sqlMailbox.NamedPropNames", fmt.Errorf("%w: %w", ErrScanningRows, err), "failed to scan named property")
		}
		g, err := mapi.GUIDFromBytes(guid)
		if err != nil {
			return nil, m.fail(ctx, "sqlMailbox.NamedPropNames", err, "bad named property guid")
		}
		out[uint16(id)] = mapi.PropertyName{Kind: uint8(kind), GUID: g, LID: uint32(lid), Name: name}
	}
	if err := rows.Err(); err != nil {
		return nil, m.fail(ctx, "sqlMailbox.NamedPropNames", err, "failed to iterate named properties")
	}
	return out, nil
}

// normalizeName clears the field the kind does not use.
func normalizeName(n mapi.PropertyName) mapi.PropertyName {
	if n.Kind == mapi.MnidID {
		n.Name = ""
	} else {
		n.LID = 0
	}
	return n
}

// NamedPropIDs maps names to property ids, registering unknown names.
// Names that cannot be registered map to 0.
func (m *sqlMailbox) NamedPropIDs(ctx context.Context, names []mapi.PropertyName) ([]uint16, error) {
	ids := make([]uint16, len(names))
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		for i, name := range names {
			id, err := m.namedPropID(ctx, tx, normalizeName(name))
			if err != nil {
				return err
			}
			ids[i] = id
		}
		return nil
	})
	if err != nil {
		return nil, m.fail(ctx, "sqlMailbox.NamedPropIDs", err, "failed to map named properties")
	}
	return ids, nil
}

func (m *sqlMailbox) namedPropID(ctx context.Context, tx querier, name mapi.PropertyName) (uint16, error) {
	row, err := queryRow(ctx, tx, m.db.builder.
		Select("prop_id").
		From("named_props").
		Where(sq.Eq{
			"store_id": m.storeID,
			"kind":     int64(name.Kind),
			"guid":     name.GUID.Bytes(),
			"lid":      int64(name.LID),
			"name":     name.Name,
		}))
	if err != nil {
		return 0, err
	}
	var id int64
	switch err := row.Scan(&id); {
	case err == nil:
		return uint16(id), nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	row, err = queryRow(ctx, tx, m.db.builder.
		Select("COALESCE(MAX(prop_id), 0)").
		From("named_props").
		Where(sq.Eq{"store_id": m.storeID}))
	if err != nil {
		return 0, err
	}
	var maxID int64
	if err := row.Scan(&maxID); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	next := max(maxID+1, int64(firstNamedPropID))
	if next > int64(lastNamedPropID) {
		return 0, nil
	}
	if _, err := exec(ctx, tx, m.db.builder.
		Insert("named_props").
		Columns("store_id", "prop_id", "kind", "guid", "lid", "name").
		Values(m.storeID, next, int64(name.Kind), name.GUID.Bytes(), int64(name.LID), name.Name)); err != nil {
		return 0, err
	}
	return uint16(next), nil
}
