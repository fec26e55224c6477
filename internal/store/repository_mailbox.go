package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/models"
)

// defaultFolder is one entry of the folder tree a new store starts with.
type defaultFolder struct {
	gc, parent uint64
	name       string
	root       bool
}

var privateFolders = []defaultFolder{
	{gc: mapi.PrivateFIDRoot, name: "Root Container", root: true},
	{gc: mapi.PrivateFIDDeferredAction, parent: mapi.PrivateFIDRoot, name: "Deferred Action"},
	{gc: mapi.PrivateFIDSpoolerQueue, parent: mapi.PrivateFIDRoot, name: "Spooler Queue"},
	{gc: mapi.PrivateFIDShortcuts, parent: mapi.PrivateFIDRoot, name: "Shortcuts"},
	{gc: mapi.PrivateFIDFinder, parent: mapi.PrivateFIDRoot, name: "Finder"},
	{gc: mapi.PrivateFIDViews, parent: mapi.PrivateFIDRoot, name: "Views"},
	{gc: mapi.PrivateFIDCommonViews, parent: mapi.PrivateFIDRoot, name: "Common Views"},
	{gc: mapi.PrivateFIDSchedule, parent: mapi.PrivateFIDRoot, name: "Schedule"},
	{gc: mapi.PrivateFIDIPMSubtree, parent: mapi.PrivateFIDRoot, name: "Top of Information Store"},
	{gc: mapi.PrivateFIDSentItems, parent: mapi.PrivateFIDIPMSubtree, name: "Sent Items"},
	{gc: mapi.PrivateFIDDeletedItems, parent: mapi.PrivateFIDIPMSubtree, name: "Deleted Items"},
	{gc: mapi.PrivateFIDOutbox, parent: mapi.PrivateFIDIPMSubtree, name: "Outbox"},
	{gc: mapi.PrivateFIDInbox, parent: mapi.PrivateFIDIPMSubtree, name: "Inbox"},
	{gc: mapi.PrivateFIDDraft, parent: mapi.PrivateFIDIPMSubtree, name: "Drafts"},
	{gc: mapi.PrivateFIDCalendar, parent: mapi.PrivateFIDIPMSubtree, name: "Calendar"},
}

var publicFolders = []defaultFolder{
	{gc: mapi.PublicFIDRoot, name: "Root Container", root: true},
	{gc: mapi.PublicFIDIPMSubtree, parent: mapi.PublicFIDRoot, name: "IPM_SUBTREE"},
	{gc: mapi.PublicFIDNonIPMSubtree, parent: mapi.PublicFIDRoot, name: "NON_IPM_SUBTREE"},
	{gc: mapi.PublicFIDEFormsRegistry, parent: mapi.PublicFIDNonIPMSubtree, name: "EFORMS REGISTRY"},
}

// publicDefaultRights is what every user may do in the IPM subtree of a
// new public store.
const publicDefaultRights = mapi.RightsVisible | mapi.RightsReadAny | mapi.RightsCreate |
	mapi.RightsEditOwned | mapi.RightsDeleteOwned

var storeColumns = []string{"store_id", "account_id", "private", "owner", "domain_id", "quota_kib"}

type mailboxRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewMailboxRepository(db *DB, logger *logger.Logger) MailboxRepository {
	logger.Debug().Msg("creating mailbox repository")
	return &mailboxRepository{db: db, logger: logger}
}

func (r *mailboxRepository) Open(store models.Store, username string) Mailbox {
	return &sqlMailbox{db: r.db, storeID: store.StoreID, username: username, guid: replicaGUID(store)}
}

func (r *mailboxRepository) CreateDomain(ctx context.Context, domain models.Domain, quotaKiB uint32) (models.Store, error) {
	var created models.Store
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := exec(ctx, tx, r.db.builder.
			Insert("domains").
			Columns("domain_id", "org_id", "name").
			Values(int64(domain.DomainID), int64(domain.OrgID), domain.Name)); err != nil {
			if isUniqueViolation(err) {
				return ErrStoreExists
			}
			return err
		}
		store := models.Store{AccountID: domain.DomainID, DomainID: domain.DomainID, QuotaKiB: quotaKiB}
		var err error
		created, err = r.provision(ctx, tx, store, publicFolders, mapi.PublicFIDCustom)
		if err != nil {
			return err
		}
		_, err = exec(ctx, tx, r.db.builder.
			Insert("permissions").
			Columns("store_id", "folder_id", "username", "rights").
			Values(created.StoreID, sqlID(mapi.MakeEID(1, mapi.PublicFIDIPMSubtree)), defaultPermissionUser, int64(publicDefaultRights)))
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mailboxRepository.CreateDomain").
			Uint32("domain_id", domain.DomainID).
			Msg("failed to create domain")
		return models.Store{}, fmt.Errorf("create domain: %w", err)
	}
	return created, nil
}

func (r *mailboxRepository) ProvisionPrivate(ctx context.Context, user models.User, domainID, quotaKiB uint32) (models.Store, error) {
	var created models.Store
	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		store := models.Store{
			AccountID: uint32(user.UserID),
			Private:   true,
			Owner:     user.Login,
			DomainID:  domainID,
			QuotaKiB:  quotaKiB,
		}
		var err error
		created, err = r.provision(ctx, tx, store, privateFolders, mapi.PrivateFIDCustom)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "mailboxRepository.ProvisionPrivate").
			Str("login", user.Login).
			Msg("failed to provision private store")
		return models.Store{}, fmt.Errorf("provision private store: %w", err)
	}
	return created, nil
}

// provision inserts the store row, its allocators and its folder tree.
func (r *mailboxRepository) provision(ctx context.Context, tx *sql.Tx, store models.Store, folders []defaultFolder, firstCustom uint64) (models.Store, error) {
	row, err := queryRow(ctx, tx, r.db.builder.
		Insert("stores").
		Columns("account_id", "private", "owner", "domain_id", "quota_kib").
		Values(int64(store.AccountID), store.Private, store.Owner, int64(store.DomainID), int64(store.QuotaKiB)).
		Suffix("RETURNING store_id"))
	if err != nil {
		return models.Store{}, err
	}
	if err := row.Scan(&store.StoreID); err != nil {
		if isUniqueViolation(err) {
			return models.Store{}, ErrStoreExists
		}
		return models.Store{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if _, err := exec(ctx, tx, r.db.builder.
		Insert("allocators").
		Columns("store_id", "name", "next_value").
		Values(store.StoreID, allocatorCN, int64(1)).
		Values(store.StoreID, allocatorEID, int64(firstCustom))); err != nil {
		return models.Store{}, err
	}

	mb := &sqlMailbox{db: r.db, storeID: store.StoreID, username: store.Owner, guid: replicaGUID(store)}
	for _, f := range folders {
		cn, err := mb.allocateCN(ctx, tx)
		if err != nil {
			return models.Store{}, err
		}
		var parent uint64
		if f.parent != 0 {
			parent = mapi.MakeEID(1, f.parent)
		}
		folderType := mapi.FolderGeneric
		if f.root {
			folderType = mapi.FolderRoot
		}
		props := mapi.TPropvalArray{
			{Tag: mapi.PrDisplayName, Value: f.name},
			{Tag: mapi.PrFolderType, Value: folderType},
		}
		mb.stampChange(&props, nil, cn)
		if err := mb.insertFolder(ctx, tx, mapi.MakeEID(1, f.gc), parent, cn, props); err != nil {
			return models.Store{}, err
		}
	}
	return store, nil
}

func (r *mailboxRepository) FindStore(ctx context.Context, accountID uint32, private bool) (models.Store, error) {
	row, err := queryRow(ctx, r.db, r.db.builder.
		Select(storeColumns...).
		From("stores").
		Where(sq.Eq{"account_id": int64(accountID), "private": private}))
	if err != nil {
		return models.Store{}, err
	}
	var s models.Store
	var account, domain, quota int64
	if err := row.Scan(&s.StoreID, &account, &s.Private, &s.Owner, &domain, &quota); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Store{}, ErrStoreNotFound
		}
		logger.FromContext(ctx).Err(err).
			Str("func", "mailboxRepository.FindStore").
			Uint32("account_id", accountID).
			Msg("failed to load store")
		return models.Store{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	s.AccountID, s.DomainID, s.QuotaKiB = uint32(account), uint32(domain), uint32(quota)
	return s, nil
}

func (r *mailboxRepository) Replicas(ctx context.Context, storeID int64) (map[uint16]mapi.GUID, error) {
	rows, err := query(ctx, r.db, r.db.builder.
		Select("replid", "guid").
		From("replica_mapping").
		Where(sq.Eq{"store_id": storeID}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint16]mapi.GUID)
	for rows.Next() {
		var id int64
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		g, err := mapi.GUIDFromBytes(raw)
		if err != nil {
			return nil, err
		}
		out[uint16(id)] = g
	}
	return out, rows.Err()
}
