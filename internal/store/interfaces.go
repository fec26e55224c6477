package store

import (
	"context"

	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
}

// Mailbox is an [ics.Store] with the administrative calls the ROP layer
// needs beyond synchronization.
type Mailbox interface {
	ics.Store
	SetPermission(ctx context.Context, fid uint64, username string, rights uint32) error
}

// MailboxRepository provisions stores and opens them for a principal.
type MailboxRepository interface {
	// CreateDomain registers a domain and provisions its public store.
	CreateDomain(ctx context.Context, domain models.Domain, quotaKiB uint32) (models.Store, error)
	// ProvisionPrivate creates the private store of a user with the
	// default folder tree.
	ProvisionPrivate(ctx context.Context, user models.User, domainID, quotaKiB uint32) (models.Store, error)
	// FindStore looks a store up by account id.
	FindStore(ctx context.Context, accountID uint32, private bool) (models.Store, error)
	// Replicas returns the foreign replica mapping of a store.
	Replicas(ctx context.Context, storeID int64) (map[uint16]mapi.GUID, error)
	// Open returns the store as seen by username.
	Open(store models.Store, username string) Mailbox
}
