package ics

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// LogonMode is how the principal reached the store.
type LogonMode uint8

const (
	LogonOwner LogonMode = iota
	LogonDelegate
	LogonGuest
)

// Logon binds a principal to one store. Replica id 1 always names the
// store itself; other replicas are resolved through a cache filled from
// the store.
type Logon struct {
	Store    Store
	Username string
	Mode     LogonMode
	Private  bool
	// AccountID is the user id of a private store or the domain id of a
	// public one.
	AccountID uint32

	mu       sync.RWMutex
	replicas map[uint16]mapi.GUID
}

// NewLogon returns a logon with the given known replica mapping.
func NewLogon(store Store, username string, mode LogonMode, private bool, accountID uint32, replicas map[uint16]mapi.GUID) *Logon {
	l := &Logon{
		Store:     store,
		Username:  username,
		Mode:      mode,
		Private:   private,
		AccountID: accountID,
		replicas:  make(map[uint16]mapi.GUID, len(replicas)),
	}
	for id, g := range replicas {
		l.replicas[id] = g
	}
	return l
}

// IsOwner reports whether permission checks are bypassed.
func (l *Logon) IsOwner() bool { return l.Mode == LogonOwner }

// GUID returns the replica GUID of the store.
func (l *Logon) GUID() mapi.GUID {
	if l.Private {
		return mapi.MakeUserGUID(l.AccountID)
	}
	return mapi.MakeDomainGUID(l.AccountID)
}

// ReplicaGUID maps a replica id to its GUID.
func (l *Logon) ReplicaGUID(replid uint16) (mapi.GUID, bool) {
	if replid == 1 {
		return l.GUID(), true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.replicas[replid]
	return g, ok
}

// ReplicaID maps a replica GUID to its id using the cache only.
func (l *Logon) ReplicaID(g mapi.GUID) (uint16, bool) {
	if g == l.GUID() {
		return 1, true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for id, rg := range l.replicas {
		if rg == g {
			return id, true
		}
	}
	return 0, false
}

// ResolveReplica maps a replica GUID to its id, asking the store when the
// GUID is not cached yet.
func (l *Logon) ResolveReplica(ctx context.Context, g mapi.GUID) (uint16, bool, error) {
	if id, ok := l.ReplicaID(g); ok {
		return id, true, nil
	}
	id, ok, err := l.Store.ReplicaID(ctx, g)
	if err != nil {
		return 0, false, fmt.Errorf("resolve replica %s: %w", g, err)
	}
	if !ok {
		return 0, false, nil
	}
	l.mu.Lock()
	l.replicas[id] = g
	l.mu.Unlock()
	return id, true, nil
}

// permission returns the rights of the principal on a folder. Owners hold
// every right.
func (l *Logon) permission(ctx context.Context, fid uint64) (uint32, error) {
	if l.IsOwner() {
		return mapi.RightsAll, nil
	}
	return l.Store.FolderPermission(ctx, fid, l.Username)
}

// SourceKey returns the 22-byte XID naming an object of this store or of a
// known replica.
func (l *Logon) SourceKey(eid uint64) ([]byte, bool) {
	g, ok := l.ReplicaGUID(mapi.ReplID(eid))
	if !ok {
		return nil, false
	}
	return mapi.MakeXID(g, eid).Bytes(), true
}
