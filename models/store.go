package models

// Store describes one mailbox: the private store of a user or the public
// store of a domain.
type Store struct {
	StoreID int64 `json:"store_id"`

	// AccountID is the user id of a private store or the domain id of a
	// public one.
	AccountID uint32 `json:"account_id"`
	Private   bool   `json:"private"`

	// Owner is the login of the owning user; empty for public stores.
	Owner string `json:"owner,omitempty"`

	// DomainID names the domain the store belongs to. Private stores of
	// users without a domain carry 0.
	DomainID uint32 `json:"domain_id"`

	// QuotaKiB is the storage limit in KiB; 0 means unlimited.
	QuotaKiB uint32 `json:"quota_kib"`
}

// Domain groups public stores by organization.
type Domain struct {
	DomainID uint32 `json:"domain_id"`
	OrgID    uint32 `json:"org_id"`
	Name     string `json:"name"`
}
