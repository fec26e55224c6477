package ics

import (
	"context"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/ics_store_mock.go -package=mock

// MessageEntry is one row of a folder content listing.
type MessageEntry struct {
	MID        uint64
	CN         uint64
	ReadCN     uint64
	Associated bool
	Read       bool
}

// FolderEntry is one row of a folder hierarchy listing.
type FolderEntry struct {
	FID       uint64
	ParentFID uint64
	CN        uint64
}

// Store is the object store a logon operates on. Every id is a full entry
// id (replica id + global counter). Methods return ErrNotFound for missing
// objects unless stated otherwise.
type Store interface {
	// AllocateCN reserves a new change number.
	AllocateCN(ctx context.Context) (uint64, error)
	// AllocateIDs reserves count consecutive ids and returns the first.
	AllocateIDs(ctx context.Context, count uint32) (uint64, error)
	// ReplicaID looks up or registers the id of a foreign replica.
	ReplicaID(ctx context.Context, g mapi.GUID) (uint16, bool, error)
	// SameOrganization reports whether a domain shares the organization of
	// the store's domain.
	SameOrganization(ctx context.Context, domainID uint32) (bool, error)
	// StoreProps returns store-level properties such as the quota and
	// message counts. Unknown tags are left out.
	StoreProps(ctx context.Context, tags []mapi.PropTag) (mapi.TPropvalArray, error)

	FolderExists(ctx context.Context, fid uint64) (bool, error)
	// FolderProps returns the requested properties, or all of them when
	// tags is nil. Missing properties are left out.
	FolderProps(ctx context.Context, fid uint64, tags []mapi.PropTag) (mapi.TPropvalArray, error)
	SetFolderProps(ctx context.Context, fid uint64, props mapi.TPropvalArray) error
	// FolderByName returns the child of parent with the given display
	// name, or 0.
	FolderByName(ctx context.Context, parent uint64, name string) (uint64, error)
	// CreateFolder creates a folder from its properties. PidTagFolderID
	// and PidTagChangeNumber are allocated when absent. It returns
	// ErrExists when the name is taken.
	CreateFolder(ctx context.Context, parent uint64, props mapi.TPropvalArray) (uint64, error)
	// MoveFolder moves fid below dstParent under a new name. It returns
	// ErrExists when the name is taken.
	MoveFolder(ctx context.Context, fid, dstParent uint64, name string) error
	// EmptyFolder deletes every message and subfolder of fid.
	EmptyFolder(ctx context.Context, fid uint64, hard bool) error
	DeleteFolder(ctx context.Context, fid uint64, hard bool) error
	// Subfolders lists the direct children of fid.
	Subfolders(ctx context.Context, fid uint64) ([]FolderEntry, error)
	FolderPermission(ctx context.Context, fid uint64, username string) (uint32, error)

	// MessageExists reports whether mid lives in fid.
	MessageExists(ctx context.Context, fid, mid uint64) (bool, error)
	// MessageProps returns the requested properties, or all of them when
	// tags is nil.
	MessageProps(ctx context.Context, mid uint64, tags []mapi.PropTag) (mapi.TPropvalArray, error)
	SetMessageProps(ctx context.Context, mid uint64, props mapi.TPropvalArray) error
	MessageOwner(ctx context.Context, mid uint64, username string) (bool, error)
	// ReadMessage loads a message with its recipients and attachments.
	ReadMessage(ctx context.Context, mid uint64) (*mapi.MessageContent, error)
	// WriteMessage stores a complete message in fid, replacing any message
	// with the same PidTagMid. A mid is allocated when the content has
	// none. A fresh change number is assigned on every write.
	WriteMessage(ctx context.Context, fid uint64, msg *mapi.MessageContent) (mid, cn uint64, err error)
	// Contents lists the messages of fid visible to username; an empty
	// username lists everything.
	Contents(ctx context.Context, fid uint64, username string) ([]MessageEntry, error)
	DeleteMessages(ctx context.Context, fid uint64, mids []uint64, hard bool) error
	// MoveMessage moves srcMID into dstFID under the id dstMID.
	MoveMessage(ctx context.Context, srcMID, dstFID, dstMID uint64) error
	// ReadState returns the read flag of mid for username (empty for the
	// store owner). It returns ErrNotFound when the message is missing.
	ReadState(ctx context.Context, username string, mid uint64) (bool, error)
	// SetReadState changes the read flag of a message for username (empty
	// for the store owner) and returns the read change number.
	SetReadState(ctx context.Context, username string, mid uint64, read bool) (uint64, error)
	// WriteAttachment replaces attachment num of a message.
	WriteAttachment(ctx context.Context, mid uint64, num uint32, att *mapi.AttachmentContent) error

	// NamedPropNames resolves named property ids. Unknown ids are left
	// out of the result.
	NamedPropNames(ctx context.Context, ids []uint16) (map[uint16]mapi.PropertyName, error)
	// NamedPropIDs maps names to ids, registering unknown names.
	NamedPropIDs(ctx context.Context, names []mapi.PropertyName) ([]uint16, error)
}
