package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/models"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetServerInfo(ctx context.Context) models.ServerInfo
}

// MessageMove is the payload of SyncImportMessageMove. Every id is a
// 22-byte XID except ChangeNumber, which may be shorter.
type MessageMove struct {
	SourceFolder  []byte
	SourceMessage []byte
	ChangeList    []byte
	DestMessage   []byte
	ChangeNumber  []byte
}

// PutBufferResult is the outcome of FastTransferDestPutBuffer.
type PutBufferResult struct {
	Status   ics.TransferStatus
	Progress uint16
	Total    uint16
	Used     uint16
}

// RopService runs remote operations against per-session handle tables.
// The principal is the login stored in the context by the transport.
// Protocol outcomes are returned as [mapi.ErrorCode] errors; map them with
// [ResultCode].
type RopService interface {
	OpenSession(ctx context.Context) (string, error)
	CloseSession(ctx context.Context, sid string) error

	// Logon opens the private store of accountID, or the public store of
	// domain accountID, and returns the logon handle.
	Logon(ctx context.Context, sid string, private bool, accountID uint32) (uint32, error)
	OpenFolder(ctx context.Context, sid string, hin uint32, fid uint64) (uint32, error)
	OpenMessage(ctx context.Context, sid string, hin uint32, fid, mid uint64) (uint32, error)
	// CreateMessage opens a new message in fid and returns its handle and
	// the id reserved for it.
	CreateMessage(ctx context.Context, sid string, hin uint32, fid uint64, associated bool) (uint32, uint64, error)
	OpenAttachment(ctx context.Context, sid string, hin uint32, num uint32) (uint32, error)
	// Release drops a handle and every object opened through it.
	Release(ctx context.Context, sid string, hin uint32) error
	SetMessageProperties(ctx context.Context, sid string, hin uint32, props mapi.TPropvalArray) error
	SaveChangesMessage(ctx context.Context, sid string, hin uint32) (uint64, error)
	// SetFolderPermission grants rights on a folder to username. Only
	// owners may change permissions.
	SetFolderPermission(ctx context.Context, sid string, hin uint32, username string, rights uint32) error

	FastTransferDestConfigure(ctx context.Context, sid string, hin uint32, sourceOp, flags uint8) (uint32, error)
	FastTransferDestPutBuffer(ctx context.Context, sid string, hin uint32, data []byte) (PutBufferResult, error)
	FastTransferSourceGetBuffer(ctx context.Context, sid string, hin uint32, requested, maxSize uint16) (ics.Chunk, error)
	FastTransferSourceCopyFolder(ctx context.Context, sid string, hin uint32, flags, sendOptions uint8) (uint32, error)
	FastTransferSourceCopyMessages(ctx context.Context, sid string, hin uint32, mids []uint64, flags, sendOptions uint8) (uint32, error)
	FastTransferSourceCopyTo(ctx context.Context, sid string, hin uint32, level uint8, flags uint32, sendOptions uint8, excluded []mapi.PropTag) (uint32, error)
	FastTransferSourceCopyProperties(ctx context.Context, sid string, hin uint32, level, flags, sendOptions uint8, tags []mapi.PropTag) (uint32, error)
	TellVersion(ctx context.Context, sid string, hin uint32, version [3]uint16) error

	SyncConfigure(ctx context.Context, sid string, hin uint32, cfg ics.DownloadConfig) (uint32, error)
	SyncImportMessageChange(ctx context.Context, sid string, hin uint32, flags uint8, props mapi.TPropvalArray) (uint32, error)
	SyncImportReadStateChanges(ctx context.Context, sid string, hin uint32, stats []ics.ReadStat) error
	SyncImportHierarchyChange(ctx context.Context, sid string, hin uint32, hier, props mapi.TPropvalArray) (uint64, error)
	SyncImportDeletes(ctx context.Context, sid string, hin uint32, flags uint8, props mapi.TPropvalArray) error
	// SyncImportMessageMove returns mapi.SyncWClientChangeNewer when the
	// client's version of the message is newer; the move still happened.
	SyncImportMessageMove(ctx context.Context, sid string, hin uint32, move MessageMove) (uint64, error)
	SyncOpenCollector(ctx context.Context, sid string, hin uint32, contents bool) (uint32, error)
	SyncGetTransferState(ctx context.Context, sid string, hin uint32) (uint32, error)
	SyncUploadStateStreamBegin(ctx context.Context, sid string, hin uint32, tag mapi.PropTag, size uint32) error
	SyncUploadStateStreamContinue(ctx context.Context, sid string, hin uint32, data []byte) error
	SyncUploadStateStreamEnd(ctx context.Context, sid string, hin uint32) error

	SetLocalReplicaMidsetDeleted(ctx context.Context, sid string, hin uint32) error
	// GetLocalReplicaIDs reserves count ids and returns the replica GUID
	// and the global counter of the first one.
	GetLocalReplicaIDs(ctx context.Context, sid string, hin uint32, count uint32) (mapi.GUID, [6]byte, error)
	GetStoreStat(ctx context.Context, sid string, hin uint32) error
}

// SessionJanitor is what the background workers need from the ROP layer.
type SessionJanitor interface {
	ExpireIdle(now time.Time, idle time.Duration) int
}
