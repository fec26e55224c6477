package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/models"
)

const testStoreID int64 = 7

func newTestMailbox(t *testing.T) (*sqlMailbox, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return &sqlMailbox{db: db, storeID: testStoreID, username: "alice"}, mock
}

func emptyPropsBlob(t *testing.T) []byte {
	t.Helper()
	b, err := encodeProps(nil)
	require.NoError(t, err)
	return b
}

// ─── allocators ───

func TestAllocateIDs(t *testing.T) {
	mb, mock := newTestMailbox(t)

	mock.ExpectQuery("UPDATE allocators SET next_value = next_value").
		WithArgs(int64(5), allocatorEID, testStoreID).
		WillReturnRows(sqlmock.NewRows([]string{"next_value"}).AddRow(int64(0x105)))

	first, err := mb.AllocateIDs(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, mapi.MakeEID(1, 0x100), first)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateIDs_Zero(t *testing.T) {
	mb, mock := newTestMailbox(t)

	_, err := mb.AllocateIDs(context.Background(), 0)
	assert.ErrorIs(t, err, mapi.EcInvalidParam)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocateCN(t *testing.T) {
	t.Run("returns change number in eid form", func(t *testing.T) {
		mb, mock := newTestMailbox(t)
		mock.ExpectQuery("UPDATE allocators").
			WithArgs(int64(1), allocatorCN, testStoreID).
			WillReturnRows(sqlmock.NewRows([]string{"next_value"}).AddRow(int64(43)))

		cn, err := mb.AllocateCN(context.Background())
		require.NoError(t, err)
		assert.Equal(t, mapi.MakeEID(1, 42), cn)
	})

	t.Run("unknown store", func(t *testing.T) {
		mb, mock := newTestMailbox(t)
		mock.ExpectQuery("UPDATE allocators").
			WillReturnRows(sqlmock.NewRows([]string{"next_value"}))

		_, err := mb.AllocateCN(context.Background())
		assert.ErrorIs(t, err, ErrStoreNotFound)
	})
}

// ─── replicas ───

func TestReplicaID(t *testing.T) {
	g := mapi.NewGUID()

	t.Run("known guid", func(t *testing.T) {
		mb, mock := newTestMailbox(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT replid FROM replica_mapping").
			WithArgs(g.Bytes(), testStoreID).
			WillReturnRows(sqlmock.NewRows([]string{"replid"}).AddRow(int64(3)))
		mock.ExpectCommit()

		id, ok, err := mb.ReplicaID(context.Background(), g)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, uint16(3), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first foreign guid gets id 2", func(t *testing.T) {
		mb, mock := newTestMailbox(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT replid FROM replica_mapping").
			WillReturnRows(sqlmock.NewRows([]string{"replid"}))
		mock.ExpectQuery("SELECT COALESCE\\(MAX\\(replid\\), 0\\) FROM replica_mapping").
			WithArgs(testStoreID).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(0)))
		mock.ExpectExec("INSERT INTO replica_mapping").
			WithArgs(testStoreID, int64(2), g.Bytes()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		id, ok, err := mb.ReplicaID(context.Background(), g)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, uint16(2), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("id space exhausted", func(t *testing.T) {
		mb, mock := newTestMailbox(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT replid FROM replica_mapping").
			WillReturnRows(sqlmock.NewRows([]string{"replid"}))
		mock.ExpectQuery("SELECT COALESCE").
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(0xFFFF)))
		mock.ExpectCommit()

		_, ok, err := mb.ReplicaID(context.Background(), g)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// ─── permissions ───

func TestFolderPermission(t *testing.T) {
	fid := mapi.MakeEID(1, mapi.PrivateFIDInbox)

	tests := []struct {
		name string
		rows [][2]any
		want uint32
	}{
		{
			name: "own entry wins over default",
			rows: [][2]any{{defaultPermissionUser, int64(mapi.RightsReadAny)}, {"bob", int64(mapi.RightsAll)}},
			want: mapi.RightsAll,
		},
		{
			name: "falls back to default",
			rows: [][2]any{{defaultPermissionUser, int64(mapi.RightsVisible)}},
			want: mapi.RightsVisible,
		},
		{
			name: "no entries",
			want: mapi.RightsNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mb, mock := newTestMailbox(t)
			rows := sqlmock.NewRows([]string{"username", "rights"})
			for _, r := range tt.rows {
				rows.AddRow(r[0], r[1])
			}
			mock.ExpectQuery("SELECT username, rights FROM permissions").
				WithArgs(sqlID(fid), testStoreID, "bob", defaultPermissionUser).
				WillReturnRows(rows)

			got, err := mb.FolderPermission(context.Background(), fid, "bob")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetPermission(t *testing.T) {
	mb, mock := newTestMailbox(t)
	fid := mapi.MakeEID(1, mapi.PrivateFIDCalendar)

	mock.ExpectExec("INSERT INTO permissions .* ON CONFLICT").
		WithArgs(testStoreID, sqlID(fid), "bob", int64(mapi.RightsReadAny)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, mb.SetPermission(context.Background(), fid, "bob", mapi.RightsReadAny))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── folders ───

func TestCreateFolder_MissingName(t *testing.T) {
	mb, mock := newTestMailbox(t)

	_, err := mb.CreateFolder(context.Background(), mapi.MakeEID(1, mapi.PrivateFIDIPMSubtree), nil)
	assert.ErrorIs(t, err, mapi.EcInvalidParam)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFolder_NameTaken(t *testing.T) {
	mb, mock := newTestMailbox(t)
	parent := mapi.MakeEID(1, mapi.PrivateFIDIPMSubtree)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT parent_id, name, folder_type, change_num, props FROM folders").
		WillReturnRows(sqlmock.NewRows([]string{"parent_id", "name", "folder_type", "change_num", "props"}).
			AddRow(sqlID(mapi.MakeEID(1, mapi.PrivateFIDRoot)), "Top of Information Store", int64(mapi.FolderGeneric), int64(9), emptyPropsBlob(t)))
	mock.ExpectQuery("SELECT folder_id FROM folders").
		WithArgs("Projects", sqlID(parent), testStoreID).
		WillReturnRows(sqlmock.NewRows([]string{"folder_id"}).AddRow(int64(0x42)))
	mock.ExpectRollback()

	_, err := mb.CreateFolder(context.Background(), parent, mapi.TPropvalArray{
		{Tag: mapi.PrDisplayName, Value: "Projects"},
	})
	assert.ErrorIs(t, err, ics.ErrExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFolder_ParentMissing(t *testing.T) {
	mb, mock := newTestMailbox(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT parent_id").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := mb.CreateFolder(context.Background(), 0x99, mapi.TPropvalArray{
		{Tag: mapi.PrDisplayName, Value: "Projects"},
	})
	assert.ErrorIs(t, err, ics.ErrNotFound)
}

func TestFolderExists(t *testing.T) {
	mb, mock := newTestMailbox(t)
	mock.ExpectQuery("SELECT parent_id").WillReturnError(sql.ErrNoRows)

	ok, err := mb.FolderExists(context.Background(), 0x1234)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ─── store ───

func TestStoreProps(t *testing.T) {
	t.Run("with quota", func(t *testing.T) {
		mb, mock := newTestMailbox(t)
		mock.ExpectQuery("SELECT quota_kib FROM stores").
			WithArgs(testStoreID).
			WillReturnRows(sqlmock.NewRows([]string{"quota_kib"}).AddRow(int64(1024)))
		mock.ExpectQuery("FROM messages").
			WithArgs(testStoreID).
			WillReturnRows(sqlmock.NewRows([]string{"size", "normal", "assoc"}).AddRow(int64(4096), int64(3), int64(1)))

		props, err := mb.StoreProps(context.Background(), nil)
		require.NoError(t, err)

		size, _ := props.Uint64(mapi.PrMessageSizeExtended)
		assert.Equal(t, uint64(4096), size)
		normal, _ := props.Uint32(mapi.PrContentCount)
		assert.Equal(t, uint32(3), normal)
		quota, ok := props.Uint32(mapi.PrStorageQuotaLimit)
		assert.True(t, ok)
		assert.Equal(t, uint32(1024), quota)
	})

	t.Run("unlimited store has no quota property", func(t *testing.T) {
		mb, mock := newTestMailbox(t)
		mock.ExpectQuery("SELECT quota_kib FROM stores").
			WillReturnRows(sqlmock.NewRows([]string{"quota_kib"}).AddRow(int64(0)))
		mock.ExpectQuery("FROM messages").
			WillReturnRows(sqlmock.NewRows([]string{"size", "normal", "assoc"}).AddRow(int64(0), int64(0), int64(0)))

		props, err := mb.StoreProps(context.Background(), []mapi.PropTag{mapi.PrStorageQuotaLimit, mapi.PrMessageSizeExtended})
		require.NoError(t, err)
		assert.False(t, props.Has(mapi.PrStorageQuotaLimit))
		assert.Len(t, props, 1)
	})
}

func TestSameOrganization(t *testing.T) {
	mb, mock := newTestMailbox(t)
	mock.ExpectQuery("SELECT domain_id FROM stores").
		WillReturnRows(sqlmock.NewRows([]string{"domain_id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT org_id FROM domains").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"org_id"}).AddRow(int64(10)))
	mock.ExpectQuery("SELECT org_id FROM domains").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"org_id"}).AddRow(int64(10)))

	same, err := mb.SameOrganization(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, same)
}

// ─── messages ───

func TestSetReadState_PerUser(t *testing.T) {
	mb, mock := newTestMailbox(t)
	mid := mapi.MakeEID(1, 0x200)

	blob, err := encodeMessage(&mapi.MessageContent{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT folder_id, associated, change_num, read, read_cn, size, creator, content FROM messages").
		WillReturnRows(sqlmock.NewRows([]string{"folder_id", "associated", "change_num", "read", "read_cn", "size", "creator", "content"}).
			AddRow(sqlID(mapi.MakeEID(1, mapi.PrivateFIDInbox)), false, int64(5), false, int64(0), int64(len(blob)), "alice", blob))
	mock.ExpectQuery("UPDATE allocators").
		WillReturnRows(sqlmock.NewRows([]string{"next_value"}).AddRow(int64(11)))
	mock.ExpectExec("INSERT INTO read_states .* ON CONFLICT").
		WithArgs(testStoreID, sqlID(mid), "bob", true, sqlID(mapi.MakeEID(1, 10))).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cn, err := mb.SetReadState(context.Background(), "bob", mid, true)
	require.NoError(t, err)
	assert.Equal(t, mapi.MakeEID(1, 10), cn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageOwner(t *testing.T) {
	tests := []struct {
		name    string
		creator string
		user    string
		want    bool
	}{
		{name: "creator", creator: "alice", user: "alice", want: true},
		{name: "someone else", creator: "alice", user: "bob", want: false},
		{name: "unknown creator", creator: "", user: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mb, mock := newTestMailbox(t)
			mock.ExpectQuery("SELECT creator FROM messages").
				WillReturnRows(sqlmock.NewRows([]string{"creator"}).AddRow(tt.creator))

			got, err := mb.MessageOwner(context.Background(), 0x300, tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ─── repository ───

func TestFindStore(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMailboxRepository(db, logger.Nop())
		mock.ExpectQuery("SELECT store_id, account_id, private, owner, domain_id, quota_kib FROM stores").
			WithArgs(int64(12), true).
			WillReturnRows(sqlmock.NewRows(storeColumns).
				AddRow(int64(3), int64(12), true, "alice", int64(1), int64(2048)))

		s, err := repo.FindStore(context.Background(), 12, true)
		require.NoError(t, err)
		assert.Equal(t, models.Store{StoreID: 3, AccountID: 12, Private: true, Owner: "alice", DomainID: 1, QuotaKiB: 2048}, s)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewMailboxRepository(db, logger.Nop())
		mock.ExpectQuery("FROM stores").WillReturnError(sql.ErrNoRows)

		_, err := repo.FindStore(context.Background(), 12, true)
		assert.ErrorIs(t, err, ErrStoreNotFound)
	})
}

func TestProvisionPrivate(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewMailboxRepository(db, logger.Nop())

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO stores .* RETURNING store_id").
		WithArgs(int64(4), true, "alice", int64(1), int64(512)).
		WillReturnRows(sqlmock.NewRows([]string{"store_id"}).AddRow(testStoreID))
	mock.ExpectExec("INSERT INTO allocators").
		WithArgs(testStoreID, allocatorCN, int64(1), testStoreID, allocatorEID, int64(mapi.PrivateFIDCustom)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	for i, f := range privateFolders {
		mock.ExpectQuery("UPDATE allocators").
			WillReturnRows(sqlmock.NewRows([]string{"next_value"}).AddRow(int64(i + 2)))
		mock.ExpectExec("INSERT INTO folders").
			WithArgs(testStoreID, sqlID(mapi.MakeEID(1, f.gc)), sqlmock.AnyArg(), f.name, sqlmock.AnyArg(), sqlID(mapi.MakeEID(1, uint64(i+1))), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	s, err := repo.ProvisionPrivate(context.Background(), models.User{UserID: 4, Login: "alice"}, 1, 512)
	require.NoError(t, err)
	assert.Equal(t, testStoreID, s.StoreID)
	assert.True(t, s.Private)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProvisionPrivate_Exists(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewMailboxRepository(db, logger.Nop())

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO stores").
		WillReturnError(pgError("23505"))
	mock.ExpectRollback()

	_, err := repo.ProvisionPrivate(context.Background(), models.User{UserID: 4, Login: "alice"}, 1, 0)
	assert.ErrorIs(t, err, ErrStoreExists)
}
