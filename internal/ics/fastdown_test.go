package ics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-ics-sync/internal/fxstream"
	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/internal/mock"
)

func drainFastDown(t *testing.T, f *ics.FastDownContext) []fxstream.Atom {
	t.Helper()
	var data []byte
	for !f.Done() {
		chunk, err := f.GetBuffer(ics.BufferSizeUseMax, 0x1000, 0xFFFF)
		require.NoError(t, err)
		data = append(data, chunk.Data...)
	}
	atoms, err := fxstream.ReadAll(data)
	require.NoError(t, err)
	return atoms
}

func countProp(atoms []fxstream.Atom, tag mapi.PropTag) int {
	n := 0
	for _, a := range atoms {
		if !a.IsMarker() && a.Prop.Tag == tag {
			n++
		}
	}
	return n
}

// ─── LoadFolderContent ──────────────────────────────────────────────────────

func TestLoadFolderContent_GuestWithoutRights(t *testing.T) {
	ctx := context.Background()
	store := mock.NewMockStore(gomock.NewController(t))
	logon := ics.NewLogon(store, "eve", ics.LogonGuest, true, accountID, nil)

	store.EXPECT().FolderPermission(ctx, inboxID, "eve").Return(uint32(mapi.RightsVisible), nil)

	_, err := ics.LoadFolderContent(ctx, logon, inboxID, true, true, true)
	require.ErrorIs(t, err, mapi.EcAccessDenied)
}

func TestLoadFolderContent_ForeignReplica(t *testing.T) {
	ctx := context.Background()
	store := mock.NewMockStore(gomock.NewController(t))
	remote := mapi.MakeDomainGUID(77)
	logon := ics.NewLogon(store, "bob", ics.LogonOwner, true, accountID, map[uint16]mapi.GUID{5: remote})
	fid := mapi.MakeEID(5, 0x300)

	fc, err := ics.LoadFolderContent(ctx, logon, fid, true, true, true)
	require.NoError(t, err)
	require.Len(t, fc.Props, 1)

	info, ok := fc.Props.Binary(mapi.MetaTagNewFXFolder)
	require.True(t, ok)
	pull := mapi.NewPull(info, 0)
	for _, want := range []uint32{0, 0} {
		got, err := pull.Uint32()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	ltid, err := pull.LongTermID()
	require.NoError(t, err)
	assert.Equal(t, remote, ltid.GUID)
	assert.Equal(t, mapi.GCArray(0x300), ltid.GlobalCounter)

	f := ics.NewFastDownContext(logon)
	require.NoError(t, f.MakeTopFolder(ctx, fc))
	atoms := drainFastDown(t, f)
	assert.Equal(t, []string{"StartTopFld", "EndFolder"}, markers(atoms))
	assert.Equal(t, 1, countProp(atoms, mapi.MetaTagNewFXFolder))
}

// ─── FastDownContext ────────────────────────────────────────────────────────

func TestFastDown_TopFolder(t *testing.T) {
	ctx := context.Background()
	store := mock.NewMockStore(gomock.NewController(t))
	logon := ics.NewLogon(store, "bob", ics.LogonOwner, true, accountID, nil)
	childID := mapi.MakeEID(1, 0x210)
	faiID := mapi.MakeEID(1, 0x301)
	noteID := mapi.MakeEID(1, 0x302)

	store.EXPECT().FolderProps(ctx, inboxID, nil).Return(mapi.TPropvalArray{
		{Tag: mapi.PidTagFolderID, Value: inboxID},
		{Tag: mapi.PrDisplayName, Value: "Inbox"},
	}, nil)
	store.EXPECT().Contents(ctx, inboxID, "").Return([]ics.MessageEntry{
		{MID: faiID, Associated: true},
		{MID: noteID},
	}, nil)
	store.EXPECT().Subfolders(ctx, inboxID).Return([]ics.FolderEntry{{FID: childID, ParentFID: inboxID}}, nil)
	store.EXPECT().FolderProps(ctx, childID, nil).Return(mapi.TPropvalArray{
		{Tag: mapi.PrDisplayName, Value: "Projects"},
	}, nil)
	store.EXPECT().Contents(ctx, childID, "").Return(nil, nil)
	store.EXPECT().Subfolders(ctx, childID).Return(nil, nil)

	fc, err := ics.LoadFolderContent(ctx, logon, inboxID, true, true, true)
	require.NoError(t, err)
	assert.Equal(t, []uint64{faiID}, fc.FAIMessages)
	assert.Equal(t, []uint64{noteID}, fc.NormalMessages)
	require.Len(t, fc.Subfolders, 1)
	assert.False(t, fc.Props.Has(mapi.PidTagFolderID))

	store.EXPECT().ReadMessage(ctx, faiID).Return(&mapi.MessageContent{Props: mapi.TPropvalArray{
		{Tag: mapi.PidTagMid, Value: faiID},
		{Tag: mapi.PrAssociated, Value: true},
	}}, nil)
	store.EXPECT().ReadMessage(ctx, noteID).Return(&mapi.MessageContent{Props: mapi.TPropvalArray{
		{Tag: mapi.PidTagMid, Value: noteID},
		{Tag: mapi.PrDisplayName, Value: "note"},
	}}, nil)

	f := ics.NewFastDownContext(logon)
	require.NoError(t, f.MakeTopFolder(ctx, fc))
	atoms := drainFastDown(t, f)

	assert.Equal(t, []string{
		"StartTopFld",
		"StartFAIMsg", "EndMessage",
		"StartMessage", "EndMessage",
		"StartSubFld", "EndFolder",
		"EndFolder",
	}, markers(atoms))
	assert.Equal(t, 6, countProp(atoms, mapi.MetaTagFXDelProp))
	assert.Zero(t, countProp(atoms, mapi.PidTagMid))
	assert.Zero(t, countProp(atoms, mapi.PidTagFolderID))
}

func TestFastDown_MessageListDropsUnnamed(t *testing.T) {
	ctx := context.Background()
	store := mock.NewMockStore(gomock.NewController(t))
	logon := ics.NewLogon(store, "bob", ics.LogonOwner, true, accountID, nil)
	mid := mapi.MakeEID(1, 0x400)
	named := mapi.PropTag(0x8001001F)
	unnamed := mapi.PropTag(0x8002001F)
	keywords := mapi.PropertyName{Kind: mapi.MnidString, GUID: storeGUID, Name: "Keywords"}

	store.EXPECT().ReadMessage(ctx, mid).Return(&mapi.MessageContent{Props: mapi.TPropvalArray{
		{Tag: named, Value: "red"},
		{Tag: unnamed, Value: "lost"},
	}}, nil)
	store.EXPECT().NamedPropNames(ctx, gomock.Any()).Return(map[uint16]mapi.PropertyName{0x8001: keywords}, nil)

	f := ics.NewFastDownContext(logon)
	require.NoError(t, f.MakeMessageList(ctx, []uint64{mid}))
	atoms := drainFastDown(t, f)

	assert.Equal(t, []string{"StartMessage", "EndMessage"}, markers(atoms))
	assert.Zero(t, countProp(atoms, unnamed))
	require.Equal(t, 1, countProp(atoms, named))
	for _, a := range atoms {
		if a.Prop.Tag == named {
			require.NotNil(t, a.Name)
			assert.Equal(t, keywords, *a.Name)
		}
	}
}

func TestFastDown_State(t *testing.T) {
	ctx := context.Background()
	store := mock.NewMockStore(gomock.NewController(t))
	logon := ics.NewLogon(store, "bob", ics.LogonOwner, true, accountID, nil)
	state := ics.NewState(ics.ContentsDown, logon)
	require.NoError(t, state.Seen.AppendRange(1, 1, 9))

	f := ics.NewFastDownContext(logon)
	require.NoError(t, f.MakeState(ctx, state))
	atoms := drainFastDown(t, f)

	assert.Equal(t, []string{"IncrSyncStateBegin", "IncrSyncStateEnd"}, markers(atoms))
	assert.Equal(t, 1, countProp(atoms, mapi.MetaTagCnsetSeen))
	assert.Equal(t, 1, countProp(atoms, mapi.MetaTagIdsetGiven1))
}

func TestFastDown_GetBufferBeforeMake(t *testing.T) {
	f := ics.NewFastDownContext(ics.NewLogon(nil, "bob", ics.LogonOwner, true, accountID, nil))
	_, err := f.GetBuffer(ics.BufferSizeUseMax, 0x1000, 0xFFFF)
	require.ErrorIs(t, err, ics.ErrNotConfigured)
}

// ─── CheckQuota ─────────────────────────────────────────────────────────────

func TestCheckQuota(t *testing.T) {
	tests := []struct {
		name        string
		props       mapi.TPropvalArray
		maxMessages uint32
		wantErr     error
	}{
		{
			name:  "no limits",
			props: mapi.TPropvalArray{{Tag: mapi.PrMessageSizeExtended, Value: uint64(1 << 30)}},
		},
		{
			name: "under quota",
			props: mapi.TPropvalArray{
				{Tag: mapi.PrMessageSizeExtended, Value: uint64(1024 * 1024)},
				{Tag: mapi.PrStorageQuotaLimit, Value: uint32(1024)},
			},
		},
		{
			name: "over quota",
			props: mapi.TPropvalArray{
				{Tag: mapi.PrMessageSizeExtended, Value: uint64(1024*1024 + 1)},
				{Tag: mapi.PrStorageQuotaLimit, Value: uint32(1024)},
			},
			wantErr: mapi.EcQuotaExceeded,
		},
		{
			name: "message count over max",
			props: mapi.TPropvalArray{
				{Tag: mapi.PrContentCount, Value: uint32(9)},
				{Tag: mapi.PrAssocContentCount, Value: uint32(2)},
			},
			maxMessages: 10,
			wantErr:     mapi.EcQuotaExceeded,
		},
		{
			name: "message count at max",
			props: mapi.TPropvalArray{
				{Tag: mapi.PrContentCount, Value: uint32(8)},
				{Tag: mapi.PrAssocContentCount, Value: uint32(2)},
			},
			maxMessages: 10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := mock.NewMockStore(gomock.NewController(t))
			logon := ics.NewLogon(store, "bob", ics.LogonOwner, true, accountID, nil)
			store.EXPECT().StoreProps(ctx, gomock.Any()).Return(tt.props, nil)

			err := ics.CheckQuota(ctx, logon, tt.maxMessages)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}
