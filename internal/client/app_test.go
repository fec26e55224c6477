package client

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/MKhiriev/go-ics-sync/internal/fxstream"
	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/internal/mock"
	"github.com/MKhiriev/go-ics-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSession = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"

func markers(t *testing.T, tags ...mapi.PropTag) []byte {
	t.Helper()
	w := fxstream.NewWriter(nil)
	for _, tag := range tags {
		require.NoError(t, w.Marker(tag))
	}
	return w.Stream().Data
}

func stateStream(t *testing.T, sets ...StateSet) []byte {
	t.Helper()
	w := fxstream.NewWriter(nil)
	require.NoError(t, w.Marker(fxstream.IncrSyncStateBegin))
	for _, s := range sets {
		require.NoError(t, w.Propval(mapi.TaggedPropval{Tag: s.Tag, Value: s.Data}))
	}
	require.NoError(t, w.Marker(fxstream.IncrSyncStateEnd))
	return w.Stream().Data
}

type ropFixture struct {
	rops *mock.MockRopClient
	app  *App
}

func newRopFixture(t *testing.T) *ropFixture {
	ctrl := gomock.NewController(t)
	rops := mock.NewMockRopClient(ctrl)
	return &ropFixture{rops: rops, app: NewApp(rops, logger.Nop())}
}

func (f *ropFixture) expect(rop string, req models.RopRequest, resp models.RopResponse, err error) *gomock.Call {
	return f.rops.EXPECT().Call(gomock.Any(), testSession, rop, req).Return(resp, err)
}

func getBuffer(h uint32) models.RopRequest {
	return models.RopRequest{Handle: h, Requested: ics.BufferSizeUseMax, MaxSize: DefaultBufferSize}
}

func release(h uint32) models.RopRequest {
	return models.RopRequest{Handle: h}
}

// expectSetup expects Logon, OpenFolder and SyncConfigure to hand out
// handles 1, 2 and 3.
func (f *ropFixture) expectSetup(folder uint64) []any {
	return []any{
		f.rops.EXPECT().OpenSession(gomock.Any()).Return(testSession, nil),
		f.expect("Logon", models.RopRequest{Private: true}, models.RopResponse{Handle: 1}, nil),
		f.expect("OpenFolder", models.RopRequest{Handle: 1, FolderID: folder}, models.RopResponse{Handle: 2}, nil),
		f.expect("SyncConfigure", models.RopRequest{Handle: 2, SyncType: uint8(ics.SyncContents)}, models.RopResponse{Handle: 3}, nil),
	}
}

func calls(groups ...[]any) []any {
	var all []any
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

func TestDownload_FullSync(t *testing.T) {
	f := newRopFixture(t)
	changes := markers(t,
		fxstream.IncrSyncChg, fxstream.IncrSyncChg, fxstream.IncrSyncDel,
		fxstream.IncrSyncRead, fxstream.IncrSyncEnd)
	state := stateStream(t, StateSet{Tag: mapi.MetaTagCnsetSeen, Data: []byte{1, 2, 3}})

	gomock.InOrder(calls(
		f.expectSetup(mapi.PrivateFIDInbox),
		[]any{
			// The first buffer ends in the middle of a marker.
			f.expect("FastTransferSourceGetBuffer", getBuffer(3),
				models.RopResponse{Status: uint16(ics.TransferPartial), Progress: 1, Total: 2, Data: changes[:6]}, nil),
			f.expect("FastTransferSourceGetBuffer", getBuffer(3),
				models.RopResponse{Status: uint16(ics.TransferDone), Progress: 2, Total: 2, Data: changes[6:]}, nil),
			f.expect("SyncGetTransferState", models.RopRequest{Handle: 3}, models.RopResponse{Handle: 4}, nil),
			f.expect("FastTransferSourceGetBuffer", getBuffer(4),
				models.RopResponse{Status: uint16(ics.TransferDone), Progress: 1, Total: 1, Data: state}, nil),
			f.expect("Release", release(4), models.RopResponse{}, nil),
			f.expect("Release", release(3), models.RopResponse{}, nil),
			f.expect("Release", release(2), models.RopResponse{}, nil),
			f.expect("Release", release(1), models.RopResponse{}, nil),
			f.rops.EXPECT().CloseSession(gomock.Any(), testSession).Return(nil),
		},
	)...)

	var out bytes.Buffer
	var reports []Progress
	res, err := f.app.Download(context.Background(),
		DownloadOptions{FolderID: mapi.PrivateFIDInbox}, &out,
		func(p Progress) { reports = append(reports, p) })
	require.NoError(t, err)

	assert.Equal(t, changes, out.Bytes())
	assert.Equal(t, int64(len(changes)), res.Bytes)
	assert.Equal(t, Counts{Changes: 2, Deletions: 1, ReadStates: 1}, res.Counts)
	assert.Equal(t, state, res.State)

	require.Len(t, reports, 2)
	assert.Equal(t, ics.TransferPartial, reports[0].Status)
	assert.Equal(t, int64(6), reports[0].Bytes)
	assert.Equal(t, Counts{Changes: 1}, reports[0].Counts)
	assert.Equal(t, ics.TransferDone, reports[1].Status)
	assert.Equal(t, uint16(2), reports[1].Step)
}

func TestDownload_UploadsSavedState(t *testing.T) {
	f := newRopFixture(t)
	big := bytes.Repeat([]byte{0xAB}, statePiece+10)
	saved := stateStream(t,
		StateSet{Tag: mapi.MetaTagIdsetGiven, Data: []byte{9}},
		StateSet{Tag: mapi.MetaTagCnsetSeen, Data: big},
	)
	end := markers(t, fxstream.IncrSyncEnd)

	gomock.InOrder(calls(
		f.expectSetup(mapi.PrivateFIDInbox),
		[]any{
			f.expect("SyncUploadStateStreamBegin",
				models.RopRequest{Handle: 3, StateTag: uint32(mapi.MetaTagIdsetGiven), StateSize: 1}, models.RopResponse{}, nil),
			f.expect("SyncUploadStateStreamContinue", models.RopRequest{Handle: 3, Data: []byte{9}}, models.RopResponse{}, nil),
			f.expect("SyncUploadStateStreamEnd", models.RopRequest{Handle: 3}, models.RopResponse{}, nil),
			f.expect("SyncUploadStateStreamBegin",
				models.RopRequest{Handle: 3, StateTag: uint32(mapi.MetaTagCnsetSeen), StateSize: uint32(len(big))}, models.RopResponse{}, nil),
			f.expect("SyncUploadStateStreamContinue", models.RopRequest{Handle: 3, Data: big[:statePiece]}, models.RopResponse{}, nil),
			f.expect("SyncUploadStateStreamContinue", models.RopRequest{Handle: 3, Data: big[statePiece:]}, models.RopResponse{}, nil),
			f.expect("SyncUploadStateStreamEnd", models.RopRequest{Handle: 3}, models.RopResponse{}, nil),
			f.expect("FastTransferSourceGetBuffer", getBuffer(3),
				models.RopResponse{Status: uint16(ics.TransferDone), Data: end}, nil),
			f.expect("SyncGetTransferState", models.RopRequest{Handle: 3}, models.RopResponse{Handle: 4}, nil),
			f.expect("FastTransferSourceGetBuffer", getBuffer(4),
				models.RopResponse{Status: uint16(ics.TransferDone), Data: saved}, nil),
			f.expect("Release", release(4), models.RopResponse{}, nil),
			f.expect("Release", release(3), models.RopResponse{}, nil),
			f.expect("Release", release(2), models.RopResponse{}, nil),
			f.expect("Release", release(1), models.RopResponse{}, nil),
			f.rops.EXPECT().CloseSession(gomock.Any(), testSession).Return(nil),
		},
	)...)

	res, err := f.app.Download(context.Background(),
		DownloadOptions{FolderID: mapi.PrivateFIDInbox, State: saved}, &bytes.Buffer{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, res.Counts)
	assert.Equal(t, saved, res.State)
}

func TestDownload_LogonRejected(t *testing.T) {
	f := newRopFixture(t)
	gomock.InOrder(
		f.rops.EXPECT().OpenSession(gomock.Any()).Return(testSession, nil),
		f.expect("Logon", models.RopRequest{AccountID: 5}, models.RopResponse{Result: uint32(mapi.EcAccessDenied)}, mapi.EcAccessDenied),
		f.rops.EXPECT().CloseSession(gomock.Any(), testSession).Return(nil),
	)

	_, err := f.app.Download(context.Background(),
		DownloadOptions{Public: true, AccountID: 5}, &bytes.Buffer{}, nil)
	require.ErrorIs(t, err, mapi.EcAccessDenied)
	assert.Contains(t, err.Error(), "Logon")
}

func TestDownload_OpenSessionFails(t *testing.T) {
	f := newRopFixture(t)
	boom := errors.New("connection refused")
	f.rops.EXPECT().OpenSession(gomock.Any()).Return("", boom)

	_, err := f.app.Download(context.Background(), DownloadOptions{}, &bytes.Buffer{}, nil)
	require.ErrorIs(t, err, boom)
}

func TestDownload_StalledTransfer(t *testing.T) {
	f := newRopFixture(t)
	stalled := models.RopResponse{Status: uint16(ics.TransferPartial)}

	gomock.InOrder(calls(
		f.expectSetup(mapi.PrivateFIDInbox),
		[]any{
			f.expect("FastTransferSourceGetBuffer", getBuffer(3), stalled, nil).Times(maxEmptyBuffers),
			f.expect("Release", release(3), models.RopResponse{}, nil),
			f.expect("Release", release(2), models.RopResponse{}, nil),
			f.expect("Release", release(1), models.RopResponse{}, nil),
			f.rops.EXPECT().CloseSession(gomock.Any(), testSession).Return(nil),
		},
	)...)

	_, err := f.app.Download(context.Background(),
		DownloadOptions{FolderID: mapi.PrivateFIDInbox}, &bytes.Buffer{}, nil)
	require.ErrorIs(t, err, ErrNoProgress)
}

func TestDownload_StreamEndsInsideAtom(t *testing.T) {
	f := newRopFixture(t)
	cut := markers(t, fxstream.IncrSyncChg)[:3]

	gomock.InOrder(calls(
		f.expectSetup(mapi.PrivateFIDInbox),
		[]any{
			f.expect("FastTransferSourceGetBuffer", getBuffer(3),
				models.RopResponse{Status: uint16(ics.TransferDone), Data: cut}, nil),
			f.expect("Release", release(3), models.RopResponse{}, nil),
			f.expect("Release", release(2), models.RopResponse{}, nil),
			f.expect("Release", release(1), models.RopResponse{}, nil),
			f.rops.EXPECT().CloseSession(gomock.Any(), testSession).Return(nil),
		},
	)...)

	_, err := f.app.Download(context.Background(),
		DownloadOptions{FolderID: mapi.PrivateFIDInbox}, &bytes.Buffer{}, nil)
	require.ErrorIs(t, err, mapi.ErrFormat)
}

func TestDownload_HierarchyAndBufferSize(t *testing.T) {
	f := newRopFixture(t)
	end := markers(t, fxstream.IncrSyncEnd)
	state := stateStream(t)
	req := func(h uint32) models.RopRequest {
		return models.RopRequest{Handle: h, Requested: ics.BufferSizeUseMax, MaxSize: 512}
	}

	gomock.InOrder(
		f.rops.EXPECT().OpenSession(gomock.Any()).Return(testSession, nil),
		f.expect("Logon", models.RopRequest{Private: true}, models.RopResponse{Handle: 1}, nil),
		f.expect("OpenFolder", models.RopRequest{Handle: 1, FolderID: mapi.PrivateFIDIPMSubtree}, models.RopResponse{Handle: 2}, nil),
		f.expect("SyncConfigure", models.RopRequest{
			Handle:    2,
			SyncType:  uint8(ics.SyncHierarchy),
			SyncFlags: ics.SyncFlagUnicode,
		}, models.RopResponse{Handle: 3}, nil),
		f.expect("FastTransferSourceGetBuffer", req(3), models.RopResponse{Status: uint16(ics.TransferDone), Data: end}, nil),
		f.expect("SyncGetTransferState", models.RopRequest{Handle: 3}, models.RopResponse{Handle: 4}, nil),
		f.expect("FastTransferSourceGetBuffer", req(4), models.RopResponse{Status: uint16(ics.TransferDone), Data: state}, nil),
		f.expect("Release", release(4), models.RopResponse{}, nil),
		f.expect("Release", release(3), models.RopResponse{}, nil),
		f.expect("Release", release(2), models.RopResponse{}, nil),
		f.expect("Release", release(1), models.RopResponse{}, nil),
		f.rops.EXPECT().CloseSession(gomock.Any(), testSession).Return(nil),
	)

	_, err := f.app.Download(context.Background(), DownloadOptions{
		FolderID:   mapi.PrivateFIDIPMSubtree,
		Hierarchy:  true,
		SyncFlags:  ics.SyncFlagUnicode,
		BufferSize: 512,
	}, &bytes.Buffer{}, nil)
	require.NoError(t, err)
}
