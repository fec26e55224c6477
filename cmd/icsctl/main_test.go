package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MKhiriev/go-ics-sync/internal/adapter"
	"github.com/MKhiriev/go-ics-sync/internal/config"
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

type harness struct {
	rops   *mock.MockRopClient
	out    bytes.Buffer
	errOut bytes.Buffer
	copied string
	gotCfg config.Adapter
	cli    *cli
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(tokenEnv, "")
	t.Setenv(passwordEnv, "")
	t.Setenv("ADAPTER_BASE_URL", "")

	h := &harness{rops: mock.NewMockRopClient(gomock.NewController(t))}
	h.cli = &cli{
		out:       &h.out,
		errOut:    &h.errOut,
		build:     models.BuildInfo{Version: "v0.3.0", Date: "2026-10-01", Commit: "deadbeef"},
		newLogger: logger.Nop,
		newClient: func(cfg config.Adapter, _ *logger.Logger) (adapter.RopClient, error) {
			h.gotCfg = cfg
			return h.rops, nil
		},
		copyText: func(s string) error { h.copied = s; return nil },
	}
	return h
}

func (h *harness) run(args ...string) error {
	root := newRootCmd(h.cli)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(""))
	return root.ExecuteContext(context.Background())
}

func TestFlagsReachAdapterConfig(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("version", "--server", "http://ics.example:9000", "-k", "secret"))
	assert.Equal(t, "http://ics.example:9000", h.gotCfg.BaseURL)
	assert.Equal(t, "secret", h.gotCfg.HashKey)
	assert.NotZero(t, h.gotCfg.RequestTimeout)
	assert.Contains(t, h.out.String(), "v0.3.0")
	assert.Contains(t, h.out.String(), "deadbeef")
}

func TestTokenFromEnvironment(t *testing.T) {
	h := newHarness(t)
	t.Setenv(tokenEnv, "env-token")
	h.rops.EXPECT().SetToken("env-token")
	h.rops.EXPECT().OpenSession(gomock.Any()).Return("sid-1", nil)

	require.NoError(t, h.run("session", "open"))
	assert.Equal(t, "sid-1\n", h.out.String())
}

func TestAuthenticatedCommandsNeedToken(t *testing.T) {
	for _, args := range [][]string{
		{"session", "open"},
		{"session", "close", "sid-1"},
		{"rop", "sid-1", "Logon", "{}"},
		{"sync", "--out", filepath.Join(t.TempDir(), "x.fxs")},
	} {
		t.Run(strings.Join(args[:2], " "), func(t *testing.T) {
			h := newHarness(t)
			require.ErrorIs(t, h.run(args...), errNoToken)
		})
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantOut    string
		wantCopied string
	}{
		{name: "prints token", args: []string{"login", "-l", "alice", "-p", "pw"}, wantOut: "tok-1\n"},
		{name: "copies token", args: []string{"login", "-l", "alice", "-p", "pw", "--copy-token"}, wantCopied: "tok-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.rops.EXPECT().Login(gomock.Any(), models.User{Login: "alice", Password: "pw"}).
				Return(models.Token{SignedString: "tok-1", Login: "alice"}, nil)

			require.NoError(t, h.run(tt.args...))
			assert.Equal(t, tt.wantOut, h.out.String())
			assert.Equal(t, tt.wantCopied, h.copied)
		})
	}
}

func TestLogin_PasswordFromEnvironment(t *testing.T) {
	h := newHarness(t)
	t.Setenv(passwordEnv, "from-env")
	h.rops.EXPECT().Login(gomock.Any(), models.User{Login: "alice", Password: "from-env"}).
		Return(models.Token{SignedString: "tok"}, nil)

	require.NoError(t, h.run("login", "-l", "alice"))
}

func TestLogin_Errors(t *testing.T) {
	h := newHarness(t)
	require.Error(t, h.run("login"))

	h = newHarness(t)
	h.rops.EXPECT().Login(gomock.Any(), gomock.Any()).Return(models.Token{}, adapter.ErrUnauthorized)
	require.ErrorIs(t, h.run("login", "-l", "alice", "-p", "bad"), adapter.ErrUnauthorized)
	assert.Empty(t, h.out.String())
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	h.rops.EXPECT().Register(gomock.Any(), models.User{Login: "bob", Password: "pw"}).
		Return(models.Token{SignedString: "tok-2"}, nil)

	require.NoError(t, h.run("register", "--login", "bob", "--password", "pw"))
	assert.Equal(t, "tok-2\n", h.out.String())
}

func TestInfo(t *testing.T) {
	h := newHarness(t)
	h.rops.EXPECT().ServerInfo(gomock.Any()).Return(models.ServerInfo{Version: "v9.9.9", Sessions: 3}, nil)

	require.NoError(t, h.run("info"))
	assert.Contains(t, h.out.String(), "v9.9.9")
	assert.Contains(t, h.out.String(), "v0.3.0")
}

func TestSessionClose(t *testing.T) {
	h := newHarness(t)
	h.rops.EXPECT().SetToken("tok")
	h.rops.EXPECT().CloseSession(gomock.Any(), "sid-1").Return(adapter.ErrNotFound)

	require.ErrorIs(t, h.run("session", "close", "sid-1", "-t", "tok"), adapter.ErrNotFound)
}

func TestRop(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		resp    models.RopResponse
		callErr error
		wantErr error
		wantOut string
		noCall  bool
	}{
		{
			name:    "success",
			args:    []string{"rop", "sid-1", "Logon", `{"private":true}`},
			resp:    models.RopResponse{Handle: 1, ResultName: "ecSuccess"},
			wantOut: `"hout": 1`,
		},
		{
			name:    "failed result is printed and returned",
			args:    []string{"rop", "sid-1", "Logon", `{"private":true}`},
			resp:    models.RopResponse{Result: uint32(mapi.EcAccessDenied), ResultName: "ecAccessDenied"},
			callErr: mapi.EcAccessDenied,
			wantErr: mapi.EcAccessDenied,
			wantOut: "ecAccessDenied",
		},
		{
			name:    "transport error",
			args:    []string{"rop", "sid-1", "Logon", `{"private":true}`},
			callErr: adapter.ErrBadGateway,
			wantErr: adapter.ErrBadGateway,
		},
		{
			name:   "unknown field",
			args:   []string{"rop", "sid-1", "Logon", `{"privat":true}`},
			noCall: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.rops.EXPECT().SetToken("tok")
			if !tt.noCall {
				h.rops.EXPECT().Call(gomock.Any(), "sid-1", "Logon", models.RopRequest{Private: true}).
					Return(tt.resp, tt.callErr)
			}

			err := h.run(append(tt.args, "-t", "tok")...)
			switch {
			case tt.noCall:
				require.Error(t, err)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
			}
			assert.Contains(t, h.out.String(), tt.wantOut)
		})
	}
}

func TestRop_RequestFromStdin(t *testing.T) {
	h := newHarness(t)
	h.rops.EXPECT().SetToken("tok")
	h.rops.EXPECT().Call(gomock.Any(), "sid-1", "GetLocalReplicaIDs", models.RopRequest{Handle: 2, Count: 10}).
		Return(models.RopResponse{ReplicaGUID: "guid"}, nil)

	root := newRootCmd(h.cli)
	root.SetArgs([]string{"rop", "sid-1", "GetLocalReplicaIDs", "-t", "tok"})
	root.SetIn(strings.NewReader(`{"hin":2,"count":10}`))
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, h.out.String(), `"replica_guid": "guid"`)
}

// fakeServer answers the ROPs of one download: handles 1 to 3 for the
// setup, a two buffer change stream and a one buffer state.
func fakeServer(t *testing.T, changes, state []byte, uploaded *[]string) func(context.Context, string, string, models.RopRequest) (models.RopResponse, error) {
	calls := 0
	return func(_ context.Context, _ string, rop string, req models.RopRequest) (models.RopResponse, error) {
		switch rop {
		case "Logon":
			return models.RopResponse{Handle: 1}, nil
		case "OpenFolder":
			return models.RopResponse{Handle: 2}, nil
		case "SyncConfigure":
			return models.RopResponse{Handle: 3}, nil
		case "SyncGetTransferState":
			return models.RopResponse{Handle: 4}, nil
		case "SyncUploadStateStreamBegin", "SyncUploadStateStreamContinue", "SyncUploadStateStreamEnd":
			*uploaded = append(*uploaded, rop)
			return models.RopResponse{}, nil
		case "Release":
			return models.RopResponse{}, nil
		case "FastTransferSourceGetBuffer":
			if req.Handle == 4 {
				return models.RopResponse{Status: uint16(ics.TransferDone), Data: state}, nil
			}
			calls++
			if calls == 1 {
				return models.RopResponse{Status: uint16(ics.TransferPartial), Progress: 1, Total: 2, Data: changes[:4]}, nil
			}
			return models.RopResponse{Status: uint16(ics.TransferDone), Progress: 2, Total: 2, Data: changes[4:]}, nil
		}
		t.Errorf("unexpected rop %s", rop)
		return models.RopResponse{}, mapi.EcNotSupported
	}
}

func testStreams(t *testing.T) (changes, state []byte) {
	t.Helper()
	w := fxstream.NewWriter(nil)
	for _, m := range []mapi.PropTag{fxstream.IncrSyncChg, fxstream.IncrSyncDel, fxstream.IncrSyncEnd} {
		require.NoError(t, w.Marker(m))
	}
	changes = w.Stream().Data

	w = fxstream.NewWriter(nil)
	require.NoError(t, w.Marker(fxstream.IncrSyncStateBegin))
	require.NoError(t, w.Propval(mapi.TaggedPropval{Tag: mapi.MetaTagCnsetSeen, Value: []byte{1, 2}}))
	require.NoError(t, w.Marker(fxstream.IncrSyncStateEnd))
	return changes, w.Stream().Data
}

func TestSync_Plain(t *testing.T) {
	changes, state := testStreams(t)
	dir := t.TempDir()
	outPath, statePath := filepath.Join(dir, "inbox.fxs"), filepath.Join(dir, "inbox.state")

	// First run: full synchronization, the state file does not exist yet.
	h := newHarness(t)
	var uploaded []string
	h.rops.EXPECT().SetToken("tok")
	h.rops.EXPECT().OpenSession(gomock.Any()).Return("sid-1", nil)
	h.rops.EXPECT().Call(gomock.Any(), "sid-1", gomock.Any(), gomock.Any()).
		DoAndReturn(fakeServer(t, changes, state, &uploaded)).AnyTimes()
	h.rops.EXPECT().CloseSession(gomock.Any(), "sid-1").Return(nil)

	require.NoError(t, h.run("sync", "--plain", "-t", "tok", "--out", outPath, "--state", statePath))
	assert.Empty(t, uploaded)
	assert.Equal(t, "1 changes, 1 deletions, 0 read states, 12 bytes\n", h.out.String())
	assert.Contains(t, h.errOut.String(), "2/2 done 12 bytes")

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, changes, got)
	saved, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Equal(t, state, saved)

	// Second run uploads the saved state.
	h = newHarness(t)
	h.rops.EXPECT().SetToken("tok")
	h.rops.EXPECT().OpenSession(gomock.Any()).Return("sid-1", nil)
	h.rops.EXPECT().Call(gomock.Any(), "sid-1", gomock.Any(), gomock.Any()).
		DoAndReturn(fakeServer(t, changes, state, &uploaded)).AnyTimes()
	h.rops.EXPECT().CloseSession(gomock.Any(), "sid-1").Return(nil)

	require.NoError(t, h.run("sync", "--plain", "-t", "tok", "--out", outPath, "--state", statePath))
	assert.Equal(t, []string{
		"SyncUploadStateStreamBegin", "SyncUploadStateStreamContinue", "SyncUploadStateStreamEnd",
	}, uploaded)
}

func TestSync_BadStateFile(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "bad.state")
	require.NoError(t, os.WriteFile(statePath, []byte("garbage"), 0o600))

	h := newHarness(t)
	h.rops.EXPECT().SetToken("tok")
	h.rops.EXPECT().OpenSession(gomock.Any()).Return("sid-1", nil)
	h.rops.EXPECT().Call(gomock.Any(), "sid-1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, rop string, _ models.RopRequest) (models.RopResponse, error) {
			switch rop {
			case "Logon":
				return models.RopResponse{Handle: 1}, nil
			case "OpenFolder":
				return models.RopResponse{Handle: 2}, nil
			case "SyncConfigure":
				return models.RopResponse{Handle: 3}, nil
			case "Release":
				return models.RopResponse{}, nil
			}
			return models.RopResponse{}, errors.New("unexpected " + rop)
		}).AnyTimes()
	h.rops.EXPECT().CloseSession(gomock.Any(), "sid-1").Return(nil)

	err := h.run("sync", "--plain", "-t", "tok", "--out", filepath.Join(dir, "x.fxs"), "--state", statePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed synchronization state")
}
