package mapi

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuleActions() *RuleActions {
	return &RuleActions{Blocks: []ActionBlock{
		{
			Type: OpMove,
			Data: &MoveCopyAction{
				SameStore:    true,
				FolderSvrEID: &SvrEID{FolderID: MakeEID(1, 0x42), MsgID: 0, Instance: 0},
			},
		},
		{
			Type: OpCopy,
			Data: &MoveCopyAction{
				StoreEID: &StoreEntryID{
					ProviderUID: distinctGUID,
					ServerName:  "mail.example.org",
					MailboxDN:   "/o=Example/cn=user",
				},
				FolderEID: []byte{0xde, 0xad},
			},
		},
		{
			Type:   OpReply,
			Flavor: 1,
			Data: &ReplyAction{
				TemplateFolderID:  MakeEID(1, 7),
				TemplateMessageID: MakeEID(1, 8),
				TemplateGUID:      distinctGUID,
			},
		},
		{Type: OpDeferAction, Data: DeferAction{1, 2, 3, 4}},
		{Type: OpBounce, Data: BounceAction(0x0D)},
		{
			Type: OpForward,
			Data: &ForwardDelegateAction{Recipients: []RecipientBlock{{
				Reserved: 1,
				Props: TPropvalArray{
					{Tag: PrDisplayName, Value: "Forwardee"},
				},
			}}},
		},
		{Type: OpTag, Data: &TaggedPropval{Tag: PrRead, Value: true}},
		{Type: OpDelete},
		{Type: OpMarkAsRead, Flags: 3},
	}}
}

func TestRuleActions_RoundTrip(t *testing.T) {
	want := sampleRuleActions()
	push := NewPush(FlagUTF16)
	require.NoError(t, push.RuleActions(want))

	got, err := NewPull(push.Bytes(), FlagUTF16).RuleActions()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRuleActions_BlockLengthIsBackpatched(t *testing.T) {
	push := NewPush(0)
	require.NoError(t, push.RuleActions(&RuleActions{Blocks: []ActionBlock{
		{Type: OpBounce, Data: BounceAction(1)},
		{Type: OpDeferAction, Data: DeferAction{9, 9}},
	}}))
	out := push.Bytes()

	require.Equal(t, uint16(2), binary.LittleEndian.Uint16(out))
	first := binary.LittleEndian.Uint16(out[2:])
	assert.Equal(t, uint16(actionHeaderSize+4), first)
	second := binary.LittleEndian.Uint16(out[4+int(first):])
	assert.Equal(t, uint16(actionHeaderSize+2), second)
	assert.Len(t, out, 2+2+int(first)+2+int(second))
}

func TestRuleActions_Rejects(t *testing.T) {
	t.Run("empty list on pull", func(t *testing.T) {
		_, err := NewPull([]byte{0, 0}, 0).RuleActions()
		require.ErrorIs(t, err, ErrFormat)
	})

	t.Run("empty list on push", func(t *testing.T) {
		require.ErrorIs(t, NewPush(0).RuleActions(&RuleActions{}), ErrFormat)
	})

	t.Run("unknown action", func(t *testing.T) {
		push := NewPush(0)
		require.NoError(t, push.Uint16(1))
		require.NoError(t, push.Uint16(actionHeaderSize))
		require.NoError(t, push.Uint8(0x7F))
		require.NoError(t, push.Uint32(0))
		require.NoError(t, push.Uint32(0))
		_, err := NewPull(push.Bytes(), 0).RuleActions()
		require.ErrorIs(t, err, ErrBadSwitch)
	})

	t.Run("forward without recipients", func(t *testing.T) {
		err := NewPush(0).RuleActions(&RuleActions{Blocks: []ActionBlock{
			{Type: OpForward, Data: &ForwardDelegateAction{}},
		}})
		require.ErrorIs(t, err, ErrFormat)
	})

	t.Run("data of the wrong kind", func(t *testing.T) {
		err := NewPush(0).RuleActions(&RuleActions{Blocks: []ActionBlock{
			{Type: OpBounce, Data: "bounce"},
		}})
		require.ErrorIs(t, err, ErrFormat)
	})
}

func sampleFolderEntryID() FolderEntryID {
	return FolderEntryID{
		Flags:         0,
		ProviderUID:   distinctGUID,
		FolderType:    1,
		DatabaseGUID:  MakeUserGUID(12),
		GlobalCounter: GCArray(0x123456),
	}
}

func TestFolderEntryID_Size(t *testing.T) {
	push := NewPush(0)
	require.NoError(t, push.FolderEntryID(sampleFolderEntryID()))
	assert.Len(t, push.Bytes(), folderEntryIDSize)

	push = NewPush(0)
	require.NoError(t, push.MessageEntryID(MessageEntryID{}))
	assert.Len(t, push.Bytes(), messageEntryIDSize)
}

func TestExtRuleActions_RoundTrip(t *testing.T) {
	want := &ExtRuleActions{Blocks: []ActionBlock{
		{
			Type: OpMove,
			Data: &ExtMoveCopyAction{
				StoreEID:  []byte{1, 2, 3, 4, 5},
				FolderEID: sampleFolderEntryID(),
			},
		},
		{
			Type: OpReply,
			Data: &ExtReplyAction{
				MessageEID: MessageEntryID{
					ProviderUID:          distinctGUID,
					MessageType:          7,
					FolderGlobalCounter:  GCArray(1),
					MessageGlobalCounter: GCArray(2),
				},
				TemplateGUID: distinctGUID,
			},
		},
		{Type: OpDeferAction, Data: DeferAction{0xAA}},
		{
			Type: OpDelegate,
			Data: &ForwardDelegateAction{Recipients: []RecipientBlock{
				{Props: TPropvalArray{{Tag: PrMessageSize, Value: uint32(1)}}},
				{Props: TPropvalArray{{Tag: PrDisplayName, Value: "B"}}},
			}},
		},
	}}

	push := NewPush(FlagUTF16)
	require.NoError(t, push.ExtRuleActions(want))
	out := push.Bytes()
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(out))

	got, err := NewPull(out, FlagUTF16).ExtRuleActions()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExtRuleActions_DeferLength(t *testing.T) {
	push := NewPush(0)
	require.NoError(t, push.ExtRuleActions(&ExtRuleActions{Blocks: []ActionBlock{
		{Type: OpDeferAction, Data: DeferAction{1, 2, 3}},
	}}))
	out := push.Bytes()
	assert.Equal(t, uint32(actionHeaderSize+3), binary.LittleEndian.Uint32(out[4:]))

	got, err := NewPull(out, 0).ExtRuleActions()
	require.NoError(t, err)
	assert.Equal(t, DeferAction{1, 2, 3}, got.Blocks[0].Data)
}

func TestExtRuleActions_Rejects(t *testing.T) {
	t.Run("zero count", func(t *testing.T) {
		_, err := NewPull([]byte{0, 0, 0, 0}, 0).ExtRuleActions()
		require.ErrorIs(t, err, ErrFormat)
	})

	t.Run("count beyond input", func(t *testing.T) {
		_, err := NewPull([]byte{0xff, 0, 0, 0, 1}, 0).ExtRuleActions()
		require.ErrorIs(t, err, ErrBufSize)
	})

	t.Run("bad folder entry id size", func(t *testing.T) {
		push := NewPush(0)
		require.NoError(t, push.Uint32(1))
		require.NoError(t, push.Uint32(0))
		require.NoError(t, push.Uint8(OpMove))
		require.NoError(t, push.Uint32(0))
		require.NoError(t, push.Uint32(0))
		require.NoError(t, push.BinEx([]byte{1}))
		require.NoError(t, push.Uint32(45))
		require.NoError(t, push.Advance(45))
		_, err := NewPull(push.Bytes(), 0).ExtRuleActions()
		require.ErrorIs(t, err, ErrFormat)
	})

	t.Run("empty store entry id", func(t *testing.T) {
		push := NewPush(0)
		require.NoError(t, push.Uint32(1))
		require.NoError(t, push.Uint32(0))
		require.NoError(t, push.Uint8(OpCopy))
		require.NoError(t, push.Uint32(0))
		require.NoError(t, push.Uint32(0))
		require.NoError(t, push.Uint32(0))
		require.NoError(t, push.Advance(50))
		_, err := NewPull(push.Bytes(), 0).ExtRuleActions()
		require.ErrorIs(t, err, ErrFormat)
	})
}

func TestRuleActions_AsPropval(t *testing.T) {
	props := TPropvalArray{{Tag: Tag(0x6680, PtActions), Value: sampleRuleActions()}}
	push := NewPush(FlagUTF16)
	require.NoError(t, push.TPropvalArray(props))
	got, err := NewPull(push.Bytes(), FlagUTF16).TPropvalArray()
	require.NoError(t, err)
	assert.Equal(t, props, got)
}
