package mapi

import "fmt"

// Sizes of the fixed entry ids embedded in extended rule actions.
const (
	folderEntryIDSize  = 46
	messageEntryIDSize = 70
)

// FolderEntryID is the long-term folder entry id.
type FolderEntryID struct {
	Flags         uint32
	ProviderUID   GUID
	FolderType    uint16
	DatabaseGUID  GUID
	GlobalCounter [6]byte
	Pad           [2]byte
}

// MessageEntryID is the long-term message entry id.
type MessageEntryID struct {
	Flags                uint32
	ProviderUID          GUID
	MessageType          uint16
	FolderDatabaseGUID   GUID
	FolderGlobalCounter  [6]byte
	Pad1                 [2]byte
	MessageDatabaseGUID  GUID
	MessageGlobalCounter [6]byte
	Pad2                 [2]byte
}

// ExtRuleActions is the extended (32-bit sized) rule action list stored
// with extended rules.
type ExtRuleActions struct {
	Blocks []ActionBlock
}

// ExtMoveCopyAction targets a folder by its long-term entry id. StoreEID is
// opaque.
type ExtMoveCopyAction struct {
	StoreEID  []byte
	FolderEID FolderEntryID
}

// ExtReplyAction names a reply template by message entry id.
type ExtReplyAction struct {
	MessageEID   MessageEntryID
	TemplateGUID GUID
}

func (p *Pull) FolderEntryID() (FolderEntryID, error) {
	var r FolderEntryID
	var err error
	if r.Flags, err = p.Uint32(); err != nil {
		return r, err
	}
	if r.ProviderUID, err = p.GUID(); err != nil {
		return r, err
	}
	if r.FolderType, err = p.Uint16(); err != nil {
		return r, err
	}
	if r.DatabaseGUID, err = p.GUID(); err != nil {
		return r, err
	}
	gc, err := p.take(6)
	if err != nil {
		return r, err
	}
	copy(r.GlobalCounter[:], gc)
	pad, err := p.take(2)
	if err != nil {
		return r, err
	}
	copy(r.Pad[:], pad)
	return r, nil
}

func (p *Pull) MessageEntryID() (MessageEntryID, error) {
	var r MessageEntryID
	var err error
	if r.Flags, err = p.Uint32(); err != nil {
		return r, err
	}
	if r.ProviderUID, err = p.GUID(); err != nil {
		return r, err
	}
	if r.MessageType, err = p.Uint16(); err != nil {
		return r, err
	}
	if r.FolderDatabaseGUID, err = p.GUID(); err != nil {
		return r, err
	}
	raw, err := p.take(8)
	if err != nil {
		return r, err
	}
	copy(r.FolderGlobalCounter[:], raw[:6])
	copy(r.Pad1[:], raw[6:])
	if r.MessageDatabaseGUID, err = p.GUID(); err != nil {
		return r, err
	}
	if raw, err = p.take(8); err != nil {
		return r, err
	}
	copy(r.MessageGlobalCounter[:], raw[:6])
	copy(r.Pad2[:], raw[6:])
	return r, nil
}

// ExtRuleActions reads a u32 count (non-zero) of extended action blocks.
func (p *Pull) ExtRuleActions() (*ExtRuleActions, error) {
	n, err := p.Uint32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty rule actions", ErrFormat)
	}
	if int(n) > p.Remaining() {
		return nil, ErrBufSize
	}
	r := &ExtRuleActions{Blocks: make([]ActionBlock, n)}
	for i := range r.Blocks {
		if r.Blocks[i], err = p.extActionBlock(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (p *Pull) extActionBlock() (ActionBlock, error) {
	var b ActionBlock
	length, err := p.Uint32()
	if err != nil {
		return b, err
	}
	if b.Type, err = p.Uint8(); err != nil {
		return b, err
	}
	if b.Flavor, err = p.Uint32(); err != nil {
		return b, err
	}
	if b.Flags, err = p.Uint32(); err != nil {
		return b, err
	}
	switch b.Type {
	case OpMove, OpCopy:
		mc := &ExtMoveCopyAction{}
		size, err := p.Uint32()
		if err != nil {
			return b, err
		}
		if size == 0 {
			return b, fmt.Errorf("%w: empty store entry id", ErrFormat)
		}
		if mc.StoreEID, err = p.Bytes(int(size)); err != nil {
			return b, err
		}
		if size, err = p.Uint32(); err != nil {
			return b, err
		}
		if size != folderEntryIDSize {
			return b, fmt.Errorf("%w: folder entry id of %d bytes", ErrFormat, size)
		}
		if mc.FolderEID, err = p.FolderEntryID(); err != nil {
			return b, err
		}
		b.Data = mc
	case OpReply, OpOOFReply:
		rp := &ExtReplyAction{}
		size, err := p.Uint32()
		if err != nil {
			return b, err
		}
		if size != messageEntryIDSize {
			return b, fmt.Errorf("%w: message entry id of %d bytes", ErrFormat, size)
		}
		if rp.MessageEID, err = p.MessageEntryID(); err != nil {
			return b, err
		}
		if rp.TemplateGUID, err = p.GUID(); err != nil {
			return b, err
		}
		b.Data = rp
	case OpDeferAction:
		if length < actionHeaderSize {
			return b, fmt.Errorf("%w: defer action length %d", ErrFormat, length)
		}
		data, err := p.Bytes(int(length) - actionHeaderSize)
		if err != nil {
			return b, err
		}
		b.Data = DeferAction(data)
	case OpBounce:
		code, err := p.Uint32()
		if err != nil {
			return b, err
		}
		b.Data = BounceAction(code)
	case OpForward, OpDelegate:
		fd, err := p.forwardDelegate(true)
		if err != nil {
			return b, err
		}
		b.Data = fd
	case OpTag:
		pv, err := p.TaggedPropval()
		if err != nil {
			return b, err
		}
		b.Data = &pv
	case OpDelete, OpMarkAsRead:
	default:
		return b, fmt.Errorf("%w: action type %#02x", ErrBadSwitch, b.Type)
	}
	return b, nil
}

func (p *Push) FolderEntryID(r FolderEntryID) error {
	if err := p.Uint32(r.Flags); err != nil {
		return err
	}
	if err := p.GUID(r.ProviderUID); err != nil {
		return err
	}
	if err := p.Uint16(r.FolderType); err != nil {
		return err
	}
	if err := p.GUID(r.DatabaseGUID); err != nil {
		return err
	}
	if err := p.PutBytes(r.GlobalCounter[:]); err != nil {
		return err
	}
	return p.PutBytes(r.Pad[:])
}

func (p *Push) MessageEntryID(r MessageEntryID) error {
	if err := p.Uint32(r.Flags); err != nil {
		return err
	}
	if err := p.GUID(r.ProviderUID); err != nil {
		return err
	}
	if err := p.Uint16(r.MessageType); err != nil {
		return err
	}
	if err := p.GUID(r.FolderDatabaseGUID); err != nil {
		return err
	}
	if err := p.PutBytes(r.FolderGlobalCounter[:]); err != nil {
		return err
	}
	if err := p.PutBytes(r.Pad1[:]); err != nil {
		return err
	}
	if err := p.GUID(r.MessageDatabaseGUID); err != nil {
		return err
	}
	if err := p.PutBytes(r.MessageGlobalCounter[:]); err != nil {
		return err
	}
	return p.PutBytes(r.Pad2[:])
}

// ExtRuleActions writes a u32 count of action blocks, each with a
// backpatched 32-bit length.
func (p *Push) ExtRuleActions(r *ExtRuleActions) error {
	if len(r.Blocks) == 0 {
		return fmt.Errorf("%w: empty rule actions", ErrFormat)
	}
	if err := p.Uint32(uint32(len(r.Blocks))); err != nil {
		return err
	}
	for i := range r.Blocks {
		if err := p.actionBlock(&r.Blocks[i], true); err != nil {
			return err
		}
	}
	return nil
}

func (p *Push) extMoveCopyAction(r *ExtMoveCopyAction) error {
	if len(r.StoreEID) == 0 {
		return fmt.Errorf("%w: empty store entry id", ErrFormat)
	}
	if err := p.BinEx(r.StoreEID); err != nil {
		return err
	}
	if err := p.Uint32(folderEntryIDSize); err != nil {
		return err
	}
	return p.FolderEntryID(r.FolderEID)
}

func (p *Push) extReplyAction(r *ExtReplyAction) error {
	if err := p.Uint32(messageEntryIDSize); err != nil {
		return err
	}
	if err := p.MessageEntryID(r.MessageEID); err != nil {
		return err
	}
	return p.GUID(r.TemplateGUID)
}
