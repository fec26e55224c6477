package mapi

import "fmt"

// Rule action types.
const (
	OpMove        uint8 = 0x01
	OpCopy        uint8 = 0x02
	OpReply       uint8 = 0x03
	OpOOFReply    uint8 = 0x04
	OpDeferAction uint8 = 0x05
	OpBounce      uint8 = 0x06
	OpForward     uint8 = 0x07
	OpDelegate    uint8 = 0x08
	OpTag         uint8 = 0x09
	OpDelete      uint8 = 0x0A
	OpMarkAsRead  uint8 = 0x0B
)

// actionHeaderSize covers type, flavor and flags following the length.
const actionHeaderSize = 1 + 4 + 4

// RuleActions is a non-empty list of action blocks.
type RuleActions struct {
	Blocks []ActionBlock
}

// ActionBlock is one rule action. Data holds *MoveCopyAction,
// *ReplyAction, DeferAction, BounceAction, *ForwardDelegateAction,
// *TaggedPropval, or nil for OpDelete and OpMarkAsRead.
type ActionBlock struct {
	Type   uint8
	Flavor uint32
	Flags  uint32
	Data   any
}

// StoreEntryID identifies a message store.
type StoreEntryID struct {
	Flags              uint32
	ProviderUID        GUID
	Version            uint8
	Flag               uint8
	DLLName            [14]byte
	WrappedFlags       uint32
	WrappedProviderUID GUID
	WrappedType        uint32
	ServerName         string
	MailboxDN          string
}

// MoveCopyAction targets a folder in the same store (FolderSvrEID) or in
// another store (StoreEID + FolderEID).
type MoveCopyAction struct {
	SameStore    bool
	StoreEID     *StoreEntryID
	FolderSvrEID *SvrEID
	FolderEID    []byte
}

// ReplyAction names a reply template message.
type ReplyAction struct {
	TemplateFolderID  uint64
	TemplateMessageID uint64
	TemplateGUID      GUID
}

// DeferAction is opaque client data.
type DeferAction []byte

// BounceAction carries a bounce code.
type BounceAction uint32

// RecipientBlock is one recipient of a forward or delegate action.
type RecipientBlock struct {
	Reserved uint8
	Props    TPropvalArray
}

// ForwardDelegateAction lists recipients.
type ForwardDelegateAction struct {
	Recipients []RecipientBlock
}

// RuleActions reads a u16 count (non-zero) of action blocks.
func (p *Pull) RuleActions() (*RuleActions, error) {
	n, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty rule actions", ErrFormat)
	}
	r := &RuleActions{Blocks: make([]ActionBlock, n)}
	for i := range r.Blocks {
		if r.Blocks[i], err = p.actionBlock(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (p *Pull) actionBlock() (ActionBlock, error) {
	var b ActionBlock
	length, err := p.Uint16()
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
		b.Data, err = p.moveCopyAction()
	case OpReply, OpOOFReply:
		r := &ReplyAction{}
		if r.TemplateFolderID, err = p.Uint64(); err != nil {
			return b, err
		}
		if r.TemplateMessageID, err = p.Uint64(); err != nil {
			return b, err
		}
		r.TemplateGUID, err = p.GUID()
		b.Data = r
	case OpDeferAction:
		if length < actionHeaderSize {
			return b, fmt.Errorf("%w: defer action length %d", ErrFormat, length)
		}
		var data []byte
		data, err = p.Bytes(int(length) - actionHeaderSize)
		b.Data = DeferAction(data)
	case OpBounce:
		var code uint32
		code, err = p.Uint32()
		b.Data = BounceAction(code)
	case OpForward, OpDelegate:
		b.Data, err = p.forwardDelegate(false)
	case OpTag:
		var pv TaggedPropval
		pv, err = p.TaggedPropval()
		b.Data = &pv
	case OpDelete, OpMarkAsRead:
	default:
		return b, fmt.Errorf("%w: action type %#02x", ErrBadSwitch, b.Type)
	}
	return b, err
}

func (p *Pull) moveCopyAction() (*MoveCopyAction, error) {
	r := &MoveCopyAction{}
	same, err := p.Uint8()
	if err != nil {
		return nil, err
	}
	r.SameStore = same != 0
	eidSize, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	if !r.SameStore {
		if r.StoreEID, err = p.StoreEntryID(); err != nil {
			return nil, err
		}
		if r.FolderEID, err = p.Bin(); err != nil {
			return nil, err
		}
		return r, nil
	}
	if err := p.Advance(int(eidSize)); err != nil {
		return nil, err
	}
	if r.FolderSvrEID, err = p.SvrEID(); err != nil {
		return nil, err
	}
	return r, nil
}

// forwardDelegate reads recipient blocks; ext selects 32-bit counts.
func (p *Pull) forwardDelegate(ext bool) (*ForwardDelegateAction, error) {
	var n int
	if ext {
		v, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		n = int(v)
	} else {
		v, err := p.Uint16()
		if err != nil {
			return nil, err
		}
		n = int(v)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: no recipients", ErrFormat)
	}
	if n > p.Remaining() {
		return nil, ErrBufSize
	}
	r := &ForwardDelegateAction{Recipients: make([]RecipientBlock, n)}
	for i := range r.Recipients {
		blk := &r.Recipients[i]
		var err error
		if blk.Reserved, err = p.Uint8(); err != nil {
			return nil, err
		}
		var count int
		if ext {
			v, err := p.Uint32()
			if err != nil {
				return nil, err
			}
			count = int(v)
		} else {
			v, err := p.Uint16()
			if err != nil {
				return nil, err
			}
			count = int(v)
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: empty recipient block", ErrFormat)
		}
		if blk.Props, err = p.tpropvals(count); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (p *Pull) StoreEntryID() (*StoreEntryID, error) {
	r := &StoreEntryID{}
	var err error
	if r.Flags, err = p.Uint32(); err != nil {
		return nil, err
	}
	if r.ProviderUID, err = p.GUID(); err != nil {
		return nil, err
	}
	if r.Version, err = p.Uint8(); err != nil {
		return nil, err
	}
	if r.Flag, err = p.Uint8(); err != nil {
		return nil, err
	}
	dll, err := p.take(14)
	if err != nil {
		return nil, err
	}
	copy(r.DLLName[:], dll)
	if r.WrappedFlags, err = p.Uint32(); err != nil {
		return nil, err
	}
	if r.WrappedProviderUID, err = p.GUID(); err != nil {
		return nil, err
	}
	if r.WrappedType, err = p.Uint32(); err != nil {
		return nil, err
	}
	if r.ServerName, err = p.Str(); err != nil {
		return nil, err
	}
	if r.MailboxDN, err = p.Str(); err != nil {
		return nil, err
	}
	return r, nil
}

// RuleActions writes a u16 count of action blocks, each with a
// backpatched 16-bit length.
func (p *Push) RuleActions(r *RuleActions) error {
	if len(r.Blocks) == 0 || len(r.Blocks) > 0xFFFF {
		return fmt.Errorf("%w: %d rule actions", ErrFormat, len(r.Blocks))
	}
	if err := p.Uint16(uint16(len(r.Blocks))); err != nil {
		return err
	}
	for i := range r.Blocks {
		if err := p.actionBlock(&r.Blocks[i], false); err != nil {
			return err
		}
	}
	return nil
}

func (p *Push) actionBlock(b *ActionBlock, ext bool) error {
	var ph Placeholder
	var err error
	if ext {
		ph, err = p.Reserve32()
	} else {
		ph, err = p.Reserve16()
	}
	if err != nil {
		return err
	}
	if err := p.Uint8(b.Type); err != nil {
		return err
	}
	if err := p.Uint32(b.Flavor); err != nil {
		return err
	}
	if err := p.Uint32(b.Flags); err != nil {
		return err
	}
	if err := p.actionData(b, ext); err != nil {
		return err
	}
	return p.Patch(ph)
}

func (p *Push) actionData(b *ActionBlock, ext bool) error {
	bad := func() error {
		return fmt.Errorf("%w: action %#02x with data %T", ErrFormat, b.Type, b.Data)
	}
	switch b.Type {
	case OpMove, OpCopy:
		if ext {
			mc, ok := b.Data.(*ExtMoveCopyAction)
			if !ok || mc == nil {
				return bad()
			}
			return p.extMoveCopyAction(mc)
		}
		mc, ok := b.Data.(*MoveCopyAction)
		if !ok || mc == nil {
			return bad()
		}
		return p.moveCopyAction(mc)
	case OpReply, OpOOFReply:
		if ext {
			rp, ok := b.Data.(*ExtReplyAction)
			if !ok || rp == nil {
				return bad()
			}
			return p.extReplyAction(rp)
		}
		rp, ok := b.Data.(*ReplyAction)
		if !ok || rp == nil {
			return bad()
		}
		if err := p.Uint64(rp.TemplateFolderID); err != nil {
			return err
		}
		if err := p.Uint64(rp.TemplateMessageID); err != nil {
			return err
		}
		return p.GUID(rp.TemplateGUID)
	case OpDeferAction:
		d, ok := b.Data.(DeferAction)
		if !ok && b.Data != nil {
			return bad()
		}
		return p.PutBytes(d)
	case OpBounce:
		code, ok := b.Data.(BounceAction)
		if !ok {
			return bad()
		}
		return p.Uint32(uint32(code))
	case OpForward, OpDelegate:
		fd, ok := b.Data.(*ForwardDelegateAction)
		if !ok || fd == nil {
			return bad()
		}
		return p.forwardDelegate(fd, ext)
	case OpTag:
		pv, ok := b.Data.(*TaggedPropval)
		if !ok || pv == nil {
			return bad()
		}
		return p.TaggedPropval(*pv)
	case OpDelete, OpMarkAsRead:
		return nil
	}
	return fmt.Errorf("%w: action type %#02x", ErrBadSwitch, b.Type)
}

// moveCopyAction writes the target folder. For another store the store
// entry id size is backpatched; for the same store a one-byte dummy id is
// written.
func (p *Push) moveCopyAction(r *MoveCopyAction) error {
	if !r.SameStore {
		if r.StoreEID == nil {
			return fmt.Errorf("%w: cross-store move without store id", ErrFormat)
		}
		if err := p.Uint8(0); err != nil {
			return err
		}
		ph, err := p.Reserve16()
		if err != nil {
			return err
		}
		if err := p.StoreEntryID(r.StoreEID); err != nil {
			return err
		}
		if err := p.Patch(ph); err != nil {
			return err
		}
		return p.Bin(r.FolderEID)
	}
	if r.FolderSvrEID == nil {
		return fmt.Errorf("%w: move without target folder", ErrFormat)
	}
	if err := p.Uint8(1); err != nil {
		return err
	}
	if err := p.Uint16(1); err != nil {
		return err
	}
	if err := p.Uint8(0); err != nil {
		return err
	}
	return p.SvrEID(r.FolderSvrEID)
}

func (p *Push) forwardDelegate(r *ForwardDelegateAction, ext bool) error {
	if len(r.Recipients) == 0 {
		return fmt.Errorf("%w: no recipients", ErrFormat)
	}
	if err := p.count(len(r.Recipients), ext); err != nil {
		return err
	}
	for _, blk := range r.Recipients {
		if len(blk.Props) == 0 {
			return fmt.Errorf("%w: empty recipient block", ErrFormat)
		}
		if err := p.Uint8(blk.Reserved); err != nil {
			return err
		}
		if err := p.count(len(blk.Props), ext); err != nil {
			return err
		}
		for _, pv := range blk.Props {
			if err := p.TaggedPropval(pv); err != nil {
				return err
			}
		}
	}
	return nil
}

// count writes n as u32 when wide, else as u16.
func (p *Push) count(n int, wide bool) error {
	if wide {
		return p.Uint32(uint32(n))
	}
	if n > 0xFFFF {
		return ErrFormat
	}
	return p.Uint16(uint16(n))
}

func (p *Push) StoreEntryID(r *StoreEntryID) error {
	if err := p.Uint32(r.Flags); err != nil {
		return err
	}
	if err := p.GUID(r.ProviderUID); err != nil {
		return err
	}
	if err := p.Uint8(r.Version); err != nil {
		return err
	}
	if err := p.Uint8(r.Flag); err != nil {
		return err
	}
	if err := p.PutBytes(r.DLLName[:]); err != nil {
		return err
	}
	if err := p.Uint32(r.WrappedFlags); err != nil {
		return err
	}
	if err := p.GUID(r.WrappedProviderUID); err != nil {
		return err
	}
	if err := p.Uint32(r.WrappedType); err != nil {
		return err
	}
	if err := p.Str(r.ServerName); err != nil {
		return err
	}
	return p.Str(r.MailboxDN)
}
