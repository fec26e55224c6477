package mapi

import "fmt"

// Recipient row flags. The low three bits carry the address type.
const (
	RecipientTypeMask     uint16 = 0x0007
	RecipientTypeNone     uint16 = 0x0000
	RecipientTypeX500DN   uint16 = 0x0001
	RecipientTypeDList1   uint16 = 0x0006
	RecipientTypeDList2   uint16 = 0x0007
	RecipientFlagEmail    uint16 = 0x0008
	RecipientFlagDisplay  uint16 = 0x0010
	RecipientFlagTransmit uint16 = 0x0020
	RecipientFlagSame     uint16 = 0x0100
	RecipientFlagUnicode  uint16 = 0x0200
	RecipientFlagSimple   uint16 = 0x0400
	RecipientFlagOutOfStd uint16 = 0x8000
)

// RecipientRow is a compact recipient description followed by a property
// row over a prefix of the table columns. Nil pointers are absent fields.
type RecipientRow struct {
	Flags             uint16
	PrefixUsed        *uint8
	DisplayType       *uint8
	X500DN            *string
	EntryID           []byte
	SearchKey         []byte
	AddressType       *string
	EmailAddress      *string
	DisplayName       *string
	SimpleName        *string
	TransmittableName *string
	Count             uint16
	Properties        *PropRow
}

// ModRcptRow is one row of a modify-recipients request. Row is nil when the
// recipient is being removed.
type ModRcptRow struct {
	RowID         uint32
	RecipientType uint8
	Row           *RecipientRow
}

// OpenRecipientRow is a recipient row as returned when a message is opened.
type OpenRecipientRow struct {
	RecipientType uint8
	CodePage      uint16
	Reserved      uint16
	Row           RecipientRow
}

// ReadRecipientRow is a recipient row as returned by a read-recipients call.
type ReadRecipientRow struct {
	RowID         uint32
	RecipientType uint8
	CodePage      uint16
	Reserved      uint16
	Row           RecipientRow
}

func (r *RecipientRow) unicode() bool { return r.Flags&RecipientFlagUnicode != 0 }

func (p *Pull) recipientString(wide bool) (*string, error) {
	var s string
	var err error
	if wide {
		s, err = p.WStr()
	} else {
		s, err = p.Str()
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RecipientRow reads a recipient row against the given table columns.
func (p *Pull) RecipientRow(columns ProptagArray) (*RecipientRow, error) {
	r := &RecipientRow{}
	var err error
	if r.Flags, err = p.Uint16(); err != nil {
		return nil, err
	}
	typ := r.Flags & RecipientTypeMask
	switch typ {
	case RecipientTypeX500DN:
		prefix, err := p.Uint8()
		if err != nil {
			return nil, err
		}
		dt, err := p.Uint8()
		if err != nil {
			return nil, err
		}
		dn, err := p.Str()
		if err != nil {
			return nil, err
		}
		r.PrefixUsed, r.DisplayType, r.X500DN = &prefix, &dt, &dn
	case RecipientTypeDList1, RecipientTypeDList2:
		if r.EntryID, err = p.Bin(); err != nil {
			return nil, err
		}
		if r.SearchKey, err = p.Bin(); err != nil {
			return nil, err
		}
	case RecipientTypeNone:
		if r.Flags&RecipientFlagOutOfStd != 0 {
			if r.AddressType, err = p.recipientString(false); err != nil {
				return nil, err
			}
		}
	}
	wide := r.unicode()
	if r.Flags&RecipientFlagEmail != 0 {
		if r.EmailAddress, err = p.recipientString(wide); err != nil {
			return nil, err
		}
	}
	if r.Flags&RecipientFlagDisplay != 0 {
		if r.DisplayName, err = p.recipientString(wide); err != nil {
			return nil, err
		}
	}
	if r.Flags&RecipientFlagSimple != 0 {
		if r.SimpleName, err = p.recipientString(wide); err != nil {
			return nil, err
		}
	}
	if r.Flags&RecipientFlagTransmit != 0 {
		if r.TransmittableName, err = p.recipientString(wide); err != nil {
			return nil, err
		}
	}
	if r.Flags&RecipientFlagSame != 0 {
		switch {
		case r.DisplayName == nil && r.TransmittableName != nil:
			r.DisplayName = r.TransmittableName
		case r.DisplayName != nil && r.TransmittableName == nil:
			r.TransmittableName = r.DisplayName
		}
	}
	if r.Count, err = p.Uint16(); err != nil {
		return nil, err
	}
	if int(r.Count) > len(columns) {
		return nil, fmt.Errorf("%w: recipient row with %d of %d columns", ErrFormat, r.Count, len(columns))
	}
	if r.Properties, err = p.PropRow(columns[:r.Count]); err != nil {
		return nil, err
	}
	return r, nil
}

// ModRcptRow reads a modify-recipients row. The row size is authoritative:
// the cursor lands on the declared end even if the row decoded shorter.
func (p *Pull) ModRcptRow(columns ProptagArray) (*ModRcptRow, error) {
	r := &ModRcptRow{}
	var err error
	if r.RowID, err = p.Uint32(); err != nil {
		return nil, err
	}
	if r.RecipientType, err = p.Uint8(); err != nil {
		return nil, err
	}
	size, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return r, nil
	}
	end := p.off + int(size)
	if r.Row, err = p.RecipientRow(columns); err != nil {
		return nil, err
	}
	if p.off > end {
		return nil, fmt.Errorf("%w: recipient row overruns its size", ErrFormat)
	}
	if err := p.SetOffset(end); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Push) recipientString(s string, wide bool) error {
	if wide {
		return p.WStr(s)
	}
	return p.Str(s)
}

// RecipientRow writes a recipient row. Optional fields are written when
// present; the flags are not cross-checked.
func (p *Push) RecipientRow(columns ProptagArray, r *RecipientRow) error {
	if err := p.Uint16(r.Flags); err != nil {
		return err
	}
	if r.PrefixUsed != nil {
		if err := p.Uint8(*r.PrefixUsed); err != nil {
			return err
		}
	}
	if r.DisplayType != nil {
		if err := p.Uint8(*r.DisplayType); err != nil {
			return err
		}
	}
	if r.X500DN != nil {
		if err := p.Str(*r.X500DN); err != nil {
			return err
		}
	}
	if r.EntryID != nil {
		if err := p.Bin(r.EntryID); err != nil {
			return err
		}
	}
	if r.SearchKey != nil {
		if err := p.Bin(r.SearchKey); err != nil {
			return err
		}
	}
	if r.AddressType != nil {
		if err := p.Str(*r.AddressType); err != nil {
			return err
		}
	}
	wide := r.unicode()
	for _, s := range []*string{r.EmailAddress, r.DisplayName, r.SimpleName, r.TransmittableName} {
		if s == nil {
			continue
		}
		if err := p.recipientString(*s, wide); err != nil {
			return err
		}
	}
	if int(r.Count) > len(columns) {
		return fmt.Errorf("%w: recipient row with %d of %d columns", ErrFormat, r.Count, len(columns))
	}
	if err := p.Uint16(r.Count); err != nil {
		return err
	}
	props := r.Properties
	if props == nil {
		props = &PropRow{}
	}
	return p.PropRow(columns[:r.Count], props)
}

func (p *Push) ModRcptRow(columns ProptagArray, r *ModRcptRow) error {
	if err := p.Uint32(r.RowID); err != nil {
		return err
	}
	if err := p.Uint8(r.RecipientType); err != nil {
		return err
	}
	if r.Row == nil {
		return p.Uint16(0)
	}
	return p.sizedRecipientRow(columns, r.Row)
}

func (p *Push) OpenRecipientRow(columns ProptagArray, r *OpenRecipientRow) error {
	if err := p.Uint8(r.RecipientType); err != nil {
		return err
	}
	if err := p.Uint16(r.CodePage); err != nil {
		return err
	}
	if err := p.Uint16(r.Reserved); err != nil {
		return err
	}
	return p.sizedRecipientRow(columns, &r.Row)
}

func (p *Push) ReadRecipientRow(columns ProptagArray, r *ReadRecipientRow) error {
	if err := p.Uint32(r.RowID); err != nil {
		return err
	}
	if err := p.Uint8(r.RecipientType); err != nil {
		return err
	}
	if err := p.Uint16(r.CodePage); err != nil {
		return err
	}
	if err := p.Uint16(r.Reserved); err != nil {
		return err
	}
	return p.sizedRecipientRow(columns, &r.Row)
}

func (p *Push) sizedRecipientRow(columns ProptagArray, r *RecipientRow) error {
	ph, err := p.Reserve16()
	if err != nil {
		return err
	}
	if err := p.RecipientRow(columns, r); err != nil {
		return err
	}
	return p.Patch(ph)
}
