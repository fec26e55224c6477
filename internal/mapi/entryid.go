package mapi

import "fmt"

// CtrlFlagUnicode marks a one-off entry id with wide strings.
const CtrlFlagUnicode uint16 = 0x8000

// Persist data ids and element ids of the additional-ren-entryids blob.
const (
	PersistSentinel          uint16 = 0x0000
	PersistRSSSubscription   uint16 = 0x8001
	PersistSendAndTrack      uint16 = 0x8002
	PersistTodoSearch        uint16 = 0x8004
	PersistConvActions       uint16 = 0x8006
	PersistCombinedActions   uint16 = 0x8007
	PersistSuggestedContacts uint16 = 0x8008
	PersistContactSearch     uint16 = 0x8009
	PersistBuddylistPDLs     uint16 = 0x800A
	PersistBuddylistContacts uint16 = 0x800B

	ElementSentinel uint16 = 0x0000
	ElementEntryID  uint16 = 0x0001
	ElementHeader   uint16 = 0x0002
)

// ABKEntryID is an address book entry id.
type ABKEntryID struct {
	Flags       uint32
	ProviderUID GUID
	Version     uint32
	Type        uint32
	X500DN      string
}

// OneOffEntryID is a one-off recipient entry id.
type OneOffEntryID struct {
	Flags       uint32
	ProviderUID GUID
	Version     uint16
	CtrlFlags   uint16
	DisplayName string
	AddressType string
	MailAddress string
}

// PersistData is one entry of a persist data array. EntryID is used for
// ElementEntryID only.
type PersistData struct {
	PersistID uint16
	ElementID uint16
	EntryID   []byte
}

func (p *Pull) ABKEntryID() (*ABKEntryID, error) {
	r := &ABKEntryID{}
	var err error
	if r.Flags, err = p.Uint32(); err != nil {
		return nil, err
	}
	if r.ProviderUID, err = p.GUID(); err != nil {
		return nil, err
	}
	if r.Version, err = p.Uint32(); err != nil {
		return nil, err
	}
	if r.Type, err = p.Uint32(); err != nil {
		return nil, err
	}
	if r.X500DN, err = p.Str(); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Pull) OneOffEntryID() (*OneOffEntryID, error) {
	r := &OneOffEntryID{}
	var err error
	if r.Flags, err = p.Uint32(); err != nil {
		return nil, err
	}
	if r.ProviderUID, err = p.GUID(); err != nil {
		return nil, err
	}
	if r.Version, err = p.Uint16(); err != nil {
		return nil, err
	}
	if r.CtrlFlags, err = p.Uint16(); err != nil {
		return nil, err
	}
	read := p.Str
	if r.CtrlFlags&CtrlFlagUnicode != 0 {
		read = p.WStr
	}
	for _, dst := range []*string{&r.DisplayName, &r.AddressType, &r.MailAddress} {
		if *dst, err = read(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// OneOffArray reads a counted list of one-off entry ids. Each entry is
// sized and padded to a multiple of four bytes; the whole list is sized.
func (p *Pull) OneOffArray() ([]*OneOffEntryID, error) {
	n, err := p.count(4)
	if err != nil {
		return nil, err
	}
	total, err := p.Uint32()
	if err != nil {
		return nil, err
	}
	end := p.off + int(total)
	out := make([]*OneOffEntryID, n)
	for i := range out {
		size, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		entryEnd := p.off + int(size)
		if out[i], err = p.OneOffEntryID(); err != nil {
			return nil, err
		}
		if p.off > entryEnd {
			return nil, fmt.Errorf("%w: one-off entry overruns its size", ErrFormat)
		}
		if err := p.SetOffset(entryEnd); err != nil {
			return nil, err
		}
		if err := p.Advance(int((size+3)&^3 - size)); err != nil {
			return nil, err
		}
	}
	if p.off > end {
		return nil, fmt.Errorf("%w: one-off array overruns its size", ErrFormat)
	}
	if err := p.SetOffset(end); err != nil {
		return nil, err
	}
	return out, nil
}

// PersistDataArray reads persist data entries up to the sentinel.
func (p *Pull) PersistDataArray() ([]PersistData, error) {
	var out []PersistData
	for {
		id, err := p.Uint16()
		if err != nil {
			return nil, err
		}
		size, err := p.Uint16()
		if err != nil {
			return nil, err
		}
		if id == PersistSentinel {
			return out, nil
		}
		end := p.off + int(size)
		d := PersistData{PersistID: id}
		if d.ElementID, err = p.Uint16(); err != nil {
			return nil, err
		}
		switch d.ElementID {
		case ElementHeader:
			if err := p.Advance(6); err != nil {
				return nil, err
			}
		case ElementEntryID:
			if d.EntryID, err = p.Bin(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: persist element %#04x", ErrBadSwitch, d.ElementID)
		}
		if p.off > end {
			return nil, fmt.Errorf("%w: persist data overruns its size", ErrFormat)
		}
		if err := p.SetOffset(end); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
}

func (p *Push) ABKEntryID(r *ABKEntryID) error {
	if err := p.Uint32(r.Flags); err != nil {
		return err
	}
	if err := p.GUID(r.ProviderUID); err != nil {
		return err
	}
	if err := p.Uint32(r.Version); err != nil {
		return err
	}
	if err := p.Uint32(r.Type); err != nil {
		return err
	}
	return p.Str(r.X500DN)
}

func (p *Push) OneOffEntryID(r *OneOffEntryID) error {
	if err := p.Uint32(r.Flags); err != nil {
		return err
	}
	if err := p.GUID(r.ProviderUID); err != nil {
		return err
	}
	if err := p.Uint16(r.Version); err != nil {
		return err
	}
	if err := p.Uint16(r.CtrlFlags); err != nil {
		return err
	}
	write := p.Str
	if r.CtrlFlags&CtrlFlagUnicode != 0 {
		write = p.WStr
	}
	for _, s := range []string{r.DisplayName, r.AddressType, r.MailAddress} {
		if err := write(s); err != nil {
			return err
		}
	}
	return nil
}

// PersistDataArray writes the entries followed by the sentinel entry.
func (p *Push) PersistDataArray(items []PersistData) error {
	for i := range items {
		if items[i].PersistID == PersistSentinel {
			return fmt.Errorf("%w: sentinel persist id inside the array", ErrFormat)
		}
		if err := p.persistData(&items[i]); err != nil {
			return err
		}
	}
	if err := p.Uint16(PersistSentinel); err != nil {
		return err
	}
	return p.Uint16(0)
}

func (p *Push) persistData(d *PersistData) error {
	if err := p.Uint16(d.PersistID); err != nil {
		return err
	}
	ph, err := p.Reserve16()
	if err != nil {
		return err
	}
	if err := p.Uint16(d.ElementID); err != nil {
		return err
	}
	switch d.ElementID {
	case ElementHeader:
		if err := p.Uint16(4); err != nil {
			return err
		}
		if err := p.Uint32(0); err != nil {
			return err
		}
	case ElementEntryID:
		if err := p.Bin(d.EntryID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: persist element %#04x", ErrBadSwitch, d.ElementID)
	}
	return p.Patch(ph)
}
