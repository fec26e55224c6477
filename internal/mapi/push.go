package mapi

import (
	"encoding/binary"
	"fmt"
	"math"
)

// initialPushSize is the capacity of a growable Push.
const initialPushSize = 8192

// Push is a write cursor. A growable Push starts at 8 KiB and at least
// doubles on overflow; a fixed Push fails with ErrBufSize instead.
type Push struct {
	buf   []byte
	off   int
	flags Flags
	fixed bool
}

// NewPush returns a growable cursor.
func NewPush(flags Flags) *Push {
	return &Push{buf: make([]byte, initialPushSize), flags: flags}
}

// NewPushFixed returns a cursor writing into buf without growing it.
func NewPushFixed(buf []byte, flags Flags) *Push {
	return &Push{buf: buf, flags: flags, fixed: true}
}

// Bytes returns the written prefix. The slice aliases the cursor buffer.
func (p *Push) Bytes() []byte { return p.buf[:p.off] }

// Offset returns the number of bytes written.
func (p *Push) Offset() int { return p.off }

// Cap returns the current buffer capacity.
func (p *Push) Cap() int { return len(p.buf) }

// Flags returns the cursor flags.
func (p *Push) Flags() Flags { return p.flags }

// Reset rewinds the cursor without releasing the buffer.
func (p *Push) Reset() { p.off = 0 }

// ensure makes room for n more bytes.
func (p *Push) ensure(n int) error {
	if n < 0 {
		return ErrBufSize
	}
	if len(p.buf)-p.off >= n {
		return nil
	}
	if p.fixed {
		return ErrBufSize
	}
	size := 2 * len(p.buf)
	if size < initialPushSize {
		size = initialPushSize
	}
	for size-p.off < n {
		size *= 2
	}
	nb := make([]byte, size)
	copy(nb, p.buf[:p.off])
	p.buf = nb
	return nil
}

// Advance reserves n zero bytes.
func (p *Push) Advance(n int) error {
	if err := p.ensure(n); err != nil {
		return err
	}
	clear(p.buf[p.off : p.off+n])
	p.off += n
	return nil
}

// PutBytes writes raw bytes.
func (p *Push) PutBytes(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := p.ensure(len(b)); err != nil {
		return err
	}
	p.off += copy(p.buf[p.off:], b)
	return nil
}

func (p *Push) Uint8(v uint8) error {
	if err := p.ensure(1); err != nil {
		return err
	}
	p.buf[p.off] = v
	p.off++
	return nil
}

func (p *Push) Uint16(v uint16) error {
	if err := p.ensure(2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(p.buf[p.off:], v)
	p.off += 2
	return nil
}

func (p *Push) Uint32(v uint32) error {
	if err := p.ensure(4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(p.buf[p.off:], v)
	p.off += 4
	return nil
}

func (p *Push) Uint64(v uint64) error {
	if err := p.ensure(8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(p.buf[p.off:], v)
	p.off += 8
	return nil
}

func (p *Push) Int16(v int16) error { return p.Uint16(uint16(v)) }

func (p *Push) Int32(v int32) error { return p.Uint32(uint32(v)) }

func (p *Push) Int64(v int64) error { return p.Uint64(uint64(v)) }

func (p *Push) Float32(v float32) error { return p.Uint32(math.Float32bits(v)) }

func (p *Push) Float64(v float64) error { return p.Uint64(math.Float64bits(v)) }

func (p *Push) Bool(v bool) error {
	if v {
		return p.Uint8(1)
	}
	return p.Uint8(0)
}

func (p *Push) GUID(g GUID) error {
	return p.PutBytes(g.Bytes())
}

// Str writes a NUL-terminated narrow string. Under FlagTblLmt strings
// longer than 509 bytes are clipped.
func (p *Push) Str(s string) error {
	if p.flags&FlagTblLmt != 0 && len(s) > 509 {
		s = s[:509]
	}
	if err := p.ensure(len(s) + 1); err != nil {
		return err
	}
	p.off += copy(p.buf[p.off:], s)
	p.buf[p.off] = 0
	p.off++
	return nil
}

// WStr writes a wide string, UTF-16LE with a 16-bit terminator when
// FlagUTF16 is set. Under FlagTblLmt the encoding is clipped to 510 bytes
// with the last two forced to zero.
func (p *Push) WStr(s string) error {
	if p.flags&FlagUTF16 == 0 {
		return p.Str(s)
	}
	enc, err := encodeUTF16(s)
	if err != nil {
		return err
	}
	enc = append(enc, 0, 0)
	if p.flags&FlagTblLmt != 0 && len(enc) > 510 {
		enc = enc[:510]
		enc[508], enc[509] = 0, 0
	}
	return p.PutBytes(enc)
}

// Bin writes a binary with a 16-bit length, or a 32-bit length under
// FlagWCount.
func (p *Push) Bin(b []byte) error {
	if p.flags&FlagWCount != 0 {
		if uint64(len(b)) > math.MaxUint32 {
			return ErrFormat
		}
		if err := p.Uint32(uint32(len(b))); err != nil {
			return err
		}
		return p.PutBytes(b)
	}
	return p.SBin(b)
}

// SBin writes a binary with a 16-bit length.
func (p *Push) SBin(b []byte) error {
	if len(b) > 0xFFFF {
		return fmt.Errorf("%w: binary of %d bytes needs a wide count", ErrFormat, len(b))
	}
	if err := p.Uint16(uint16(len(b))); err != nil {
		return err
	}
	return p.PutBytes(b)
}

// BinEx writes a binary with a 32-bit length.
func (p *Push) BinEx(b []byte) error {
	if uint64(len(b)) > math.MaxUint32 {
		return ErrFormat
	}
	if err := p.Uint32(uint32(len(b))); err != nil {
		return err
	}
	return p.PutBytes(b)
}

// Placeholder is a reserved length slot awaiting a backpatch.
type Placeholder struct {
	at    int
	width int
}

// Reserve8 reserves a one-byte length slot.
func (p *Push) Reserve8() (Placeholder, error) { return p.reserve(1) }

// Reserve16 reserves a two-byte length slot.
func (p *Push) Reserve16() (Placeholder, error) { return p.reserve(2) }

// Reserve32 reserves a four-byte length slot.
func (p *Push) Reserve32() (Placeholder, error) { return p.reserve(4) }

func (p *Push) reserve(width int) (Placeholder, error) {
	ph := Placeholder{at: p.off, width: width}
	return ph, p.Advance(width)
}

// Patch writes the number of bytes produced since the slot into it. Bytes
// after the slot are left untouched.
func (p *Push) Patch(ph Placeholder) error {
	size := p.off - (ph.at + ph.width)
	if size < 0 {
		return ErrBufSize
	}
	switch ph.width {
	case 1:
		if size > 0xFF {
			return fmt.Errorf("%w: %d bytes overflow an 8-bit size", ErrFormat, size)
		}
		p.buf[ph.at] = uint8(size)
	case 2:
		if size > 0xFFFF {
			return fmt.Errorf("%w: %d bytes overflow a 16-bit size", ErrFormat, size)
		}
		binary.LittleEndian.PutUint16(p.buf[ph.at:], uint16(size))
	case 4:
		binary.LittleEndian.PutUint32(p.buf[ph.at:], uint32(size))
	}
	return nil
}

func (p *Push) ShortArray(v []uint16) error {
	if err := p.Uint32(uint32(len(v))); err != nil {
		return err
	}
	for _, x := range v {
		if err := p.Uint16(x); err != nil {
			return err
		}
	}
	return nil
}

func (p *Push) LongArray(v []uint32) error {
	if err := p.Uint32(uint32(len(v))); err != nil {
		return err
	}
	for _, x := range v {
		if err := p.Uint32(x); err != nil {
			return err
		}
	}
	return nil
}

func (p *Push) LongLongArray(v []uint64) error {
	if err := p.Uint32(uint32(len(v))); err != nil {
		return err
	}
	for _, x := range v {
		if err := p.Uint64(x); err != nil {
			return err
		}
	}
	return nil
}

func (p *Push) GUIDArray(v []GUID) error {
	if err := p.Uint32(uint32(len(v))); err != nil {
		return err
	}
	for _, g := range v {
		if err := p.GUID(g); err != nil {
			return err
		}
	}
	return nil
}

// BinArray writes binaries; under FlagABK an empty entry is a single zero
// presence byte.
func (p *Push) BinArray(v [][]byte) error {
	if err := p.Uint32(uint32(len(v))); err != nil {
		return err
	}
	for _, b := range v {
		if p.flags&FlagABK != 0 {
			if len(b) == 0 {
				if err := p.Uint8(0); err != nil {
					return err
				}
				continue
			}
			if err := p.Uint8(0xFF); err != nil {
				return err
			}
		}
		if err := p.Bin(b); err != nil {
			return err
		}
	}
	return nil
}

func (p *Push) StrArray(v []string) error { return p.strArray(v, p.Str) }

func (p *Push) WStrArray(v []string) error { return p.strArray(v, p.WStr) }

// strArray writes strings; under FlagABK an empty entry is a single zero
// presence byte, matching how such an entry decodes.
func (p *Push) strArray(v []string, write func(string) error) error {
	if err := p.Uint32(uint32(len(v))); err != nil {
		return err
	}
	for _, s := range v {
		if p.flags&FlagABK != 0 {
			if s == "" {
				if err := p.Uint8(0); err != nil {
					return err
				}
				continue
			}
			if err := p.Uint8(0xFF); err != nil {
				return err
			}
		}
		if err := write(s); err != nil {
			return err
		}
	}
	return nil
}

// ProptagArray writes a u16 count followed by the tags.
func (p *Push) ProptagArray(v ProptagArray) error {
	if len(v) > 0xFFFF {
		return ErrFormat
	}
	if err := p.Uint16(uint16(len(v))); err != nil {
		return err
	}
	for _, t := range v {
		if err := p.Uint32(uint32(t)); err != nil {
			return err
		}
	}
	return nil
}

// LProptagArray writes a u32 count followed by the tags.
func (p *Push) LProptagArray(v ProptagArray) error {
	if err := p.Uint32(uint32(len(v))); err != nil {
		return err
	}
	for _, t := range v {
		if err := p.Uint32(uint32(t)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Push) LongTermID(r LongTermID) error {
	if err := p.GUID(r.GUID); err != nil {
		return err
	}
	if err := p.PutBytes(r.GlobalCounter[:]); err != nil {
		return err
	}
	return p.Uint16(r.Padding)
}

func (p *Push) SvrEID(r *SvrEID) error {
	if r.Foreign {
		if len(r.Bin) >= 0xFFFF {
			return ErrFormat
		}
		if err := p.Uint16(uint16(len(r.Bin) + 1)); err != nil {
			return err
		}
		if err := p.Uint8(0); err != nil {
			return err
		}
		return p.PutBytes(r.Bin)
	}
	if err := p.Uint16(21); err != nil {
		return err
	}
	if err := p.Uint8(1); err != nil {
		return err
	}
	if err := p.Uint64(r.FolderID); err != nil {
		return err
	}
	if err := p.Uint64(r.MsgID); err != nil {
		return err
	}
	return p.Uint32(r.Instance)
}

func (p *Push) EIDArray(v []uint64) error { return p.LongLongArray(v) }

func (p *Push) PropIDArray(v []uint16) error {
	if err := p.Uint16(uint16(len(v))); err != nil {
		return err
	}
	for _, id := range v {
		if err := p.Uint16(id); err != nil {
			return err
		}
	}
	return nil
}

// PropName writes a property name; a string name is preceded by its
// backpatched byte size.
func (p *Push) PropName(r PropertyName) error {
	if err := p.Uint8(r.Kind); err != nil {
		return err
	}
	if err := p.GUID(r.GUID); err != nil {
		return err
	}
	switch r.Kind {
	case MnidID:
		return p.Uint32(r.LID)
	case MnidString:
		ph, err := p.Reserve8()
		if err != nil {
			return err
		}
		if err := p.WStr(r.Name); err != nil {
			return err
		}
		return p.Patch(ph)
	}
	return nil
}

func (p *Push) PropNameArray(v []PropertyName) error {
	if err := p.Uint16(uint16(len(v))); err != nil {
		return err
	}
	for _, n := range v {
		if err := p.PropName(n); err != nil {
			return err
		}
	}
	return nil
}

// NamedPropInfo writes ids followed by a size-prefixed block of names.
func (p *Push) NamedPropInfo(r *NamedPropInfo) error {
	if len(r.IDs) != len(r.Names) {
		return ErrFormat
	}
	if err := p.Uint16(uint16(len(r.IDs))); err != nil {
		return err
	}
	if len(r.IDs) == 0 {
		return nil
	}
	for _, id := range r.IDs {
		if err := p.Uint16(id); err != nil {
			return err
		}
	}
	ph, err := p.Reserve32()
	if err != nil {
		return err
	}
	for _, n := range r.Names {
		if err := p.PropName(n); err != nil {
			return err
		}
	}
	return p.Patch(ph)
}

func (p *Push) XID(x XID) error {
	return p.PutBytes(x.Bytes())
}

func (p *Push) SysTime(r SysTime) error {
	for _, v := range []int16{r.Year, r.Month, r.DayOfWeek, r.Day,
		r.Hour, r.Minute, r.Second, r.Milliseconds} {
		if err := p.Int16(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *Push) TZStruct(r TZStruct) error {
	for _, v := range []int32{r.Bias, r.StandardBias, r.DaylightBias} {
		if err := p.Int32(v); err != nil {
			return err
		}
	}
	if err := p.Int16(r.StandardYear); err != nil {
		return err
	}
	if err := p.SysTime(r.StandardDate); err != nil {
		return err
	}
	if err := p.Int16(r.DaylightYear); err != nil {
		return err
	}
	return p.SysTime(r.DaylightDate)
}

func (p *Push) tzRule(r TZRule) error {
	if err := p.Uint8(r.Major); err != nil {
		return err
	}
	if err := p.Uint8(r.Minor); err != nil {
		return err
	}
	if err := p.Uint16(r.Reserved); err != nil {
		return err
	}
	if err := p.Uint16(r.Flags); err != nil {
		return err
	}
	if err := p.Int16(r.Year); err != nil {
		return err
	}
	if err := p.PutBytes(r.X[:]); err != nil {
		return err
	}
	for _, v := range []int32{r.Bias, r.StandardBias, r.DaylightBias} {
		if err := p.Int32(v); err != nil {
			return err
		}
	}
	if err := p.SysTime(r.StandardDate); err != nil {
		return err
	}
	return p.SysTime(r.DaylightDate)
}

// TZDef writes a timezone definition. Key names longer than 130 UTF-16
// units cannot be represented.
func (p *Push) TZDef(r *TZDef) error {
	key, err := encodeUTF16(r.KeyName)
	if err != nil {
		return err
	}
	if len(key) > 260 {
		return fmt.Errorf("%w: tzdef key name too long", ErrCharCnv)
	}
	if err := p.Uint8(r.Major); err != nil {
		return err
	}
	if err := p.Uint8(r.Minor); err != nil {
		return err
	}
	if err := p.Uint16(uint16(6 + len(key))); err != nil {
		return err
	}
	if err := p.Uint16(r.Reserved); err != nil {
		return err
	}
	if err := p.Uint16(uint16(len(key) / 2)); err != nil {
		return err
	}
	if err := p.PutBytes(key); err != nil {
		return err
	}
	if err := p.Uint16(uint16(len(r.Rules))); err != nil {
		return err
	}
	for _, rule := range r.Rules {
		if err := p.tzRule(rule); err != nil {
			return err
		}
	}
	return nil
}
