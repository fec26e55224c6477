package mapi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Pull is a read cursor over a byte slice. A read that would cross the end
// fails with ErrBufSize and leaves the offset unchanged.
type Pull struct {
	data  []byte
	off   int
	flags Flags
}

// NewPull returns a cursor positioned at the start of data.
func NewPull(data []byte, flags Flags) *Pull {
	return &Pull{data: data, flags: flags}
}

// Offset returns the current read position.
func (p *Pull) Offset() int { return p.off }

// Len returns the total input length.
func (p *Pull) Len() int { return len(p.data) }

// Remaining returns the number of unread bytes.
func (p *Pull) Remaining() int { return len(p.data) - p.off }

// Flags returns the cursor flags.
func (p *Pull) Flags() Flags { return p.flags }

// SetOffset moves the cursor to an absolute position within the input.
func (p *Pull) SetOffset(off int) error {
	if off < 0 || off > len(p.data) {
		return ErrBufSize
	}
	p.off = off
	return nil
}

// Advance skips n bytes.
func (p *Pull) Advance(n int) error {
	if err := p.need(n); err != nil {
		return err
	}
	p.off += n
	return nil
}

func (p *Pull) need(n int) error {
	if n < 0 || n > len(p.data)-p.off {
		return ErrBufSize
	}
	return nil
}

func (p *Pull) take(n int) ([]byte, error) {
	if err := p.need(n); err != nil {
		return nil, err
	}
	b := p.data[p.off : p.off+n]
	p.off += n
	return b, nil
}

// Bytes returns a copy of the next n bytes.
func (p *Pull) Bytes(n int) ([]byte, error) {
	b, err := p.take(n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

func (p *Pull) Uint8() (uint8, error) {
	b, err := p.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *Pull) Uint16() (uint16, error) {
	b, err := p.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (p *Pull) Uint32() (uint32, error) {
	b, err := p.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (p *Pull) Uint64() (uint64, error) {
	b, err := p.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (p *Pull) Int16() (int16, error) {
	v, err := p.Uint16()
	return int16(v), err
}

func (p *Pull) Int32() (int32, error) {
	v, err := p.Uint32()
	return int32(v), err
}

func (p *Pull) Int64() (int64, error) {
	v, err := p.Uint64()
	return int64(v), err
}

func (p *Pull) Float32() (float32, error) {
	v, err := p.Uint32()
	return math.Float32frombits(v), err
}

func (p *Pull) Float64() (float64, error) {
	v, err := p.Uint64()
	return math.Float64frombits(v), err
}

// Bool reads one byte that must be exactly 0 or 1.
func (p *Pull) Bool() (bool, error) {
	if err := p.need(1); err != nil {
		return false, err
	}
	switch p.data[p.off] {
	case 0:
		p.off++
		return false, nil
	case 1:
		p.off++
		return true, nil
	}
	return false, fmt.Errorf("%w: boolean byte %#02x", ErrFormat, p.data[p.off])
}

func (p *Pull) GUID() (GUID, error) {
	b, err := p.take(16)
	if err != nil {
		return GUID{}, err
	}
	return GUIDFromBytes(b)
}

// Str reads a NUL-terminated narrow string. The terminator is consumed.
func (p *Pull) Str() (string, error) {
	i := bytes.IndexByte(p.data[p.off:], 0)
	if i < 0 {
		return "", ErrBufSize
	}
	s := string(p.data[p.off : p.off+i])
	p.off += i + 1
	return s, nil
}

// WStr reads a wide string: UTF-16LE terminated by a 16-bit NUL when
// FlagUTF16 is set, otherwise the same as Str. The result is UTF-8.
func (p *Pull) WStr() (string, error) {
	if p.flags&FlagUTF16 == 0 {
		return p.Str()
	}
	rest := p.data[p.off:]
	end := -1
	for i := 0; i+1 < len(rest); i += 2 {
		if rest[i] == 0 && rest[i+1] == 0 {
			end = i
			break
		}
	}
	if end < 0 {
		return "", ErrBufSize
	}
	s, err := decodeUTF16(rest[:end])
	if err != nil {
		return "", err
	}
	p.off += end + 2
	return s, nil
}

func decodeUTF16(b []byte) (string, error) {
	if err := checkSurrogates(b); err != nil {
		return "", err
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCharCnv, err)
	}
	return string(out), nil
}

// checkSurrogates rejects UTF-16LE text holding a surrogate without its
// pair.
func checkSurrogates(b []byte) error {
	for i := 0; i+1 < len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i:])
		switch {
		case u >= 0xD800 && u < 0xDC00:
			if i+3 < len(b) {
				if lo := binary.LittleEndian.Uint16(b[i+2:]); lo >= 0xDC00 && lo < 0xE000 {
					i += 2
					continue
				}
			}
			return fmt.Errorf("%w: %w: unpaired high surrogate at byte %d", ErrFormat, ErrCharCnv, i)
		case u >= 0xDC00 && u < 0xE000:
			return fmt.Errorf("%w: %w: unpaired low surrogate at byte %d", ErrFormat, ErrCharCnv, i)
		}
	}
	return nil
}

func encodeUTF16(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, ErrCharCnv
	}
	out, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCharCnv, err)
	}
	return out, nil
}

// Bin reads a binary with a 16-bit length, or a 32-bit length under
// FlagWCount. A zero length yields nil.
func (p *Pull) Bin() ([]byte, error) {
	start := p.off
	var n int
	if p.flags&FlagWCount != 0 {
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
	return p.binBody(start, n)
}

// SBin reads a binary with a 16-bit length regardless of flags.
func (p *Pull) SBin() ([]byte, error) {
	start := p.off
	v, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	return p.binBody(start, int(v))
}

// BinEx reads a binary with a 32-bit length.
func (p *Pull) BinEx() ([]byte, error) {
	start := p.off
	v, err := p.Uint32()
	if err != nil {
		return nil, err
	}
	return p.binBody(start, int(v))
}

// binBody reads n payload bytes, rewinding to start when they are missing.
func (p *Pull) binBody(start, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	b, err := p.Bytes(n)
	if err != nil {
		p.off = start
		return nil, err
	}
	return b, nil
}

// count reads a u32 element count and rejects counts that cannot possibly
// fit in the remaining input given a minimum element size.
func (p *Pull) count(minElem int) (int, error) {
	v, err := p.Uint32()
	if err != nil {
		return 0, err
	}
	if minElem > 0 && uint64(v)*uint64(minElem) > uint64(p.Remaining()) {
		return 0, ErrBufSize
	}
	return int(v), nil
}

func (p *Pull) ShortArray() ([]uint16, error) {
	n, err := p.count(2)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		if out[i], err = p.Uint16(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Pull) LongArray() ([]uint32, error) {
	n, err := p.count(4)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		if out[i], err = p.Uint32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Pull) LongLongArray() ([]uint64, error) {
	n, err := p.count(8)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, n)
	for i := range out {
		if out[i], err = p.Uint64(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Pull) GUIDArray() ([]GUID, error) {
	n, err := p.count(16)
	if err != nil {
		return nil, err
	}
	out := make([]GUID, n)
	for i := range out {
		if out[i], err = p.GUID(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// abkPresent reads the address-book presence byte when FlagABK is set.
func (p *Pull) abkPresent() (bool, error) {
	if p.flags&FlagABK == 0 {
		return true, nil
	}
	v, err := p.Uint8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 0xFF:
		return true, nil
	}
	return false, fmt.Errorf("%w: presence byte %#02x", ErrFormat, v)
}

func (p *Pull) BinArray() ([][]byte, error) {
	n, err := p.count(1)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, n)
	for i := range out {
		ok, err := p.abkPresent()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if out[i], err = p.Bin(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Pull) StrArray() ([]string, error) {
	return p.strArray(p.Str)
}

func (p *Pull) WStrArray() ([]string, error) {
	return p.strArray(p.WStr)
}

func (p *Pull) strArray(read func() (string, error)) ([]string, error) {
	n, err := p.count(1)
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		ok, err := p.abkPresent()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if out[i], err = read(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ProptagArray reads a u16 count followed by property tags.
func (p *Pull) ProptagArray() (ProptagArray, error) {
	n, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	if int(n)*4 > p.Remaining() {
		return nil, ErrBufSize
	}
	out := make(ProptagArray, n)
	for i := range out {
		v, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		out[i] = PropTag(v)
	}
	return out, nil
}

// LProptagArray reads a u32 count followed by property tags.
func (p *Pull) LProptagArray() (ProptagArray, error) {
	n, err := p.count(4)
	if err != nil {
		return nil, err
	}
	out := make(ProptagArray, n)
	for i := range out {
		v, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		out[i] = PropTag(v)
	}
	return out, nil
}

func (p *Pull) LongTermID() (LongTermID, error) {
	var r LongTermID
	var err error
	if r.GUID, err = p.GUID(); err != nil {
		return r, err
	}
	b, err := p.take(6)
	if err != nil {
		return r, err
	}
	copy(r.GlobalCounter[:], b)
	r.Padding, err = p.Uint16()
	return r, err
}

// SvrEID reads a server entry id: u16 length, u8 ours, then either an
// opaque blob of length-1 bytes or a fixed 20-byte local triple.
func (p *Pull) SvrEID() (*SvrEID, error) {
	n, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	ours, err := p.Uint8()
	if err != nil {
		return nil, err
	}
	if ours == 0 {
		size := 0
		if n > 0 {
			size = int(n) - 1
		}
		b, err := p.Bytes(size)
		if err != nil {
			return nil, err
		}
		return &SvrEID{Foreign: true, Bin: b}, nil
	}
	if n != 21 {
		return nil, fmt.Errorf("%w: svreid length %d", ErrFormat, n)
	}
	r := &SvrEID{}
	if r.FolderID, err = p.Uint64(); err != nil {
		return nil, err
	}
	if r.MsgID, err = p.Uint64(); err != nil {
		return nil, err
	}
	if r.Instance, err = p.Uint32(); err != nil {
		return nil, err
	}
	return r, nil
}

// EIDArray reads a u32 count of 64-bit ids.
func (p *Pull) EIDArray() ([]uint64, error) {
	return p.LongLongArray()
}

// PropIDArray reads a u16 count of property ids.
func (p *Pull) PropIDArray() ([]uint16, error) {
	n, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		if out[i], err = p.Uint16(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PropName reads a property name. String names carry a one-byte size that
// fixes the end of the name regardless of where the terminator falls.
func (p *Pull) PropName() (PropertyName, error) {
	var r PropertyName
	var err error
	if r.Kind, err = p.Uint8(); err != nil {
		return r, err
	}
	if r.GUID, err = p.GUID(); err != nil {
		return r, err
	}
	switch r.Kind {
	case MnidID:
		r.LID, err = p.Uint32()
		return r, err
	case MnidString:
		size, err := p.Uint8()
		if err != nil {
			return r, err
		}
		if size < 2 {
			return r, fmt.Errorf("%w: name size %d", ErrFormat, size)
		}
		end := p.off + int(size)
		if r.Name, err = p.WStr(); err != nil {
			return r, err
		}
		if p.off > end {
			return r, fmt.Errorf("%w: name overruns its size", ErrFormat)
		}
		return r, p.SetOffset(end)
	}
	return r, nil
}

func (p *Pull) PropNameArray() ([]PropertyName, error) {
	n, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	out := make([]PropertyName, n)
	for i := range out {
		if out[i], err = p.PropName(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NamedPropInfo reads ids followed by a size-guarded block of names.
func (p *Pull) NamedPropInfo() (*NamedPropInfo, error) {
	n, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	r := &NamedPropInfo{}
	if n == 0 {
		return r, nil
	}
	r.IDs = make([]uint16, n)
	for i := range r.IDs {
		if r.IDs[i], err = p.Uint16(); err != nil {
			return nil, err
		}
	}
	size, err := p.Uint32()
	if err != nil {
		return nil, err
	}
	end := p.off + int(size)
	r.Names = make([]PropertyName, n)
	for i := range r.Names {
		if r.Names[i], err = p.PropName(); err != nil {
			return nil, err
		}
	}
	if end < p.off {
		return nil, fmt.Errorf("%w: named properties overrun their size", ErrFormat)
	}
	return r, p.SetOffset(end)
}

// XID reads an XID of the given size (17..24 bytes).
func (p *Pull) XID(size int) (XID, error) {
	if size < 17 || size > 24 {
		return XID{}, fmt.Errorf("%w: xid size %d", ErrFormat, size)
	}
	b, err := p.take(size)
	if err != nil {
		return XID{}, err
	}
	return XIDFromBytes(b)
}

func (p *Pull) SysTime() (SysTime, error) {
	var r SysTime
	fields := []*int16{&r.Year, &r.Month, &r.DayOfWeek, &r.Day,
		&r.Hour, &r.Minute, &r.Second, &r.Milliseconds}
	for _, f := range fields {
		v, err := p.Int16()
		if err != nil {
			return r, err
		}
		*f = v
	}
	return r, nil
}

func (p *Pull) TZStruct() (TZStruct, error) {
	var r TZStruct
	var err error
	if r.Bias, err = p.Int32(); err != nil {
		return r, err
	}
	if r.StandardBias, err = p.Int32(); err != nil {
		return r, err
	}
	if r.DaylightBias, err = p.Int32(); err != nil {
		return r, err
	}
	if r.StandardYear, err = p.Int16(); err != nil {
		return r, err
	}
	if r.StandardDate, err = p.SysTime(); err != nil {
		return r, err
	}
	if r.DaylightYear, err = p.Int16(); err != nil {
		return r, err
	}
	r.DaylightDate, err = p.SysTime()
	return r, err
}

func (p *Pull) tzRule() (TZRule, error) {
	var r TZRule
	var err error
	if r.Major, err = p.Uint8(); err != nil {
		return r, err
	}
	if r.Minor, err = p.Uint8(); err != nil {
		return r, err
	}
	if r.Reserved, err = p.Uint16(); err != nil {
		return r, err
	}
	if r.Flags, err = p.Uint16(); err != nil {
		return r, err
	}
	if r.Year, err = p.Int16(); err != nil {
		return r, err
	}
	x, err := p.take(14)
	if err != nil {
		return r, err
	}
	copy(r.X[:], x)
	if r.Bias, err = p.Int32(); err != nil {
		return r, err
	}
	if r.StandardBias, err = p.Int32(); err != nil {
		return r, err
	}
	if r.DaylightBias, err = p.Int32(); err != nil {
		return r, err
	}
	if r.StandardDate, err = p.SysTime(); err != nil {
		return r, err
	}
	r.DaylightDate, err = p.SysTime()
	return r, err
}

// TZDef reads a timezone definition. The header size must equal
// 6 + 2*keyname_chars and may not exceed 266 bytes.
func (p *Pull) TZDef() (*TZDef, error) {
	r := &TZDef{}
	var err error
	if r.Major, err = p.Uint8(); err != nil {
		return nil, err
	}
	if r.Minor, err = p.Uint8(); err != nil {
		return nil, err
	}
	cbHeader, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	if cbHeader > 266 {
		return nil, fmt.Errorf("%w: tzdef header %d", ErrFormat, cbHeader)
	}
	if r.Reserved, err = p.Uint16(); err != nil {
		return nil, err
	}
	cch, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	if int(cbHeader) != 6+2*int(cch) {
		return nil, fmt.Errorf("%w: tzdef header %d for %d chars", ErrFormat, cbHeader, cch)
	}
	raw, err := p.take(int(cbHeader) - 6)
	if err != nil {
		return nil, err
	}
	if r.KeyName, err = decodeUTF16(raw); err != nil {
		return nil, err
	}
	n, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	r.Rules = make([]TZRule, n)
	for i := range r.Rules {
		if r.Rules[i], err = p.tzRule(); err != nil {
			return nil, err
		}
	}
	return r, nil
}
