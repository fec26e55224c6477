package mapi

import "fmt"

// isABKTyped reports whether a type carries an address-book presence byte.
func isABKTyped(typ uint16) bool {
	return typ == PtString8 || typ == PtUnicode || typ == PtBinary || typ&MVFlag != 0
}

// Propval decodes one value of the given type. Multi-value instance types
// are decoded as their single-value form; in address-book mode strings,
// binaries and multi-value types are preceded by a presence byte and an
// absent value decodes to nil.
func (p *Pull) Propval(typ uint16) (any, error) {
	if p.flags&FlagABK != 0 && isABKTyped(typ) {
		ok, err := p.abkPresent()
		if err != nil || !ok {
			return nil, err
		}
	} else if typ&MVIFlag == MVIFlag {
		typ &^= MVIFlag
	}
	switch typ {
	case PtUnspecified:
		return p.TypedPropval()
	case PtShort:
		return p.Uint16()
	case PtLong, PtError:
		return p.Uint32()
	case PtFloat:
		return p.Float32()
	case PtDouble, PtAppTime:
		return p.Float64()
	case PtBoolean:
		return p.Bool()
	case PtCurrency, PtI8, PtSysTime:
		return p.Uint64()
	case PtString8:
		return p.Str()
	case PtUnicode:
		return p.WStr()
	case PtSvrEID:
		return p.SvrEID()
	case PtCLSID:
		return p.GUID()
	case PtSRestriction:
		return p.Restriction()
	case PtActions:
		return p.RuleActions()
	case PtBinary, PtObject:
		b, err := p.Bin()
		if err != nil {
			return nil, err
		}
		if b == nil {
			b = []byte{}
		}
		return b, nil
	case PtMVShort:
		return p.ShortArray()
	case PtMVLong:
		return p.LongArray()
	case PtMVCurrency, PtMVI8, PtMVSysTime:
		return p.LongLongArray()
	case PtMVString8:
		return p.StrArray()
	case PtMVUnicode:
		return p.WStrArray()
	case PtMVCLSID:
		return p.GUIDArray()
	case PtMVBinary:
		return p.BinArray()
	}
	if p.flags&FlagABK != 0 {
		return nil, fmt.Errorf("%w: property type %#04x", ErrFormat, typ)
	}
	return nil, fmt.Errorf("%w: property type %#04x", ErrBadSwitch, typ)
}

// TypedPropval reads a u16 type followed by a value of that type.
func (p *Pull) TypedPropval() (*TypedPropval, error) {
	typ, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	v, err := p.Propval(typ)
	if err != nil {
		return nil, err
	}
	return &TypedPropval{Type: typ, Value: v}, nil
}

// TaggedPropval reads a u32 tag followed by a value of the tag's type.
func (p *Pull) TaggedPropval() (TaggedPropval, error) {
	tag, err := p.Uint32()
	if err != nil {
		return TaggedPropval{}, err
	}
	v, err := p.Propval(PropTag(tag).Type())
	if err != nil {
		return TaggedPropval{}, err
	}
	return TaggedPropval{Tag: PropTag(tag), Value: v}, nil
}

// TPropvalArray reads a u16 count of tagged values.
func (p *Pull) TPropvalArray() (TPropvalArray, error) {
	n, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	return p.tpropvals(int(n))
}

// LTPropvalArray reads a u32 count of tagged values.
func (p *Pull) LTPropvalArray() (TPropvalArray, error) {
	n, err := p.count(4)
	if err != nil {
		return nil, err
	}
	return p.tpropvals(n)
}

func (p *Pull) tpropvals(n int) (TPropvalArray, error) {
	if n*4 > p.Remaining() {
		return nil, ErrBufSize
	}
	out := make(TPropvalArray, n)
	for i := range out {
		pv, err := p.TaggedPropval()
		if err != nil {
			return nil, err
		}
		out[i] = pv
	}
	return out, nil
}

// TArraySet reads a u32 count of property rows.
func (p *Pull) TArraySet() (TArraySet, error) {
	n, err := p.count(2)
	if err != nil {
		return nil, err
	}
	out := make(TArraySet, n)
	for i := range out {
		if out[i], err = p.TPropvalArray(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FlaggedPropval reads a flagged cell of a column with the given type.
func (p *Pull) FlaggedPropval(typ uint16) (*FlaggedPropval, error) {
	r := &FlaggedPropval{}
	unspecified := typ == PtUnspecified
	var err error
	if unspecified {
		if typ, err = p.Uint16(); err != nil {
			return nil, err
		}
	}
	if r.Flag, err = p.Uint8(); err != nil {
		return nil, err
	}
	var v any
	switch r.Flag {
	case FlaggedAvailable:
		if v, err = p.Propval(typ); err != nil {
			return nil, err
		}
	case FlaggedUnavailable:
	case FlaggedError:
		if v, err = p.Uint32(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: flagged value flag %#02x", ErrBadSwitch, r.Flag)
	}
	if unspecified {
		r.Value = &TypedPropval{Type: typ, Value: v}
	} else {
		r.Value = v
	}
	return r, nil
}

// PropRow reads a row of values for the given columns.
func (p *Pull) PropRow(columns ProptagArray) (*PropRow, error) {
	flag, err := p.Uint8()
	if err != nil {
		return nil, err
	}
	r := &PropRow{Flag: flag, Values: make([]any, len(columns))}
	switch flag {
	case PropRowNone:
		for i, c := range columns {
			if r.Values[i], err = p.Propval(c.Type()); err != nil {
				return nil, err
			}
		}
	case PropRowFlagged:
		for i, c := range columns {
			fv, err := p.FlaggedPropval(c.Type())
			if err != nil {
				return nil, err
			}
			r.Values[i] = fv
		}
	default:
		return nil, fmt.Errorf("%w: property row flag %#02x", ErrBadSwitch, flag)
	}
	return r, nil
}

func (p *Pull) PermissionData() (PermissionData, error) {
	var r PermissionData
	var err error
	if r.Flags, err = p.Uint8(); err != nil {
		return r, err
	}
	r.Propvals, err = p.TPropvalArray()
	return r, err
}

func (p *Pull) RuleData() (RuleData, error) {
	var r RuleData
	var err error
	if r.Flags, err = p.Uint8(); err != nil {
		return r, err
	}
	r.Propvals, err = p.TPropvalArray()
	return r, err
}

// Propval encodes one value of the given type.
func (p *Push) Propval(typ uint16, v any) error {
	if p.flags&FlagABK != 0 && isABKTyped(typ) {
		if v == nil {
			return p.Uint8(0)
		}
		if err := p.Uint8(0xFF); err != nil {
			return err
		}
	} else if typ&MVIFlag == MVIFlag {
		typ &^= MVIFlag
	}
	bad := func() error {
		return fmt.Errorf("%w: value %T for type %#04x", ErrFormat, v, typ)
	}
	switch typ {
	case PtUnspecified:
		t, ok := v.(*TypedPropval)
		if !ok || t == nil {
			return bad()
		}
		return p.TypedPropval(t)
	case PtShort:
		x, ok := v.(uint16)
		if !ok {
			return bad()
		}
		return p.Uint16(x)
	case PtLong, PtError:
		x, ok := v.(uint32)
		if !ok {
			return bad()
		}
		return p.Uint32(x)
	case PtFloat:
		x, ok := v.(float32)
		if !ok {
			return bad()
		}
		return p.Float32(x)
	case PtDouble, PtAppTime:
		x, ok := v.(float64)
		if !ok {
			return bad()
		}
		return p.Float64(x)
	case PtBoolean:
		x, ok := v.(bool)
		if !ok {
			return bad()
		}
		return p.Bool(x)
	case PtCurrency, PtI8, PtSysTime:
		x, ok := v.(uint64)
		if !ok {
			return bad()
		}
		return p.Uint64(x)
	case PtString8:
		x, ok := v.(string)
		if !ok {
			return bad()
		}
		return p.Str(x)
	case PtUnicode:
		x, ok := v.(string)
		if !ok {
			return bad()
		}
		return p.WStr(x)
	case PtCLSID:
		x, ok := v.(GUID)
		if !ok {
			return bad()
		}
		return p.GUID(x)
	case PtSvrEID:
		x, ok := v.(*SvrEID)
		if !ok || x == nil {
			return bad()
		}
		return p.SvrEID(x)
	case PtSRestriction:
		x, ok := v.(Restriction)
		if !ok {
			return bad()
		}
		return p.Restriction(x)
	case PtActions:
		x, ok := v.(*RuleActions)
		if !ok || x == nil {
			return bad()
		}
		return p.RuleActions(x)
	case PtBinary, PtObject:
		x, ok := v.([]byte)
		if !ok && v != nil {
			return bad()
		}
		return p.Bin(x)
	case PtMVShort:
		x, ok := v.([]uint16)
		if !ok {
			return bad()
		}
		return p.ShortArray(x)
	case PtMVLong:
		x, ok := v.([]uint32)
		if !ok {
			return bad()
		}
		return p.LongArray(x)
	case PtMVCurrency, PtMVI8, PtMVSysTime:
		x, ok := v.([]uint64)
		if !ok {
			return bad()
		}
		return p.LongLongArray(x)
	case PtMVString8:
		x, ok := v.([]string)
		if !ok {
			return bad()
		}
		return p.StrArray(x)
	case PtMVUnicode:
		x, ok := v.([]string)
		if !ok {
			return bad()
		}
		return p.WStrArray(x)
	case PtMVCLSID:
		x, ok := v.([]GUID)
		if !ok {
			return bad()
		}
		return p.GUIDArray(x)
	case PtMVBinary:
		x, ok := v.([][]byte)
		if !ok {
			return bad()
		}
		return p.BinArray(x)
	}
	return fmt.Errorf("%w: property type %#04x", ErrBadSwitch, typ)
}

func (p *Push) TypedPropval(t *TypedPropval) error {
	if err := p.Uint16(t.Type); err != nil {
		return err
	}
	return p.Propval(t.Type, t.Value)
}

func (p *Push) TaggedPropval(pv TaggedPropval) error {
	if err := p.Uint32(uint32(pv.Tag)); err != nil {
		return err
	}
	return p.Propval(pv.Tag.Type(), pv.Value)
}

// TPropvalArray writes a u16 count of tagged values.
func (p *Push) TPropvalArray(a TPropvalArray) error {
	if len(a) > 0xFFFF {
		return fmt.Errorf("%w: %d properties", ErrFormat, len(a))
	}
	if err := p.Uint16(uint16(len(a))); err != nil {
		return err
	}
	for _, pv := range a {
		if err := p.TaggedPropval(pv); err != nil {
			return err
		}
	}
	return nil
}

// LTPropvalArray writes a u32 count of tagged values.
func (p *Push) LTPropvalArray(a TPropvalArray) error {
	if err := p.Uint32(uint32(len(a))); err != nil {
		return err
	}
	for _, pv := range a {
		if err := p.TaggedPropval(pv); err != nil {
			return err
		}
	}
	return nil
}

// TArraySet writes a u32 count of property rows.
func (p *Push) TArraySet(s TArraySet) error {
	if err := p.Uint32(uint32(len(s))); err != nil {
		return err
	}
	for _, row := range s {
		if err := p.TPropvalArray(row); err != nil {
			return err
		}
	}
	return nil
}

// FlaggedPropval writes a flagged cell of a column with the given type.
func (p *Push) FlaggedPropval(typ uint16, r *FlaggedPropval) error {
	v := r.Value
	if typ == PtUnspecified && p.flags&FlagABK == 0 {
		switch r.Flag {
		case FlaggedUnavailable:
			typ = PtUnspecified
		case FlaggedError:
			typ = PtError
		default:
			t, ok := r.Value.(*TypedPropval)
			if !ok || t == nil {
				return fmt.Errorf("%w: flagged value without type", ErrFormat)
			}
			typ, v = t.Type, t.Value
		}
		if err := p.Uint16(typ); err != nil {
			return err
		}
	}
	if err := p.Uint8(r.Flag); err != nil {
		return err
	}
	switch r.Flag {
	case FlaggedAvailable:
		return p.Propval(typ, v)
	case FlaggedUnavailable:
		return nil
	case FlaggedError:
		code, ok := v.(uint32)
		if !ok {
			if t, isTyped := v.(*TypedPropval); isTyped {
				code, ok = t.Value.(uint32)
			}
		}
		if !ok {
			return fmt.Errorf("%w: flagged error without code", ErrFormat)
		}
		return p.Uint32(code)
	}
	return fmt.Errorf("%w: flagged value flag %#02x", ErrBadSwitch, r.Flag)
}

// PropRow writes a row for the given columns.
func (p *Push) PropRow(columns ProptagArray, r *PropRow) error {
	if len(r.Values) < len(columns) {
		return fmt.Errorf("%w: row has %d of %d columns", ErrFormat, len(r.Values), len(columns))
	}
	if err := p.Uint8(r.Flag); err != nil {
		return err
	}
	switch r.Flag {
	case PropRowNone:
		for i, c := range columns {
			if err := p.Propval(c.Type(), r.Values[i]); err != nil {
				return err
			}
		}
		return nil
	case PropRowFlagged:
		for i, c := range columns {
			fv, ok := r.Values[i].(*FlaggedPropval)
			if !ok {
				return fmt.Errorf("%w: flagged row cell %T", ErrFormat, r.Values[i])
			}
			if err := p.FlaggedPropval(c.Type(), fv); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: property row flag %#02x", ErrBadSwitch, r.Flag)
}

func (p *Push) PermissionData(r PermissionData) error {
	if err := p.Uint8(r.Flags); err != nil {
		return err
	}
	return p.TPropvalArray(r.Propvals)
}

func (p *Push) RuleData(r RuleData) error {
	if err := p.Uint8(r.Flags); err != nil {
		return err
	}
	return p.TPropvalArray(r.Propvals)
}
