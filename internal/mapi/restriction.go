package mapi

import "fmt"

// Restriction types.
const (
	ResAnd            uint8 = 0x00
	ResOr             uint8 = 0x01
	ResNot            uint8 = 0x02
	ResContent        uint8 = 0x03
	ResProperty       uint8 = 0x04
	ResPropCompare    uint8 = 0x05
	ResBitmask        uint8 = 0x06
	ResSize           uint8 = 0x07
	ResExist          uint8 = 0x08
	ResSubRestriction uint8 = 0x09
	ResComment        uint8 = 0x0A
	ResCount          uint8 = 0x0B
	ResNull           uint8 = 0xFF
)

// Relational operators.
const (
	RelopLT uint8 = iota
	RelopLE
	RelopGT
	RelopGE
	RelopEQ
	RelopNE
	RelopRE
)

// Bitmask operators.
const (
	BmrEqz uint8 = 0
	BmrNez uint8 = 1
)

// Fuzzy levels for content restrictions (low word) and modifiers (high word).
const (
	FLFullString uint32 = 0x00000
	FLSubstring  uint32 = 0x00001
	FLPrefix     uint32 = 0x00002
	FLIgnoreCase uint32 = 0x10000
)

// Restriction is a node of a restriction tree.
type Restriction interface {
	Type() uint8
}

// RestrictionAnd matches when every child matches.
type RestrictionAnd struct{ Children []Restriction }

// RestrictionOr matches when any child matches.
type RestrictionOr struct{ Children []Restriction }

// RestrictionNot negates its child.
type RestrictionNot struct{ Child Restriction }

// RestrictionContent compares string or binary contents.
type RestrictionContent struct {
	FuzzyLevel uint32
	PropTag    PropTag
	// Value is nil only for an absent address-book value.
	Value *TaggedPropval
}

// RestrictionProperty compares a property to a constant.
type RestrictionProperty struct {
	Relop   uint8
	PropTag PropTag
	Value   *TaggedPropval
}

// RestrictionPropCompare compares two properties of the same object.
type RestrictionPropCompare struct {
	Relop    uint8
	PropTag1 PropTag
	PropTag2 PropTag
}

// RestrictionBitmask tests bits of a PtLong property.
type RestrictionBitmask struct {
	Relop   uint8
	PropTag PropTag
	Mask    uint32
}

// RestrictionSize compares the size of a property value.
type RestrictionSize struct {
	Relop   uint8
	PropTag PropTag
	Size    uint32
}

// RestrictionExist matches when the property is present.
type RestrictionExist struct{ PropTag PropTag }

// RestrictionSub applies a restriction to a sub-object table.
type RestrictionSub struct {
	SubObject PropTag
	Child     Restriction
}

// RestrictionComment annotates an optional child with properties.
type RestrictionComment struct {
	Props TPropvalArray
	Child Restriction
}

// RestrictionCount limits the number of matches of its child.
type RestrictionCount struct {
	Count uint32
	Child Restriction
}

// RestrictionNull matches everything.
type RestrictionNull struct{}

func (*RestrictionAnd) Type() uint8         { return ResAnd }
func (*RestrictionOr) Type() uint8          { return ResOr }
func (*RestrictionNot) Type() uint8         { return ResNot }
func (*RestrictionContent) Type() uint8     { return ResContent }
func (*RestrictionProperty) Type() uint8    { return ResProperty }
func (*RestrictionPropCompare) Type() uint8 { return ResPropCompare }
func (*RestrictionBitmask) Type() uint8     { return ResBitmask }
func (*RestrictionSize) Type() uint8        { return ResSize }
func (*RestrictionExist) Type() uint8       { return ResExist }
func (*RestrictionSub) Type() uint8         { return ResSubRestriction }
func (*RestrictionComment) Type() uint8     { return ResComment }
func (*RestrictionCount) Type() uint8       { return ResCount }
func (RestrictionNull) Type() uint8         { return ResNull }

// Restriction reads a restriction tree.
func (p *Pull) Restriction() (Restriction, error) {
	rt, err := p.Uint8()
	if err != nil {
		return nil, err
	}
	switch rt {
	case ResAnd, ResOr:
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
		if n > p.Remaining() {
			return nil, ErrBufSize
		}
		children := make([]Restriction, n)
		for i := range children {
			if children[i], err = p.Restriction(); err != nil {
				return nil, err
			}
		}
		if rt == ResAnd {
			return &RestrictionAnd{Children: children}, nil
		}
		return &RestrictionOr{Children: children}, nil
	case ResNot:
		child, err := p.Restriction()
		if err != nil {
			return nil, err
		}
		return &RestrictionNot{Child: child}, nil
	case ResContent:
		r := &RestrictionContent{}
		if r.FuzzyLevel, err = p.Uint32(); err != nil {
			return nil, err
		}
		tag, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		r.PropTag = PropTag(tag)
		r.Value, err = p.abkTaggedPropval()
		if err != nil {
			return nil, err
		}
		return r, nil
	case ResProperty:
		r := &RestrictionProperty{}
		if r.Relop, err = p.Uint8(); err != nil {
			return nil, err
		}
		tag, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		r.PropTag = PropTag(tag)
		r.Value, err = p.abkTaggedPropval()
		if err != nil {
			return nil, err
		}
		return r, nil
	case ResPropCompare:
		r := &RestrictionPropCompare{}
		if r.Relop, err = p.Uint8(); err != nil {
			return nil, err
		}
		t1, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		t2, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		r.PropTag1, r.PropTag2 = PropTag(t1), PropTag(t2)
		return r, nil
	case ResBitmask:
		r := &RestrictionBitmask{}
		if r.Relop, err = p.Uint8(); err != nil {
			return nil, err
		}
		tag, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		r.PropTag = PropTag(tag)
		if r.Mask, err = p.Uint32(); err != nil {
			return nil, err
		}
		return r, nil
	case ResSize:
		r := &RestrictionSize{}
		if r.Relop, err = p.Uint8(); err != nil {
			return nil, err
		}
		tag, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		r.PropTag = PropTag(tag)
		if r.Size, err = p.Uint32(); err != nil {
			return nil, err
		}
		return r, nil
	case ResExist:
		tag, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		return &RestrictionExist{PropTag: PropTag(tag)}, nil
	case ResSubRestriction:
		sub, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		child, err := p.Restriction()
		if err != nil {
			return nil, err
		}
		return &RestrictionSub{SubObject: PropTag(sub), Child: child}, nil
	case ResComment:
		n, err := p.Uint8()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: empty comment restriction", ErrFormat)
		}
		r := &RestrictionComment{Props: make(TPropvalArray, n)}
		for i := range r.Props {
			if r.Props[i], err = p.TaggedPropval(); err != nil {
				return nil, err
			}
		}
		present, err := p.Uint8()
		if err != nil {
			return nil, err
		}
		if present != 0 {
			if r.Child, err = p.Restriction(); err != nil {
				return nil, err
			}
		}
		return r, nil
	case ResCount:
		n, err := p.Uint32()
		if err != nil {
			return nil, err
		}
		child, err := p.Restriction()
		if err != nil {
			return nil, err
		}
		return &RestrictionCount{Count: n, Child: child}, nil
	case ResNull:
		return RestrictionNull{}, nil
	}
	return nil, fmt.Errorf("%w: restriction type %#02x", ErrBadSwitch, rt)
}

func (p *Pull) abkTaggedPropval() (*TaggedPropval, error) {
	ok, err := p.abkPresent()
	if err != nil || !ok {
		return nil, err
	}
	pv, err := p.TaggedPropval()
	if err != nil {
		return nil, err
	}
	return &pv, nil
}

// Restriction writes a restriction tree.
func (p *Push) Restriction(r Restriction) error {
	if r == nil {
		return fmt.Errorf("%w: nil restriction", ErrFormat)
	}
	if err := p.Uint8(r.Type()); err != nil {
		return err
	}
	switch v := r.(type) {
	case *RestrictionAnd:
		return p.restrictionList(v.Children)
	case *RestrictionOr:
		return p.restrictionList(v.Children)
	case *RestrictionNot:
		return p.Restriction(v.Child)
	case *RestrictionContent:
		if err := p.Uint32(v.FuzzyLevel); err != nil {
			return err
		}
		if err := p.Uint32(uint32(v.PropTag)); err != nil {
			return err
		}
		return p.abkTaggedPropval(v.Value)
	case *RestrictionProperty:
		if err := p.Uint8(v.Relop); err != nil {
			return err
		}
		if err := p.Uint32(uint32(v.PropTag)); err != nil {
			return err
		}
		return p.abkTaggedPropval(v.Value)
	case *RestrictionPropCompare:
		if err := p.Uint8(v.Relop); err != nil {
			return err
		}
		if err := p.Uint32(uint32(v.PropTag1)); err != nil {
			return err
		}
		return p.Uint32(uint32(v.PropTag2))
	case *RestrictionBitmask:
		if err := p.Uint8(v.Relop); err != nil {
			return err
		}
		if err := p.Uint32(uint32(v.PropTag)); err != nil {
			return err
		}
		return p.Uint32(v.Mask)
	case *RestrictionSize:
		if err := p.Uint8(v.Relop); err != nil {
			return err
		}
		if err := p.Uint32(uint32(v.PropTag)); err != nil {
			return err
		}
		return p.Uint32(v.Size)
	case *RestrictionExist:
		return p.Uint32(uint32(v.PropTag))
	case *RestrictionSub:
		if err := p.Uint32(uint32(v.SubObject)); err != nil {
			return err
		}
		return p.Restriction(v.Child)
	case *RestrictionComment:
		if len(v.Props) == 0 || len(v.Props) > 0xFF {
			return fmt.Errorf("%w: comment restriction with %d props", ErrFormat, len(v.Props))
		}
		if err := p.Uint8(uint8(len(v.Props))); err != nil {
			return err
		}
		for _, pv := range v.Props {
			if err := p.TaggedPropval(pv); err != nil {
				return err
			}
		}
		if v.Child == nil {
			return p.Uint8(0)
		}
		if err := p.Uint8(1); err != nil {
			return err
		}
		return p.Restriction(v.Child)
	case *RestrictionCount:
		if err := p.Uint32(v.Count); err != nil {
			return err
		}
		return p.Restriction(v.Child)
	case RestrictionNull, *RestrictionNull:
		return nil
	}
	return fmt.Errorf("%w: restriction %T", ErrBadSwitch, r)
}

func (p *Push) restrictionList(children []Restriction) error {
	if p.flags&FlagWCount != 0 {
		if err := p.Uint32(uint32(len(children))); err != nil {
			return err
		}
	} else {
		if len(children) > 0xFFFF {
			return ErrFormat
		}
		if err := p.Uint16(uint16(len(children))); err != nil {
			return err
		}
	}
	for _, c := range children {
		if err := p.Restriction(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *Push) abkTaggedPropval(pv *TaggedPropval) error {
	if p.flags&FlagABK != 0 {
		if pv == nil {
			return p.Uint8(0)
		}
		if err := p.Uint8(0xFF); err != nil {
			return err
		}
	}
	if pv == nil {
		return fmt.Errorf("%w: missing restriction value", ErrFormat)
	}
	return p.TaggedPropval(*pv)
}
