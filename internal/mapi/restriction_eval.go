package mapi

import (
	"bytes"
	"cmp"
	"regexp"
	"strings"
)

// Match evaluates a restriction against a property list. Sub-object
// restrictions cannot be resolved from a flat list and never match.
func Match(r Restriction, props TPropvalArray) bool {
	switch v := r.(type) {
	case nil:
		return true
	case *RestrictionAnd:
		for _, c := range v.Children {
			if !Match(c, props) {
				return false
			}
		}
		return true
	case *RestrictionOr:
		for _, c := range v.Children {
			if Match(c, props) {
				return true
			}
		}
		return false
	case *RestrictionNot:
		return !Match(v.Child, props)
	case *RestrictionContent:
		if v.Value == nil {
			return false
		}
		have, ok := lookupProp(props, v.PropTag)
		if !ok {
			return false
		}
		return matchContent(v.FuzzyLevel, have, v.Value.Value)
	case *RestrictionProperty:
		if v.Value == nil {
			return false
		}
		have, ok := lookupProp(props, v.PropTag)
		if !ok {
			return false
		}
		if v.Relop == RelopRE {
			return matchRegexp(have, v.Value.Value)
		}
		c, ok := compareValues(have, v.Value.Value)
		return ok && relop(v.Relop, c)
	case *RestrictionPropCompare:
		a, ok1 := lookupProp(props, v.PropTag1)
		b, ok2 := lookupProp(props, v.PropTag2)
		if !ok1 || !ok2 {
			return false
		}
		c, ok := compareValues(a, b)
		return ok && relop(v.Relop, c)
	case *RestrictionBitmask:
		have, ok := lookupProp(props, v.PropTag)
		if !ok {
			return false
		}
		n, ok := have.(uint32)
		if !ok {
			return false
		}
		if v.Relop == BmrEqz {
			return n&v.Mask == 0
		}
		return n&v.Mask != 0
	case *RestrictionSize:
		have, ok := lookupProp(props, v.PropTag)
		if !ok {
			return false
		}
		return relop(v.Relop, cmp.Compare(valueSize(have), v.Size))
	case *RestrictionExist:
		_, ok := lookupProp(props, v.PropTag)
		return ok
	case *RestrictionSub:
		return false
	case *RestrictionComment:
		if v.Child == nil {
			return true
		}
		return Match(v.Child, props)
	case *RestrictionCount:
		return v.Count > 0 && Match(v.Child, props)
	case RestrictionNull, *RestrictionNull:
		return true
	}
	return false
}

// lookupProp finds a property by id, treating narrow and wide strings as
// the same property.
func lookupProp(props TPropvalArray, tag PropTag) (any, bool) {
	if v, ok := props.Get(tag); ok {
		return v, true
	}
	switch tag.Type() {
	case PtString8:
		return props.Get(tag.WithType(PtUnicode))
	case PtUnicode:
		return props.Get(tag.WithType(PtString8))
	case PtUnspecified:
		for _, pv := range props {
			if pv.Tag.ID() == tag.ID() {
				return pv.Value, true
			}
		}
	}
	return nil, false
}

func relop(op uint8, c int) bool {
	switch op {
	case RelopLT:
		return c < 0
	case RelopLE:
		return c <= 0
	case RelopGT:
		return c > 0
	case RelopGE:
		return c >= 0
	case RelopEQ:
		return c == 0
	case RelopNE:
		return c != 0
	}
	return false
}

func compareValues(a, b any) (int, bool) {
	switch x := a.(type) {
	case uint16:
		y, ok := b.(uint16)
		return cmp.Compare(x, y), ok
	case uint32:
		y, ok := b.(uint32)
		return cmp.Compare(x, y), ok
	case uint64:
		y, ok := b.(uint64)
		return cmp.Compare(x, y), ok
	case float32:
		y, ok := b.(float32)
		return cmp.Compare(x, y), ok
	case float64:
		y, ok := b.(float64)
		return cmp.Compare(x, y), ok
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		return cmp.Compare(boolInt(x), boolInt(y)), true
	case string:
		y, ok := b.(string)
		return strings.Compare(strings.ToLower(x), strings.ToLower(y)), ok
	case []byte:
		y, ok := b.([]byte)
		return bytes.Compare(x, y), ok
	case GUID:
		y, ok := b.(GUID)
		return bytes.Compare(x.Bytes(), y.Bytes()), ok
	}
	return 0, false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func matchContent(fuzzy uint32, have, want any) bool {
	ignoreCase := fuzzy&FLIgnoreCase != 0
	var h, w []byte
	switch x := have.(type) {
	case string:
		y, ok := want.(string)
		if !ok {
			return false
		}
		if ignoreCase {
			x, y = strings.ToLower(x), strings.ToLower(y)
		}
		h, w = []byte(x), []byte(y)
	case []byte:
		y, ok := want.([]byte)
		if !ok {
			return false
		}
		h, w = x, y
	case []string:
		for _, s := range x {
			if matchContent(fuzzy, s, want) {
				return true
			}
		}
		return false
	default:
		return false
	}
	switch fuzzy & 0xFFFF {
	case FLSubstring:
		return bytes.Contains(h, w)
	case FLPrefix:
		return bytes.HasPrefix(h, w)
	}
	return bytes.Equal(h, w)
}

func matchRegexp(have, want any) bool {
	s, ok1 := have.(string)
	pattern, ok2 := want.(string)
	if !ok1 || !ok2 {
		return false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func valueSize(v any) uint32 {
	switch x := v.(type) {
	case uint16:
		return 2
	case uint32, float32:
		return 4
	case uint64, float64:
		return 8
	case bool:
		return 1
	case string:
		return uint32(len(x) + 1)
	case []byte:
		return uint32(len(x))
	case GUID:
		return 16
	}
	return 0
}
