package fxstream

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// maxValueSize bounds a single variable-size value.
const maxValueSize = 64 << 20

// shortError reports that the atom being decoded needs at least need bytes,
// counted from its start.
type shortError struct {
	need int
}

func (e shortError) Error() string {
	return fmt.Sprintf("atom needs %d bytes", e.need)
}

func (e shortError) Unwrap() error { return mapi.ErrBufSize }

// fixedSize returns the wire size of a fixed-size single value and 0 for
// variable-size types.
func fixedSize(typ uint16) int {
	switch typ {
	case mapi.PtShort, mapi.PtBoolean:
		return 2
	case mapi.PtLong, mapi.PtFloat, mapi.PtError:
		return 4
	case mapi.PtDouble, mapi.PtAppTime, mapi.PtCurrency, mapi.PtI8, mapi.PtSysTime:
		return 8
	case mapi.PtCLSID:
		return 16
	}
	return 0
}

// valueType returns the type a property is encoded with. The given-idset
// meta tag is declared as a long but carries a binary.
func valueType(tag mapi.PropTag) uint16 {
	if tag == mapi.MetaTagIdsetGiven {
		return mapi.PtBinary
	}
	return tag.Type()
}

func readName(pull *mapi.Pull) (*mapi.PropertyName, error) {
	g, err := pull.GUID()
	if err != nil {
		return nil, err
	}
	kind, err := pull.Uint8()
	if err != nil {
		return nil, err
	}
	name := &mapi.PropertyName{Kind: kind, GUID: g}
	switch kind {
	case mapi.MnidID:
		if name.LID, err = pull.Uint32(); err != nil {
			return nil, err
		}
	case mapi.MnidString:
		if name.Name, err = pull.WStr(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: property name kind %d", mapi.ErrFormat, kind)
	}
	return name, nil
}

// readVar reads a 32-bit length and that many bytes.
func readVar(pull *mapi.Pull) ([]byte, error) {
	n, err := pull.Uint32()
	if err != nil {
		return nil, err
	}
	if n > maxValueSize {
		return nil, fmt.Errorf("%w: value of %d bytes", mapi.ErrFormat, n)
	}
	if int(n) > pull.Remaining() {
		return nil, shortError{need: pull.Offset() + int(n)}
	}
	return pull.Bytes(int(n))
}

// subDecode runs a codec decoder over a complete length-prefixed payload.
// Running short inside it is a format error, not a need for more input.
func subDecode[T any](b []byte, decode func(*mapi.Pull) (T, error)) (T, error) {
	v, err := decode(mapi.NewPull(b, mapi.FlagUTF16))
	if errors.Is(err, mapi.ErrBufSize) {
		err = fmt.Errorf("%w: %v", mapi.ErrFormat, err)
	}
	return v, err
}

func decodeWide(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("%w: odd wide string length %d", mapi.ErrFormat, len(b))
	}
	if len(b) < 2 || b[len(b)-1] != 0 || b[len(b)-2] != 0 {
		b = append(b, 0, 0)
	}
	return subDecode(b, (*mapi.Pull).WStr)
}

func decodeSvrEID(b []byte) (*mapi.SvrEID, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty server entry id", mapi.ErrFormat)
	}
	if b[0] == 0 {
		return &mapi.SvrEID{Foreign: true, Bin: bytes.Clone(b[1:])}, nil
	}
	if len(b) != 21 {
		return nil, fmt.Errorf("%w: server entry id of %d bytes", mapi.ErrFormat, len(b))
	}
	pull := mapi.NewPull(b[1:], 0)
	fid, _ := pull.Uint64()
	mid, _ := pull.Uint64()
	inst, _ := pull.Uint32()
	return &mapi.SvrEID{FolderID: fid, MsgID: mid, Instance: inst}, nil
}

func readScalar(pull *mapi.Pull, typ uint16) (any, error) {
	switch typ {
	case mapi.PtShort:
		return pull.Uint16()
	case mapi.PtBoolean:
		// any non-zero value is true
		v, err := pull.Uint16()
		return v != 0, err
	case mapi.PtLong, mapi.PtError:
		return pull.Uint32()
	case mapi.PtFloat:
		return pull.Float32()
	case mapi.PtDouble, mapi.PtAppTime:
		return pull.Float64()
	case mapi.PtCurrency, mapi.PtI8, mapi.PtSysTime:
		return pull.Uint64()
	case mapi.PtCLSID:
		return pull.GUID()
	}
	b, err := readVar(pull)
	if err != nil {
		return nil, err
	}
	switch typ {
	case mapi.PtString8:
		return string(bytes.TrimRight(b, "\x00")), nil
	case mapi.PtUnicode:
		return decodeWide(b)
	case mapi.PtBinary, mapi.PtObject:
		if b == nil {
			b = []byte{}
		}
		return b, nil
	case mapi.PtSvrEID:
		return decodeSvrEID(b)
	case mapi.PtSRestriction:
		return subDecode(b, (*mapi.Pull).Restriction)
	case mapi.PtActions:
		return subDecode(b, (*mapi.Pull).RuleActions)
	}
	return nil, fmt.Errorf("%w: property type %#04x", mapi.ErrBadSwitch, typ)
}

func readValue(pull *mapi.Pull, typ uint16) (any, error) {
	if typ&mapi.MVFlag == 0 {
		return readScalar(pull, typ)
	}
	n, err := pull.Uint32()
	if err != nil {
		return nil, err
	}
	elem := typ &^ mapi.MVIFlag
	typ = mapi.MVFlag | elem
	if size := fixedSize(elem); size > 0 && uint64(n)*uint64(size) > maxValueSize {
		return nil, fmt.Errorf("%w: %d values", mapi.ErrFormat, n)
	}
	switch typ {
	case mapi.PtMVShort:
		return readMV[uint16](pull, n, elem)
	case mapi.PtMVLong:
		return readMV[uint32](pull, n, elem)
	case mapi.PtMVCurrency, mapi.PtMVI8, mapi.PtMVSysTime:
		return readMV[uint64](pull, n, elem)
	case mapi.PtMVCLSID:
		return readMV[mapi.GUID](pull, n, elem)
	case mapi.PtMVString8, mapi.PtMVUnicode:
		return readMV[string](pull, n, elem)
	case mapi.PtMVBinary:
		return readMV[[]byte](pull, n, elem)
	}
	return nil, fmt.Errorf("%w: property type %#04x", mapi.ErrBadSwitch, typ)
}

func readMV[T any](pull *mapi.Pull, n uint32, elem uint16) ([]T, error) {
	out := make([]T, 0, min(int(n), pull.Remaining()))
	for range n {
		v, err := readScalar(pull, elem)
		if err != nil {
			return nil, err
		}
		out = append(out, v.(T))
	}
	return out, nil
}

func writeName(push *mapi.Push, name *mapi.PropertyName) error {
	if err := push.GUID(name.GUID); err != nil {
		return err
	}
	if err := push.Uint8(name.Kind); err != nil {
		return err
	}
	switch name.Kind {
	case mapi.MnidID:
		return push.Uint32(name.LID)
	case mapi.MnidString:
		return push.WStr(name.Name)
	}
	return fmt.Errorf("%w: property name kind %d", mapi.ErrFormat, name.Kind)
}

// writeVar writes a 32-bit length followed by what body produces.
func writeVar(push *mapi.Push, body func() error) error {
	ph, err := push.Reserve32()
	if err != nil {
		return err
	}
	if err := body(); err != nil {
		return err
	}
	return push.Patch(ph)
}

func mismatch(typ uint16, v any) error {
	return fmt.Errorf("%w: %T for property type %#04x", mapi.ErrFormat, v, typ)
}

func writeFixed(push *mapi.Push, typ uint16, v any) error {
	switch typ {
	case mapi.PtShort:
		if x, ok := v.(uint16); ok {
			return push.Uint16(x)
		}
	case mapi.PtBoolean:
		if x, ok := v.(bool); ok {
			if x {
				return push.Uint16(1)
			}
			return push.Uint16(0)
		}
	case mapi.PtLong, mapi.PtError:
		if x, ok := v.(uint32); ok {
			return push.Uint32(x)
		}
	case mapi.PtFloat:
		if x, ok := v.(float32); ok {
			return push.Float32(x)
		}
	case mapi.PtDouble, mapi.PtAppTime:
		if x, ok := v.(float64); ok {
			return push.Float64(x)
		}
	case mapi.PtCurrency, mapi.PtI8, mapi.PtSysTime:
		if x, ok := v.(uint64); ok {
			return push.Uint64(x)
		}
	case mapi.PtCLSID:
		if x, ok := v.(mapi.GUID); ok {
			return push.GUID(x)
		}
	}
	return mismatch(typ, v)
}

// writeVarBody writes the payload of a variable-size value without its
// length.
func writeVarBody(push *mapi.Push, typ uint16, v any) error {
	switch typ {
	case mapi.PtString8:
		if x, ok := v.(string); ok {
			return push.Str(x)
		}
	case mapi.PtUnicode:
		if x, ok := v.(string); ok {
			return push.WStr(x)
		}
	case mapi.PtBinary, mapi.PtObject:
		if x, ok := v.([]byte); ok {
			return push.PutBytes(x)
		}
	case mapi.PtSvrEID:
		if x, ok := v.(*mapi.SvrEID); ok && x != nil {
			if x.Foreign {
				if err := push.Uint8(0); err != nil {
					return err
				}
				return push.PutBytes(x.Bin)
			}
			if err := push.Uint8(1); err != nil {
				return err
			}
			if err := push.Uint64(x.FolderID); err != nil {
				return err
			}
			if err := push.Uint64(x.MsgID); err != nil {
				return err
			}
			return push.Uint32(x.Instance)
		}
	case mapi.PtSRestriction:
		if x, ok := v.(mapi.Restriction); ok {
			return push.Restriction(x)
		}
	case mapi.PtActions:
		if x, ok := v.(*mapi.RuleActions); ok {
			return push.RuleActions(x)
		}
	default:
		return fmt.Errorf("%w: property type %#04x", mapi.ErrBadSwitch, typ)
	}
	return mismatch(typ, v)
}
