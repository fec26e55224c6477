package mapi

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Flags select codec behaviour for a single Pull or Push cursor.
type Flags uint8

const (
	// FlagUTF16 makes wide strings travel as UTF-16LE; without it they are
	// narrow NUL-terminated strings.
	FlagUTF16 Flags = 1 << iota
	// FlagWCount widens binary lengths and AND/OR counts to 32 bits.
	FlagWCount
	// FlagTblLmt clips pushed strings to the table row limit.
	FlagTblLmt
	// FlagABK enables the address-book presence bytes in front of strings,
	// binaries and multi-value properties.
	FlagABK
)

// GUID in its on-wire mixed-endian form.
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// GUIDFromUUID converts an RFC 4122 UUID to a GUID.
func GUIDFromUUID(u uuid.UUID) GUID {
	var g GUID
	g.Data1 = binary.BigEndian.Uint32(u[0:4])
	g.Data2 = binary.BigEndian.Uint16(u[4:6])
	g.Data3 = binary.BigEndian.Uint16(u[6:8])
	copy(g.Data4[:], u[8:16])
	return g
}

// NewGUID returns a random GUID.
func NewGUID() GUID {
	return GUIDFromUUID(uuid.New())
}

// Bytes returns the 16-byte wire encoding.
func (g GUID) Bytes() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:], g.Data1)
	binary.LittleEndian.PutUint16(b[4:], g.Data2)
	binary.LittleEndian.PutUint16(b[6:], g.Data3)
	copy(b[8:], g.Data4[:])
	return b
}

// GUIDFromBytes decodes a 16-byte wire GUID.
func GUIDFromBytes(b []byte) (GUID, error) {
	if len(b) < 16 {
		return GUID{}, ErrBufSize
	}
	var g GUID
	g.Data1 = binary.LittleEndian.Uint32(b[0:])
	g.Data2 = binary.LittleEndian.Uint16(b[4:])
	g.Data3 = binary.LittleEndian.Uint16(b[6:])
	copy(g.Data4[:], b[8:16])
	return g, nil
}

func (g GUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		g.Data1, g.Data2, g.Data3, g.Data4[0], g.Data4[1],
		g.Data4[2], g.Data4[3], g.Data4[4], g.Data4[5], g.Data4[6], g.Data4[7])
}

// IsZero reports whether g is the nil GUID.
func (g GUID) IsZero() bool { return g == GUID{} }

// TaggedPropval is a property tag with its value. The dynamic type of Value
// is fixed by the tag's type:
//
//	PtShort                          uint16
//	PtLong, PtError                  uint32
//	PtFloat                          float32
//	PtDouble, PtAppTime              float64
//	PtBoolean                        bool
//	PtCurrency, PtI8, PtSysTime      uint64
//	PtString8, PtUnicode             string
//	PtCLSID                          GUID
//	PtSvrEID                         *SvrEID
//	PtSRestriction                   Restriction
//	PtActions                        *RuleActions
//	PtBinary, PtObject               []byte
//	PtMVShort                        []uint16
//	PtMVLong                         []uint32
//	PtMVCurrency, PtMVI8, PtMVSysTime []uint64
//	PtMVString8, PtMVUnicode         []string
//	PtMVCLSID                        []GUID
//	PtMVBinary                       [][]byte
//	PtUnspecified                    *TypedPropval
//
// In address-book mode a nil Value marks an absent string, binary or
// multi-value property.
type TaggedPropval struct {
	Tag   PropTag
	Value any
}

// TypedPropval carries its own type code, used for PtUnspecified columns.
type TypedPropval struct {
	Type  uint16
	Value any
}

// TPropvalArray is an ordered property list.
type TPropvalArray []TaggedPropval

// Get returns the value stored under tag.
func (a TPropvalArray) Get(tag PropTag) (any, bool) {
	for _, pv := range a {
		if pv.Tag == tag {
			return pv.Value, true
		}
	}
	return nil, false
}

// Has reports whether tag is present.
func (a TPropvalArray) Has(tag PropTag) bool {
	_, ok := a.Get(tag)
	return ok
}

// Set replaces the value stored under tag or appends it.
func (a *TPropvalArray) Set(tag PropTag, v any) {
	for i := range *a {
		if (*a)[i].Tag == tag {
			(*a)[i].Value = v
			return
		}
	}
	*a = append(*a, TaggedPropval{Tag: tag, Value: v})
}

// Erase removes tag if present.
func (a *TPropvalArray) Erase(tag PropTag) {
	out := (*a)[:0]
	for _, pv := range *a {
		if pv.Tag != tag {
			out = append(out, pv)
		}
	}
	*a = out
}

// Clone returns a shallow copy of the list.
func (a TPropvalArray) Clone() TPropvalArray {
	if a == nil {
		return nil
	}
	return append(TPropvalArray(nil), a...)
}

// Uint64 returns a PtI8/PtSysTime/PtCurrency value.
func (a TPropvalArray) Uint64(tag PropTag) (uint64, bool) {
	v, ok := a.Get(tag)
	if !ok {
		return 0, false
	}
	n, ok := v.(uint64)
	return n, ok
}

// Uint32 returns a PtLong value.
func (a TPropvalArray) Uint32(tag PropTag) (uint32, bool) {
	v, ok := a.Get(tag)
	if !ok {
		return 0, false
	}
	n, ok := v.(uint32)
	return n, ok
}

// Bool returns a PtBoolean value.
func (a TPropvalArray) Bool(tag PropTag) (bool, bool) {
	v, ok := a.Get(tag)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Binary returns a PtBinary value.
func (a TPropvalArray) Binary(tag PropTag) ([]byte, bool) {
	v, ok := a.Get(tag)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// String returns a PtString8/PtUnicode value.
func (a TPropvalArray) String(tag PropTag) (string, bool) {
	v, ok := a.Get(tag)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// TArraySet is a list of property rows (recipient tables).
type TArraySet []TPropvalArray

// ProptagArray is an ordered list of property tags.
type ProptagArray []PropTag

// Has reports whether tag is present.
func (a ProptagArray) Has(tag PropTag) bool {
	for _, t := range a {
		if t == tag {
			return true
		}
	}
	return false
}

// SvrEID is a server entry id: either an opaque foreign blob or a local
// folder/message/instance triple.
type SvrEID struct {
	Bin      []byte
	Foreign  bool
	FolderID uint64
	MsgID    uint64
	Instance uint32
}

// LongTermID is a replica GUID with a 6-byte global counter.
type LongTermID struct {
	GUID          GUID
	GlobalCounter [6]byte
	Padding       uint16
}

// Property name kinds.
const (
	MnidID     uint8 = 0
	MnidString uint8 = 1
)

// PropertyName identifies a named property.
type PropertyName struct {
	Kind uint8
	GUID GUID
	LID  uint32
	Name string
}

// NamedPropInfo maps property ids to names.
type NamedPropInfo struct {
	IDs   []uint16
	Names []PropertyName
}

// Flagged property value states.
const (
	FlaggedAvailable   uint8 = 0x0
	FlaggedUnavailable uint8 = 0x1
	FlaggedError       uint8 = 0xA
)

// FlaggedPropval is a property row cell that may be missing or an error.
type FlaggedPropval struct {
	Flag  uint8
	Value any
}

// Property row kinds.
const (
	PropRowNone    uint8 = 0
	PropRowFlagged uint8 = 1
)

// PropRow is one row of column values. With PropRowFlagged every cell is a
// *FlaggedPropval.
type PropRow struct {
	Flag   uint8
	Values []any
}

// PermissionData is a permission table row modification.
type PermissionData struct {
	Flags    uint8
	Propvals TPropvalArray
}

// RuleData is a rule table row modification.
type RuleData struct {
	Flags    uint8
	Propvals TPropvalArray
}

// SysTime is the Windows SYSTEMTIME structure.
type SysTime struct {
	Year, Month, DayOfWeek, Day, Hour, Minute, Second, Milliseconds int16
}

// TZStruct is the legacy timezone structure.
type TZStruct struct {
	Bias         int32
	StandardBias int32
	DaylightBias int32
	StandardYear int16
	StandardDate SysTime
	DaylightYear int16
	DaylightDate SysTime
}

// TZRule is one rule of a timezone definition.
type TZRule struct {
	Major, Minor uint8
	Reserved     uint16
	Flags        uint16
	Year         int16
	X            [14]byte
	Bias         int32
	StandardBias int32
	DaylightBias int32
	StandardDate SysTime
	DaylightDate SysTime
}

// TZDef is a timezone definition with a key name and its rules.
type TZDef struct {
	Major, Minor uint8
	Reserved     uint16
	KeyName      string
	Rules        []TZRule
}

// MessageContent is a message with its recipients and attachments.
type MessageContent struct {
	Props       TPropvalArray
	Recipients  TArraySet
	Attachments []*AttachmentContent
	// HasRecipients/HasAttachments distinguish an empty table from an
	// absent one.
	HasRecipients  bool
	HasAttachments bool
}

// AttachmentContent is an attachment, optionally carrying an embedded
// message.
type AttachmentContent struct {
	Props    TPropvalArray
	Embedded *MessageContent
}
