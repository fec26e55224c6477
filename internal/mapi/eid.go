package mapi

import (
	"fmt"
	"time"
)

// Well-known private store folder global counters.
const (
	PrivateFIDRoot           uint64 = 0x01
	PrivateFIDDeferredAction uint64 = 0x02
	PrivateFIDSpoolerQueue   uint64 = 0x03
	PrivateFIDShortcuts      uint64 = 0x04
	PrivateFIDFinder         uint64 = 0x05
	PrivateFIDViews          uint64 = 0x06
	PrivateFIDCommonViews    uint64 = 0x07
	PrivateFIDSchedule       uint64 = 0x08
	PrivateFIDIPMSubtree     uint64 = 0x09
	PrivateFIDSentItems      uint64 = 0x0A
	PrivateFIDDeletedItems   uint64 = 0x0B
	PrivateFIDOutbox         uint64 = 0x0C
	PrivateFIDInbox          uint64 = 0x0D
	PrivateFIDDraft          uint64 = 0x0E
	PrivateFIDCalendar       uint64 = 0x0F
	// PrivateFIDCustom is the first counter available to user folders.
	PrivateFIDCustom uint64 = 0x100
)

// Well-known public store folder global counters.
const (
	PublicFIDRoot           uint64 = 0x01
	PublicFIDIPMSubtree     uint64 = 0x02
	PublicFIDNonIPMSubtree  uint64 = 0x03
	PublicFIDEFormsRegistry uint64 = 0x04
	PublicFIDCustom         uint64 = 0x100
)

// GCMax is the largest 48-bit global counter.
const GCMax uint64 = 1<<48 - 1

// MakeEID builds a 64-bit entry id from a replica id and a 48-bit global
// counter. The counter occupies bytes 2..7 of the little-endian id in
// big-endian order.
func MakeEID(replid uint16, gc uint64) uint64 {
	arr := GCArray(gc)
	return GCFromArrayEID(replid, arr)
}

// GCFromArrayEID builds an entry id from a replica id and raw counter bytes.
func GCFromArrayEID(replid uint16, arr [6]byte) uint64 {
	eid := uint64(replid)
	for i, b := range arr {
		eid |= uint64(b) << (16 + 8*uint(i))
	}
	return eid
}

// ReplID returns the replica id of an entry id.
func ReplID(eid uint64) uint16 { return uint16(eid) }

// GCValue returns the 48-bit global counter of an entry id.
func GCValue(eid uint64) uint64 {
	var arr [6]byte
	for i := range arr {
		arr[i] = byte(eid >> (16 + 8*uint(i)))
	}
	return GCFromArray(arr)
}

// GCArray returns the big-endian 6-byte form of a global counter.
func GCArray(gc uint64) [6]byte {
	var arr [6]byte
	for i := 5; i >= 0; i-- {
		arr[i] = byte(gc)
		gc >>= 8
	}
	return arr
}

// GCFromArray is the inverse of GCArray.
func GCFromArray(arr [6]byte) uint64 {
	var gc uint64
	for _, b := range arr {
		gc = gc<<8 | uint64(b)
	}
	return gc
}

// XID is a replica GUID followed by 1..8 bytes of big-endian local id.
type XID struct {
	GUID  GUID
	Local []byte
}

// XIDFromBytes decodes a 17..24 byte XID.
func XIDFromBytes(b []byte) (XID, error) {
	if len(b) < 17 || len(b) > 24 {
		return XID{}, fmt.Errorf("%w: xid size %d", ErrFormat, len(b))
	}
	g, err := GUIDFromBytes(b)
	if err != nil {
		return XID{}, err
	}
	local := make([]byte, len(b)-16)
	copy(local, b[16:])
	return XID{GUID: g, Local: local}, nil
}

// MakeXID builds the 22-byte XID of an entry id under the given replica GUID.
func MakeXID(g GUID, eid uint64) XID {
	arr := GCArray(GCValue(eid))
	return XID{GUID: g, Local: arr[:]}
}

// Size is the encoded length.
func (x XID) Size() int { return 16 + len(x.Local) }

// Bytes returns the wire encoding.
func (x XID) Bytes() []byte {
	out := make([]byte, 0, x.Size())
	out = append(out, x.GUID.Bytes()...)
	return append(out, x.Local...)
}

// GC interprets the local id as a big-endian counter.
func (x XID) GC() uint64 {
	var gc uint64
	for _, b := range x.Local {
		gc = gc<<8 | uint64(b)
	}
	return gc
}

var (
	userGUIDTemplate   = GUID{Data2: 0x18a5, Data3: 0x6f7b, Data4: [8]byte{0xbc, 0xdc, 0xea, 0x1e, 0xd0, 0x3c, 0x56, 0x57}}
	domainGUIDTemplate = GUID{Data2: 0x0afb, Data3: 0x7df6, Data4: [8]byte{0x91, 0x92, 0x49, 0x88, 0x6a, 0xa7, 0x38, 0xce}}
)

// MakeUserGUID returns the replica GUID of a private store.
func MakeUserGUID(accountID uint32) GUID {
	g := userGUIDTemplate
	g.Data1 = accountID
	return g
}

// MakeDomainGUID returns the replica GUID of a public store.
func MakeDomainGUID(domainID uint32) GUID {
	g := domainGUIDTemplate
	g.Data1 = domainID
	return g
}

// DomainIDFromGUID returns the domain id encoded in a public store GUID.
func DomainIDFromGUID(g GUID) (uint32, bool) {
	id := g.Data1
	g.Data1 = 0
	if g != domainGUIDTemplate {
		return 0, false
	}
	return id, true
}

// AccountIDFromGUID returns the account id encoded in a private store GUID.
func AccountIDFromGUID(g GUID) (uint32, bool) {
	id := g.Data1
	g.Data1 = 0
	if g != userGUIDTemplate {
		return 0, false
	}
	return id, true
}

const (
	ntEpochDelta  = 11644473600
	ntTicksPerSec = 10000000
)

// UnixToNTTime converts a time to 100ns ticks since 1601-01-01.
func UnixToNTTime(t time.Time) uint64 {
	return uint64(t.Unix()+ntEpochDelta)*ntTicksPerSec + uint64(t.Nanosecond()/100)
}

// NTTimeToUnix is the inverse of UnixToNTTime.
func NTTimeToUnix(nt uint64) time.Time {
	secs := int64(nt/ntTicksPerSec) - ntEpochDelta
	return time.Unix(secs, int64(nt%ntTicksPerSec)*100).UTC()
}
