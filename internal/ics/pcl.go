package ics

import (
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// PCL is a predecessor change list: for every replica that changed an
// object, the XID of its latest change.
type PCL []mapi.XID

// PCLResult describes how two change lists relate.
type PCLResult uint8

const (
	// PCLConflict means neither list contains the other.
	PCLConflict PCLResult = 0
	// PCLIncludes means the stored list contains every change of the
	// incoming one.
	PCLIncludes PCLResult = 1
	// PCLIncluded means the incoming list contains every change of the
	// stored one.
	PCLIncluded PCLResult = 2
	// PCLEqual is both of the above.
	PCLEqual = PCLIncludes | PCLIncluded
)

func (r PCLResult) String() string {
	switch r {
	case PCLConflict:
		return "conflict"
	case PCLIncludes:
		return "includes"
	case PCLIncluded:
		return "included"
	case PCLEqual:
		return "equal"
	}
	return fmt.Sprintf("pcl-result(%d)", uint8(r))
}

// ParsePCL decodes a sequence of size-prefixed XIDs.
func ParsePCL(b []byte) (PCL, error) {
	var out PCL
	for len(b) > 0 {
		n := int(b[0])
		if n+1 > len(b) {
			return nil, fmt.Errorf("%w: change list entry of %d bytes", mapi.ErrFormat, n)
		}
		x, err := mapi.XIDFromBytes(b[1 : 1+n])
		if err != nil {
			return nil, err
		}
		out = append(out, x)
		b = b[1+n:]
	}
	return out, nil
}

// Bytes encodes the list.
func (p PCL) Bytes() []byte {
	var out []byte
	for _, x := range p {
		out = append(out, byte(x.Size()))
		out = append(out, x.Bytes()...)
	}
	return out
}

func (p PCL) find(g mapi.GUID) (mapi.XID, bool) {
	for _, x := range p {
		if x.GUID == g {
			return x, true
		}
	}
	return mapi.XID{}, false
}

// Merge returns a copy of p that records x. An entry of the same replica
// is replaced when x is newer.
func (p PCL) Merge(x mapi.XID) PCL {
	out := make(PCL, len(p), len(p)+1)
	copy(out, p)
	for i, own := range out {
		if own.GUID == x.GUID {
			if own.GC() < x.GC() {
				out[i] = x
			}
			return out
		}
	}
	return append(out, x)
}

// contains reports whether every change in other is at or below a change
// of p from the same replica.
func (p PCL) contains(other PCL) bool {
	for _, x := range other {
		own, ok := p.find(x.GUID)
		if !ok || own.GC() < x.GC() {
			return false
		}
	}
	return true
}

// ComparePCL relates the stored change list of an object to an incoming
// one.
func ComparePCL(stored, incoming PCL) PCLResult {
	var r PCLResult
	if stored.contains(incoming) {
		r |= PCLIncludes
	}
	if incoming.contains(stored) {
		r |= PCLIncluded
	}
	return r
}

// compareStoredPCL relates the change list stored with an object to an
// incoming one. Every stored object carries a change list, so a missing or
// undecodable one fails with EcError while a bad incoming list fails with
// EcInvalidParam.
func compareStoredPCL(stored mapi.TPropvalArray, incoming []byte) (PCLResult, error) {
	b, ok := stored.Binary(mapi.PrPredecessorChangeList)
	if !ok {
		return PCLConflict, fmt.Errorf("stored change list missing: %w", mapi.EcError)
	}
	s, err := ParsePCL(b)
	if err != nil {
		return PCLConflict, fmt.Errorf("stored change list: %w: %w", mapi.EcError, err)
	}
	in, err := ParsePCL(incoming)
	if err != nil {
		return PCLConflict, fmt.Errorf("incoming change list: %w: %w", mapi.EcInvalidParam, err)
	}
	return ComparePCL(s, in), nil
}
