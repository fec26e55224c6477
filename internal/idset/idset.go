// Package idset keeps sets of 48-bit global counters grouped by replica,
// the change-tracking unit of incremental synchronization, and encodes
// them in the GLOBSET wire form.
package idset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// Kind says how the replicas of a set are keyed.
type Kind uint8

const (
	// KindReplID sets are keyed by 16-bit replica ids. They are the only
	// kind that accepts entry ids.
	KindReplID Kind = iota
	// KindReplGUID sets are keyed by replica GUIDs, as decoded from the
	// wire before Convert.
	KindReplGUID
)

var (
	// ErrKind is returned when an operation does not apply to the kind of
	// the set, or two sets of different kinds are combined.
	ErrKind = errors.New("idset: wrong set kind")
	// ErrNoMapping is returned when a replica cannot be translated between
	// its id and its GUID.
	ErrNoMapping = errors.New("idset: no replica mapping")
	// ErrRange is returned for an inverted range or a counter above 48 bits.
	ErrRange = errors.New("idset: invalid range")
)

// MappingFunc resolves a replica id to its GUID.
type MappingFunc func(replid uint16) (mapi.GUID, bool)

// ReverseMappingFunc resolves a replica GUID to its id.
type ReverseMappingFunc func(mapi.GUID) (uint16, bool)

// Range is a closed interval of global counters.
type Range struct {
	Lo, Hi uint64
}

type replica struct {
	replid uint16
	guid   mapi.GUID
	ranges []Range
}

// IDSet is a set of global counters per replica. Ranges of a replica are
// sorted, disjoint and never adjacent. The zero value is not usable; use
// New.
type IDSet struct {
	kind     Kind
	replicas []*replica
	mapping  MappingFunc
}

// New returns an empty set of the given kind.
func New(kind Kind) *IDSet {
	return &IDSet{kind: kind}
}

func (s *IDSet) Kind() Kind { return s.kind }

// RegisterMapping installs the replica id to GUID resolver used by
// Serialize.
func (s *IDSet) RegisterMapping(f MappingFunc) {
	s.mapping = f
}

// IsEmpty reports whether the set holds no counters.
func (s *IDSet) IsEmpty() bool {
	for _, r := range s.replicas {
		if len(r.ranges) > 0 {
			return false
		}
	}
	return true
}

// Count returns the number of counters in the set.
func (s *IDSet) Count() uint64 {
	var n uint64
	for _, r := range s.replicas {
		for _, rg := range r.ranges {
			n += rg.Hi - rg.Lo + 1
		}
	}
	return n
}

func (s *IDSet) byReplID(replid uint16, create bool) *replica {
	for _, r := range s.replicas {
		if r.replid == replid {
			return r
		}
	}
	if !create {
		return nil
	}
	r := &replica{replid: replid}
	i, _ := slices.BinarySearchFunc(s.replicas, replid, func(e *replica, id uint16) int {
		return int(e.replid) - int(id)
	})
	s.replicas = slices.Insert(s.replicas, i, r)
	return r
}

func (s *IDSet) byGUID(g mapi.GUID, create bool) *replica {
	for _, r := range s.replicas {
		if r.guid == g {
			return r
		}
	}
	if !create {
		return nil
	}
	r := &replica{guid: g}
	s.replicas = append(s.replicas, r)
	return r
}

// Append adds the global counter of an entry id under its replica id.
func (s *IDSet) Append(eid uint64) error {
	gc := mapi.GCValue(eid)
	return s.AppendRange(mapi.ReplID(eid), gc, gc)
}

// AppendRange adds the counters lo..hi of a replica.
func (s *IDSet) AppendRange(replid uint16, lo, hi uint64) error {
	if s.kind != KindReplID {
		return ErrKind
	}
	if lo > hi || hi > mapi.GCMax {
		return fmt.Errorf("%w: %#x..%#x", ErrRange, lo, hi)
	}
	r := s.byReplID(replid, true)
	r.ranges = insertRange(r.ranges, Range{Lo: lo, Hi: hi})
	return nil
}

// AppendGUIDRange adds the counters lo..hi of a GUID-keyed replica.
func (s *IDSet) AppendGUIDRange(g mapi.GUID, lo, hi uint64) error {
	if s.kind != KindReplGUID {
		return ErrKind
	}
	if lo > hi || hi > mapi.GCMax {
		return fmt.Errorf("%w: %#x..%#x", ErrRange, lo, hi)
	}
	r := s.byGUID(g, true)
	r.ranges = insertRange(r.ranges, Range{Lo: lo, Hi: hi})
	return nil
}

// insertRange merges nr into sorted disjoint ranges, coalescing overlapping
// and adjacent neighbours.
func insertRange(ranges []Range, nr Range) []Range {
	i, _ := slices.BinarySearchFunc(ranges, nr.Lo, func(e Range, lo uint64) int {
		switch {
		case e.Hi+1 < lo:
			return -1
		case e.Lo > lo:
			return 1
		}
		return 0
	})
	// ranges[i:] all end at or after nr.Lo-1
	j := i
	for j < len(ranges) && ranges[j].Lo <= nr.Hi+1 {
		nr.Lo = min(nr.Lo, ranges[j].Lo)
		nr.Hi = max(nr.Hi, ranges[j].Hi)
		j++
	}
	return slices.Replace(ranges, i, j, nr)
}

// Contains reports whether the counter of eid is in the set.
func (s *IDSet) Contains(eid uint64) bool {
	if s.kind != KindReplID {
		return false
	}
	r := s.byReplID(mapi.ReplID(eid), false)
	if r == nil {
		return false
	}
	return contains(r.ranges, mapi.GCValue(eid))
}

func contains(ranges []Range, gc uint64) bool {
	_, found := slices.BinarySearchFunc(ranges, gc, func(e Range, v uint64) int {
		switch {
		case e.Hi < v:
			return -1
		case e.Lo > v:
			return 1
		}
		return 0
	})
	return found
}

// Remove deletes the counter of eid, splitting a range when needed.
func (s *IDSet) Remove(eid uint64) {
	if s.kind != KindReplID {
		return
	}
	r := s.byReplID(mapi.ReplID(eid), false)
	if r == nil {
		return
	}
	gc := mapi.GCValue(eid)
	for i, rg := range r.ranges {
		if gc < rg.Lo || gc > rg.Hi {
			continue
		}
		var repl []Range
		if rg.Lo < gc {
			repl = append(repl, Range{Lo: rg.Lo, Hi: gc - 1})
		}
		if gc < rg.Hi {
			repl = append(repl, Range{Lo: gc + 1, Hi: rg.Hi})
		}
		r.ranges = slices.Replace(r.ranges, i, i+1, repl...)
		return
	}
}

// Ranges returns a copy of the ranges of a replica id.
func (s *IDSet) Ranges(replid uint16) []Range {
	if r := s.byReplID(replid, false); r != nil && s.kind == KindReplID {
		return slices.Clone(r.ranges)
	}
	return nil
}

// GUIDRanges returns a copy of the ranges of a GUID-keyed replica.
func (s *IDSet) GUIDRanges(g mapi.GUID) []Range {
	if r := s.byGUID(g, false); r != nil && s.kind == KindReplGUID {
		return slices.Clone(r.ranges)
	}
	return nil
}

// ReplIDs lists the replica ids holding at least one counter.
func (s *IDSet) ReplIDs() []uint16 {
	if s.kind != KindReplID {
		return nil
	}
	var out []uint16
	for _, r := range s.replicas {
		if len(r.ranges) > 0 {
			out = append(out, r.replid)
		}
	}
	return out
}

// Enumerate calls fn with the entry id of every counter, stopping early
// when fn returns false.
func (s *IDSet) Enumerate(fn func(eid uint64) bool) {
	if s.kind != KindReplID {
		return
	}
	for _, r := range s.replicas {
		for _, rg := range r.ranges {
			for gc := rg.Lo; ; gc++ {
				if !fn(mapi.MakeEID(r.replid, gc)) {
					return
				}
				if gc == rg.Hi {
					break
				}
			}
		}
	}
}

// Concat merges other into s. Both sets must be of the same kind; the
// result is the union.
func (s *IDSet) Concat(other *IDSet) error {
	if other == nil {
		return nil
	}
	if s.kind != other.kind {
		return ErrKind
	}
	for _, o := range other.replicas {
		var r *replica
		if s.kind == KindReplID {
			r = s.byReplID(o.replid, true)
		} else {
			r = s.byGUID(o.guid, true)
		}
		for _, rg := range o.ranges {
			r.ranges = insertRange(r.ranges, rg)
		}
	}
	return nil
}

// Clone returns a deep copy sharing the mapping function.
func (s *IDSet) Clone() *IDSet {
	c := &IDSet{kind: s.kind, mapping: s.mapping}
	for _, r := range s.replicas {
		c.replicas = append(c.replicas, &replica{
			replid: r.replid,
			guid:   r.guid,
			ranges: slices.Clone(r.ranges),
		})
	}
	return c
}

// Convert rewrites a GUID-keyed set into the replica-id keyed form.
// Replicas sharing an id after translation are merged.
func (s *IDSet) Convert(f ReverseMappingFunc) error {
	if s.kind == KindReplID {
		return nil
	}
	out := New(KindReplID)
	for _, r := range s.replicas {
		if len(r.ranges) == 0 {
			continue
		}
		replid, ok := f(r.guid)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoMapping, r.guid)
		}
		dst := out.byReplID(replid, true)
		for _, rg := range r.ranges {
			dst.ranges = insertRange(dst.ranges, rg)
		}
	}
	s.kind = KindReplID
	s.replicas = out.replicas
	return nil
}
