package idset

import (
	"bytes"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// GLOBSET commands. Push carries its byte count (1..6) as the command.
const (
	cmdEnd     byte = 0x00
	cmdPushMax byte = 0x06
	cmdBitmask byte = 0x42
	cmdPop     byte = 0x50
	cmdRange   byte = 0x52
)

const gcSize = 6

// Serialize encodes the set as a sequence of replica GUID + GLOBSET pairs.
// Replica ids are resolved through the registered mapping.
func (s *IDSet) Serialize() ([]byte, error) {
	push := mapi.NewPush(0)
	for _, r := range s.replicas {
		if len(r.ranges) == 0 {
			continue
		}
		g := r.guid
		if s.kind == KindReplID {
			var ok bool
			if s.mapping == nil {
				return nil, fmt.Errorf("%w: replica %d", ErrNoMapping, r.replid)
			}
			if g, ok = s.mapping(r.replid); !ok {
				return nil, fmt.Errorf("%w: replica %d", ErrNoMapping, r.replid)
			}
		}
		if err := push.GUID(g); err != nil {
			return nil, err
		}
		if err := writeGlobset(push, r.ranges); err != nil {
			return nil, err
		}
	}
	return bytes.Clone(push.Bytes()), nil
}

// SerializeReplID encodes the set as a sequence of replica id + GLOBSET
// pairs.
func (s *IDSet) SerializeReplID() ([]byte, error) {
	if s.kind != KindReplID {
		return nil, ErrKind
	}
	push := mapi.NewPush(0)
	for _, r := range s.replicas {
		if len(r.ranges) == 0 {
			continue
		}
		if err := push.Uint16(r.replid); err != nil {
			return nil, err
		}
		if err := writeGlobset(push, r.ranges); err != nil {
			return nil, err
		}
	}
	return bytes.Clone(push.Bytes()), nil
}

// writeGlobset emits one command group per range: a singleton as a full
// six-byte push, a wider range as a push of the common high-order bytes,
// a range over the rest and a pop.
func writeGlobset(push *mapi.Push, ranges []Range) error {
	for _, rg := range ranges {
		lo, hi := mapi.GCArray(rg.Lo), mapi.GCArray(rg.Hi)
		if rg.Lo == rg.Hi {
			if err := push.Uint8(cmdPushMax); err != nil {
				return err
			}
			if err := push.PutBytes(lo[:]); err != nil {
				return err
			}
			continue
		}
		common := 0
		for common < gcSize-1 && lo[common] == hi[common] {
			common++
		}
		if common > 0 {
			if err := push.Uint8(byte(common)); err != nil {
				return err
			}
			if err := push.PutBytes(lo[:common]); err != nil {
				return err
			}
		}
		if err := push.Uint8(cmdRange); err != nil {
			return err
		}
		if err := push.PutBytes(lo[common:]); err != nil {
			return err
		}
		if err := push.PutBytes(hi[common:]); err != nil {
			return err
		}
		if common > 0 {
			if err := push.Uint8(cmdPop); err != nil {
				return err
			}
		}
	}
	return push.Uint8(cmdEnd)
}

// Deserialize decodes replica GUID + GLOBSET pairs into a GUID-keyed set.
// Call Convert to obtain the replica-id keyed form.
func Deserialize(data []byte) (*IDSet, error) {
	s := New(KindReplGUID)
	pull := mapi.NewPull(data, 0)
	for pull.Remaining() > 0 {
		g, err := pull.GUID()
		if err != nil {
			return nil, err
		}
		r := s.byGUID(g, true)
		if err := readGlobset(pull, func(lo, hi uint64) {
			r.ranges = insertRange(r.ranges, Range{Lo: lo, Hi: hi})
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DeserializeReplID decodes replica id + GLOBSET pairs.
func DeserializeReplID(data []byte) (*IDSet, error) {
	s := New(KindReplID)
	pull := mapi.NewPull(data, 0)
	for pull.Remaining() > 0 {
		replid, err := pull.Uint16()
		if err != nil {
			return nil, err
		}
		r := s.byReplID(replid, true)
		if err := readGlobset(pull, func(lo, hi uint64) {
			r.ranges = insertRange(r.ranges, Range{Lo: lo, Hi: hi})
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// readGlobset interprets GLOBSET commands up to End, reporting every
// decoded range through add.
func readGlobset(pull *mapi.Pull, add func(lo, hi uint64)) error {
	var prefix []byte
	var stack []int
	for {
		cmd, err := pull.Uint8()
		if err != nil {
			return err
		}
		switch {
		case cmd == cmdEnd:
			return nil
		case cmd <= cmdPushMax:
			n := int(cmd)
			if len(prefix)+n > gcSize {
				return fmt.Errorf("%w: push of %d over %d bytes", mapi.ErrFormat, n, len(prefix))
			}
			b, err := pull.Bytes(n)
			if err != nil {
				return err
			}
			prefix = append(prefix, b...)
			if len(prefix) == gcSize {
				gc := gcFrom(prefix)
				add(gc, gc)
				prefix = prefix[:len(prefix)-n]
				continue
			}
			stack = append(stack, n)
		case cmd == cmdPop:
			if len(stack) == 0 {
				return fmt.Errorf("%w: globset pop on empty stack", mapi.ErrFormat)
			}
			prefix = prefix[:len(prefix)-stack[len(stack)-1]]
			stack = stack[:len(stack)-1]
		case cmd == cmdBitmask:
			if len(prefix) != gcSize-1 {
				return fmt.Errorf("%w: globset bitmask over %d bytes", mapi.ErrFormat, len(prefix))
			}
			start, err := pull.Uint8()
			if err != nil {
				return err
			}
			mask, err := pull.Uint8()
			if err != nil {
				return err
			}
			base := gcFrom(append(prefix[:len(prefix):len(prefix)], 0))
			add(base+uint64(start), base+uint64(start))
			for bit := 0; bit < 8; bit++ {
				if mask&(1<<bit) == 0 {
					continue
				}
				v := int(start) + 1 + bit
				if v > 0xFF {
					return fmt.Errorf("%w: globset bitmask past low byte", mapi.ErrFormat)
				}
				add(base+uint64(v), base+uint64(v))
			}
		case cmd == cmdRange:
			n := gcSize - len(prefix)
			lo, err := pull.Bytes(n)
			if err != nil {
				return err
			}
			hi, err := pull.Bytes(n)
			if err != nil {
				return err
			}
			l := gcFrom(append(prefix[:len(prefix):len(prefix)], lo...))
			h := gcFrom(append(prefix[:len(prefix):len(prefix)], hi...))
			if l > h {
				return fmt.Errorf("%w: globset range %#x..%#x", mapi.ErrFormat, l, h)
			}
			add(l, h)
		default:
			return fmt.Errorf("%w: globset command %#02x", mapi.ErrFormat, cmd)
		}
	}
}

func gcFrom(b []byte) uint64 {
	var arr [gcSize]byte
	copy(arr[:], b)
	return mapi.GCFromArray(arr)
}
