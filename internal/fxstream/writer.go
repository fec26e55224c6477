package fxstream

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// ErrUnnamed is returned when a named property has no name to send with it.
var ErrUnnamed = errors.New("fxstream: named property without a name")

// NameFunc resolves the name of a named property id.
type NameFunc func(propID uint16) (mapi.PropertyName, bool)

type span struct {
	start, end int
}

// Writer produces a FastTransfer stream. Besides the bytes it records which
// parts may not be cut across two buffers: markers, fixed-size values and
// the headers of variable-size values. Payloads of variable-size values can
// be cut anywhere.
type Writer struct {
	push  *mapi.Push
	names NameFunc
	spans []span
	steps []int
}

// NewWriter returns a writer emitting wide strings as UTF-16LE.
func NewWriter(names NameFunc) *Writer {
	return &Writer{push: mapi.NewPush(mapi.FlagUTF16), names: names}
}

func (w *Writer) hold(start int) {
	if end := w.push.Offset(); end > start {
		w.spans = append(w.spans, span{start: start, end: end})
	}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.push.Offset() }

// Marker writes a marker atom.
func (w *Writer) Marker(m mapi.PropTag) error {
	start := w.push.Offset()
	if err := w.push.Uint32(uint32(m)); err != nil {
		return err
	}
	w.hold(start)
	return nil
}

// Step marks the end of one unit of progress, typically a message or a
// folder.
func (w *Writer) Step() {
	w.steps = append(w.steps, w.push.Offset())
}

// Propval writes one property value atom.
func (w *Writer) Propval(pv mapi.TaggedPropval) error {
	if IsMarker(pv.Tag) {
		return fmt.Errorf("%w: property %s collides with a marker", mapi.ErrFormat, pv.Tag)
	}
	start := w.push.Offset()
	if err := w.push.Uint32(uint32(pv.Tag)); err != nil {
		return err
	}
	if pv.Tag.IsNamed() {
		if w.names == nil {
			return fmt.Errorf("%w: %s", ErrUnnamed, pv.Tag)
		}
		name, ok := w.names(pv.Tag.ID())
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnnamed, pv.Tag)
		}
		if err := writeName(w.push, &name); err != nil {
			return err
		}
	}
	typ := valueType(pv.Tag)
	if typ&mapi.MVFlag != 0 {
		return w.multi(start, typ, pv.Value)
	}
	if fixedSize(typ) > 0 {
		if err := writeFixed(w.push, typ, pv.Value); err != nil {
			return err
		}
		w.hold(start)
		return nil
	}
	return w.variable(start, typ, pv.Value)
}

// variable writes a length-prefixed value whose header begins at start.
func (w *Writer) variable(start int, typ uint16, v any) error {
	ph, err := w.push.Reserve32()
	if err != nil {
		return err
	}
	w.hold(start)
	if err := writeVarBody(w.push, typ, v); err != nil {
		return err
	}
	return w.push.Patch(ph)
}

func (w *Writer) multi(start int, typ uint16, v any) error {
	elem := typ &^ mapi.MVIFlag
	var items []any
	switch x := v.(type) {
	case []uint16:
		items = toAny(x)
	case []uint32:
		items = toAny(x)
	case []uint64:
		items = toAny(x)
	case []mapi.GUID:
		items = toAny(x)
	case []string:
		items = toAny(x)
	case [][]byte:
		items = toAny(x)
	default:
		return mismatch(typ, v)
	}
	if err := w.push.Uint32(uint32(len(items))); err != nil {
		return err
	}
	w.hold(start)
	for _, item := range items {
		at := w.push.Offset()
		if fixedSize(elem) > 0 {
			if err := writeFixed(w.push, elem, item); err != nil {
				return err
			}
			w.hold(at)
			continue
		}
		if err := w.variable(at, elem, item); err != nil {
			return err
		}
	}
	return nil
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// PropList writes every value of a property list in order.
func (w *Writer) PropList(props mapi.TPropvalArray) error {
	for _, pv := range props {
		if err := w.Propval(pv); err != nil {
			return err
		}
	}
	return nil
}

// Stream returns the bytes written so far with their cut constraints.
func (w *Writer) Stream() *Stream {
	return &Stream{
		Data:  bytes.Clone(w.push.Bytes()),
		spans: append([]span(nil), w.spans...),
		Steps: append([]int(nil), w.steps...),
	}
}

// Stream is a materialized FastTransfer stream.
type Stream struct {
	Data []byte
	// Steps are the offsets at which units of progress end.
	Steps []int
	spans []span
}

// NextCut returns the offset at which a buffer starting at pos and holding
// at most n bytes should end. When the atom at pos is longer than n, the
// returned cut lies past pos+n and the caller must decide whether an
// oversized buffer is acceptable.
func (s *Stream) NextCut(pos, n int) int {
	end := pos + n
	if end >= len(s.Data) {
		return len(s.Data)
	}
	i := sort.Search(len(s.spans), func(i int) bool { return s.spans[i].end > end })
	if i < len(s.spans) && s.spans[i].start < end {
		if s.spans[i].start > pos {
			return s.spans[i].start
		}
		return s.spans[i].end
	}
	return end
}

// StepsBefore returns how many units of progress end at or before off.
func (s *Stream) StepsBefore(off int) int {
	return sort.Search(len(s.Steps), func(i int) bool { return s.Steps[i] > off })
}
