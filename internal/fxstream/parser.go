package fxstream

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// Atom is one element of a stream: a marker or a property value. Named
// properties carry the name they were sent with.
type Atom struct {
	Marker mapi.PropTag
	Prop   mapi.TaggedPropval
	Name   *mapi.PropertyName
}

// IsMarker reports whether the atom is a marker.
func (a Atom) IsMarker() bool { return a.Marker != 0 }

func (a Atom) String() string {
	if a.IsMarker() {
		return MarkerName(a.Marker)
	}
	return a.Prop.Tag.String()
}

// Parser decodes atoms from a stream that arrives in arbitrary pieces. Bytes
// that do not yet form a whole atom are kept until the next Feed. A partial
// atom is decoded again only once enough bytes for its pending value have
// arrived.
type Parser struct {
	buf  []byte
	off  int
	need int
}

// NewParser returns an empty parser.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends the next piece of the stream.
func (p *Parser) Feed(b []byte) {
	if p.off > 0 {
		p.buf = append(p.buf[:0], p.buf[p.off:]...)
		p.off = 0
	}
	p.buf = append(p.buf, b...)
}

// Pending returns the number of buffered bytes not yet decoded.
func (p *Parser) Pending() int { return len(p.buf) - p.off }

// Next decodes the next atom. It returns false without an error when the
// buffered bytes end in the middle of an atom.
func (p *Parser) Next() (Atom, bool, error) {
	if p.Pending() == 0 || p.Pending() < p.need {
		return Atom{}, false, nil
	}
	pull := mapi.NewPull(p.buf[p.off:], mapi.FlagUTF16)
	atom, err := readAtom(pull)
	if errors.Is(err, mapi.ErrBufSize) {
		p.need = p.Pending() + 1
		var short shortError
		if errors.As(err, &short) && short.need > p.need {
			p.need = short.need
		}
		return Atom{}, false, nil
	}
	if err != nil {
		return Atom{}, false, err
	}
	p.off += pull.Offset()
	p.need = 0
	return atom, true, nil
}

// Close reports an error when the stream ended inside an atom.
func (p *Parser) Close() error {
	if n := p.Pending(); n > 0 {
		return fmt.Errorf("%w: stream ends inside an atom (%d bytes left)", mapi.ErrFormat, n)
	}
	return nil
}

func readAtom(pull *mapi.Pull) (Atom, error) {
	raw, err := pull.Uint32()
	if err != nil {
		return Atom{}, err
	}
	tag := mapi.PropTag(raw)
	if IsMarker(tag) {
		return Atom{Marker: tag}, nil
	}
	var atom Atom
	if tag.IsNamed() {
		if atom.Name, err = readName(pull); err != nil {
			return Atom{}, err
		}
	}
	v, err := readValue(pull, valueType(tag))
	if err != nil {
		return Atom{}, err
	}
	atom.Prop = mapi.TaggedPropval{Tag: tag, Value: v}
	return atom, nil
}

// ReadAll decodes a complete stream.
func ReadAll(data []byte) ([]Atom, error) {
	p := NewParser()
	p.Feed(data)
	var atoms []Atom
	for {
		atom, ok, err := p.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		atoms = append(atoms, atom)
	}
	return atoms, p.Close()
}
