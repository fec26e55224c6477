package ics

import (
	"bytes"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/idset"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// StateType is the direction and scope a change-tracking state belongs to.
type StateType uint8

const (
	ContentsDown StateType = iota + 1
	HierarchyDown
	ContentsUp
	HierarchyUp
)

func (t StateType) String() string {
	switch t {
	case ContentsDown:
		return "contents-down"
	case HierarchyDown:
		return "hierarchy-down"
	case ContentsUp:
		return "contents-up"
	case HierarchyUp:
		return "hierarchy-up"
	}
	return fmt.Sprintf("state-type(%d)", uint8(t))
}

func (t StateType) contents() bool { return t == ContentsDown || t == ContentsUp }

func (t StateType) up() bool { return t == ContentsUp || t == HierarchyUp }

// ReplicaMapper translates between replica ids and GUIDs. *Logon
// implements it.
type ReplicaMapper interface {
	ReplicaGUID(replid uint16) (mapi.GUID, bool)
	ReplicaID(g mapi.GUID) (uint16, bool)
}

// State is the change-tracking state of one synchronization: the message
// or folder ids the peer holds (Given), the change numbers it has seen for
// normal and associated messages (Seen, SeenFAI) and the read-state change
// numbers it has seen (Read). Sets a type does not track are nil.
type State struct {
	typ    StateType
	mapper ReplicaMapper

	Given   *idset.IDSet
	Seen    *idset.IDSet
	SeenFAI *idset.IDSet
	Read    *idset.IDSet

	streamTag  mapi.PropTag
	streamData []byte
	streaming  bool
}

// NewState returns an empty state with the sets its type tracks.
func NewState(typ StateType, mapper ReplicaMapper) *State {
	s := &State{typ: typ, mapper: mapper}
	s.reset()
	return s
}

func (s *State) reset() {
	s.Given, s.Seen, s.SeenFAI, s.Read = nil, s.newSet(), nil, nil
	switch s.typ {
	case ContentsDown, ContentsUp:
		s.Given, s.SeenFAI, s.Read = s.newSet(), s.newSet(), s.newSet()
	case HierarchyDown:
		s.Given = s.newSet()
	}
}

func (s *State) newSet() *idset.IDSet {
	set := idset.New(idset.KindReplID)
	set.RegisterMapping(s.mapper.ReplicaGUID)
	return set
}

// Type returns the state type.
func (s *State) Type() StateType { return s.typ }

// AppendIDSet installs set into the slot named by tag. Given is always
// replaced. For upload states the seen sets are merged with what the slot
// already holds, so nothing recorded earlier is lost.
func (s *State) AppendIDSet(tag mapi.PropTag, set *idset.IDSet) error {
	set.RegisterMapping(s.mapper.ReplicaGUID)
	merge := func(old *idset.IDSet, enabled bool) error {
		if old == nil || !enabled || old.IsEmpty() {
			return nil
		}
		if err := set.Concat(old); err != nil {
			return fmt.Errorf("merge %s: %w", tag, err)
		}
		return nil
	}
	switch tag {
	case mapi.MetaTagIdsetGiven, mapi.MetaTagIdsetGiven1:
		s.Given = set
	case mapi.MetaTagCnsetSeen:
		if err := merge(s.Seen, s.typ.up()); err != nil {
			return err
		}
		s.Seen = set
	case mapi.MetaTagCnsetSeenFAI:
		if err := merge(s.SeenFAI, s.typ == ContentsUp); err != nil {
			return err
		}
		s.SeenFAI = set
	case mapi.MetaTagCnsetRead:
		if err := merge(s.Read, s.typ == ContentsUp); err != nil {
			return err
		}
		s.Read = set
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStateTag, tag)
	}
	return nil
}

// Serialize returns the sets meaningful for the state type as binary
// properties.
func (s *State) Serialize() (mapi.TPropvalArray, error) {
	var props mapi.TPropvalArray
	add := func(tag mapi.PropTag, set *idset.IDSet) error {
		if set == nil {
			set = s.newSet()
		}
		b, err := set.Serialize()
		if err != nil {
			return fmt.Errorf("serialize %s: %w", tag, err)
		}
		props.Set(tag, b)
		return nil
	}
	if s.typ == ContentsDown || s.typ == HierarchyDown ||
		(s.typ == ContentsUp && s.Given != nil && !s.Given.IsEmpty()) {
		if err := add(mapi.MetaTagIdsetGiven1, s.Given); err != nil {
			return nil, err
		}
	}
	if err := add(mapi.MetaTagCnsetSeen, s.Seen); err != nil {
		return nil, err
	}
	if s.typ.contents() {
		if err := add(mapi.MetaTagCnsetSeenFAI, s.SeenFAI); err != nil {
			return nil, err
		}
	}
	if s.typ == ContentsDown || (s.typ == ContentsUp && s.Read != nil && !s.Read.IsEmpty()) {
		if err := add(mapi.MetaTagCnsetRead, s.Read); err != nil {
			return nil, err
		}
	}
	return props, nil
}

// Encode returns Serialize as a property array binary, the form Deserialize
// accepts.
func (s *State) Encode() ([]byte, error) {
	props, err := s.Serialize()
	if err != nil {
		return nil, err
	}
	push := mapi.NewPush(0)
	if err := push.TPropvalArray(props); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return bytes.Clone(push.Bytes()), nil
}

// Deserialize replaces the state with the one encoded in bin. Inputs of
// 16 bytes or less stand for an empty state.
func (s *State) Deserialize(bin []byte) error {
	s.reset()
	if len(bin) <= 16 {
		return nil
	}
	props, err := mapi.NewPull(bin, 0).TPropvalArray()
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	for _, pv := range props {
		var slot **idset.IDSet
		switch pv.Tag {
		case mapi.MetaTagIdsetGiven1:
			slot = &s.Given
		case mapi.MetaTagCnsetSeen:
			slot = &s.Seen
		case mapi.MetaTagCnsetSeenFAI:
			if !s.typ.contents() {
				continue
			}
			slot = &s.SeenFAI
		case mapi.MetaTagCnsetRead:
			if !s.typ.contents() {
				continue
			}
			slot = &s.Read
		default:
			continue
		}
		b, ok := pv.Value.([]byte)
		if !ok {
			return fmt.Errorf("%w: state property %s is not binary", mapi.ErrFormat, pv.Tag)
		}
		set, err := s.decodeSet(b)
		if err != nil {
			return fmt.Errorf("decode %s: %w", pv.Tag, err)
		}
		*slot = set
	}
	return nil
}

func (s *State) decodeSet(b []byte) (*idset.IDSet, error) {
	set, err := idset.Deserialize(b)
	if err != nil {
		return nil, err
	}
	if err := set.Convert(s.mapper.ReplicaID); err != nil {
		return nil, err
	}
	set.RegisterMapping(s.mapper.ReplicaGUID)
	return set, nil
}

// BeginStateStream starts the upload of one state set.
func (s *State) BeginStateStream(tag mapi.PropTag) error {
	if s.streaming {
		return fmt.Errorf("%w: %s still open", ErrStateStream, s.streamTag)
	}
	switch tag {
	case mapi.MetaTagIdsetGiven, mapi.MetaTagIdsetGiven1, mapi.MetaTagCnsetSeen,
		mapi.MetaTagCnsetSeenFAI, mapi.MetaTagCnsetRead:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStateTag, tag)
	}
	s.streaming, s.streamTag, s.streamData = true, tag, nil
	return nil
}

// ContinueStateStream appends a piece of the set being uploaded.
func (s *State) ContinueStateStream(b []byte) error {
	if !s.streaming {
		return ErrStateStream
	}
	s.streamData = append(s.streamData, b...)
	return nil
}

// EndStateStream decodes the uploaded set and installs it with
// AppendIDSet.
func (s *State) EndStateStream() error {
	if !s.streaming {
		return ErrStateStream
	}
	tag, data := s.streamTag, s.streamData
	s.streaming, s.streamTag, s.streamData = false, 0, nil
	set, err := s.decodeSet(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", tag, err)
	}
	return s.AppendIDSet(tag, set)
}
