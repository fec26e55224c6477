package ics

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// nameCache resolves named property ids for stream writers. Writers look
// names up synchronously, so ids are fetched from the store ahead of
// writing with resolve.
type nameCache struct {
	store Store
	names map[uint16]mapi.PropertyName
	// ids the store could not name
	missing map[uint16]struct{}
}

func newNameCache(store Store) *nameCache {
	return &nameCache{
		store:   store,
		names:   make(map[uint16]mapi.PropertyName),
		missing: make(map[uint16]struct{}),
	}
}

func (c *nameCache) collect(ids []uint16, props mapi.TPropvalArray) []uint16 {
	for _, pv := range props {
		if !pv.Tag.IsNamed() {
			continue
		}
		id := pv.Tag.ID()
		if _, ok := c.names[id]; ok {
			continue
		}
		if _, ok := c.missing[id]; ok {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (c *nameCache) collectMessage(ids []uint16, m *mapi.MessageContent) []uint16 {
	if m == nil {
		return ids
	}
	ids = c.collect(ids, m.Props)
	for _, rcpt := range m.Recipients {
		ids = c.collect(ids, rcpt)
	}
	for _, att := range m.Attachments {
		ids = c.collect(ids, att.Props)
		ids = c.collectMessage(ids, att.Embedded)
	}
	return ids
}

// resolve fetches the names of every named property in the given lists
// that is not cached yet.
func (c *nameCache) resolve(ctx context.Context, ids []uint16) error {
	if len(ids) == 0 {
		return nil
	}
	names, err := c.store.NamedPropNames(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve property names: %w", err)
	}
	for _, id := range ids {
		if name, ok := names[id]; ok {
			c.names[id] = name
		} else {
			c.missing[id] = struct{}{}
		}
	}
	return nil
}

func (c *nameCache) lookup(id uint16) (mapi.PropertyName, bool) {
	name, ok := c.names[id]
	return name, ok
}

// known drops named properties without a name.
func (c *nameCache) known(props mapi.TPropvalArray) mapi.TPropvalArray {
	out := props[:0:0]
	for _, pv := range props {
		if pv.Tag.IsNamed() {
			if _, ok := c.names[pv.Tag.ID()]; !ok {
				continue
			}
		}
		out = append(out, pv)
	}
	return out
}

// knownMessage applies known to a message and everything below it.
func (c *nameCache) knownMessage(m *mapi.MessageContent) *mapi.MessageContent {
	if m == nil {
		return nil
	}
	out := *m
	out.Props = c.known(m.Props)
	out.Recipients = make(mapi.TArraySet, len(m.Recipients))
	for i, rcpt := range m.Recipients {
		out.Recipients[i] = c.known(rcpt)
	}
	out.Attachments = make([]*mapi.AttachmentContent, len(m.Attachments))
	for i, att := range m.Attachments {
		out.Attachments[i] = &mapi.AttachmentContent{
			Props:    c.known(att.Props),
			Embedded: c.knownMessage(att.Embedded),
		}
	}
	return &out
}
