package fxstream

import "github.com/MKhiriev/go-ics-sync/internal/mapi"

// Meta properties that travel inside streams as ordinary property atoms.
const (
	// MetaFXDelProp announces that the receiver should drop the existing
	// children named by its value (recipients, attachments, folder
	// contents) before the ones that follow.
	MetaFXDelProp = mapi.MetaTagFXDelProp
	MetaEcWarning = mapi.MetaTagEcWarning
)

// MessageContent writes a property list followed by the recipients and
// attachments of the message. With delProps every child table is preceded
// by a MetaFXDelProp so the receiver replaces instead of appending.
func (w *Writer) MessageContent(m *mapi.MessageContent, delProps bool) error {
	if err := w.PropList(m.Props); err != nil {
		return err
	}
	return w.MessageChildren(m, delProps)
}

// MessageChildren writes the recipient and attachment tables of a message.
func (w *Writer) MessageChildren(m *mapi.MessageContent, delProps bool) error {
	if delProps || m.HasRecipients {
		if err := w.DelProp(mapi.PrMessageRecipients); err != nil {
			return err
		}
	}
	for _, rcpt := range m.Recipients {
		if err := w.Marker(StartRecip); err != nil {
			return err
		}
		if err := w.PropList(rcpt); err != nil {
			return err
		}
		if err := w.Marker(EndToRecip); err != nil {
			return err
		}
	}
	if delProps || m.HasAttachments {
		if err := w.DelProp(mapi.PrMessageAttachments); err != nil {
			return err
		}
	}
	for i, att := range m.Attachments {
		if err := w.Attachment(uint32(i), att, delProps); err != nil {
			return err
		}
	}
	return nil
}

// DelProp writes a MetaFXDelProp naming the child table that follows.
func (w *Writer) DelProp(tag mapi.PropTag) error {
	return w.Propval(mapi.TaggedPropval{Tag: MetaFXDelProp, Value: uint32(tag)})
}

// Attachment writes NewAttach, the attachment number, the attachment
// content and EndAttach.
func (w *Writer) Attachment(num uint32, a *mapi.AttachmentContent, delProps bool) error {
	if err := w.Marker(NewAttach); err != nil {
		return err
	}
	if n, ok := a.Props.Uint32(mapi.PrAttachNum); ok {
		num = n
	}
	if err := w.Propval(mapi.TaggedPropval{Tag: mapi.PrAttachNum, Value: num}); err != nil {
		return err
	}
	props := a.Props.Clone()
	props.Erase(mapi.PrAttachNum)
	if err := w.AttachmentContent(&mapi.AttachmentContent{Props: props, Embedded: a.Embedded}, delProps); err != nil {
		return err
	}
	return w.Marker(EndAttach)
}

// AttachmentContent writes the attachment properties and, when present,
// the embedded message between StartEmbed and EndEmbed.
func (w *Writer) AttachmentContent(a *mapi.AttachmentContent, delProps bool) error {
	if err := w.PropList(a.Props); err != nil {
		return err
	}
	if a.Embedded == nil {
		return nil
	}
	if err := w.Marker(StartEmbed); err != nil {
		return err
	}
	if err := w.MessageContent(a.Embedded, delProps); err != nil {
		return err
	}
	return w.Marker(EndEmbed)
}

// Message writes a whole message framed by StartMessage or StartFAIMsg and
// EndMessage, and counts it as one step.
func (w *Writer) Message(m *mapi.MessageContent, fai bool) error {
	start := StartMessage
	if fai {
		start = StartFAIMsg
	}
	if err := w.Marker(start); err != nil {
		return err
	}
	if err := w.MessageContent(m, false); err != nil {
		return err
	}
	if err := w.Marker(EndMessage); err != nil {
		return err
	}
	w.Step()
	return nil
}
