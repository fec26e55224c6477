package mapi

import "fmt"

// MessageContent reads a message with its optional recipient table and
// attachment list. Embedded messages recurse without a depth limit; the
// input bounds the depth.
func (p *Pull) MessageContent() (*MessageContent, error) {
	r := &MessageContent{}
	var err error
	if r.Props, err = p.TPropvalArray(); err != nil {
		return nil, err
	}
	flag, err := p.Uint8()
	if err != nil {
		return nil, err
	}
	if flag != 0 {
		r.HasRecipients = true
		if r.Recipients, err = p.TArraySet(); err != nil {
			return nil, err
		}
	}
	if flag, err = p.Uint8(); err != nil {
		return nil, err
	}
	if flag == 0 {
		return r, nil
	}
	r.HasAttachments = true
	n, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	if int(n)*3 > p.Remaining() {
		return nil, ErrBufSize
	}
	r.Attachments = make([]*AttachmentContent, n)
	for i := range r.Attachments {
		if r.Attachments[i], err = p.AttachmentContent(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// AttachmentContent reads an attachment and its optional embedded message.
func (p *Pull) AttachmentContent() (*AttachmentContent, error) {
	a := &AttachmentContent{}
	var err error
	if a.Props, err = p.TPropvalArray(); err != nil {
		return nil, err
	}
	flag, err := p.Uint8()
	if err != nil {
		return nil, err
	}
	if flag != 0 {
		if a.Embedded, err = p.MessageContent(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (p *Push) MessageContent(r *MessageContent) error {
	if err := p.TPropvalArray(r.Props); err != nil {
		return err
	}
	if r.HasRecipients || len(r.Recipients) > 0 {
		if err := p.Uint8(1); err != nil {
			return err
		}
		if err := p.TArraySet(r.Recipients); err != nil {
			return err
		}
	} else if err := p.Uint8(0); err != nil {
		return err
	}
	if !r.HasAttachments && len(r.Attachments) == 0 {
		return p.Uint8(0)
	}
	if len(r.Attachments) > 0xFFFF {
		return fmt.Errorf("%w: %d attachments", ErrFormat, len(r.Attachments))
	}
	if err := p.Uint8(1); err != nil {
		return err
	}
	if err := p.Uint16(uint16(len(r.Attachments))); err != nil {
		return err
	}
	for _, a := range r.Attachments {
		if err := p.AttachmentContent(a); err != nil {
			return err
		}
	}
	return nil
}

func (p *Push) AttachmentContent(a *AttachmentContent) error {
	if err := p.TPropvalArray(a.Props); err != nil {
		return err
	}
	if a.Embedded == nil {
		return p.Uint8(0)
	}
	if err := p.Uint8(1); err != nil {
		return err
	}
	return p.MessageContent(a.Embedded)
}
