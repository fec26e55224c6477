package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// Source operations named by FastTransferDestConfigure.
const (
	FastSourceCopyTo         uint8 = 1
	FastSourceCopyProperties uint8 = 2
	FastSourceCopyMessages   uint8 = 3
	FastSourceCopyFolder     uint8 = 4
)

const (
	// FastDestConfigMove is the only flag FastTransferDestConfigure knows.
	FastDestConfigMove uint8 = 0x01

	FastCopyFolderMove           uint8 = 0x01
	FastCopyFolderCopySubfolders uint8 = 0x10

	// Moves through CopyTo and CopyProperties are refused.
	FastCopyToMove         uint32 = 0x00000001
	FastCopyPropertiesMove uint8  = 0x01
)

func (r *ropService) FastTransferDestConfigure(ctx context.Context, sid string, hin uint32, sourceOp, flags uint8) (uint32, error) {
	if flags&^FastDestConfigMove != 0 {
		return 0, mapi.EcInvalidParam
	}
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, err := s.get(hin)
		if err != nil {
			return err
		}
		var root ics.RootElement
		var target ics.FastUpTarget
		switch sourceOp {
		case FastSourceCopyTo, FastSourceCopyProperties:
			switch v := obj.value.(type) {
			case ics.Folder:
				root, target.FolderID = ics.RootFolderContent, v.ID
			case *ics.MessageDraft:
				root, target.Message = ics.RootMessageContent, v
			case *attachmentObject:
				root, target.MessageID, target.AttachNum = ics.RootAttachmentContent, v.MessageID, v.Num
			default:
				return mapi.EcNotSupported
			}
		case FastSourceCopyMessages, FastSourceCopyFolder:
			folder, ok := obj.value.(ics.Folder)
			if !ok {
				return mapi.EcNotSupported
			}
			root, target.FolderID = ics.RootMessageList, folder.ID
			if sourceOp == FastSourceCopyFolder {
				root = ics.RootTopFolder
			}
		default:
			return mapi.EcInvalidParam
		}
		if root != ics.RootMessageContent && root != ics.RootAttachmentContent {
			if err := ics.CheckQuota(ctx, obj.logon, r.maxMessages); err != nil {
				return err
			}
		}
		fu, err := ics.NewFastUpContext(obj.logon, target, root)
		if err != nil {
			return err
		}
		hout, err = s.add(hin, ObjectFastUpCtx, fu)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.FastTransferDestConfigure").
			Uint32("handle", hin).
			Uint8("source_operation", sourceOp).
			Msg("failed to configure upload")
		return 0, err
	}
	return hout, nil
}

// FastTransferDestPutBuffer feeds a piece of a FastTransfer stream into an
// upload. A piece is always consumed whole.
func (r *ropService) FastTransferDestPutBuffer(ctx context.Context, sid string, hin uint32, data []byte) (PutBufferResult, error) {
	res := PutBufferResult{Total: 1}
	err := r.withSession(ctx, sid, func(s *Session) error {
		_, fu, err := objectOf[*ics.FastUpContext](s, hin, ObjectFastUpCtx)
		if err != nil {
			return err
		}
		return fu.WriteBuffer(ctx, data)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.FastTransferDestPutBuffer").
			Uint32("handle", hin).
			Int("size", len(data)).
			Msg("failed to write buffer")
		return res, err
	}
	res.Used = uint16(len(data))
	return res, nil
}

func (r *ropService) FastTransferSourceGetBuffer(ctx context.Context, sid string, hin uint32, requested, maxSize uint16) (ics.Chunk, error) {
	chunk := ics.Chunk{Status: ics.TransferError, Total: 1}
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, err := s.get(hin)
		if err != nil {
			return err
		}
		switch v := obj.value.(type) {
		case *ics.DownloadContext:
			chunk, err = v.GetBuffer(ctx, requested, maxSize, r.ropHeadroom)
		case *ics.FastDownContext:
			chunk, err = v.GetBuffer(requested, maxSize, r.ropHeadroom)
		default:
			return fmt.Errorf("%w: %s", ErrWrongObject, obj.typ)
		}
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.FastTransferSourceGetBuffer").
			Uint32("handle", hin).
			Uint16("requested", requested).
			Msg("failed to read buffer")
		chunk.Data, chunk.Status = nil, ics.TransferError
		return chunk, err
	}
	return chunk, nil
}

func (r *ropService) FastTransferSourceCopyFolder(ctx context.Context, sid string, hin uint32, flags, sendOptions uint8) (uint32, error) {
	if err := ics.CheckSendOptions(sendOptions); err != nil {
		return 0, err
	}
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, folder, err := objectOf[ics.Folder](s, hin, ObjectFolder)
		if err != nil {
			return err
		}
		sub := flags&(FastCopyFolderMove|FastCopyFolderCopySubfolders) != 0
		fc, err := ics.LoadFolderContent(ctx, obj.logon, folder.ID, true, true, sub)
		if err != nil {
			return err
		}
		fd := ics.NewFastDownContext(obj.logon)
		if err := fd.MakeTopFolder(ctx, fc); err != nil {
			return err
		}
		hout, err = s.add(hin, ObjectFastDownCtx, fd)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.FastTransferSourceCopyFolder").
			Uint32("handle", hin).
			Msg("failed to copy folder")
		return 0, err
	}
	return hout, nil
}

// FastTransferSourceCopyMessages streams whole messages of a folder. The
// move flag is ignored. Principals without read rights on the folder may
// only copy messages they created.
func (r *ropService) FastTransferSourceCopyMessages(ctx context.Context, sid string, hin uint32, mids []uint64, flags, sendOptions uint8) (uint32, error) {
	if err := ics.CheckSendOptions(sendOptions); err != nil {
		return 0, err
	}
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, folder, err := objectOf[ics.Folder](s, hin, ObjectFolder)
		if err != nil {
			return err
		}
		logon := obj.logon
		if !logon.IsOwner() {
			perm, err := logon.Store.FolderPermission(ctx, folder.ID, logon.Username)
			if err != nil {
				return fmt.Errorf("check permission: %w", err)
			}
			if perm&(mapi.RightsReadAny|mapi.RightsOwner) == 0 {
				for _, mid := range mids {
					owner, err := logon.Store.MessageOwner(ctx, mid, logon.Username)
					if err != nil {
						return fmt.Errorf("check message owner: %w", err)
					}
					if !owner {
						return mapi.EcAccessDenied
					}
				}
			}
		}
		fd := ics.NewFastDownContext(logon)
		if err := fd.MakeMessageList(ctx, mids); err != nil {
			return err
		}
		hout, err = s.add(hin, ObjectFastDownCtx, fd)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.FastTransferSourceCopyMessages").
			Uint32("handle", hin).
			Int("count", len(mids)).
			Msg("failed to copy messages")
		return 0, err
	}
	return hout, nil
}

func cloneMessage(m *mapi.MessageContent) *mapi.MessageContent {
	c := *m
	c.Props = m.Props.Clone()
	return &c
}

func dropRecipients(m *mapi.MessageContent) {
	m.Recipients, m.HasRecipients = nil, false
}

func dropAttachments(m *mapi.MessageContent) {
	m.Attachments, m.HasAttachments = nil, false
}

// keepOnly returns the properties of props named in tags or always.
func keepOnly(props mapi.TPropvalArray, tags []mapi.PropTag, always ...mapi.PropTag) mapi.TPropvalArray {
	out := make(mapi.TPropvalArray, 0, len(props))
	for _, pv := range props {
		if slices.Contains(tags, pv.Tag) || slices.Contains(always, pv.Tag) {
			out = append(out, pv)
		}
	}
	return out
}

// FastTransferSourceCopyTo streams an object without the excluded
// properties. On folders the container tags exclude subfolders, messages
// or associated messages; on messages they exclude recipients or
// attachments; on attachments PrAttachDataObj excludes the embedded
// message. A non-zero level drops every child.
func (r *ropService) FastTransferSourceCopyTo(ctx context.Context, sid string, hin uint32, level uint8, flags uint32, sendOptions uint8, excluded []mapi.PropTag) (uint32, error) {
	if err := ics.CheckSendOptions(sendOptions); err != nil {
		return 0, err
	}
	if flags&FastCopyToMove != 0 {
		return 0, mapi.EcInvalidParam
	}
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, err := s.get(hin)
		if err != nil {
			return err
		}
		fd := ics.NewFastDownContext(obj.logon)
		switch v := obj.value.(type) {
		case ics.Folder:
			var sub, fai, normal bool
			if level == 0 {
				sub = !slices.Contains(excluded, mapi.PrContainerHierarchy)
				normal = !slices.Contains(excluded, mapi.PrContainerContents)
				fai = !slices.Contains(excluded, mapi.PrFolderAssociatedContents)
			}
			fc, err := ics.LoadFolderContent(ctx, obj.logon, v.ID, fai, normal, sub)
			if err != nil {
				return err
			}
			for _, tag := range excluded {
				fc.Props.Erase(tag)
			}
			err = fd.MakeFolderContent(ctx, fc)
		case *ics.MessageDraft:
			m := cloneMessage(v.Content)
			for _, tag := range excluded {
				switch tag {
				case mapi.PrMessageRecipients:
					dropRecipients(m)
				case mapi.PrMessageAttachments:
					dropAttachments(m)
				default:
					m.Props.Erase(tag)
				}
			}
			if level != 0 {
				dropRecipients(m)
				dropAttachments(m)
			}
			err = fd.MakeMessageContent(ctx, m)
		case *attachmentObject:
			a := &mapi.AttachmentContent{Props: v.Content.Props.Clone(), Embedded: v.Content.Embedded}
			for _, tag := range excluded {
				if tag == mapi.PrAttachDataObj {
					a.Embedded = nil
					continue
				}
				a.Props.Erase(tag)
			}
			err = fd.MakeAttachmentContent(ctx, a)
		default:
			return fmt.Errorf("%w: %s", ErrWrongObject, obj.typ)
		}
		if err != nil {
			return err
		}
		hout, err = s.add(hin, ObjectFastDownCtx, fd)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.FastTransferSourceCopyTo").
			Uint32("handle", hin).
			Uint8("level", level).
			Msg("failed to copy object")
		return 0, err
	}
	return hout, nil
}

// FastTransferSourceCopyProperties streams only the listed properties of
// an object. It mirrors FastTransferSourceCopyTo with the tag list read as
// an inclusion list.
func (r *ropService) FastTransferSourceCopyProperties(ctx context.Context, sid string, hin uint32, level, flags, sendOptions uint8, tags []mapi.PropTag) (uint32, error) {
	if err := ics.CheckSendOptions(sendOptions); err != nil {
		return 0, err
	}
	if flags&FastCopyPropertiesMove != 0 {
		return 0, mapi.EcInvalidParam
	}
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, err := s.get(hin)
		if err != nil {
			return err
		}
		fd := ics.NewFastDownContext(obj.logon)
		switch v := obj.value.(type) {
		case ics.Folder:
			var sub, fai, normal bool
			if level == 0 {
				sub = slices.Contains(tags, mapi.PrContainerHierarchy)
				normal = slices.Contains(tags, mapi.PrContainerContents)
				fai = slices.Contains(tags, mapi.PrFolderAssociatedContents)
			}
			fc, err := ics.LoadFolderContent(ctx, obj.logon, v.ID, fai, normal, sub)
			if err != nil {
				return err
			}
			fc.Props = keepOnly(fc.Props, tags, mapi.MetaTagNewFXFolder)
			err = fd.MakeFolderContent(ctx, fc)
		case *ics.MessageDraft:
			m := cloneMessage(v.Content)
			m.Props = keepOnly(m.Props, tags)
			if level != 0 || !slices.Contains(tags, mapi.PrMessageRecipients) {
				dropRecipients(m)
			}
			if level != 0 || !slices.Contains(tags, mapi.PrMessageAttachments) {
				dropAttachments(m)
			}
			err = fd.MakeMessageContent(ctx, m)
		case *attachmentObject:
			a := &mapi.AttachmentContent{Props: keepOnly(v.Content.Props, tags), Embedded: v.Content.Embedded}
			if !slices.Contains(tags, mapi.PrAttachDataObj) {
				a.Embedded = nil
			}
			err = fd.MakeAttachmentContent(ctx, a)
		default:
			return fmt.Errorf("%w: %s", ErrWrongObject, obj.typ)
		}
		if err != nil {
			return err
		}
		hout, err = s.add(hin, ObjectFastDownCtx, fd)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.FastTransferSourceCopyProperties").
			Uint32("handle", hin).
			Uint8("level", level).
			Msg("failed to copy properties")
		return 0, err
	}
	return hout, nil
}

// TellVersion accepts any version; the stream format does not depend on
// the peer.
func (r *ropService) TellVersion(ctx context.Context, sid string, hin uint32, version [3]uint16) error {
	return r.withSession(ctx, sid, func(*Session) error { return nil })
}
