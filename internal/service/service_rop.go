package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/config"
	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/internal/store"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
	"github.com/MKhiriev/go-ics-sync/models"
)

// ropService is the concrete implementation of RopService. Every ROP runs
// with the session's handle table locked, so ROPs of one session are
// serialized while sessions run in parallel.
type ropService struct {
	mailboxRepository store.MailboxRepository
	sessions          *SessionManager

	// maxMessages is the message count above which uploads are refused.
	maxMessages uint32
	// ropHeadroom is the room left in a response for a transfer buffer.
	ropHeadroom uint16

	logger *logger.Logger
}

func NewRopService(mailboxRepository store.MailboxRepository, sessions *SessionManager, cfg config.StructuredConfig, logger *logger.Logger) RopService {
	return &ropService{
		mailboxRepository: mailboxRepository,
		sessions:          sessions,
		maxMessages:       cfg.App.MaxMessages,
		ropHeadroom:       cfg.Server.RopHeadroom,
		logger:            logger,
	}
}

// withSession runs fn with the caller's session locked.
func (r *ropService) withSession(ctx context.Context, sid string, fn func(s *Session) error) error {
	login, ok := utils.GetLoginFromContext(ctx)
	if !ok {
		return ErrNoPrincipal
	}
	s, err := r.sessions.Get(sid, login)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return fn(s)
}

// objectOf returns the object behind hin if it has the expected type.
func objectOf[T any](s *Session, hin uint32, typ ObjectType) (*object, T, error) {
	var zero T
	obj, err := s.get(hin)
	if err != nil {
		return nil, zero, err
	}
	v, ok := obj.value.(T)
	if obj.typ != typ || !ok {
		return nil, zero, fmt.Errorf("%w: %s", ErrWrongObject, obj.typ)
	}
	return obj, v, nil
}

func (r *ropService) OpenSession(ctx context.Context) (string, error) {
	login, ok := utils.GetLoginFromContext(ctx)
	if !ok {
		return "", ErrNoPrincipal
	}
	s := r.sessions.Open(login)
	logger.FromContext(ctx).Debug().
		Str("func", "ropService.OpenSession").
		Str("session", s.ID).
		Msg("session opened")
	return s.ID, nil
}

func (r *ropService) CloseSession(ctx context.Context, sid string) error {
	login, ok := utils.GetLoginFromContext(ctx)
	if !ok {
		return ErrNoPrincipal
	}
	return r.sessions.Close(sid, login)
}

func (r *ropService) Logon(ctx context.Context, sid string, private bool, accountID uint32) (uint32, error) {
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		st, err := r.mailboxRepository.FindStore(ctx, accountID, private)
		if err != nil {
			if errors.Is(err, store.ErrStoreNotFound) {
				return mapi.EcNotFound
			}
			return fmt.Errorf("find store: %w", err)
		}
		mb := r.mailboxRepository.Open(st, s.Username)
		mode, err := r.logonMode(ctx, s.Username, st, mb)
		if err != nil {
			return err
		}
		replicas, err := r.mailboxRepository.Replicas(ctx, st.StoreID)
		if err != nil {
			return fmt.Errorf("load replicas: %w", err)
		}
		logon := ics.NewLogon(mb, s.Username, mode, st.Private, st.AccountID, replicas)
		hout, err = s.addLogon(logon, mb)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.Logon").
			Bool("private", private).
			Uint32("account_id", accountID).
			Msg("logon failed")
		return 0, err
	}
	return hout, nil
}

// logonMode decides how username reaches st. Owners reach their private
// store directly. Other users need a right on the IPM subtree of a
// private store, or a home domain in the organization of a public store.
func (r *ropService) logonMode(ctx context.Context, username string, st models.Store, mb store.Mailbox) (ics.LogonMode, error) {
	if st.Private {
		if st.Owner == username {
			return ics.LogonOwner, nil
		}
		perm, err := mb.FolderPermission(ctx, mapi.MakeEID(1, mapi.PrivateFIDIPMSubtree), username)
		if err != nil {
			return 0, fmt.Errorf("check delegate permission: %w", err)
		}
		if perm == mapi.RightsNone {
			return 0, mapi.EcAccessDenied
		}
		return ics.LogonDelegate, nil
	}

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return 0, ErrNoPrincipal
	}
	home, err := r.mailboxRepository.FindStore(ctx, uint32(userID), true)
	if errors.Is(err, store.ErrStoreNotFound) {
		return 0, mapi.EcAccessDenied
	}
	if err != nil {
		return 0, fmt.Errorf("find home store: %w", err)
	}
	if home.DomainID == 0 {
		return 0, mapi.EcAccessDenied
	}
	same, err := mb.SameOrganization(ctx, home.DomainID)
	if err != nil {
		return 0, fmt.Errorf("check organization: %w", err)
	}
	if !same {
		return 0, mapi.EcAccessDenied
	}
	return ics.LogonGuest, nil
}

func (r *ropService) OpenFolder(ctx context.Context, sid string, hin uint32, fid uint64) (uint32, error) {
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		_, logon, err := objectOf[*ics.Logon](s, hin, ObjectLogon)
		if err != nil {
			return err
		}
		exists, err := logon.Store.FolderExists(ctx, fid)
		if err != nil {
			return fmt.Errorf("check folder: %w", err)
		}
		if !exists {
			return mapi.EcNotFound
		}
		if !logon.IsOwner() {
			perm, err := logon.Store.FolderPermission(ctx, fid, logon.Username)
			if err != nil {
				return fmt.Errorf("check permission: %w", err)
			}
			if perm&(mapi.RightsReadAny|mapi.RightsVisible|mapi.RightsOwner) == 0 {
				return mapi.EcAccessDenied
			}
		}
		props, err := logon.Store.FolderProps(ctx, fid, []mapi.PropTag{mapi.PrFolderType})
		if err != nil {
			return fmt.Errorf("read folder type: %w", err)
		}
		folderType, _ := props.Uint32(mapi.PrFolderType)
		hout, err = s.add(hin, ObjectFolder, ics.Folder{ID: fid, Type: folderType})
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.OpenFolder").
			Uint32("handle", hin).
			Uint64("folder_id", fid).
			Msg("failed to open folder")
		return 0, err
	}
	return hout, nil
}

// storeObject returns a logon or folder object, the two objects messages
// can be opened through.
func storeObject(s *Session, hin uint32) (*object, error) {
	obj, err := s.get(hin)
	if err != nil {
		return nil, err
	}
	if obj.typ != ObjectLogon && obj.typ != ObjectFolder {
		return nil, fmt.Errorf("%w: %s", ErrWrongObject, obj.typ)
	}
	return obj, nil
}

// messageAccess computes what the principal may do with an existing
// message of fid.
func messageAccess(ctx context.Context, logon *ics.Logon, fid, mid uint64) (ics.TagAccess, error) {
	if logon.IsOwner() {
		return ics.TagAccessAll, nil
	}
	perm, err := logon.Store.FolderPermission(ctx, fid, logon.Username)
	if err != nil {
		return 0, fmt.Errorf("check permission: %w", err)
	}
	var access ics.TagAccess
	if perm&(mapi.RightsOwner|mapi.RightsReadAny) != 0 {
		access |= ics.TagAccessRead
	}
	if perm&(mapi.RightsOwner|mapi.RightsEditAny) != 0 {
		access |= ics.TagAccessModify
	}
	if perm&(mapi.RightsOwner|mapi.RightsDeleteAny) != 0 {
		access |= ics.TagAccessDelete
	}
	if access != ics.TagAccessAll && perm&(mapi.RightsEditOwned|mapi.RightsDeleteOwned) != 0 {
		owner, err := logon.Store.MessageOwner(ctx, mid, logon.Username)
		if err != nil {
			return 0, fmt.Errorf("check message owner: %w", err)
		}
		if owner {
			access |= ics.TagAccessRead
			if perm&mapi.RightsEditOwned != 0 {
				access |= ics.TagAccessModify
			}
			if perm&mapi.RightsDeleteOwned != 0 {
				access |= ics.TagAccessDelete
			}
		}
	}
	return access, nil
}

func (r *ropService) OpenMessage(ctx context.Context, sid string, hin uint32, fid, mid uint64) (uint32, error) {
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, err := storeObject(s, hin)
		if err != nil {
			return err
		}
		logon := obj.logon
		exists, err := logon.Store.MessageExists(ctx, fid, mid)
		if err != nil {
			return fmt.Errorf("check message: %w", err)
		}
		if !exists {
			return mapi.EcNotFound
		}
		access, err := messageAccess(ctx, logon, fid, mid)
		if err != nil {
			return err
		}
		if access&ics.TagAccessRead == 0 {
			return mapi.EcAccessDenied
		}
		content, err := logon.Store.ReadMessage(ctx, mid)
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		assoc, _ := content.Props.Bool(mapi.PrAssociated)
		draft := ics.NewMessageDraft(logon, fid, mid, assoc, access)
		draft.Content, draft.New = content, false
		hout, err = s.add(hin, ObjectMessage, draft)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.OpenMessage").
			Uint64("folder_id", fid).
			Uint64("message_id", mid).
			Msg("failed to open message")
		return 0, err
	}
	return hout, nil
}

func (r *ropService) CreateMessage(ctx context.Context, sid string, hin uint32, fid uint64, associated bool) (uint32, uint64, error) {
	var hout uint32
	var mid uint64
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, err := storeObject(s, hin)
		if err != nil {
			return err
		}
		logon := obj.logon
		exists, err := logon.Store.FolderExists(ctx, fid)
		if err != nil {
			return fmt.Errorf("check folder: %w", err)
		}
		if !exists {
			return mapi.EcNotFound
		}
		if !logon.IsOwner() {
			perm, err := logon.Store.FolderPermission(ctx, fid, logon.Username)
			if err != nil {
				return fmt.Errorf("check permission: %w", err)
			}
			if perm&(mapi.RightsCreate|mapi.RightsOwner) == 0 {
				return mapi.EcAccessDenied
			}
		}
		if err := ics.CheckQuota(ctx, logon, r.maxMessages); err != nil {
			return err
		}
		if mid, err = logon.Store.AllocateIDs(ctx, 1); err != nil {
			return fmt.Errorf("allocate message id: %w", err)
		}
		if mid == 0 {
			return mapi.EcError
		}
		draft := ics.NewMessageDraft(logon, fid, mid, associated, ics.TagAccessAll)
		hout, err = s.add(hin, ObjectMessage, draft)
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "ropService.CreateMessage").
			Uint64("folder_id", fid).
			Msg("failed to create message")
		return 0, 0, err
	}
	return hout, mid, nil
}

func (r *ropService) OpenAttachment(ctx context.Context, sid string, hin uint32, num uint32) (uint32, error) {
	var hout uint32
	err := r.withSession(ctx, sid, func(s *Session) error {
		_, draft, err := objectOf[*ics.MessageDraft](s, hin, ObjectMessage)
		if err != nil {
			return err
		}
		for i, a := range draft.Content.Attachments {
			n, ok := a.Props.Uint32(mapi.PrAttachNum)
			if !ok {
				n = uint32(i)
			}
			if n != num {
				continue
			}
			hout, err = s.add(hin, ObjectAttachment, &attachmentObject{
				MessageID: draft.MessageID,
				Num:       num,
				Content:   a,
			})
			return err
		}
		return mapi.EcNotFound
	})
	if err != nil {
		return 0, err
	}
	return hout, nil
}

func (r *ropService) Release(ctx context.Context, sid string, hin uint32) error {
	return r.withSession(ctx, sid, func(s *Session) error {
		if _, err := s.get(hin); err != nil {
			return err
		}
		s.release(hin)
		return nil
	})
}

func (r *ropService) SetMessageProperties(ctx context.Context, sid string, hin uint32, props mapi.TPropvalArray) error {
	return r.withSession(ctx, sid, func(s *Session) error {
		_, draft, err := objectOf[*ics.MessageDraft](s, hin, ObjectMessage)
		if err != nil {
			return err
		}
		return draft.SetProps(props)
	})
}

func (r *ropService) SaveChangesMessage(ctx context.Context, sid string, hin uint32) (uint64, error) {
	var mid uint64
	err := r.withSession(ctx, sid, func(s *Session) error {
		_, draft, err := objectOf[*ics.MessageDraft](s, hin, ObjectMessage)
		if err != nil {
			return err
		}
		if _, err := draft.Save(ctx); err != nil {
			return err
		}
		mid = draft.MessageID
		return nil
	})
	return mid, err
}

func (r *ropService) SetFolderPermission(ctx context.Context, sid string, hin uint32, username string, rights uint32) error {
	if username == "" || rights&^mapi.RightsAll != 0 {
		return mapi.EcInvalidParam
	}
	return r.withSession(ctx, sid, func(s *Session) error {
		obj, folder, err := objectOf[ics.Folder](s, hin, ObjectFolder)
		if err != nil {
			return err
		}
		if !obj.logon.IsOwner() {
			perm, err := obj.logon.Store.FolderPermission(ctx, folder.ID, obj.logon.Username)
			if err != nil {
				return fmt.Errorf("check permission: %w", err)
			}
			if perm&mapi.RightsOwner == 0 {
				return mapi.EcAccessDenied
			}
		}
		return obj.mailbox.SetPermission(ctx, folder.ID, username, rights)
	})
}

// SetLocalReplicaMidsetDeleted accepts and ignores the deleted ranges.
func (r *ropService) SetLocalReplicaMidsetDeleted(ctx context.Context, sid string, hin uint32) error {
	return r.withSession(ctx, sid, func(*Session) error { return nil })
}

func (r *ropService) GetLocalReplicaIDs(ctx context.Context, sid string, hin uint32, count uint32) (mapi.GUID, [6]byte, error) {
	var guid mapi.GUID
	var gc [6]byte
	err := r.withSession(ctx, sid, func(s *Session) error {
		obj, err := s.get(hin)
		if err != nil {
			return err
		}
		if obj.typ != ObjectLogon {
			return mapi.EcError
		}
		begin, err := obj.logon.Store.AllocateIDs(ctx, count)
		if err != nil {
			return fmt.Errorf("allocate ids: %w", err)
		}
		if begin == 0 {
			return mapi.EcError
		}
		guid, gc = obj.logon.GUID(), mapi.GCArray(mapi.GCValue(begin))
		return nil
	})
	return guid, gc, err
}

// GetStoreStat is not supported.
func (r *ropService) GetStoreStat(ctx context.Context, sid string, hin uint32) error {
	return mapi.EcNotImplemented
}
