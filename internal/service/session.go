package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
	"github.com/MKhiriev/go-ics-sync/internal/store"
	"github.com/MKhiriev/go-ics-sync/internal/utils"
)

// ObjectType is the kind of object a handle refers to.
type ObjectType uint8

const (
	ObjectLogon ObjectType = iota + 1
	ObjectFolder
	ObjectMessage
	ObjectAttachment
	ObjectICSDownCtx
	ObjectICSUpCtx
	ObjectFastDownCtx
	ObjectFastUpCtx
)

func (t ObjectType) String() string {
	switch t {
	case ObjectLogon:
		return "logon"
	case ObjectFolder:
		return "folder"
	case ObjectMessage:
		return "message"
	case ObjectAttachment:
		return "attachment"
	case ObjectICSDownCtx:
		return "icsdownctx"
	case ObjectICSUpCtx:
		return "icsupctx"
	case ObjectFastDownCtx:
		return "fastdownctx"
	case ObjectFastUpCtx:
		return "fastupctx"
	}
	return fmt.Sprintf("object(%d)", uint8(t))
}

// maxHandles bounds the objects one session may hold.
const maxHandles = 4096

// attachmentObject is an attachment opened through its message.
type attachmentObject struct {
	MessageID uint64
	Num       uint32
	Content   *mapi.AttachmentContent
}

// object is one entry of the handle table. Every object except a logon
// has a parent and is released with it. Children share the logon and
// mailbox of their parent.
type object struct {
	typ     ObjectType
	parent  uint32
	logon   *ics.Logon
	mailbox store.Mailbox
	value   any
}

// Session is the handle table of one client connection. Handles are only
// meaningful inside the session that issued them.
type Session struct {
	ID       string
	Username string

	mu       sync.Mutex
	next     uint32
	objects  map[uint32]*object
	lastUsed atomic.Int64
}

func newSession(id, username string) *Session {
	s := &Session{ID: id, Username: username, objects: make(map[uint32]*object)}
	s.touch()
	return s
}

func (s *Session) touch() { s.lastUsed.Store(time.Now().UnixNano()) }

// LastUsed returns when a ROP last ran in the session.
func (s *Session) LastUsed() time.Time { return time.Unix(0, s.lastUsed.Load()) }

// addLogon stores a new logon and returns its handle.
func (s *Session) addLogon(logon *ics.Logon, mailbox store.Mailbox) (uint32, error) {
	return s.insert(&object{typ: ObjectLogon, logon: logon, mailbox: mailbox, value: logon})
}

// add stores value below parent and returns its handle.
func (s *Session) add(parent uint32, typ ObjectType, value any) (uint32, error) {
	p, ok := s.objects[parent]
	if !ok {
		return 0, ErrNoHandle
	}
	return s.insert(&object{typ: typ, parent: parent, logon: p.logon, mailbox: p.mailbox, value: value})
}

func (s *Session) insert(obj *object) (uint32, error) {
	if len(s.objects) >= maxHandles {
		return 0, ErrHandleTableFull
	}
	for {
		s.next++
		if s.next == 0 || s.next == 0xFFFFFFFF {
			continue
		}
		if _, taken := s.objects[s.next]; !taken {
			break
		}
	}
	s.objects[s.next] = obj
	return s.next, nil
}

func (s *Session) get(handle uint32) (*object, error) {
	obj, ok := s.objects[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoHandle, handle)
	}
	return obj, nil
}

// release drops handle and everything opened through it.
func (s *Session) release(handle uint32) {
	if _, ok := s.objects[handle]; !ok {
		return
	}
	delete(s.objects, handle)
	for h, obj := range s.objects {
		if obj.parent == handle {
			s.release(h)
		}
	}
}

// Len returns the number of live handles.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// SessionManager owns every open session.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	newID    func() string
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		newID:    utils.NewID,
	}
}

// Open starts an empty session for username.
func (m *SessionManager) Open(username string) *Session {
	s := newSession(m.newID(), username)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session id if it belongs to username.
func (m *SessionManager) Get(id, username string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNoSession
	}
	if s.Username != username {
		return nil, ErrSessionOwner
	}
	return s, nil
}

// Close drops a session with all its handles.
func (m *SessionManager) Close(id, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNoSession
	}
	if s.Username != username {
		return ErrSessionOwner
	}
	delete(m.sessions, id)
	return nil
}

// ExpireIdle drops sessions unused since before now-idle and returns how
// many were dropped. A ROP running in a dropped session completes; later
// ROPs get ErrNoSession.
func (m *SessionManager) ExpireIdle(now time.Time, idle time.Duration) int {
	deadline := now.Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastUsed().Before(deadline) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Count returns the number of open sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
