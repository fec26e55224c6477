package ics

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/fxstream"
	"github.com/MKhiriev/go-ics-sync/internal/logger"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

// RootElement is the kind of object a FastTransfer upload rebuilds.
type RootElement uint8

const (
	RootFolderContent RootElement = iota + 1
	RootMessageContent
	RootAttachmentContent
	RootMessageList
	RootTopFolder
)

func (r RootElement) String() string {
	switch r {
	case RootFolderContent:
		return "folder content"
	case RootMessageContent:
		return "message content"
	case RootAttachmentContent:
		return "attachment content"
	case RootMessageList:
		return "message list"
	case RootTopFolder:
		return "top folder"
	default:
		return fmt.Sprintf("root(%d)", uint8(r))
	}
}

// FastUpTarget is the object an upload writes into.
type FastUpTarget struct {
	// FolderID receives folder content, top folders and message lists.
	FolderID uint64
	// Message receives message content. It is saved by its owner.
	Message *MessageDraft
	// MessageID and AttachNum address the attachment receiving attachment
	// content.
	MessageID uint64
	AttachNum uint32
}

// copyTags are dropped from folders and messages created by an upload so
// the copies get identities of their own.
var copyTags = []mapi.PropTag{
	mapi.PidTagMid,
	mapi.PidTagFolderID,
	mapi.PidTagParentFolderID,
	mapi.PidTagChangeNumber,
	mapi.PrSourceKey,
	mapi.PrParentSourceKey,
	mapi.PrChangeKey,
	mapi.PrPredecessorChangeList,
}

func stripCopy(props mapi.TPropvalArray) mapi.TPropvalArray {
	out := props.Clone()
	for _, tag := range copyTags {
		out.Erase(tag)
	}
	return out
}

type nodeKind uint8

const (
	nodeTop nodeKind = iota
	nodeList
	nodeFolder
	nodeMessage
	nodeRecip
	nodeAttach
)

type markerNode struct {
	kind   nodeKind
	marker mapi.PropTag

	// folder nodes: the folder, or 0 until it is created below parentID
	folderID uint64
	parentID uint64
	props    mapi.TPropvalArray

	message *mapi.MessageContent
	attach  *mapi.AttachmentContent
	fai     bool
}

// FastUpContext rebuilds objects from a FastTransfer stream that arrives
// in arbitrary pieces. Messages are written when they end, folders when
// their first child starts or when they end. Properties of the target
// folder or attachment are written after every buffer.
type FastUpContext struct {
	logon  *Logon
	target FastUpTarget
	root   RootElement

	parser *fxstream.Parser
	stack  []*markerNode
	names  map[mapi.PropertyName]uint16
	ended  bool
}

// NewFastUpContext returns an upload rebuilding root into target.
func NewFastUpContext(logon *Logon, target FastUpTarget, root RootElement) (*FastUpContext, error) {
	base := &markerNode{}
	switch root {
	case RootFolderContent, RootTopFolder, RootMessageList:
		if target.FolderID == 0 {
			return nil, mapi.EcInvalidParam
		}
	}
	switch root {
	case RootFolderContent:
		base.kind, base.folderID = nodeFolder, target.FolderID
	case RootTopFolder:
		base.kind = nodeTop
	case RootMessageList:
		base.kind, base.folderID = nodeList, target.FolderID
	case RootMessageContent:
		if target.Message == nil {
			return nil, mapi.EcInvalidParam
		}
		if target.Message.Access&TagAccessModify == 0 {
			return nil, mapi.EcAccessDenied
		}
		base.kind, base.message = nodeMessage, target.Message.Content
	case RootAttachmentContent:
		base.kind = nodeAttach
		base.attach = &mapi.AttachmentContent{}
	default:
		return nil, mapi.EcInvalidParam
	}
	return &FastUpContext{
		logon:  logon,
		target: target,
		root:   root,
		parser: fxstream.NewParser(),
		stack:  []*markerNode{base},
		names:  make(map[mapi.PropertyName]uint16),
	}, nil
}

// Root returns the kind of object being rebuilt.
func (f *FastUpContext) Root() RootElement { return f.root }

// Ended reports whether the root element is complete. A top folder ends
// with its EndFolder; other roots are complete whenever no element is open
// and no partial atom is buffered.
func (f *FastUpContext) Ended() bool {
	if f.root == RootTopFolder {
		return f.ended
	}
	return len(f.stack) == 1 && f.parser.Pending() == 0
}

// WriteBuffer feeds the next piece of the stream.
func (f *FastUpContext) WriteBuffer(ctx context.Context, b []byte) error {
	if f.ended {
		return ErrEnded
	}
	f.parser.Feed(b)
	for !f.ended {
		atom, ok, err := f.parser.Next()
		if err != nil {
			return f.fail(ctx, err)
		}
		if !ok {
			break
		}
		if err := f.process(ctx, atom); err != nil {
			return f.fail(ctx, err)
		}
	}
	if f.ended && f.parser.Pending() > 0 {
		return f.fail(ctx, fmt.Errorf("%w: %d bytes after the end of the top folder", mapi.ErrFormat, f.parser.Pending()))
	}
	if err := f.flushRoot(ctx); err != nil {
		return f.fail(ctx, err)
	}
	return nil
}

func (f *FastUpContext) fail(ctx context.Context, err error) error {
	logger.FromContext(ctx).Err(err).
		Str("func", "FastUpContext.WriteBuffer").
		Stringer("root", f.root).
		Int("depth", len(f.stack)).
		Msg("failed to import transfer stream")
	return fmt.Errorf("import %s: %w", f.root, err)
}

func (f *FastUpContext) top() *markerNode { return f.stack[len(f.stack)-1] }

func (f *FastUpContext) push(n *markerNode) { f.stack = append(f.stack, n) }

func (f *FastUpContext) pop(start mapi.PropTag) (*markerNode, error) {
	n := f.top()
	if len(f.stack) == 1 || n.marker != start {
		return nil, fmt.Errorf("%w: unbalanced end of %s", mapi.ErrFormat, fxstream.MarkerName(start))
	}
	f.stack = f.stack[:len(f.stack)-1]
	return n, nil
}

func (f *FastUpContext) process(ctx context.Context, atom fxstream.Atom) error {
	if !atom.IsMarker() {
		pv, err := f.localTag(ctx, atom)
		if err != nil {
			return err
		}
		return f.property(pv)
	}
	n := f.top()
	switch atom.Marker {
	case fxstream.StartTopFld:
		if n.kind != nodeTop || len(f.stack) != 1 {
			return unexpected(atom.Marker)
		}
		f.push(&markerNode{kind: nodeFolder, marker: atom.Marker, folderID: f.target.FolderID})
	case fxstream.StartSubFld:
		if n.kind != nodeFolder {
			return unexpected(atom.Marker)
		}
		if err := f.ensureFolder(ctx, n); err != nil {
			return err
		}
		f.push(&markerNode{kind: nodeFolder, marker: atom.Marker, parentID: n.folderID})
	case fxstream.EndFolder:
		if n.kind != nodeFolder || (n.marker != fxstream.StartTopFld && n.marker != fxstream.StartSubFld) {
			return unexpected(atom.Marker)
		}
		if err := f.flushFolder(ctx, n); err != nil {
			return err
		}
		if _, err := f.pop(n.marker); err != nil {
			return err
		}
		if n.marker == fxstream.StartTopFld {
			f.ended = true
		}
	case fxstream.StartMessage, fxstream.StartFAIMsg:
		if n.kind != nodeFolder && n.kind != nodeList {
			return unexpected(atom.Marker)
		}
		if err := f.ensureFolder(ctx, n); err != nil {
			return err
		}
		f.push(&markerNode{
			kind:     nodeMessage,
			marker:   atom.Marker,
			folderID: n.folderID,
			message:  &mapi.MessageContent{},
			fai:      atom.Marker == fxstream.StartFAIMsg,
		})
	case fxstream.EndMessage:
		m, err := f.popMessage(fxstream.StartMessage, fxstream.StartFAIMsg)
		if err != nil {
			return err
		}
		return f.commitMessage(ctx, m)
	case fxstream.StartRecip:
		if n.kind != nodeMessage {
			return unexpected(atom.Marker)
		}
		f.push(&markerNode{kind: nodeRecip, marker: atom.Marker})
	case fxstream.EndToRecip:
		r, err := f.pop(fxstream.StartRecip)
		if err != nil {
			return err
		}
		parent := f.top().message
		parent.Recipients = append(parent.Recipients, r.props)
	case fxstream.NewAttach:
		if n.kind != nodeMessage {
			return unexpected(atom.Marker)
		}
		f.push(&markerNode{kind: nodeAttach, marker: atom.Marker, attach: &mapi.AttachmentContent{}})
	case fxstream.EndAttach:
		a, err := f.pop(fxstream.NewAttach)
		if err != nil {
			return err
		}
		parent := f.top().message
		parent.Attachments = append(parent.Attachments, a.attach)
	case fxstream.StartEmbed:
		if n.kind != nodeAttach {
			return unexpected(atom.Marker)
		}
		f.push(&markerNode{kind: nodeMessage, marker: atom.Marker, message: &mapi.MessageContent{}})
	case fxstream.EndEmbed:
		e, err := f.pop(fxstream.StartEmbed)
		if err != nil {
			return err
		}
		f.top().attach.Embedded = e.message
	default:
		return unexpected(atom.Marker)
	}
	return nil
}

func unexpected(marker mapi.PropTag) error {
	return fmt.Errorf("%w: unexpected %s", mapi.ErrFormat, fxstream.MarkerName(marker))
}

func (f *FastUpContext) popMessage(starts ...mapi.PropTag) (*markerNode, error) {
	n := f.top()
	for _, start := range starts {
		if n.marker == start && n.kind == nodeMessage {
			return f.pop(start)
		}
	}
	return nil, unexpected(fxstream.EndMessage)
}

// localTag maps a named property of the stream to the id it has in the
// store.
func (f *FastUpContext) localTag(ctx context.Context, atom fxstream.Atom) (mapi.TaggedPropval, error) {
	pv := atom.Prop
	if atom.Name == nil {
		return pv, nil
	}
	id, ok := f.names[*atom.Name]
	if !ok {
		ids, err := f.logon.Store.NamedPropIDs(ctx, []mapi.PropertyName{*atom.Name})
		if err != nil {
			return pv, fmt.Errorf("map named property: %w", err)
		}
		if len(ids) != 1 || ids[0] == 0 {
			return pv, fmt.Errorf("%w: named property %s has no id", mapi.ErrFormat, pv.Tag)
		}
		id = ids[0]
		f.names[*atom.Name] = id
	}
	pv.Tag = mapi.Tag(id, pv.Tag.Type())
	return pv, nil
}

func (f *FastUpContext) property(pv mapi.TaggedPropval) error {
	n := f.top()
	switch pv.Tag {
	case mapi.MetaTagEcWarning, mapi.MetaTagNewFXFolder:
		return nil
	case mapi.MetaTagFXDelProp:
		if n.kind == nodeMessage {
			switch v, _ := pv.Value.(uint32); mapi.PropTag(v) {
			case mapi.PrMessageRecipients:
				n.message.Recipients = nil
			case mapi.PrMessageAttachments:
				n.message.Attachments = nil
			}
		}
		return nil
	}
	switch n.kind {
	case nodeFolder:
		n.props.Set(pv.Tag, pv.Value)
	case nodeMessage:
		if len(f.stack) == 1 {
			return f.target.Message.SetProps(mapi.TPropvalArray{pv})
		}
		n.message.Props.Set(pv.Tag, pv.Value)
	case nodeRecip:
		n.props.Set(pv.Tag, pv.Value)
	case nodeAttach:
		n.attach.Props.Set(pv.Tag, pv.Value)
	default:
		return fmt.Errorf("%w: property %s outside of an element", mapi.ErrFormat, pv.Tag)
	}
	return nil
}

// ensureFolder creates a folder announced by StartSubFld once its
// properties are complete. A folder of the same name is reused.
func (f *FastUpContext) ensureFolder(ctx context.Context, n *markerNode) error {
	if n.kind != nodeFolder || n.folderID != 0 {
		return nil
	}
	store := f.logon.Store
	props := stripCopy(n.props)
	name, ok := props.String(mapi.PrDisplayName)
	if !ok || name == "" {
		return fmt.Errorf("%w: subfolder without a display name", mapi.ErrFormat)
	}
	fid, err := store.FolderByName(ctx, n.parentID, name)
	if err != nil {
		return fmt.Errorf("look up folder %q: %w", name, err)
	}
	if fid != 0 {
		if err := store.SetFolderProps(ctx, fid, props); err != nil {
			return fmt.Errorf("update folder %q: %w", name, err)
		}
	} else {
		if !props.Has(mapi.PrFolderType) {
			props.Set(mapi.PrFolderType, mapi.FolderGeneric)
		}
		if fid, err = store.CreateFolder(ctx, n.parentID, props); err != nil {
			return fmt.Errorf("create folder %q: %w", name, err)
		}
	}
	n.folderID, n.props = fid, nil
	return nil
}

// flushFolder writes what a folder node collected.
func (f *FastUpContext) flushFolder(ctx context.Context, n *markerNode) error {
	if n.folderID == 0 {
		return f.ensureFolder(ctx, n)
	}
	if len(n.props) == 0 {
		return nil
	}
	if err := f.logon.Store.SetFolderProps(ctx, n.folderID, stripCopy(n.props)); err != nil {
		return fmt.Errorf("set properties of folder %#x: %w", n.folderID, err)
	}
	n.props = nil
	return nil
}

// flushRoot writes the properties collected on the target folder or
// attachment.
func (f *FastUpContext) flushRoot(ctx context.Context) error {
	base := f.stack[0]
	switch base.kind {
	case nodeFolder:
		return f.flushFolder(ctx, base)
	case nodeTop:
		if len(f.stack) > 1 {
			return f.flushFolder(ctx, f.stack[1])
		}
	case nodeAttach:
		if len(f.stack) != 1 {
			return nil
		}
		if err := f.logon.Store.WriteAttachment(ctx, f.target.MessageID, f.target.AttachNum, base.attach); err != nil {
			return fmt.Errorf("write attachment %d of %#x: %w", f.target.AttachNum, f.target.MessageID, err)
		}
	}
	return nil
}

func (f *FastUpContext) commitMessage(ctx context.Context, n *markerNode) error {
	m := n.message
	m.Props = stripCopy(m.Props)
	m.Props.Set(mapi.PrAssociated, n.fai)
	if _, _, err := f.logon.Store.WriteMessage(ctx, n.folderID, m); err != nil {
		return fmt.Errorf("write message into %#x: %w", n.folderID, err)
	}
	return nil
}
