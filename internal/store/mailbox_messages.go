package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-ics-sync/internal/ics"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

type messageRow struct {
	folder     uint64
	associated bool
	cn         uint64
	read       bool
	readCN     uint64
	size       int64
	creator    string
	content    *mapi.MessageContent
}

// withColumns returns the message content with its column-backed
// properties filled in.
func (r *messageRow) withColumns(mid uint64) *mapi.MessageContent {
	out := *r.content
	out.Props = r.content.Props.Clone()
	out.Props.Set(mapi.PidTagMid, mid)
	out.Props.Set(mapi.PidTagParentFolderID, r.folder)
	out.Props.Set(mapi.PidTagChangeNumber, r.cn)
	out.Props.Set(mapi.PrAssociated, r.associated)
	out.Props.Set(mapi.PrRead, r.read)
	out.Props.Set(mapi.PrMessageSize, uint32(min(r.size, 0x7FFFFFFF)))
	if r.creator != "" {
		out.Props.Set(mapi.PrCreatorName, r.creator)
	}
	return &out
}

func (m *sqlMailbox) loadMessage(ctx context.Context, q querier, mid uint64) (*messageRow, error) {
	row, err := queryRow(ctx, q, m.db.builder.
		Select("folder_id", "associated", "change_num", "read", "read_cn", "size", "creator", "content").
		From("messages").
		Where(sq.Eq{"store_id": m.storeID, "message_id": sqlID(mid)}))
	if err != nil {
		return nil, err
	}
	var r messageRow
	var folder, cn, readCN int64
	var blob []byte
	if err := row.Scan(&folder, &r.associated, &cn, &r.read, &readCN, &r.size, &r.creator, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ics.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	content, err := decodeMessage(blob)
	if err != nil {
		return nil, err
	}
	r.folder, r.cn, r.readCN, r.content = uint64(folder), uint64(cn), uint64(readCN), content
	return &r, nil
}

// saveContent rewrites the content of an existing message under a new
// change number.
func (m *sqlMailbox) saveContent(ctx context.Context, q querier, mid, cn uint64, content *mapi.MessageContent) error {
	blob, err := encodeMessage(content)
	if err != nil {
		return err
	}
	_, err = exec(ctx, q, m.db.builder.
		Update("messages").
		Set("content", blob).
		Set("size", int64(len(blob))).
		Set("change_num", sqlID(cn)).
		Where(sq.Eq{"store_id": m.storeID, "message_id": sqlID(mid)}))
	return err
}

func (m *sqlMailbox) MessageExists(ctx context.Context, fid, mid uint64) (bool, error) {
	row, err := queryRow(ctx, m.db, m.db.builder.
		Select("1").
		From("messages").
		Where(sq.Eq{"store_id": m.storeID, "message_id": sqlID(mid), "folder_id": sqlID(fid)}))
	if err != nil {
		return false, m.fail(ctx, "sqlMailbox.MessageExists", err, "failed to build query")
	}
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, m.fail(ctx, "sqlMailbox.MessageExists", err, "failed to check message")
	}
	return true, nil
}

func (m *sqlMailbox) MessageProps(ctx context.Context, mid uint64, tags []mapi.PropTag) (mapi.TPropvalArray, error) {
	r, err := m.loadMessage(ctx, m.db, mid)
	if err != nil {
		return nil, m.fail(ctx, "sqlMailbox.MessageProps", err, "failed to load message")
	}
	return pick(r.withColumns(mid).Props, tags), nil
}

// SetMessageProps merges props into a message. A change number is
// allocated unless props carries one.
func (m *sqlMailbox) SetMessageProps(ctx context.Context, mid uint64, props mapi.TPropvalArray) error {
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		r, err := m.loadMessage(ctx, tx, mid)
		if err != nil {
			return err
		}
		for _, pv := range stripColumns(props) {
			r.content.Props.Set(pv.Tag, pv.Value)
		}
		cn, ok := props.Uint64(mapi.PidTagChangeNumber)
		if !ok {
			if cn, err = m.allocateCN(ctx, tx); err != nil {
				return err
			}
		}
		m.stampChange(&r.content.Props, props, cn)
		return m.saveContent(ctx, tx, mid, cn, r.content)
	})
	if err != nil {
		return m.fail(ctx, "sqlMailbox.SetMessageProps", err, "failed to update message")
	}
	return nil
}

func (m *sqlMailbox) MessageOwner(ctx context.Context, mid uint64, username string) (bool, error) {
	row, err := queryRow(ctx, m.db, m.db.builder.
		Select("creator").
		From("messages").
		Where(sq.Eq{"store_id": m.storeID, "message_id": sqlID(mid)}))
	if err != nil {
		return false, m.fail(ctx, "sqlMailbox.MessageOwner", err, "failed to build query")
	}
	var creator string
	if err := row.Scan(&creator); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ics.ErrNotFound
		}
		return false, m.fail(ctx, "sqlMailbox.MessageOwner", err, "failed to load message creator")
	}
	return creator != "" && creator == username, nil
}

// ReadState returns the read flag of mid as username sees it. Readers of a
// public store without a row of their own see the message unread.
func (m *sqlMailbox) ReadState(ctx context.Context, username string, mid uint64) (bool, error) {
	b := m.db.builder.
		Select("m.read").
		From("messages m").
		Where(sq.Eq{"m.store_id": m.storeID, "m.message_id": sqlID(mid)})
	if username != "" {
		b = m.db.builder.
			Select("COALESCE(rs.read, FALSE)").
			From("messages m").
			LeftJoin("read_states rs ON rs.store_id = m.store_id AND rs.message_id = m.message_id AND rs.username = ?", username).
			Where(sq.Eq{"m.store_id": m.storeID, "m.message_id": sqlID(mid)})
	}
	row, err := queryRow(ctx, m.db, b)
	if err != nil {
		return false, m.fail(ctx, "sqlMailbox.ReadState", err, "failed to build query")
	}
	var read bool
	if err := row.Scan(&read); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ics.ErrNotFound
		}
		return false, m.fail(ctx, "sqlMailbox.ReadState", err, "failed to load read state")
	}
	return read, nil
}

func (m *sqlMailbox) ReadMessage(ctx context.Context, mid uint64) (*mapi.MessageContent, error) {
	r, err := m.loadMessage(ctx, m.db, mid)
	if err != nil {
		return nil, m.fail(ctx, "sqlMailbox.ReadMessage", err, "failed to load message")
	}
	return r.withColumns(mid), nil
}

// WriteMessage stores msg in fid. An existing message with the same id
// keeps its creator and read state.
func (m *sqlMailbox) WriteMessage(ctx context.Context, fid uint64, msg *mapi.MessageContent) (mid, cn uint64, err error) {
	err = m.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := m.loadFolder(ctx, tx, fid); err != nil {
			return err
		}
		var ok bool
		if mid, ok = msg.Props.Uint64(mapi.PidTagMid); !ok || mid == 0 {
			gc, err := m.allocate(ctx, tx, allocatorEID, 1)
			if err != nil {
				return err
			}
			mid = mapi.MakeEID(1, gc)
		}
		var err error
		if cn, err = m.allocateCN(ctx, tx); err != nil {
			return err
		}
		assoc, _ := msg.Props.Bool(mapi.PrAssociated)
		creator, ok := msg.Props.String(mapi.PrCreatorName)
		if !ok {
			creator = m.username
		}
		stored := *msg
		stored.Props = msg.Props.Clone()
		m.stampChange(&stored.Props, msg.Props, cn)
		blob, err := encodeMessage(&stored)
		if err != nil {
			return err
		}
		_, err = exec(ctx, tx, m.db.builder.
			Insert("messages").
			Columns("store_id", "message_id", "folder_id", "associated", "change_num", "size", "creator", "content").
			Values(m.storeID, sqlID(mid), sqlID(fid), assoc, sqlID(cn), int64(len(blob)), creator, blob).
			Suffix("ON CONFLICT (store_id, message_id) DO UPDATE SET " +
				"folder_id = excluded.folder_id, associated = excluded.associated, " +
				"change_num = excluded.change_num, size = excluded.size, content = excluded.content"))
		return err
	})
	if err != nil {
		return 0, 0, m.fail(ctx, "sqlMailbox.WriteMessage", err, "failed to write message")
	}
	return mid, cn, nil
}

func (m *sqlMailbox) Contents(ctx context.Context, fid uint64, username string) ([]ics.MessageEntry, error) {
	b := m.db.builder.
		Select("m.message_id", "m.change_num", "m.read_cn", "m.associated", "m.read").
		From("messages m").
		Where(sq.Eq{"m.store_id": m.storeID, "m.folder_id": sqlID(fid)}).
		OrderBy("m.message_id")
	if username != "" {
		b = m.db.builder.
			Select("m.message_id", "m.change_num", "COALESCE(rs.read_cn, 0)", "m.associated", "COALESCE(rs.read, FALSE)").
			From("messages m").
			LeftJoin("read_states rs ON rs.store_id = m.store_id AND rs.message_id = m.message_id AND rs.username = ?", username).
			Where(sq.Eq{"m.store_id": m.storeID, "m.folder_id": sqlID(fid)}).
			OrderBy("m.message_id")
	}
	rows, err := query(ctx, m.db, b)
	if err != nil {
		return nil, m.fail(ctx, "sqlMailbox.Contents", err, "failed to list messages")
	}
	defer rows.Close()

	var out []ics.MessageEntry
	for rows.Next() {
		var mid, cn, readCN int64
		var e ics.MessageEntry
		if err := rows.Scan(&mid, &cn, &readCN, &e.Associated, &e.Read); err != nil {
			return nil, m.fail(ctx, "sqlMailbox.Contents", fmt.Errorf("%w: %w", ErrScanningRows, err), "failed to scan message")
		}
		e.MID, e.CN, e.ReadCN = uint64(mid), uint64(cn), uint64(readCN)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, m.fail(ctx, "sqlMailbox.Contents", err, "failed to iterate messages")
	}
	return out, nil
}

// DeleteMessages removes mids from fid. Deletion is always permanent.
func (m *sqlMailbox) DeleteMessages(ctx context.Context, fid uint64, mids []uint64, hard bool) error {
	if len(mids) == 0 {
		return nil
	}
	keys := make([]int64, len(mids))
	for i, mid := range mids {
		keys[i] = sqlID(mid)
	}
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := exec(ctx, tx, m.db.builder.
			Delete("read_states").
			Where(sq.Eq{"store_id": m.storeID, "message_id": keys})); err != nil {
			return err
		}
		_, err := exec(ctx, tx, m.db.builder.
			Delete("messages").
			Where(sq.Eq{"store_id": m.storeID, "folder_id": sqlID(fid), "message_id": keys}))
		return err
	})
	if err != nil {
		return m.fail(ctx, "sqlMailbox.DeleteMessages", err, "failed to delete messages")
	}
	return nil
}

func (m *sqlMailbox) MoveMessage(ctx context.Context, srcMID, dstFID, dstMID uint64) error {
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := m.loadMessage(ctx, tx, srcMID); err != nil {
			return err
		}
		if _, err := m.loadFolder(ctx, tx, dstFID); err != nil {
			return err
		}
		cn, err := m.allocateCN(ctx, tx)
		if err != nil {
			return err
		}
		if _, err := exec(ctx, tx, m.db.builder.
			Update("messages").
			Set("message_id", sqlID(dstMID)).
			Set("folder_id", sqlID(dstFID)).
			Set("change_num", sqlID(cn)).
			Where(sq.Eq{"store_id": m.storeID, "message_id": sqlID(srcMID)})); err != nil {
			return err
		}
		_, err = exec(ctx, tx, m.db.builder.
			Update("read_states").
			Set("message_id", sqlID(dstMID)).
			Where(sq.Eq{"store_id": m.storeID, "message_id": sqlID(srcMID)}))
		return err
	})
	if err != nil {
		return m.fail(ctx, "sqlMailbox.MoveMessage", err, "failed to move message")
	}
	return nil
}

func (m *sqlMailbox) SetReadState(ctx context.Context, username string, mid uint64, read bool) (uint64, error) {
	var cn uint64
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := m.loadMessage(ctx, tx, mid); err != nil {
			return err
		}
		var err error
		if cn, err = m.allocateCN(ctx, tx); err != nil {
			return err
		}
		if username == "" {
			_, err = exec(ctx, tx, m.db.builder.
				Update("messages").
				Set("read", read).
				Set("read_cn", sqlID(cn)).
				Where(sq.Eq{"store_id": m.storeID, "message_id": sqlID(mid)}))
			return err
		}
		_, err = exec(ctx, tx, m.db.builder.
			Insert("read_states").
			Columns("store_id", "message_id", "username", "read", "read_cn").
			Values(m.storeID, sqlID(mid), username, read, sqlID(cn)).
			Suffix("ON CONFLICT (store_id, message_id, username) DO UPDATE SET read = excluded.read, read_cn = excluded.read_cn"))
		return err
	})
	if err != nil {
		return 0, m.fail(ctx, "sqlMailbox.SetReadState", err, "failed to set read state")
	}
	return cn, nil
}

func (m *sqlMailbox) WriteAttachment(ctx context.Context, mid uint64, num uint32, att *mapi.AttachmentContent) error {
	err := m.db.withTx(ctx, func(tx *sql.Tx) error {
		r, err := m.loadMessage(ctx, tx, mid)
		if err != nil {
			return err
		}
		stored := &mapi.AttachmentContent{Props: att.Props.Clone(), Embedded: att.Embedded}
		stored.Props.Set(mapi.PrAttachNum, num)

		replaced := false
		for i, a := range r.content.Attachments {
			if n, ok := a.Props.Uint32(mapi.PrAttachNum); ok && n == num {
				r.content.Attachments[i] = stored
				replaced = true
				break
			}
		}
		if !replaced {
			r.content.Attachments = append(r.content.Attachments, stored)
		}
		r.content.HasAttachments = true

		cn, err := m.allocateCN(ctx, tx)
		if err != nil {
			return err
		}
		m.stampChange(&r.content.Props, nil, cn)
		return m.saveContent(ctx, tx, mid, cn, r.content)
	})
	if err != nil {
		return m.fail(ctx, "sqlMailbox.WriteAttachment", err, "failed to write attachment")
	}
	return nil
}
