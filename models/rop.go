package models

// SessionResponse is returned when a ROP session is opened.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// RopRequest carries the parameters of one remote operation. Each ROP
// reads the fields it needs and ignores the rest. Property arrays and
// restrictions travel in their MAPI wire encoding with UTF-16 strings;
// encoding/json renders every []byte as base64.
type RopRequest struct {
	// Handle is the input object handle.
	Handle uint32 `json:"hin"`

	// Logon.
	Private   bool   `json:"private,omitempty"`
	AccountID uint32 `json:"account_id,omitempty"`

	FolderID   uint64   `json:"fid,omitempty"`
	MessageID  uint64   `json:"mid,omitempty"`
	MessageIDs []uint64 `json:"mids,omitempty"`
	Associated bool     `json:"associated,omitempty"`
	AttachNum  uint32   `json:"attach_num,omitempty"`

	// Permissions.
	Username string `json:"username,omitempty"`
	Rights   uint32 `json:"rights,omitempty"`

	// FastTransfer.
	SourceOperation uint8     `json:"source_operation,omitempty"`
	Flags           uint32    `json:"flags,omitempty"`
	SendOptions     uint8     `json:"send_options,omitempty"`
	Level           uint8     `json:"level,omitempty"`
	PropTags        []uint32  `json:"prop_tags,omitempty"`
	Data            []byte    `json:"data,omitempty"`
	Requested       uint16    `json:"requested,omitempty"`
	MaxSize         uint16    `json:"max_size,omitempty"`
	Version         [3]uint16 `json:"version"`

	// Synchronization.
	SyncType    uint8        `json:"sync_type,omitempty"`
	SyncFlags   uint16       `json:"sync_flags,omitempty"`
	ExtraFlags  uint32       `json:"extra_flags,omitempty"`
	Restriction []byte       `json:"restriction,omitempty"`
	Contents    bool         `json:"contents,omitempty"`
	Hierarchy   []byte       `json:"hierarchy,omitempty"`
	Props       []byte       `json:"props,omitempty"`
	ReadStates  []ReadState  `json:"read_states,omitempty"`
	Move        *MessageMove `json:"move,omitempty"`
	StateTag    uint32       `json:"state_tag,omitempty"`
	StateSize   uint32       `json:"state_size,omitempty"`

	// Replica ids.
	Count uint32 `json:"count,omitempty"`
}

// ReadState marks one message, named by its 22-byte XID, read or unread.
type ReadState struct {
	MessageXID []byte `json:"message_xid"`
	MarkAsRead bool   `json:"mark_as_read"`
}

// MessageMove describes a message the client moved between folders.
type MessageMove struct {
	SourceFolder  []byte `json:"source_folder"`
	SourceMessage []byte `json:"source_message"`
	ChangeList    []byte `json:"change_list"`
	DestMessage   []byte `json:"dest_message"`
	ChangeNumber  []byte `json:"change_number"`
}

// RopResponse is the outcome of one remote operation. Result is the MAPI
// result code; the other fields are set only by ROPs that produce them.
type RopResponse struct {
	Result     uint32 `json:"result"`
	ResultName string `json:"result_name"`

	Handle    uint32 `json:"hout,omitempty"`
	FolderID  uint64 `json:"fid,omitempty"`
	MessageID uint64 `json:"mid,omitempty"`

	// Transfer buffers.
	Status   uint16 `json:"status,omitempty"`
	Progress uint16 `json:"progress,omitempty"`
	Total    uint16 `json:"total,omitempty"`
	Used     uint16 `json:"used,omitempty"`
	Data     []byte `json:"data,omitempty"`

	// GetLocalReplicaIDs.
	ReplicaGUID   string `json:"replica_guid,omitempty"`
	GlobalCounter []byte `json:"global_counter,omitempty"`
}

// ServerInfo describes the running server.
type ServerInfo struct {
	Version  string `json:"version"`
	Sessions int    `json:"sessions"`
}
