package mapi

import "fmt"

// PropTag is a 32-bit property tag: property id in the high word, property
// type in the low word.
type PropTag uint32

// Tag composes a property tag from an id and a type.
func Tag(id, typ uint16) PropTag {
	return PropTag(uint32(id)<<16 | uint32(typ))
}

// ID returns the property id.
func (t PropTag) ID() uint16 { return uint16(t >> 16) }

// Type returns the property type.
func (t PropTag) Type() uint16 { return uint16(t) }

// WithType returns t with its type replaced.
func (t PropTag) WithType(typ uint16) PropTag { return Tag(t.ID(), typ) }

// IsNamed reports whether the property id lies in the named-property range.
func (t PropTag) IsNamed() bool { return t.ID() >= 0x8000 }

func (t PropTag) String() string { return fmt.Sprintf("%#08x", uint32(t)) }

// Property types.
const (
	PtUnspecified  uint16 = 0x0000
	PtNull         uint16 = 0x0001
	PtShort        uint16 = 0x0002
	PtLong         uint16 = 0x0003
	PtFloat        uint16 = 0x0004
	PtDouble       uint16 = 0x0005
	PtCurrency     uint16 = 0x0006
	PtAppTime      uint16 = 0x0007
	PtError        uint16 = 0x000A
	PtBoolean      uint16 = 0x000B
	PtObject       uint16 = 0x000D
	PtI8           uint16 = 0x0014
	PtString8      uint16 = 0x001E
	PtUnicode      uint16 = 0x001F
	PtSysTime      uint16 = 0x0040
	PtCLSID        uint16 = 0x0048
	PtSvrEID       uint16 = 0x00FB
	PtSRestriction uint16 = 0x00FD
	PtActions      uint16 = 0x00FE
	PtBinary       uint16 = 0x0102

	MVFlag  uint16 = 0x1000
	MVIFlag uint16 = 0x3000

	PtMVShort    = MVFlag | PtShort
	PtMVLong     = MVFlag | PtLong
	PtMVFloat    = MVFlag | PtFloat
	PtMVDouble   = MVFlag | PtDouble
	PtMVCurrency = MVFlag | PtCurrency
	PtMVAppTime  = MVFlag | PtAppTime
	PtMVI8       = MVFlag | PtI8
	PtMVString8  = MVFlag | PtString8
	PtMVUnicode  = MVFlag | PtUnicode
	PtMVSysTime  = MVFlag | PtSysTime
	PtMVCLSID    = MVFlag | PtCLSID
	PtMVBinary   = MVFlag | PtBinary
)

// Well-known property tags.
const (
	PrMessageSizeExtended      PropTag = 0x0E080014
	PrMessageRecipients        PropTag = 0x0E12000D
	PrMessageAttachments       PropTag = 0x0E13000D
	PrRead                     PropTag = 0x0E69000B
	PrBody                     PropTag = 0x1000001F
	PrHTML                     PropTag = 0x10130102
	PrDisplayName              PropTag = 0x3001001F
	PrLastModificationTime     PropTag = 0x30080040
	PrFolderType               PropTag = 0x36010003
	PrContentCount             PropTag = 0x36020003
	PrContentUnreadCount       PropTag = 0x36030003
	PrContainerHierarchy       PropTag = 0x360E000D
	PrContainerContents        PropTag = 0x360F000D
	PrFolderAssociatedContents PropTag = 0x3610000D
	PrAssocContentCount        PropTag = 0x36170003
	PrAttachDataObj            PropTag = 0x3701000D
	PrAttachNum                PropTag = 0x0E210003
	PrRowID                    PropTag = 0x30000003
	PrStorageQuotaLimit        PropTag = 0x3FF50003
	PrSourceKey                PropTag = 0x65E00102
	PrParentSourceKey          PropTag = 0x65E10102
	PrChangeKey                PropTag = 0x65E20102
	PrPredecessorChangeList    PropTag = 0x65E30102
	PrMessageFlags             PropTag = 0x0E070003
	PrMessageSize              PropTag = 0x0E080003
	PrCreatorName              PropTag = 0x3FF8001F
	PidTagChangeNumber         PropTag = 0x67A40014
	PrAssociated               PropTag = 0x67AA000B
	PidTagFolderID             PropTag = 0x67480014
	PidTagParentFolderID       PropTag = 0x67490014
	PidTagMid                  PropTag = 0x674A0014
)

// Meta tags carried inside FastTransfer and ICS state streams.
const (
	MetaTagFXDelProp            PropTag = 0x40160003
	MetaTagEcWarning            PropTag = 0x400F0003
	MetaTagNewFXFolder          PropTag = 0x40110102
	MetaTagIncrSyncGroupID      PropTag = 0x407C0003
	MetaTagIncrementalSyncMsg   PropTag = 0x40150003
	MetaTagDnPrefix             PropTag = 0x4008001E
	MetaTagIdsetGiven           PropTag = 0x40170003
	MetaTagIdsetGiven1          PropTag = 0x40170102
	MetaTagCnsetSeen            PropTag = 0x67960102
	MetaTagCnsetSeenFAI         PropTag = 0x67DA0102
	MetaTagCnsetRead            PropTag = 0x67D20102
	MetaTagIdsetDeleted         PropTag = 0x67E50102
	MetaTagIdsetNoLongerInScope PropTag = 0x40210102
	MetaTagIdsetExpired         PropTag = 0x67930102
	MetaTagIdsetRead            PropTag = 0x402D0102
	MetaTagIdsetUnread          PropTag = 0x402E0102
)

// Folder types stored in PrFolderType.
const (
	FolderRoot    uint32 = 0
	FolderGeneric uint32 = 1
	FolderSearch  uint32 = 2
)

// Message flags stored in PrMessageFlags.
const (
	MsgFlagRead       uint32 = 0x00000001
	MsgFlagUnmodified uint32 = 0x00000002
	MsgFlagAssociated uint32 = 0x00000040
)
