// Package fxstream encodes and decodes FastTransfer streams. A stream is a
// flat sequence of atoms, each either a marker or a property value; nesting
// of folders, messages, recipients and attachments is expressed by pairs of
// start and end markers.
package fxstream

import "github.com/MKhiriev/go-ics-sync/internal/mapi"

// Markers. They share the tag space with properties and are told apart by
// value.
const (
	NewAttach          mapi.PropTag = 0x40000003
	StartEmbed         mapi.PropTag = 0x40010003
	EndEmbed           mapi.PropTag = 0x40020003
	StartRecip         mapi.PropTag = 0x40030003
	EndToRecip         mapi.PropTag = 0x40040003
	StartTopFld        mapi.PropTag = 0x40090003
	StartSubFld        mapi.PropTag = 0x400A0003
	EndFolder          mapi.PropTag = 0x400B0003
	StartMessage       mapi.PropTag = 0x400C0003
	EndMessage         mapi.PropTag = 0x400D0003
	EndAttach          mapi.PropTag = 0x400E0003
	StartFAIMsg        mapi.PropTag = 0x40100003
	IncrSyncChg        mapi.PropTag = 0x40120003
	IncrSyncDel        mapi.PropTag = 0x40130003
	IncrSyncEnd        mapi.PropTag = 0x40140003
	IncrSyncMessage    mapi.PropTag = 0x40150003
	FXErrorInfo        mapi.PropTag = 0x40180003
	IncrSyncRead       mapi.PropTag = 0x402F0003
	IncrSyncStateBegin mapi.PropTag = 0x403A0003
	IncrSyncStateEnd   mapi.PropTag = 0x403B0003
	IncrSyncChgPartial mapi.PropTag = 0x407D0003

	IncrSyncProgressMode   mapi.PropTag = 0x4074000B
	IncrSyncProgressPerMsg mapi.PropTag = 0x4075000B
	IncrSyncGroupInfo      mapi.PropTag = 0x407B0102
)

var markers = map[mapi.PropTag]string{
	NewAttach:              "NewAttach",
	StartEmbed:             "StartEmbed",
	EndEmbed:               "EndEmbed",
	StartRecip:             "StartRecip",
	EndToRecip:             "EndToRecip",
	StartTopFld:            "StartTopFld",
	StartSubFld:            "StartSubFld",
	EndFolder:              "EndFolder",
	StartMessage:           "StartMessage",
	EndMessage:             "EndMessage",
	EndAttach:              "EndAttach",
	StartFAIMsg:            "StartFAIMsg",
	IncrSyncChg:            "IncrSyncChg",
	IncrSyncDel:            "IncrSyncDel",
	IncrSyncEnd:            "IncrSyncEnd",
	IncrSyncMessage:        "IncrSyncMessage",
	FXErrorInfo:            "FXErrorInfo",
	IncrSyncRead:           "IncrSyncRead",
	IncrSyncStateBegin:     "IncrSyncStateBegin",
	IncrSyncStateEnd:       "IncrSyncStateEnd",
	IncrSyncChgPartial:     "IncrSyncChgPartial",
	IncrSyncProgressMode:   "IncrSyncProgressMode",
	IncrSyncProgressPerMsg: "IncrSyncProgressPerMsg",
	IncrSyncGroupInfo:      "IncrSyncGroupInfo",
}

// IsMarker reports whether tag is a stream marker rather than a property.
func IsMarker(tag mapi.PropTag) bool {
	_, ok := markers[tag]
	return ok
}

// MarkerName returns a printable name for a marker, or the hex tag.
func MarkerName(tag mapi.PropTag) string {
	if name, ok := markers[tag]; ok {
		return name
	}
	return tag.String()
}
