package store

import (
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

const blobFlags = mapi.FlagUTF16 | mapi.FlagWCount

// columnTags live in their own columns and are never kept in blobs.
var columnTags = []mapi.PropTag{
	mapi.PidTagMid,
	mapi.PidTagFolderID,
	mapi.PidTagParentFolderID,
	mapi.PidTagChangeNumber,
	mapi.PrAssociated,
	mapi.PrRead,
	mapi.PrMessageSize,
	mapi.PrContentCount,
	mapi.PrAssocContentCount,
	mapi.PrCreatorName,
}

func stripColumns(props mapi.TPropvalArray) mapi.TPropvalArray {
	out := props.Clone()
	for _, tag := range columnTags {
		out.Erase(tag)
	}
	return out
}

func encodeProps(props mapi.TPropvalArray) ([]byte, error) {
	p := mapi.NewPush(blobFlags)
	if err := p.TPropvalArray(stripColumns(props)); err != nil {
		return nil, fmt.Errorf("encode props: %w", err)
	}
	return p.Bytes(), nil
}

func decodeProps(b []byte) (mapi.TPropvalArray, error) {
	props, err := mapi.NewPull(b, blobFlags).TPropvalArray()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingBlob, err)
	}
	return props, nil
}

func encodeMessage(m *mapi.MessageContent) ([]byte, error) {
	stored := *m
	stored.Props = stripColumns(m.Props)
	p := mapi.NewPush(blobFlags)
	if err := p.MessageContent(&stored); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return p.Bytes(), nil
}

func decodeMessage(b []byte) (*mapi.MessageContent, error) {
	m, err := mapi.NewPull(b, blobFlags).MessageContent()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingBlob, err)
	}
	return m, nil
}

// pick keeps the requested tags of props in request order; nil tags keeps
// everything.
func pick(props mapi.TPropvalArray, tags []mapi.PropTag) mapi.TPropvalArray {
	if tags == nil {
		return props
	}
	out := make(mapi.TPropvalArray, 0, len(tags))
	for _, tag := range tags {
		if v, ok := props.Get(tag); ok {
			out = append(out, mapi.TaggedPropval{Tag: tag, Value: v})
		}
	}
	return out
}

// sqlID stores the bit pattern of an entry id in a signed BIGINT column.
func sqlID(eid uint64) int64 { return int64(eid) }
