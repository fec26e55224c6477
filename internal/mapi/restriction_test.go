package mapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestriction_RoundTrip(t *testing.T) {
	tree := &RestrictionAnd{Children: []Restriction{
		&RestrictionOr{Children: []Restriction{
			&RestrictionContent{
				FuzzyLevel: FLSubstring | FLIgnoreCase,
				PropTag:    PrDisplayName,
				Value:      &TaggedPropval{Tag: PrDisplayName, Value: "report"},
			},
			&RestrictionNot{Child: &RestrictionExist{PropTag: PrBody}},
		}},
		&RestrictionProperty{
			Relop:   RelopGE,
			PropTag: PrMessageSize,
			Value:   &TaggedPropval{Tag: PrMessageSize, Value: uint32(100)},
		},
		&RestrictionPropCompare{Relop: RelopEQ, PropTag1: PrMessageSize, PropTag2: PrMessageSize},
		&RestrictionBitmask{Relop: BmrNez, PropTag: PrMessageFlags, Mask: 1},
		&RestrictionSize{Relop: RelopLT, PropTag: PrBody, Size: 4096},
		&RestrictionSub{SubObject: PrMessageRecipients, Child: RestrictionNull{}},
		&RestrictionComment{
			Props: TPropvalArray{{Tag: PrDisplayName, Value: "note"}},
			Child: &RestrictionExist{PropTag: PrSourceKey},
		},
		&RestrictionComment{Props: TPropvalArray{{Tag: PrMessageSize, Value: uint32(1)}}},
		&RestrictionCount{Count: 3, Child: &RestrictionExist{PropTag: PrRead}},
	}}

	for _, flags := range []Flags{FlagUTF16, FlagUTF16 | FlagWCount, FlagUTF16 | FlagABK} {
		push := NewPush(flags)
		require.NoError(t, push.Restriction(tree))
		got, err := NewPull(push.Bytes(), flags).Restriction()
		require.NoError(t, err, "flags %#x", flags)
		assert.Equal(t, Restriction(tree), got, "flags %#x", flags)
	}
}

func TestRestriction_Rejects(t *testing.T) {
	t.Run("nil tree", func(t *testing.T) {
		require.ErrorIs(t, NewPush(0).Restriction(nil), ErrFormat)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewPull([]byte{0x42}, 0).Restriction()
		require.ErrorIs(t, err, ErrBadSwitch)
	})

	t.Run("empty comment", func(t *testing.T) {
		_, err := NewPull([]byte{ResComment, 0}, 0).Restriction()
		require.ErrorIs(t, err, ErrFormat)
	})

	t.Run("child count beyond input", func(t *testing.T) {
		_, err := NewPull([]byte{ResAnd, 0xff, 0x00, ResNull}, 0).Restriction()
		require.ErrorIs(t, err, ErrBufSize)
	})
}

func TestMatch(t *testing.T) {
	msg := TPropvalArray{
		{Tag: PrDisplayName, Value: "Quarterly Report"},
		{Tag: PrMessageSize, Value: uint32(2048)},
		{Tag: PrMessageFlags, Value: uint32(0x5)},
		{Tag: PrRead, Value: false},
		{Tag: PrSourceKey, Value: []byte{1, 2, 3}},
		{Tag: Tag(0x6610, PtMVUnicode), Value: []string{"alpha", "beta"}},
	}
	prop := func(op uint8, tag PropTag, v any) Restriction {
		return &RestrictionProperty{Relop: op, PropTag: tag, Value: &TaggedPropval{Tag: tag, Value: v}}
	}
	content := func(fl uint32, tag PropTag, v any) Restriction {
		return &RestrictionContent{FuzzyLevel: fl, PropTag: tag, Value: &TaggedPropval{Tag: tag, Value: v}}
	}

	tests := []struct {
		name string
		r    Restriction
		want bool
	}{
		{"nil matches everything", nil, true},
		{"null matches everything", RestrictionNull{}, true},
		{"exists", &RestrictionExist{PropTag: PrSourceKey}, true},
		{"missing", &RestrictionExist{PropTag: PrBody}, false},
		{"narrow tag finds wide value", &RestrictionExist{PropTag: PrDisplayName.WithType(PtString8)}, true},
		{"unspecified type finds by id", &RestrictionExist{PropTag: PrMessageSize.WithType(PtUnspecified)}, true},
		{"greater than", prop(RelopGT, PrMessageSize, uint32(1024)), true},
		{"less or equal", prop(RelopLE, PrMessageSize, uint32(1024)), false},
		{"not equal", prop(RelopNE, PrMessageSize, uint32(1)), true},
		{"mismatched value type", prop(RelopEQ, PrMessageSize, "2048"), false},
		{"string compare ignores case", prop(RelopEQ, PrDisplayName, "quarterly report"), true},
		{"bool compare", prop(RelopEQ, PrRead, false), true},
		{"binary compare", prop(RelopLT, PrSourceKey, []byte{1, 2, 4}), true},
		{"regexp", prop(RelopRE, PrDisplayName, "^Quarter.*t$"), true},
		{"bad regexp", prop(RelopRE, PrDisplayName, "("), false},
		{"substring", content(FLSubstring, PrDisplayName, "Report"), true},
		{"substring is case sensitive", content(FLSubstring, PrDisplayName, "report"), false},
		{"substring ignoring case", content(FLSubstring|FLIgnoreCase, PrDisplayName, "report"), true},
		{"prefix", content(FLPrefix, PrDisplayName, "Quarterly"), true},
		{"full string", content(FLFullString, PrDisplayName, "Quarterly"), false},
		{"binary prefix", content(FLPrefix, PrSourceKey, []byte{1, 2}), true},
		{"multi-value element", content(FLFullString, Tag(0x6610, PtMVUnicode), "beta"), true},
		{"bitmask nez", &RestrictionBitmask{Relop: BmrNez, PropTag: PrMessageFlags, Mask: 0x4}, true},
		{"bitmask eqz", &RestrictionBitmask{Relop: BmrEqz, PropTag: PrMessageFlags, Mask: 0x2}, true},
		{"size", &RestrictionSize{Relop: RelopEQ, PropTag: PrSourceKey, Size: 3}, true},
		{"string size counts terminator", &RestrictionSize{Relop: RelopEQ, PropTag: PrDisplayName, Size: 17}, true},
		{"property compare", &RestrictionPropCompare{Relop: RelopGT, PropTag1: PrMessageSize, PropTag2: PrMessageFlags}, true},
		{"and", &RestrictionAnd{Children: []Restriction{
			&RestrictionExist{PropTag: PrRead},
			&RestrictionExist{PropTag: PrBody},
		}}, false},
		{"or", &RestrictionOr{Children: []Restriction{
			&RestrictionExist{PropTag: PrBody},
			&RestrictionExist{PropTag: PrRead},
		}}, true},
		{"empty and", &RestrictionAnd{}, true},
		{"empty or", &RestrictionOr{}, false},
		{"not", &RestrictionNot{Child: &RestrictionExist{PropTag: PrBody}}, true},
		{"sub-object never matches", &RestrictionSub{SubObject: PrMessageRecipients, Child: RestrictionNull{}}, false},
		{"comment without child", &RestrictionComment{}, true},
		{"comment with child", &RestrictionComment{Child: &RestrictionExist{PropTag: PrBody}}, false},
		{"count zero", &RestrictionCount{Count: 0, Child: RestrictionNull{}}, false},
		{"count", &RestrictionCount{Count: 1, Child: RestrictionNull{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.r, msg))
		})
	}
}
