package mapi

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

var recipientColumns = ProptagArray{PrDisplayName, PrMessageSize, PrSourceKey}

func TestRecipientRow_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		row  *RecipientRow
	}{
		{
			name: "x500 with wide names",
			row: &RecipientRow{
				Flags:             RecipientTypeX500DN | RecipientFlagUnicode | RecipientFlagEmail | RecipientFlagDisplay | RecipientFlagTransmit,
				PrefixUsed:        ptr(uint8(3)),
				DisplayType:       ptr(uint8(0)),
				X500DN:            ptr("/o=Example/cn=Recipients/cn=jdoe"),
				EmailAddress:      ptr("jdoe@example.org"),
				DisplayName:       ptr("Jane Doe"),
				TransmittableName: ptr("Jane D."),
				Count:             2,
				Properties:        &PropRow{Values: []any{"Jane Doe", uint32(12)}},
			},
		},
		{
			name: "distribution list",
			row: &RecipientRow{
				Flags:      RecipientTypeDList1 | RecipientFlagSimple,
				EntryID:    []byte{1, 2, 3},
				SearchKey:  []byte{4},
				SimpleName: ptr("team"),
				Count:      0,
				Properties: &PropRow{Values: []any{}},
			},
		},
		{
			name: "out of standard address type",
			row: &RecipientRow{
				Flags:        RecipientTypeNone | RecipientFlagOutOfStd | RecipientFlagEmail,
				AddressType:  ptr("SMTP"),
				EmailAddress: ptr("someone@example.net"),
				Count:        3,
				Properties:   &PropRow{Values: []any{"Someone", uint32(1), []byte{9}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			push := NewPush(FlagUTF16)
			require.NoError(t, push.RecipientRow(recipientColumns, tt.row))
			got, err := NewPull(push.Bytes(), FlagUTF16).RecipientRow(recipientColumns)
			require.NoError(t, err)
			assert.Equal(t, tt.row, got)
		})
	}
}

func TestRecipientRow_SameFlagCopiesName(t *testing.T) {
	row := &RecipientRow{
		Flags:       RecipientFlagDisplay | RecipientFlagSame,
		DisplayName: ptr("Shared Name"),
	}
	push := NewPush(0)
	require.NoError(t, push.RecipientRow(recipientColumns, row))

	got, err := NewPull(push.Bytes(), 0).RecipientRow(recipientColumns)
	require.NoError(t, err)
	require.NotNil(t, got.TransmittableName)
	assert.Equal(t, "Shared Name", *got.TransmittableName)
}

func TestRecipientRow_TooManyColumns(t *testing.T) {
	row := &RecipientRow{Count: 4}
	require.ErrorIs(t, NewPush(0).RecipientRow(recipientColumns, row), ErrFormat)

	_, err := NewPull([]byte{0, 0, 4, 0, 0}, 0).RecipientRow(recipientColumns)
	require.ErrorIs(t, err, ErrFormat)
}

func TestModRcptRow(t *testing.T) {
	t.Run("removal has no row", func(t *testing.T) {
		push := NewPush(0)
		require.NoError(t, push.ModRcptRow(recipientColumns, &ModRcptRow{RowID: 7, RecipientType: 1}))
		assert.Equal(t, []byte{7, 0, 0, 0, 1, 0, 0}, push.Bytes())

		got, err := NewPull(push.Bytes(), 0).ModRcptRow(recipientColumns)
		require.NoError(t, err)
		assert.Nil(t, got.Row)
	})

	t.Run("declared size wins", func(t *testing.T) {
		push := NewPush(0)
		require.NoError(t, push.ModRcptRow(recipientColumns, &ModRcptRow{
			RowID: 1,
			Row:   &RecipientRow{Flags: RecipientFlagDisplay, DisplayName: ptr("X")},
		}))
		out := push.Bytes()
		size := binary.LittleEndian.Uint16(out[5:])
		// the row body after the size field must match the declared size
		assert.Equal(t, len(out)-7, int(size))

		// grow the declared size and append filler; the cursor must skip it
		padded := append([]byte{}, out...)
		binary.LittleEndian.PutUint16(padded[5:], size+3)
		padded = append(padded, 0xEE, 0xEE, 0xEE, 0x42)

		pull := NewPull(padded, 0)
		got, err := pull.ModRcptRow(recipientColumns)
		require.NoError(t, err)
		assert.Equal(t, "X", *got.Row.DisplayName)
		next, err := pull.Uint8()
		require.NoError(t, err)
		assert.Equal(t, uint8(0x42), next)
	})

	t.Run("row overruns declared size", func(t *testing.T) {
		push := NewPush(0)
		require.NoError(t, push.ModRcptRow(recipientColumns, &ModRcptRow{
			Row: &RecipientRow{Flags: RecipientFlagDisplay, DisplayName: ptr("Longer")},
		}))
		out := push.Bytes()
		binary.LittleEndian.PutUint16(out[5:], 2)
		_, err := NewPull(out, 0).ModRcptRow(recipientColumns)
		require.ErrorIs(t, err, ErrFormat)
	})
}

func TestReadRecipientRow_Header(t *testing.T) {
	push := NewPush(0)
	require.NoError(t, push.ReadRecipientRow(recipientColumns, &ReadRecipientRow{
		RowID:         2,
		RecipientType: 1,
		CodePage:      1252,
		Row:           RecipientRow{Flags: RecipientFlagEmail, EmailAddress: ptr("a@b")},
	}))
	out := push.Bytes()

	pull := NewPull(out, 0)
	rowID, _ := pull.Uint32()
	typ, _ := pull.Uint8()
	cp, _ := pull.Uint16()
	_, _ = pull.Uint16()
	size, err := pull.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), rowID)
	assert.Equal(t, uint8(1), typ)
	assert.Equal(t, uint16(1252), cp)
	assert.Equal(t, pull.Remaining(), int(size))

	row, err := pull.RecipientRow(recipientColumns)
	require.NoError(t, err)
	assert.Equal(t, "a@b", *row.EmailAddress)
}
