package ics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-ics-sync/internal/fxstream"
	"github.com/MKhiriev/go-ics-sync/internal/mapi"
)

func TestChunkSize(t *testing.T) {
	tests := []struct {
		name                        string
		requested, maxSize, ropLeft uint16
		want                        int
	}{
		{"use max is capped", BufferSizeUseMax, 0x8000, 0xFFFF, MaxChunk},
		{"use max below the cap", BufferSizeUseMax, 0x1000, 0xFFFF, 0x1000},
		{"exact size", 100, 0, 200, 100},
		{"room left wins", 100, 0, 50, 18},
		{"no room at all", 100, 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChunkSize(tt.requested, tt.maxSize, tt.ropLeft))
		})
	}
}

func messageStream(t *testing.T) *fxstream.Stream {
	t.Helper()
	w := fxstream.NewWriter(nil)
	require.NoError(t, w.Marker(fxstream.StartMessage))
	require.NoError(t, w.Propval(mapi.TaggedPropval{Tag: mapi.PrSourceKey, Value: make([]byte, 10)}))
	require.NoError(t, w.Propval(mapi.TaggedPropval{Tag: mapi.PrMessageFlags, Value: uint32(1)}))
	require.NoError(t, w.Marker(fxstream.EndMessage))
	w.Step()
	return w.Stream()
}

func TestChunker_Next(t *testing.T) {
	var c chunker
	_, err := c.next(100, 0, 1000)
	require.ErrorIs(t, err, ErrNotConfigured)

	c.reset(messageStream(t))

	_, err = c.next(2, 0, 1000)
	require.ErrorIs(t, err, ErrBufferTooSmall)

	first, err := c.next(12, 0, 1000)
	require.NoError(t, err)
	assert.Len(t, first.Data, 12)
	assert.Equal(t, TransferPartial, first.Status)
	assert.Equal(t, uint16(0), first.Progress)
	assert.Equal(t, uint16(1), first.Total)
	assert.False(t, c.done())

	rest, err := c.next(BufferSizeUseMax, 0x1000, 0xFFFF)
	require.NoError(t, err)
	assert.Len(t, rest.Data, 22)
	assert.Equal(t, TransferDone, rest.Status)
	assert.Equal(t, uint16(1), rest.Progress)
	assert.True(t, c.done())
}

func TestChunker_EmptyStream(t *testing.T) {
	var c chunker
	c.reset(fxstream.NewWriter(nil).Stream())

	chunk, err := c.next(100, 0, 1000)
	require.NoError(t, err)
	assert.Empty(t, chunk.Data)
	assert.Equal(t, TransferDone, chunk.Status)
	assert.Equal(t, uint16(1), chunk.Progress)
	assert.Equal(t, uint16(1), chunk.Total)
}
