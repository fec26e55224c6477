package ics

import (
	"bytes"
	"fmt"

	"github.com/MKhiriev/go-ics-sync/internal/fxstream"
)

// Buffer size limits of FastTransferSourceGetBuffer.
const (
	// BufferSizeUseMax asks for the maximum buffer size the caller sent
	// along.
	BufferSizeUseMax uint16 = 0xBABE
	// MaxChunk is the most a single buffer ever carries.
	MaxChunk = 0x7B00
	// ropOverhead is kept free in the response for the ROP framing.
	ropOverhead = 32
)

// TransferStatus is the state reported with every buffer.
type TransferStatus uint16

const (
	TransferError   TransferStatus = 0x0000
	TransferPartial TransferStatus = 0x0001
	TransferNoRoom  TransferStatus = 0x0002
	TransferDone    TransferStatus = 0x0003
)

func (s TransferStatus) String() string {
	switch s {
	case TransferError:
		return "error"
	case TransferPartial:
		return "partial"
	case TransferNoRoom:
		return "no-room"
	case TransferDone:
		return "done"
	}
	return fmt.Sprintf("transfer-status(%#04x)", uint16(s))
}

// Chunk is one buffer of a download.
type Chunk struct {
	Data     []byte
	Status   TransferStatus
	Progress uint16
	Total    uint16
}

// ChunkSize returns how many bytes a buffer may hold given the requested
// size, the maximum size sent with BufferSizeUseMax and the room left in
// the response.
func ChunkSize(requested, maxSize, ropLeft uint16) int {
	limit := int(ropLeft) - ropOverhead
	if limit < 0 {
		limit = 0
	}
	if limit > MaxChunk {
		limit = MaxChunk
	}
	n := int(requested)
	if requested == BufferSizeUseMax {
		n = int(maxSize)
	}
	return min(n, limit)
}

// chunker hands out a materialized stream in buffers that never split an
// indivisible atom part.
type chunker struct {
	stream *fxstream.Stream
	pos    int
}

func (c *chunker) reset(s *fxstream.Stream) {
	c.stream, c.pos = s, 0
}

func (c *chunker) done() bool {
	return c.stream != nil && c.pos >= len(c.stream.Data)
}

func (c *chunker) next(requested, maxSize, ropLeft uint16) (Chunk, error) {
	if c.stream == nil {
		return Chunk{Status: TransferError}, ErrNotConfigured
	}
	n := ChunkSize(requested, maxSize, ropLeft)
	total := len(c.stream.Data)
	cut := total
	if c.pos < total {
		cut = c.stream.NextCut(c.pos, n)
		if cut-c.pos > n || cut == c.pos {
			return Chunk{Status: TransferError},
				fmt.Errorf("%w: %d bytes available, next part needs %d", ErrBufferTooSmall, n, cut-c.pos)
		}
	}
	chunk := Chunk{
		Data:   bytes.Clone(c.stream.Data[c.pos:cut]),
		Status: TransferPartial,
	}
	c.pos = cut
	steps := len(c.stream.Steps)
	chunk.Progress, chunk.Total = uint16(c.stream.StepsBefore(cut)), uint16(steps)
	if cut == total {
		chunk.Status = TransferDone
	}
	if steps == 0 {
		chunk.Total = 1
		if chunk.Status == TransferDone {
			chunk.Progress = 1
		}
	}
	return chunk, nil
}
