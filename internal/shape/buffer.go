package shape

import (
	"errors"
	"fmt"
)

// chunkSize is the allocation granularity of the geometry buffer.
const chunkSize = 64 * 1024

// ErrBufferLimit is returned when growing a buffer would exceed the
// configured maximum size. It aborts the encode.
var ErrBufferLimit = errors.New("shape: buffer limit exceeded")

// chunkBuffer is a byte buffer that grows in whole chunks. The used length
// and the allocated capacity are tracked separately.
type chunkBuffer struct {
	buf   []byte
	size  int
	limit int // 0 means unlimited
}

// expand reserves n more bytes and returns the offset of the reserved region.
// When the reservation does not fit, a larger chunk-rounded buffer is
// allocated and the used bytes are copied over.
func (b *chunkBuffer) expand(n int) (int, error) {
	offset := b.size
	need := b.size + n
	if b.limit > 0 && need > b.limit {
		return 0, fmt.Errorf("%w: need %d bytes, limit %d", ErrBufferLimit, need, b.limit)
	}

	if need > len(b.buf) {
		capacity := len(b.buf)
		for capacity < need {
			capacity += chunkSize
		}
		if b.limit > 0 && capacity > b.limit {
			capacity = b.limit
		}
		grown := make([]byte, capacity)
		copy(grown, b.buf[:b.size])
		b.buf = grown
	}

	b.size = need
	return offset, nil
}

// Bytes returns the used part of the buffer.
func (b *chunkBuffer) Bytes() []byte {
	return b.buf[:b.size]
}

// Len returns the number of used bytes.
func (b *chunkBuffer) Len() int {
	return b.size
}

// Cap returns the allocated capacity.
func (b *chunkBuffer) Cap() int {
	return len(b.buf)
}
