package stream

import (
	"fmt"
	"io"
)

// Buffer is an in-memory io.WriteSeeker. Unlike bytes.Buffer it supports
// seeking, which the encoder needs to patch header length fields after the
// codestream body has been written.
type Buffer struct {
	data []byte
	pos  int64
}

// NewBuffer returns an empty seekable write buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Write writes p at the current position, growing the buffer as needed.
func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

// Seek implements io.Seeker. Seeking past the end is allowed; the gap is
// zero-filled on the next write.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("stream: invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("stream: negative position %d", pos)
	}
	b.pos = pos
	return pos, nil
}

// Bytes returns the written contents.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the total number of bytes written.
func (b *Buffer) Len() int {
	return len(b.data)
}
