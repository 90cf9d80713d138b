// Package stream provides the byte-stream adapters the codec boundary reads
// compressed data from and writes codestreams to. A Source wraps any
// io.ReadSeeker and exposes the tell/read/seek/skip/length contract the codec
// engine expects; a Sink does the same for the write side.
package stream

import (
	"errors"
	"io"
)

// Whence values for Seek, matching io.Seek* semantics.
const (
	SeekSet = io.SeekStart
	SeekCur = io.SeekCurrent
	SeekEnd = io.SeekEnd
)

// ErrExhausted is returned when a read yields no bytes and no underlying
// error, which the tile loop treats as end of data.
var ErrExhausted = errors.New("stream: no more data")

// Source adapts a host-supplied readable, seekable byte stream.
type Source struct {
	r      io.ReadSeeker
	length int64 // -1 until computed
}

// NewSource wraps r. The stream position is used as-is; callers that need the
// data read from the start should seek first.
func NewSource(r io.ReadSeeker) *Source {
	return &Source{r: r, length: -1}
}

// Tell returns the current stream position.
func (s *Source) Tell() (int64, error) {
	return s.r.Seek(0, SeekCur)
}

// Read reads up to len(p) bytes. A read that moves no bytes and reports no
// error is mapped to ErrExhausted so callers never spin on an empty stream.
func (s *Source) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n == 0 && err == nil && len(p) > 0 {
		return 0, ErrExhausted
	}
	return n, err
}

// Seek changes the stream position to offset relative to whence.
func (s *Source) Seek(offset int64, whence int) (int64, error) {
	return s.r.Seek(offset, whence)
}

// Skip moves the position by offset relative to the current position and
// returns the new position.
func (s *Source) Skip(offset int64) (int64, error) {
	if _, err := s.r.Seek(offset, SeekCur); err != nil {
		return -1, err
	}
	return s.Tell()
}

// Length returns the total stream size. When the underlying reader cannot
// report it directly the size is computed by seeking to the end and back,
// and cached for subsequent calls.
func (s *Source) Length() (int64, error) {
	if s.length >= 0 {
		return s.length, nil
	}
	pos, err := s.r.Seek(0, SeekCur)
	if err != nil {
		return 0, err
	}
	end, err := s.r.Seek(0, SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := s.r.Seek(pos, SeekSet); err != nil {
		return 0, err
	}
	s.length = end
	return end, nil
}

// ReadAll rewinds the stream and reads it in full.
func (s *Source) ReadAll() ([]byte, error) {
	if _, err := s.r.Seek(0, SeekSet); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(s.r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrExhausted
	}
	return data, nil
}

// Sink adapts a host-supplied writable, seekable byte stream. The encoder
// uses Seek/Skip to back-patch length fields after the payload is written.
type Sink struct {
	w io.WriteSeeker
}

// NewSink wraps w.
func NewSink(w io.WriteSeeker) *Sink {
	return &Sink{w: w}
}

// Write writes p and returns the number of bytes written.
func (s *Sink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// Tell returns the current write position.
func (s *Sink) Tell() (int64, error) {
	return s.w.Seek(0, SeekCur)
}

// Seek changes the write position to offset relative to whence.
func (s *Sink) Seek(offset int64, whence int) (int64, error) {
	return s.w.Seek(offset, whence)
}

// Skip moves the write position by offset and returns the new position.
func (s *Sink) Skip(offset int64) (int64, error) {
	return s.w.Seek(offset, SeekCur)
}
