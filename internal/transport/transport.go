// Package transport frames entries and payload bytes onto the shared
// channel.
//
// Ownership boundary:
// - frame and payload ordering on one byte stream
// - channel failure classification (ErrTransport / ErrShortRead)
//
// The transport holds no buffer beyond one frame header; payload bytes
// move through caller-owned chunks.
package transport

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/dirpost/internal/protocol"
)

var (
	ErrTransport = errors.New("transport: channel failure")
	ErrShortRead = fmt.Errorf("%w: short read", ErrTransport)
)

// Stream is the framing layer over one bidirectional byte channel. It
// is direction-agnostic; the transfer engine decides which half it
// drives.
type Stream struct {
	rw     io.ReadWriter
	limits protocol.Limits
}

func NewStream(rw io.ReadWriter, limits protocol.Limits) *Stream {
	return &Stream{rw: rw, limits: limits}
}

// WriteFrame puts one metadata frame on the wire.
func (s *Stream) WriteFrame(e protocol.Entry) error {
	if err := protocol.WriteEntry(s.rw, e, s.limits); err != nil {
		if errors.Is(err, protocol.ErrDecode) {
			return err
		}
		return fmt.Errorf("%w: write frame: %v", ErrTransport, err)
	}
	return nil
}

// ReadFrame reads the next metadata frame. Malformed frames keep their
// protocol.ErrDecode identity; channel failures wrap ErrTransport.
func (s *Stream) ReadFrame() (protocol.Entry, error) {
	e, err := protocol.ReadEntry(s.rw, s.limits)
	if err != nil {
		if errors.Is(err, protocol.ErrDecode) {
			return protocol.Entry{}, err
		}
		return protocol.Entry{}, fmt.Errorf("%w: read frame: %v", ErrTransport, err)
	}
	return e, nil
}

// WriteBytes puts one payload chunk on the wire.
func (s *Stream) WriteBytes(p []byte) error {
	if _, err := s.rw.Write(p); err != nil {
		return fmt.Errorf("%w: write payload: %v", ErrTransport, err)
	}
	return nil
}

// ReadExact fills p from the wire. A channel close before len(p) bytes
// arrive is ErrShortRead; the engine maps that to truncation when it
// happens mid-payload.
func (s *Stream) ReadExact(p []byte) error {
	n, err := io.ReadFull(s.rw, p)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, n, len(p))
		}
		return fmt.Errorf("%w: read payload: %v", ErrTransport, err)
	}
	return nil
}
