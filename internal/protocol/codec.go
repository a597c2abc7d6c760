package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Metadata frame layout, big-endian:
//
//	[kind: 1 byte] [path_len: u32] [path: path_len bytes UTF-8] [size: u64, KindFile only]
//
// A sentinel frame is the kind byte alone. File payload bytes follow a
// KindFile frame on the same stream and are not part of the frame.
const (
	kindLen    = 1
	pathLenLen = 4
	sizeLen    = 8
)

// Limits constrains frame decode memory use.
type Limits struct {
	MaxPathBytes uint32
}

func DefaultLimits() Limits {
	return Limits{MaxPathBytes: 4096}
}

// WriteEntry encodes one metadata frame onto w. The entry path is
// validated before any byte is written, so a rejected entry leaves the
// stream untouched.
func WriteEntry(w io.Writer, e Entry, limits Limits) error {
	buf, err := AppendEntry(nil, e, limits)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// AppendEntry encodes one metadata frame into buf and returns the
// extended slice.
func AppendEntry(buf []byte, e Entry, limits Limits) ([]byte, error) {
	switch e.Kind {
	case KindSentinel:
		return append(buf, byte(KindSentinel)), nil
	case KindDirectory, KindFile:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(e.Kind))
	}
	if err := ValidatePath(e.Path, limits); err != nil {
		return nil, err
	}

	buf = append(buf, byte(e.Kind))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(e.Path)))
	buf = append(buf, e.Path...)
	if e.Kind == KindFile {
		buf = binary.BigEndian.AppendUint64(buf, e.Size)
	}
	return buf, nil
}

// ReadEntry decodes one metadata frame from r. Malformed input,
// including any path that could escape the transfer root, wraps
// ErrDecode. Channel failures are returned as-is for the transport
// layer to classify.
func ReadEntry(r io.Reader, limits Limits) (Entry, error) {
	var kind [kindLen]byte
	if _, err := io.ReadFull(r, kind[:]); err != nil {
		return Entry{}, err
	}

	switch Kind(kind[0]) {
	case KindSentinel:
		return Sentinel(), nil
	case KindDirectory, KindFile:
	default:
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownKind, kind[0])
	}
	e := Entry{Kind: Kind(kind[0])}

	var lenBuf [pathLenLen]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Entry{}, shortFrame(err)
	}
	pathLen := binary.BigEndian.Uint32(lenBuf[:])
	if pathLen == 0 {
		return Entry{}, ErrEmptyPath
	}
	if pathLen > limits.MaxPathBytes {
		return Entry{}, fmt.Errorf("%w: %d > %d", ErrPathTooLong, pathLen, limits.MaxPathBytes)
	}

	pathBuf := make([]byte, pathLen)
	if _, err := io.ReadFull(r, pathBuf); err != nil {
		return Entry{}, shortFrame(err)
	}
	e.Path = string(pathBuf)
	if err := ValidatePath(e.Path, limits); err != nil {
		return Entry{}, err
	}

	if e.Kind == KindFile {
		var sizeBuf [sizeLen]byte
		if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
			return Entry{}, shortFrame(err)
		}
		e.Size = binary.BigEndian.Uint64(sizeBuf[:])
	}
	return e, nil
}

// ValidatePath enforces root confinement for one wire path. This is the
// primary defense against path escape on the receiving side: anything
// empty, absolute, NUL-bearing, non-UTF-8, or containing "." / ".."
// segments is rejected.
func ValidatePath(path string, limits Limits) error {
	if path == "" {
		return ErrEmptyPath
	}
	if uint32(len(path)) > limits.MaxPathBytes {
		return fmt.Errorf("%w: %d > %d", ErrPathTooLong, len(path), limits.MaxPathBytes)
	}
	if !utf8.ValidString(path) || strings.ContainsRune(path, 0) {
		return ErrInvalidPath
	}
	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: %q", ErrAbsolutePath, path)
	}
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "":
			return fmt.Errorf("%w: %q", ErrInvalidPath, path)
		case ".", "..":
			return fmt.Errorf("%w: %q", ErrPathEscape, path)
		}
	}
	return nil
}

// Mid-frame channel loss reads as a decode failure: the header itself
// is the unit that went missing.
func shortFrame(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrShortFrame
	}
	return err
}
