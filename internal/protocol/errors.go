package protocol

import (
	"errors"
	"fmt"
)

// ErrDecode is the root of the malformed-frame taxonomy. Every decode
// rejection wraps it, so callers can match the class or the exact cause.
var ErrDecode = errors.New("protocol: malformed frame")

var (
	ErrShortFrame   = fmt.Errorf("%w: truncated frame header", ErrDecode)
	ErrUnknownKind  = fmt.Errorf("%w: unknown entry kind", ErrDecode)
	ErrEmptyPath    = fmt.Errorf("%w: empty path", ErrDecode)
	ErrPathTooLong  = fmt.Errorf("%w: path exceeds limit", ErrDecode)
	ErrAbsolutePath = fmt.Errorf("%w: absolute path", ErrDecode)
	ErrPathEscape   = fmt.Errorf("%w: parent traversal in path", ErrDecode)
	ErrInvalidPath  = fmt.Errorf("%w: invalid path bytes", ErrDecode)
)
