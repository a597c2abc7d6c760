package protocol

import "fmt"

// Version is the wire protocol revision. Bump on any frame layout change.
const Version = 1

// Kind tags one metadata frame on the wire.
type Kind uint8

const (
	KindDirectory Kind = 0
	KindFile      Kind = 1
	KindSentinel  Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindSentinel:
		return "sentinel"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Entry is one filesystem object scheduled for transfer.
//
// Path is slash-separated and relative to the transfer root on both
// sides, regardless of the local separator. Size is meaningful only
// for KindFile.
type Entry struct {
	Kind Kind
	Path string
	Size uint64
}

// Sentinel is the frame marking clean end-of-transfer.
func Sentinel() Entry {
	return Entry{Kind: KindSentinel}
}
