// Package engine drives one directory transfer over an established
// channel.
//
// Ownership boundary:
// - sender loop: walk, frame, stream payload, sentinel
// - receiver loop: frame, materialize, exact-length payload reads
// - session-fatal error taxonomy (ErrIO / ErrTruncated)
//
// The engine owns the session state for the duration of a transfer and
// never retries: every error aborts the whole session.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/dirpost/internal/fsys"
	"github.com/danmuck/dirpost/internal/protocol"
	"github.com/danmuck/dirpost/internal/transport"
	"github.com/danmuck/dirpost/internal/walker"
)

// chunkSize bounds one payload read/write. It is internal bookkeeping:
// chunk boundaries are invisible on the wire, so either side may use a
// different value without breaking interoperability.
const chunkSize = 32 * 1024

var (
	ErrIO        = errors.New("engine: local file failure")
	ErrTruncated = errors.New("engine: truncated transfer")
)

// Config assembles one engine over an established session.
type Config struct {
	Stream *transport.Stream
	Root   fsys.FS
	// Progress receives per-file transfer updates. Optional.
	Progress Progress
}

// Engine executes the send or receive half of a transfer. One engine
// serves exactly one session.
type Engine struct {
	stream   *transport.Stream
	root     fsys.FS
	progress Progress
}

func New(cfg Config) *Engine {
	p := cfg.Progress
	if p == nil {
		p = NopProgress{}
	}
	return &Engine{stream: cfg.Stream, root: cfg.Root, progress: p}
}

// Send walks the root and emits every entry followed by the terminal
// sentinel. Local read failures abort the session; there is no
// partial-entry retry.
func (e *Engine) Send(ctx context.Context) error {
	w, err := walker.New(e.root)
	if err != nil {
		return err
	}

	var dirs, files int
	var payload uint64
	buf := make([]byte, chunkSize)
	for w.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := w.Entry()
		if err := e.stream.WriteFrame(entry); err != nil {
			return err
		}
		switch entry.Kind {
		case protocol.KindDirectory:
			dirs++
		case protocol.KindFile:
			log.Debug().Str("path", entry.Path).Uint64("size", entry.Size).Msg("sending file")
			if err := e.sendFile(entry, buf); err != nil {
				return err
			}
			files++
			payload += entry.Size
		}
	}
	if err := w.Err(); err != nil {
		return err
	}

	if err := e.stream.WriteFrame(protocol.Sentinel()); err != nil {
		return err
	}
	e.progress.Finish()
	log.Info().Int("dirs", dirs).Int("files", files).Uint64("bytes", payload).Msg("transfer sent")
	return nil
}

// sendFile streams exactly entry.Size bytes. The size was captured at
// walk time; a file that shrank underneath the walker surfaces as an
// ErrIO short read rather than a malformed stream.
func (e *Engine) sendFile(entry protocol.Entry, buf []byte) error {
	f, err := e.root.OpenRead(entry.Path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrIO, entry.Path, err)
	}
	defer f.Close()

	e.progress.FileStart(entry.Path, entry.Size)
	remaining := entry.Size
	for remaining > 0 {
		n := uint64(len(buf))
		if remaining < n {
			n = remaining
		}
		if _, err := io.ReadFull(f, buf[:n]); err != nil {
			return fmt.Errorf("%w: read %s: %v", ErrIO, entry.Path, err)
		}
		if err := e.stream.WriteBytes(buf[:n]); err != nil {
			return err
		}
		remaining -= n
		e.progress.AddBytes(int(n))
	}
	return nil
}

// Receive materializes frames under the root until the sentinel
// arrives. A channel close before a declared payload completes is
// fatal; the partially written file stays on disk as-is.
func (e *Engine) Receive(ctx context.Context) error {
	var dirs, files int
	var payload uint64
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := e.stream.ReadFrame()
		if err != nil {
			return err
		}
		switch entry.Kind {
		case protocol.KindSentinel:
			e.progress.Finish()
			log.Info().Int("dirs", dirs).Int("files", files).Uint64("bytes", payload).Msg("transfer received")
			return nil
		case protocol.KindDirectory:
			if err := e.root.Mkdir(entry.Path); err != nil {
				return fmt.Errorf("%w: mkdir %s: %v", ErrIO, entry.Path, err)
			}
			dirs++
		case protocol.KindFile:
			log.Debug().Str("path", entry.Path).Uint64("size", entry.Size).Msg("writing file")
			if err := e.receiveFile(entry, buf); err != nil {
				return err
			}
			files++
			payload += entry.Size
		}
	}
}

func (e *Engine) receiveFile(entry protocol.Entry, buf []byte) error {
	f, err := e.root.CreateTruncate(entry.Path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, entry.Path, err)
	}

	e.progress.FileStart(entry.Path, entry.Size)
	remaining := entry.Size
	for remaining > 0 {
		n := uint64(len(buf))
		if remaining < n {
			n = remaining
		}
		if err := e.stream.ReadExact(buf[:n]); err != nil {
			f.Close()
			if errors.Is(err, transport.ErrShortRead) {
				return fmt.Errorf("%w: %s: channel closed with %d of %d bytes pending", ErrTruncated, entry.Path, remaining, entry.Size)
			}
			return err
		}
		if _, err := f.Write(buf[:n]); err != nil {
			f.Close()
			return fmt.Errorf("%w: write %s: %v", ErrIO, entry.Path, err)
		}
		remaining -= n
		e.progress.AddBytes(int(n))
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, entry.Path, err)
	}
	return nil
}
