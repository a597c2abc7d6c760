// Package walker enumerates a transfer root as an ordered, lazy
// sequence of entries.
//
// Ownership boundary:
// - traversal order (directories before contents, lexicographic siblings)
// - symlink and special-file skipping
//
// The walker never follows symbolic links and never buffers more than
// one directory listing per tree level.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/dirpost/internal/fsys"
	"github.com/danmuck/dirpost/internal/protocol"
)

var ErrWalk = errors.New("walker: walk failed")

type level struct {
	rel     string
	entries []fs.DirEntry
	next    int
}

// Walker yields the entries under one root in transfer order. Usage
// follows the scanner idiom:
//
//	w, err := walker.New(root)
//	for w.Next() {
//	    e := w.Entry()
//	}
//	err = w.Err()
type Walker struct {
	fs    fsys.FS
	stack []level
	cur   protocol.Entry
	err   error
}

// New starts a traversal of root. The root listing happens here, so a
// missing or unreadable root fails before anything touches the wire.
func New(root fsys.FS) (*Walker, error) {
	entries, err := root.List(".")
	if err != nil {
		return nil, fmt.Errorf("%w: list root: %v", ErrWalk, err)
	}
	return &Walker{
		fs:    root,
		stack: []level{{rel: "", entries: entries}},
	}, nil
}

// Next advances to the next entry. It returns false at the end of the
// tree or on the first error; Err distinguishes the two.
func (w *Walker) Next() bool {
	if w.err != nil {
		return false
	}
	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]
		if top.next >= len(top.entries) {
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}
		de := top.entries[top.next]
		top.next++

		rel := path.Join(top.rel, de.Name())
		switch {
		case de.Type()&fs.ModeSymlink != 0:
			log.Debug().Str("path", rel).Msg("skipping symlink")
		case de.IsDir():
			children, err := w.fs.List(rel)
			if err != nil {
				w.err = fmt.Errorf("%w: list %s: %v", ErrWalk, rel, err)
				return false
			}
			w.stack = append(w.stack, level{rel: rel, entries: children})
			w.cur = protocol.Entry{Kind: protocol.KindDirectory, Path: rel}
			return true
		case de.Type().IsRegular():
			info, err := de.Info()
			if err != nil {
				w.err = fmt.Errorf("%w: stat %s: %v", ErrWalk, rel, err)
				return false
			}
			w.cur = protocol.Entry{Kind: protocol.KindFile, Path: rel, Size: uint64(info.Size())}
			return true
		default:
			log.Debug().Str("path", rel).Str("mode", de.Type().String()).Msg("skipping special file")
		}
	}
	return false
}

// Entry reports the entry selected by the last successful Next.
func (w *Walker) Entry() protocol.Entry {
	return w.cur
}

func (w *Walker) Err() error {
	return w.err
}
