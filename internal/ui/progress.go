// Package ui renders transfer progress for interactive runs.
package ui

import (
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/danmuck/dirpost/internal/engine"
)

// Bar renders one progress bar per transferred file.
type Bar struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

var _ engine.Progress = (*Bar)(nil)

func NewBar(out io.Writer) *Bar {
	return &Bar{out: out}
}

func (b *Bar) FileStart(path string, size uint64) {
	b.closeCurrent()
	b.bar = progressbar.NewOptions64(int64(size),
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionSetDescription(path),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (b *Bar) AddBytes(n int) {
	if b.bar != nil {
		_ = b.bar.Add(n)
	}
}

func (b *Bar) Finish() {
	b.closeCurrent()
}

func (b *Bar) closeCurrent() {
	if b.bar != nil {
		_ = b.bar.Finish()
		b.bar = nil
	}
}
