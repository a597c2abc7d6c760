package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestBarRendersFileProgress(t *testing.T) {
	var out bytes.Buffer
	bar := NewBar(&out)
	bar.FileStart("a/b.txt", 10)
	bar.AddBytes(4)
	bar.AddBytes(6)
	bar.Finish()

	if !strings.Contains(out.String(), "a/b.txt") {
		t.Fatalf("expected file path in output, got %q", out.String())
	}
}

func TestBarFinishWithoutFiles(t *testing.T) {
	var out bytes.Buffer
	bar := NewBar(&out)
	// Empty-tree transfer: Finish arrives with no FileStart.
	bar.Finish()
	bar.AddBytes(3)
}
