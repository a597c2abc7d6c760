package engine

// Progress receives transfer updates from either half of the engine.
// Implementations must tolerate a Finish without any FileStart (the
// empty-tree transfer).
type Progress interface {
	FileStart(path string, size uint64)
	AddBytes(n int)
	Finish()
}

// NopProgress discards all updates.
type NopProgress struct{}

func (NopProgress) FileStart(string, uint64) {}

func (NopProgress) AddBytes(int) {}

func (NopProgress) Finish() {}
