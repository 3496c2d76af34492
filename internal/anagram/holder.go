package anagram

import "sync/atomic"

// Holder publishes the current Engine. A dictionary change builds a new
// Engine off to the side and swaps it in whole; queries already running keep
// the Engine they loaded.
type Holder struct {
	current atomic.Pointer[Engine]
}

func NewHolder(e *Engine) *Holder {
	h := &Holder{}
	h.current.Store(e)
	return h
}

// Load returns the current Engine, or nil if none was published yet.
func (h *Holder) Load() *Engine {
	return h.current.Load()
}

// Swap publishes e and returns the Engine it replaced.
func (h *Holder) Swap(e *Engine) *Engine {
	return h.current.Swap(e)
}
