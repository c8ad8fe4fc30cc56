package backend

import "sync/atomic"

// Sequencer numbers outgoing requests so that a response can be checked
// against the most recent one before it is applied. Responses from older
// requests are stale and must be dropped.
type Sequencer struct {
	n atomic.Uint64
}

// Next issues a new sequence number, making every earlier one stale.
func (s *Sequencer) Next() uint64 {
	return s.n.Add(1)
}

// IsLatest reports whether seq is the most recently issued number.
func (s *Sequencer) IsLatest(seq uint64) bool {
	return seq != 0 && s.n.Load() == seq
}

// Current returns the last issued number, 0 if none.
func (s *Sequencer) Current() uint64 {
	return s.n.Load()
}
