// Package memspace provides in-memory linear space for object store tests.
package memspace

import (
	"fmt"
	"slices"
)

// Space is a growable in-memory byte space. Written data becomes durable on
// FlushDirty, Crash discards everything written after the last flush.
type Space struct {
	mem     []byte
	durable []byte
	dirty   bool
	flushes int
}

// New returns empty Space.
func New() *Space {
	return new(Space)
}

func (s *Space) grow(end uint64) {
	if uint64(len(s.mem)) < end {
		s.mem = append(s.mem, make([]byte, end-uint64(len(s.mem)))...)
	}
}

// Read implements objstore.Space.
func (s *Space) Read(off uint64, p []byte) error {
	if off+uint64(len(p)) < off {
		return fmt.Errorf("read %d bytes at %d: overflow", len(p), off)
	}
	s.grow(off + uint64(len(p)))
	copy(p, s.mem[off:])
	return nil
}

// Write implements objstore.Space.
func (s *Space) Write(off uint64, p []byte) error {
	if off+uint64(len(p)) < off {
		return fmt.Errorf("write %d bytes at %d: overflow", len(p), off)
	}
	s.grow(off + uint64(len(p)))
	copy(s.mem[off:], p)
	s.dirty = true
	return nil
}

// FlushDirty implements objstore.Space.
func (s *Space) FlushDirty() (bool, error) {
	if !s.dirty {
		return false, nil
	}
	s.durable = slices.Clone(s.mem)
	s.dirty = false
	s.flushes++
	return true, nil
}

// Flushes returns the number of flushes that persisted something.
func (s *Space) Flushes() int {
	return s.flushes
}

// Crash returns a new Space containing only the flushed data.
func (s *Space) Crash() *Space {
	return &Space{
		mem:     slices.Clone(s.durable),
		durable: slices.Clone(s.durable),
	}
}
