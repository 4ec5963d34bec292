// Copyright 2026 dacapoday
// SPDX-License-Identifier: Apache-2.0

package atom

import "sync/atomic"

// Slot holds a value that can be taken at most once.
//
// Zero value is empty.
type Slot[V any] struct {
	p atomic.Pointer[V]
}

// Put fills the slot. Not safe to call once the slot is shared.
func (s *Slot[V]) Put(v V) {
	s.p.Store(&v)
}

// Take empties the slot and returns its value.
// Of all concurrent callers, only one gets ok == true.
func (s *Slot[V]) Take() (v V, ok bool) {
	p := s.p.Swap(nil)
	if p == nil {
		return
	}
	return *p, true
}

// Empty reports whether the value was already taken (or never put).
func (s *Slot[V]) Empty() bool {
	return s.p.Load() == nil
}
