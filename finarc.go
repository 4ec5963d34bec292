// Copyright 2026 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package finarc provides Handle, a shared-ownership wrapper for values whose
// copies all stand for one underlying resource.
//
// Every Handle owns its own copy of the value, so Get hands out mutable
// access without any locking. Handles cloned from one construction form a
// family that shares a live count and a finalizer. The finalizer runs exactly
// once, on the goroutine that closes the last live handle, with that handle's
// copy of the value.
//
// It fits values that are cheap to clone and internally synchronized but
// carry a non-idempotent Close, such as a client built from shared locks:
//
//	conn := finarc.NewCopy(client, func(c *Client) error { return c.Close() })
//	defer conn.Close()
//
//	worker, err := conn.Clone()
//	if err != nil {
//		return err
//	}
//	go serve(worker) // serve closes its handle when done
//
// A Handle is owned by one goroutine at a time. Different handles of a
// family may be cloned and closed concurrently.
package finarc

import (
	"runtime"
	"sync/atomic"
)

// Finalizer releases the resource behind a family.
// It receives the value of the last handle closed.
type Finalizer[T any] func(val *T) error

// Cloner is implemented by values that know how to copy themselves.
type Cloner[T any] interface {
	Clone() (T, error)
}

// Handle is one owner's view of a shared resource.
//
// Zero value is closed. Create handles with New, NewFunc, NewCopy or Clone.
type Handle[T any] struct {
	val T
	ctl atomic.Pointer[control[T]]

	cleanup runtime.Cleanup
	tracked bool
}

// New returns the first handle of a family, cloning val with its Clone method.
//
// fin may be nil when there is nothing to release.
func New[T Cloner[T]](val T, fin Finalizer[T], opts ...Option) *Handle[T] {
	return newFamily(val, func(v T) (T, error) { return v.Clone() }, fin, opts)
}

// NewFunc returns the first handle of a family, cloning val with clone.
func NewFunc[T any](val T, clone func(T) (T, error), fin Finalizer[T], opts ...Option) *Handle[T] {
	if clone == nil {
		panic("finarc.NewFunc: nil clone")
	}
	return newFamily(val, clone, fin, opts)
}

// NewCopy returns the first handle of a family whose clones are plain Go
// copies of val.
//
// Suitable when T is a bundle of pointers to internally synchronized state.
func NewCopy[T any](val T, fin Finalizer[T], opts ...Option) *Handle[T] {
	return newFamily(val, copyValue[T], fin, opts)
}

func copyValue[T any](v T) (T, error) {
	return v, nil
}

// Get returns the handle's own value for reading and writing.
// The pointer is valid until the handle is closed.
func (h *Handle[T]) Get() *T {
	assertOpen("finarc.Get", h)
	return &h.val
}

// Value returns a copy of the handle's value.
func (h *Handle[T]) Value() T {
	assertOpen("finarc.Value", h)
	return h.val
}

// Count returns the number of live handles in the family.
// Returns 0 once this handle is closed.
func (h *Handle[T]) Count() int64 {
	ctl := h.ctl.Load()
	if ctl == nil {
		return 0
	}
	return ctl.live.Load()
}

// Closed reports whether the handle was closed or unwrapped.
func (h *Handle[T]) Closed() bool {
	return h.ctl.Load() == nil
}

// Clone returns a new handle of the same family holding a clone of this
// handle's value.
//
// The live count is raised before the value is cloned and lowered again if
// cloning fails or panics, so a failed Clone leaves the family unchanged.
// Returns ErrClosed if the handle is closed.
func (h *Handle[T]) Clone() (*Handle[T], error) {
	ctl := h.ctl.Load()
	if ctl == nil {
		return nil, ErrClosed
	}
	return ctl.clone(h)
}

// Close drops the handle.
//
// When it is the last live handle of the family, Close runs the finalizer
// with this handle's value and returns its error. The finalizer is consumed
// whether it fails or not. A panicking finalizer is not recovered.
// Returns ErrClosed if the handle is already closed.
func (h *Handle[T]) Close() error {
	ctl := h.ctl.Swap(nil)
	if ctl == nil {
		return ErrClosed
	}
	h.untrack()
	defer h.clear()
	return ctl.drop(h)
}

// TryUnwrap takes the value out of the last live handle of a family
// without running the finalizer. The handle is closed afterwards.
//
// Returns ErrShared, leaving the handle untouched, while other handles of
// the family are alive, and ErrClosed if the handle is closed.
func (h *Handle[T]) TryUnwrap() (val T, err error) {
	ctl := h.ctl.Load()
	if ctl == nil {
		err = ErrClosed
		return
	}
	if !ctl.live.ReleaseLast() {
		err = ErrShared
		return
	}
	h.ctl.Store(nil)
	h.untrack()
	ctl.fin.Take()

	val = h.val
	h.clear()
	return
}

func (h *Handle[T]) clear() {
	var nilVal T
	h.val = nilVal
}
