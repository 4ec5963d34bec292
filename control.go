// Copyright 2026 dacapoday
// SPDX-License-Identifier: Apache-2.0

package finarc

import (
	"errors"
	"fmt"

	"github.com/dacapoday/finarc/internal/atom"
)

var errFinalized = errors.New("finarc: finalizer already consumed")

// control is shared by every handle of a family.
type control[T any] struct {
	live  atom.Counter
	fin   atom.Slot[Finalizer[T]]
	dup   func(T) (T, error)
	options
}

func newFamily[T any](val T, clone func(T) (T, error), fin Finalizer[T], opts []Option) *Handle[T] {
	ctl := &control[T]{
		dup:     clone,
		options: newOptions(opts),
	}
	ctl.live.Init(1)
	ctl.fin.Put(fin)
	return ctl.attach(val)
}

func (ctl *control[T]) attach(val T) *Handle[T] {
	h := &Handle[T]{val: val}
	h.ctl.Store(ctl)
	if ctl.leakCheck {
		h.track(ctl.log)
	}
	return h
}

func (ctl *control[T]) clone(h *Handle[T]) (clone *Handle[T], err error) {
	ctl.live.Acquire()
	defer func() {
		if clone == nil {
			// h is still live, so this never reaches zero.
			ctl.live.Release()
		}
	}()

	val, err := ctl.dup(h.val)
	if err != nil {
		err = fmt.Errorf("finarc.Clone: %w", err)
		return
	}
	clone = ctl.attach(val)
	return
}

func (ctl *control[T]) drop(h *Handle[T]) (err error) {
	if ctl.live.Release() > 0 {
		return
	}

	fin, ok := ctl.fin.Take()
	if !ok {
		panic(errFinalized)
	}
	ctl.log.V(1).Info("finalizing")
	if fin == nil {
		return
	}
	if err = fin(&h.val); err != nil {
		ctl.log.Error(err, "finalizer failed")
		err = fmt.Errorf("finarc.Close: %w", err)
	}
	return
}
