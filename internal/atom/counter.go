// Copyright 2026 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package atom provides the lock-free primitives shared by a handle family:
// a live counter and a slot whose value can be taken once.
package atom

import (
	"errors"
	"sync/atomic"
)

var (
	errRevived   = errors.New("atom: acquire on a released counter")
	errUnderflow = errors.New("atom: release below zero")
)

// Counter is an atomic count of live references.
//
// Zero value counts nothing. Call Init before sharing it.
// Acquire on a counter that already reached zero and Release below zero
// are misuse and panic.
type Counter struct {
	n atomic.Int64
}

// Init sets the initial count. Not safe to call once the counter is shared.
func (c *Counter) Init(n int64) {
	c.n.Store(n)
}

// Load returns the current count.
func (c *Counter) Load() int64 {
	return c.n.Load()
}

// Acquire adds one reference and returns the new count.
// The caller must already hold a reference.
func (c *Counter) Acquire() int64 {
	n := c.n.Add(1)
	if n <= 1 {
		panic(errRevived)
	}
	return n
}

// Release drops one reference and returns the remaining count.
// Exactly one caller observes 0.
func (c *Counter) Release() int64 {
	n := c.n.Add(-1)
	if n < 0 {
		panic(errUnderflow)
	}
	return n
}

// ReleaseLast drops the caller's reference only if it is the sole one.
// Reports whether the count moved from 1 to 0.
func (c *Counter) ReleaseLast() bool {
	return c.n.CompareAndSwap(1, 0)
}
