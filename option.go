// Copyright 2026 dacapoday
// SPDX-License-Identifier: Apache-2.0

package finarc

import "github.com/go-logr/logr"

// Option configures a handle family at construction.
type Option func(*options)

type options struct {
	log       logr.Logger
	name      string
	leakCheck bool
}

func newOptions(opts []Option) (o options) {
	o.log = logr.Discard()
	for _, opt := range opts {
		opt(&o)
	}
	if o.name != "" {
		o.log = o.log.WithValues("family", o.name)
	}
	return
}

// WithLogger sets the logger the family reports finalization,
// finalizer failures and leaked handles to.
// Default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithName names the family in log entries.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLeakCheck reports handles that become unreachable without Close.
//
// A leaked handle keeps its family alive forever, so the finalizer never
// runs. The report carries the stack that created the handle.
// Reporting is all it does: the count is not touched.
func WithLeakCheck() Option {
	return func(o *options) { o.leakCheck = true }
}
