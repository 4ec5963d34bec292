// Copyright 2026 dacapoday
// SPDX-License-Identifier: Apache-2.0

package finarc

import (
	"cmp"
	"fmt"
)

// Equal reports whether two handles hold equal values.
// Families and finalizers are not compared.
func Equal[T comparable](a, b *Handle[T]) bool {
	return a.val == b.val
}

// Compare orders two handles by their values.
func Compare[T cmp.Ordered](a, b *Handle[T]) int {
	return cmp.Compare(a.val, b.val)
}

// Format prints the handle's value with the same verb and flags,
// so a handle prints exactly like what it holds.
func (h *Handle[T]) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, fmt.FormatString(f, verb), h.val)
}
