//go:build !debug

package finarc

// assertOpen is a no-op in production.
// Enable with -tags debug for runtime checks.
func assertOpen[T any](string, *Handle[T]) {}
