//go:build debug

package finarc

// assertOpen panics if h is closed.
// Only enabled with -tags debug.
func assertOpen[T any](method string, h *Handle[T]) {
	if h.ctl.Load() == nil {
		panic(method + ": handle closed")
	}
}
