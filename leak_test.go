package finarc

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/require"
)

// logSink collects log lines without blocking the caller.
func logSink(verbosity int) (logr.Logger, <-chan string) {
	lines := make(chan string, 64)
	log := funcr.New(func(prefix, args string) {
		select {
		case lines <- args:
		default:
		}
	}, funcr.Options{Verbosity: verbosity})
	return log, lines
}

func leakHandle(log logr.Logger) {
	a := NewCopy(1, nil, WithLogger(log), WithName("leaky"), WithLeakCheck())
	b, _ := a.Clone()
	b.Close()
	// a is dropped without Close
}

func TestLeakCheck(t *testing.T) {
	log, lines := logSink(0)
	leakHandle(log)

	deadline := time.After(5 * time.Second)
	for {
		runtime.GC()
		select {
		case line := <-lines:
			require.Contains(t, line, `"msg"="handle became unreachable without Close"`)
			require.Contains(t, line, `"family"="leaky"`)
			require.Contains(t, line, "leakHandle", "report carries the creating stack")
			return
		case <-deadline:
			t.Fatal("leak not reported")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestLeakCheckClosed(t *testing.T) {
	log, lines := logSink(0)
	func() {
		a := NewCopy(1, nil, WithLogger(log), WithLeakCheck())
		b, err := a.Clone()
		require.NoError(t, err)
		require.NoError(t, b.Close())
		require.NoError(t, a.Close())

		c := NewCopy(2, nil, WithLogger(log), WithLeakCheck())
		_, err = c.TryUnwrap()
		require.NoError(t, err)
	}()

	for range 5 {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	select {
	case line := <-lines:
		t.Fatalf("closed handle reported: %s", line)
	default:
	}
}

func TestLogFinalize(t *testing.T) {
	log, lines := logSink(1)
	a := NewCopy("x", func(*string) error { return ErrShared }, WithLogger(log), WithName("amqp"))
	b, err := a.Clone()
	require.NoError(t, err)
	require.NoError(t, a.Close())
	require.Empty(t, lines)

	require.ErrorIs(t, b.Close(), ErrShared)
	require.Len(t, lines, 2)

	finalizing := <-lines
	require.Contains(t, finalizing, `"msg"="finalizing"`)
	require.Contains(t, finalizing, `"family"="amqp"`)

	failed := <-lines
	require.True(t, strings.Contains(failed, `"msg"="finalizer failed"`), failed)
	require.Contains(t, failed, `"error"="shared"`)
}
