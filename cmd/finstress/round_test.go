package main

import (
	"testing"

	"github.com/dacapoday/finarc/mem"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	var st stats
	cfg := config{workers: 8, clones: 4}
	for i := range 20 {
		require.NoError(t, round(i, newResource(cfg), cfg, logr.Discard(), &st))
	}
	require.EqualValues(t, 20, st.finalized.Load())
	require.EqualValues(t, 20*8*5, st.clones.Load())
	require.EqualValues(t, 20*8*4, st.writes.Load())
	require.Zero(t, st.failures.Load())
}

func TestRoundInjectedFailures(t *testing.T) {
	var st stats
	cfg := config{workers: 8, clones: 8, fail: 0.5}
	for i := range 20 {
		require.NoError(t, round(i, newResource(cfg), cfg, logr.Discard(), &st))
	}
	require.EqualValues(t, 20, st.finalized.Load())
	require.Positive(t, st.failures.Load())
	require.Less(t, st.writes.Load(), st.clones.Load(), "worker handles write nothing")
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, config{workers: 1}.validate())
	require.Error(t, config{workers: 0}.validate())
	require.Error(t, config{workers: 1, clones: -1}.validate())
	require.Error(t, config{workers: 1, fail: 1.5}.validate())
}

func TestRoundBrokenResource(t *testing.T) {
	var st stats
	res := newResource(config{})
	require.NoError(t, res.file.Close())

	// every clone fails for real; the family must still be dropped
	err := round(0, res, config{workers: 4, clones: 2}, logr.Discard(), &st)
	require.ErrorIs(t, err, mem.ErrClosed)
	require.Zero(t, st.clones.Load())
	require.Zero(t, st.finalized.Load())
}
