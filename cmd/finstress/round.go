package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/dacapoday/finarc"
	"github.com/dacapoday/finarc/mem"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

const recordSize = 8

var errInjected = errors.New("injected clone failure")

// resource is a mem.File whose clones fail at random.
type resource struct {
	file mem.File
	fail float64
}

func (r resource) Clone() (resource, error) {
	if r.fail > 0 && rand.Float64() < r.fail {
		return resource{}, errInjected
	}
	file, err := r.file.Clone()
	if err != nil {
		return resource{}, err
	}
	return resource{file: file, fail: r.fail}, nil
}

func newResource(cfg config) resource {
	return resource{file: mem.New(), fail: cfg.fail}
}

// round builds one family over res, spreads it over cfg.workers goroutines
// and checks how it was finalized.
func round(id int, res resource, cfg config, log logr.Logger, st *stats) error {
	var (
		live      atomic.Int64
		writes    atomic.Int64
		finalized atomic.Int32
		finErr    error
	)

	root := finarc.New(res, func(r *resource) error {
		finalized.Add(1)
		if n := live.Load(); n != 0 {
			finErr = fmt.Errorf("finalized with %d handles still open", n)
		} else if n, err := countRecords(&r.file); err != nil {
			finErr = err
		} else if n != writes.Load() {
			finErr = fmt.Errorf("finalizer sees %d records, %d were written", n, writes.Load())
		}
		return r.file.Close()
	},
		finarc.WithLogger(log),
		finarc.WithName(fmt.Sprintf("round-%d", id)),
		finarc.WithLeakCheck(),
	)
	live.Add(1)

	var (
		eg       errgroup.Group
		cloneErr error
	)
	for w := range cfg.workers {
		h, err := root.Clone()
		if err != nil {
			if !errors.Is(err, errInjected) {
				cloneErr = err
				break
			}
			st.failures.Add(1)
			continue
		}
		live.Add(1)
		st.clones.Add(1)

		eg.Go(func() (err error) {
			defer func() {
				live.Add(-1)
				if cerr := h.Close(); err == nil {
					err = cerr
				}
			}()
			for c := range cfg.clones {
				tmp, err := h.Clone()
				if err != nil {
					if !errors.Is(err, errInjected) {
						return err
					}
					st.failures.Add(1)
					continue
				}
				live.Add(1)
				st.clones.Add(1)

				var rec [recordSize]byte
				binary.LittleEndian.PutUint64(rec[:], uint64(w*cfg.clones+c+1))
				if _, err := tmp.Get().file.WriteAt(rec[:], int64(w*cfg.clones+c)*recordSize); err != nil {
					return err
				}
				writes.Add(1)

				live.Add(-1)
				if err := tmp.Close(); err != nil {
					return err
				}
			}
			return nil
		})
	}

	live.Add(-1)
	closeErr := root.Close()
	if err := errors.Join(cloneErr, closeErr, eg.Wait()); err != nil {
		return err
	}

	switch n := finalized.Load(); {
	case n != 1:
		return fmt.Errorf("finalizer ran %d times", n)
	case finErr != nil:
		return finErr
	}
	st.writes.Add(writes.Load())
	st.finalized.Add(1)
	return nil
}

// countRecords counts the non-empty records in file.
func countRecords(file *mem.File) (n int64, err error) {
	buf := make([]byte, file.Size())
	if len(buf) > 0 {
		if _, err = file.ReadAt(buf, 0); err != nil {
			return
		}
	}
	for off := 0; off+recordSize <= len(buf); off += recordSize {
		if binary.LittleEndian.Uint64(buf[off:]) != 0 {
			n++
		}
	}
	return
}
