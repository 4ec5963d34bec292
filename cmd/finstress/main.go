// finstress hammers handle families from many goroutines and checks that
// every family is finalized exactly once, by its last handle, after every
// write made through any handle.
//
// Usage:
//
//	finstress                          # 100 rounds, 8 workers, 4 clones each
//	finstress -rounds 1000 -workers 32 # more of everything
//	finstress -fail 0.1                # make 10% of clones fail
//	finstress -v 1                     # log every finalization
package main

import (
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"sync/atomic"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"golang.org/x/term"
)

type config struct {
	workers int
	clones  int
	fail    float64
}

type stats struct {
	clones    atomic.Int64
	failures  atomic.Int64
	writes    atomic.Int64
	finalized atomic.Int64
}

func main() {
	roundsFlag := flag.Int("rounds", 100, "number of families")
	workersFlag := flag.Int("workers", 8, "goroutines per family")
	clonesFlag := flag.Int("clones", 4, "clones each worker makes and drops")
	failFlag := flag.Float64("fail", 0, "probability of an injected clone failure (0..1)")
	verbosityFlag := flag.Int("v", 0, "log verbosity")
	flag.Parse()

	cfg := config{workers: *workersFlag, clones: *clonesFlag, fail: *failFlag}
	if err := cfg.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	stdr.SetVerbosity(*verbosityFlag)
	log := stdr.New(stdlog.New(os.Stderr, "", stdlog.LstdFlags)).WithName("finstress")

	if err := run(*roundsFlag, cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (cfg config) validate() error {
	switch {
	case cfg.workers < 1:
		return errors.New("-workers must be at least 1")
	case cfg.clones < 0:
		return errors.New("-clones must not be negative")
	case cfg.fail < 0 || cfg.fail > 1:
		return errors.New("-fail must be within 0..1")
	}
	return nil
}

func run(rounds int, cfg config, log logr.Logger) error {
	progress := term.IsTerminal(int(os.Stdout.Fd()))

	var st stats
	for i := range rounds {
		if err := round(i, newResource(cfg), cfg, log, &st); err != nil {
			if progress {
				fmt.Println()
			}
			return fmt.Errorf("round %d: %w", i, err)
		}
		if progress {
			fmt.Printf("\rround %d/%d", i+1, rounds)
		}
	}
	if progress {
		fmt.Println()
	}

	fmt.Printf("rounds: %d, clones: %d, injected failures: %d, writes: %d, finalized: %d\n",
		rounds, st.clones.Load(), st.failures.Load(), st.writes.Load(), st.finalized.Load())
	if n := st.finalized.Load(); n != int64(rounds) {
		return fmt.Errorf("%d families finalized, want %d", n, rounds)
	}
	return nil
}
