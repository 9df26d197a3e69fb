package testutil

import (
	"bytes"
	"context"
	"math/rand"
	"sync"

	"github.com/roach88/stabsim/internal/chp"
	"github.com/roach88/stabsim/internal/ir"
	"github.com/roach88/stabsim/internal/outcome"
	"github.com/roach88/stabsim/internal/simerr"
	"github.com/roach88/stabsim/internal/tableau"
)

// FakeRunner simulates shots in process with the reference tableau, going
// through the same encode and parse path as a real simulator process.
//
// Shots are serialized on an internal mutex, so each shot consumes a
// contiguous run of the seeded random stream. For programs whose shots all
// draw the same number of random bits, the aggregate counts are independent
// of worker scheduling.
//
// Thread-safety: FakeRunner is safe for concurrent use.
type FakeRunner struct {
	mu    sync.Mutex
	rng   *rand.Rand
	calls int
	fail  func(call int) error
}

// NewFakeRunner returns a runner whose measurement outcomes are drawn from a
// stream seeded with seed.
func NewFakeRunner(seed int64) *FakeRunner {
	return &FakeRunner{rng: rand.New(rand.NewSource(seed))}
}

// FailWith installs a hook consulted before every shot with the 1-based call
// number. A non-nil result is returned instead of running the shot.
func (f *FakeRunner) FailWith(fn func(call int) error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fn
	return f
}

// Calls returns how many shots have been requested.
func (f *FakeRunner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// RunShot implements chp.Runner.
func (f *FakeRunner) RunShot(ctx context.Context, p *ir.Program, payload []byte) (outcome.Shot, error) {
	if err := ctx.Err(); err != nil {
		return outcome.Shot{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.fail != nil {
		if err := f.fail(f.calls); err != nil {
			return outcome.Shot{}, err
		}
	}

	if payload == nil {
		payload = chp.Encode(p)
	}
	var out bytes.Buffer
	if err := tableau.Execute(bytes.NewReader(payload), &out, f.rng); err != nil {
		return outcome.Shot{}, simerr.Wrap(simerr.CodeSimulatorExecution, err, "fake simulator failed")
	}
	return chp.ParseOutput(&out, p.Measured)
}

var _ chp.Runner = (*FakeRunner)(nil)
