package host

// random.go implements RANDOM: a full 64-bit random word written to r1.

import (
	"context"
	"math/rand"

	"github.com/nicobert/rvm/internal/vm"
)

// Random services the RANDOM interrupt from a seeded source, so a caller can reproduce
// a run by fixing the seed.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random seeded from seed. Use time.Now().UnixNano() for a
// non-deterministic run.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

// Register installs this Random's handler on h.
func (r *Random) Register(h *Host) {
	h.Register(vm.Random, r.random)
}

func (r *Random) random(_ context.Context, p *vm.Processor) error {
	p.Regs[vm.R1] = vm.Word(r.rng.Uint64())
	setError(p, vm.NoError)

	return nil
}
