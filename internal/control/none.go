package control

import (
	"math/rand"

	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/vessel"
)

// Hold keeps the rudder where it is.
type Hold struct{}

func NewHold() *Hold { return &Hold{} }

func (h *Hold) Act(env.Observation, env.Telemetry) int { return vessel.ActionHold }

// Random draws actions uniformly from a seeded source.
type Random struct {
	seed int64
	rng  *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Act(env.Observation, env.Telemetry) int {
	return r.rng.Intn(3)
}

// Reset restarts the sequence so episodes are reproducible.
func (r *Random) Reset() {
	r.rng = rand.New(rand.NewSource(r.seed))
}
