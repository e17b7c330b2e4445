package integrators

import (
	"fmt"

	"github.com/san-kum/tankersim/internal/dynamo"
)

// DefaultSubsteps is the number of RK4 substeps taken per Solve interval.
const DefaultSubsteps = 6

// RK4 is the classic fixed-step fourth order Runge-Kutta method. It keeps
// scratch buffers and must not be shared between goroutines.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State

	Substeps int
}

func NewRK4() *RK4 {
	return &RK4{Substeps: DefaultSubsteps}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	k1 := dyn.Derive(x, u, t)
	copy(r.k1, k1)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	k2 := dyn.Derive(r.scratch, u, t+dt*0.5)
	copy(r.k2, k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	k3 := dyn.Derive(r.scratch, u, t+dt*0.5)
	copy(r.k3, k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	k4 := dyn.Derive(r.scratch, u, t+dt)
	copy(r.k4, k4)

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}

// Solve splits [t0, t1] into Substeps equal RK4 steps.
func (r *RK4) Solve(dyn dynamo.System, x0 dynamo.State, u dynamo.Control, t0, t1 float64) (dynamo.State, error) {
	x := x0.Clone()
	if t1 <= t0 {
		return x, nil
	}

	n := r.Substeps
	if n < 1 {
		n = 1
	}
	h := (t1 - t0) / float64(n)
	t := t0
	for i := 0; i < n; i++ {
		x = r.Step(dyn, x, u, t, h)
		t += h
		if !x.IsValid() {
			return nil, fmt.Errorf("substep %d at t=%.4f: %w", i, t, dynamo.ErrIntegrationFailure)
		}
	}
	return x, nil
}
