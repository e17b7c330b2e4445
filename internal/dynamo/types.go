package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Control is the input vector held constant over one integration interval.
type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Solver integrates a system over a whole interval [t0, t1] and reports
// failure instead of returning a diverged state.
type Solver interface {
	Solve(dyn System, x0 State, u Control, t0, t1 float64) (State, error)
}
