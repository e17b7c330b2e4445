package vessel

import (
	"fmt"
	"math"

	"github.com/san-kum/tankersim/internal/dynamo"
	"github.com/san-kum/tankersim/internal/geo"
	"github.com/san-kum/tankersim/internal/integrators"
)

// DefaultDt is the control interval [s].
const DefaultDt = 3.0

// Discrete rudder actions.
const (
	ActionHold = iota
	ActionStarboard
	ActionPort
)

// State is the vessel pose and body velocities.
type State struct {
	North float64 // [m]
	East  float64 // [m]
	Psi   float64 // heading [rad], [0, 2π)
	U     float64 // surge [m/s]
	V     float64 // sway [m/s]
	R     float64 // yaw rate [rad/s]
}

func (s State) Vector() dynamo.State {
	return dynamo.State{s.North, s.East, s.Psi, s.U, s.V, s.R}
}

func StateFromVector(x dynamo.State) State {
	return State{North: x[IdxNorth], East: x[IdxEast], Psi: x[IdxPsi], U: x[IdxU], V: x[IdxV], R: x[IdxR]}
}

// Acceleration is the body acceleration averaged over the last step.
type Acceleration struct {
	U, V, R float64
}

// Vessel is one ship with its actuators. It is not safe for concurrent use.
type Vessel struct {
	State  State
	Rudder float64 // [rad], clamped to ±RudderMax
	Nps    float64 // propeller revolutions [1/s]
	NuDot  Acceleration
	Dt     float64

	model  *MMG
	solver dynamo.Solver
}

type Option func(*Vessel)

// WithSolver replaces the default Dormand-Prince solver.
func WithSolver(s dynamo.Solver) Option {
	return func(v *Vessel) { v.solver = s }
}

func WithDt(dt float64) Option {
	return func(v *Vessel) {
		if dt > 0 {
			v.Dt = dt
		}
	}
}

func New(p Params, opts ...Option) (*Vessel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	v := &Vessel{
		Dt:     DefaultDt,
		model:  NewMMG(p),
		solver: integrators.NewRK45(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *Vessel) Model() *MMG    { return v.model }
func (v *Vessel) Params() Params { return v.model.p }

// ApplyControl moves the rudder by one rate-limited increment.
func (v *Vessel) ApplyControl(action int) error {
	p := &v.model.p
	switch action {
	case ActionHold:
	case ActionStarboard:
		v.Rudder += p.RudderRate * v.Dt
	case ActionPort:
		v.Rudder -= p.RudderRate * v.Dt
	default:
		return fmt.Errorf("%w: %d", dynamo.ErrInvalidAction, action)
	}
	v.Rudder = clamp(v.Rudder, -p.RudderMax, p.RudderMax)
	return nil
}

// Step integrates one control interval under f. On failure the vessel is
// left exactly as it was.
func (v *Vessel) Step(f Forcing) error {
	next, err := v.model.Integrate(v.solver, v.State, v.Rudder, v.Nps, f, v.Dt)
	if err != nil {
		return err
	}
	v.NuDot = Acceleration{
		U: (next.U - v.State.U) / v.Dt,
		V: (next.V - v.State.V) / v.Dt,
		R: (next.R - v.State.R) / v.Dt,
	}
	v.State = next
	return nil
}

// Integrate advances s over [0, dt] with constant inputs. Position is solved
// as an offset from s so the solver tolerance applies to the distance
// travelled rather than to absolute map coordinates.
func (m *MMG) Integrate(solver dynamo.Solver, s State, rudder, nps float64, f Forcing, dt float64) (State, error) {
	x0 := s.Vector()
	x0[IdxNorth], x0[IdxEast] = 0, 0

	x, err := solver.Solve(m, x0, ControlVector(rudder, nps, f), 0, dt)
	if err == nil && !x.IsValid() {
		err = dynamo.ErrInvalidState
	}
	if err != nil {
		return s, &dynamo.SimulationError{
			Time:    dt,
			State:   s.Vector(),
			Wrapped: fmt.Errorf("%w: %w", dynamo.ErrIntegrationFailure, err),
		}
	}

	next := StateFromVector(x)
	next.North += s.North
	next.East += s.East
	next.Psi = geo.AngleTo2Pi(next.Psi)
	return next, nil
}

const (
	speedBracket  = 5.0  // initial upper bound [m/s]
	speedExpand   = 8    // bracket doublings
	bisectionIter = 60   // fixed, no convergence test
	npsMax        = 20.0 // [1/s]
)

// SpeedFromPropellerRate returns the steady surge speed at which thrust
// balances resistance for the given propeller rate, with zero sway, yaw and
// rudder. The current at the vessel position enters through f.
func (v *Vessel) SpeedFromPropellerRate(nps, psi float64, f Forcing) float64 {
	surge := func(u float64) float64 {
		x := dynamo.State{0, 0, psi, u, 0, 0}
		return v.model.Derivative(x, 0, nps, f)[IdxU]
	}

	if !(surge(0) > 0) {
		return 0
	}
	hi := speedBracket
	for i := 0; i < speedExpand && surge(hi) > 0; i++ {
		hi *= 2
	}
	return bisect(surge, 0, hi)
}

// NpsFromSpeed is the inverse of [Vessel.SpeedFromPropellerRate] in calm
// water: the propeller rate that holds surge speed u.
func (v *Vessel) NpsFromSpeed(u float64) float64 {
	if u <= 0 {
		return 0
	}
	speed := func(nps float64) float64 {
		return v.SpeedFromPropellerRate(nps, 0, Forcing{}) - u
	}
	if speed(npsMax) < 0 {
		return npsMax
	}
	return bisect(speed, 0, npsMax)
}

// bisect finds the sign change of a function that is positive at lo and
// negative at hi, or returns the best estimate when it never changes sign.
func bisect(g func(float64) float64, lo, hi float64) float64 {
	gLo := g(lo)
	for i := 0; i < bisectionIter; i++ {
		mid := 0.5 * (lo + hi)
		gm := g(mid)
		if gm == 0 {
			return mid
		}
		if (gm > 0) == (gLo > 0) {
			lo, gLo = mid, gm
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// midshipSway is the sway velocity at midship, v - x_G·r.
func (v *Vessel) midshipSway() float64 {
	return v.State.V - v.model.p.XG*v.State.R
}

// Speed is the aggregated speed √(u² + v_m²) with v_m the midship sway [m/s].
func (v *Vessel) Speed() float64 {
	return math.Hypot(v.State.U, v.midshipSway())
}

// Sideslip is the drift angle atan2(-v_m, u) at midship [rad], the same
// angle β the hull forces are evaluated at.
func (v *Vessel) Sideslip() float64 {
	vm := v.midshipSway()
	if v.State.U == 0 && vm == 0 {
		return 0
	}
	return math.Atan2(-vm, v.State.U)
}

// Course is heading plus sideslip in [0, 2π).
func (v *Vessel) Course() float64 {
	return geo.AngleTo2Pi(v.State.Psi + v.Sideslip())
}

// Reset places the vessel at s with the rudder amidships.
func (v *Vessel) Reset(s State, nps float64) {
	s.Psi = geo.AngleTo2Pi(s.Psi)
	v.State = s
	v.Nps = nps
	v.Rudder = 0
	v.NuDot = Acceleration{}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
