package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/tankersim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// Defaults match the usual RK45 tolerances of scientific ODE suites.
const (
	DefaultRelTol   = 1e-3
	DefaultAbsTol   = 1e-6
	DefaultMinDt    = 1e-9
	DefaultMaxSteps = 10000
)

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64

	RelTol   float64
	AbsTol   float64
	MinDt    float64
	MaxSteps int
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		RelTol:   DefaultRelTol,
		AbsTol:   DefaultAbsTol,
		MinDt:    DefaultMinDt,
		MaxSteps: DefaultMaxSteps,
	}
}

// NewRK45WithTolerance returns a solver with the given relative and absolute
// error tolerances.
func NewRK45WithTolerance(rtol, atol float64) *RK45 {
	r := NewRK45()
	if rtol > 0 {
		r.RelTol = rtol
	}
	if atol > 0 {
		r.AbsTol = atol
	}
	return r
}

// Solve integrates dyn from t0 to t1 with step size control, returning the
// state at t1. The input state is never modified.
func (r *RK45) Solve(dyn dynamo.System, x0 dynamo.State, u dynamo.Control, t0, t1 float64) (dynamo.State, error) {
	span := t1 - t0
	x := x0.Clone()
	if span <= 0 {
		return x, nil
	}

	t := t0
	h := span
	for steps := 0; ; steps++ {
		if steps >= r.MaxSteps {
			return nil, fmt.Errorf("after %d steps at t=%.4f: %w", steps, t, dynamo.ErrTooManySteps)
		}
		if t+h > t1 {
			h = t1 - t
		}

		xNew, errRatio := r.attempt(dyn, x, u, t, h, r.RelTol, r.AbsTol)
		if !xNew.IsValid() || math.IsNaN(errRatio) || math.IsInf(errRatio, 0) {
			h *= r.minScale
			if h < r.MinDt {
				return nil, fmt.Errorf("at t=%.4f: %w", t, dynamo.ErrIntegrationFailure)
			}
			continue
		}

		if errRatio > 1 {
			h *= r.scaleFor(errRatio)
			if h < r.MinDt {
				return nil, fmt.Errorf("at t=%.4f: %w", t, dynamo.ErrStepTooSmall)
			}
			continue
		}

		t += h
		x = xNew
		if t1-t <= 1e-12*span {
			return x, nil
		}
		h *= r.scaleFor(errRatio)
	}
}

// attempt takes one Dormand-Prince step and returns the 5th-order solution
// together with the RMS error ratio against the mixed tolerance.
func (r *RK45) attempt(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt, rtol, atol float64) (dynamo.State, float64) {
	n := len(x)

	k1 := dyn.Derive(x, u, t)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := dyn.Derive(x2, u, t+a2*dt)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := dyn.Derive(x3, u, t+a3*dt)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := dyn.Derive(x4, u, t+a4*dt)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := dyn.Derive(x5, u, t+a5*dt)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := dyn.Derive(x6, u, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := dyn.Derive(xNew, u, t+dt)

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := atol + rtol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		e := errEst / scale
		sum += e * e
	}
	if n == 0 {
		return xNew, 0
	}

	return xNew, math.Sqrt(sum / float64(n))
}

func (r *RK45) scaleFor(errRatio float64) float64 {
	if errRatio > 1 {
		return math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
	}
	if errRatio > 0 {
		return math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	}
	return r.maxScale
}
