package analysis

import (
	"fmt"

	"github.com/san-kum/tankersim/internal/dynamo"
	"github.com/san-kum/tankersim/internal/vessel"
)

// SpiralPoint is the steady yaw rate reached with a fixed rudder angle.
type SpiralPoint struct {
	Rudder  float64 // [rad]
	YawRate float64 // [rad/s], mean over the record window
	Speed   float64 // [m/s], mean over the record window
}

// SpiralTest sweeps the rudder from -max to +max in steps points and records
// the steady turning response. Each point starts from a straight run at the
// speed nps gives in calm water and settles for transient seconds before
// averaging over record seconds.
func SpiralTest(
	p vessel.Params,
	solver dynamo.Solver,
	nps float64,
	steps int,
	dt, transient, record float64,
) ([]SpiralPoint, error) {
	if steps < 2 {
		return nil, fmt.Errorf("analysis: spiral test needs at least 2 points, got %d", steps)
	}
	if dt <= 0 || record < dt {
		return nil, fmt.Errorf("analysis: invalid timing dt=%v record=%v", dt, record)
	}

	opts := []vessel.Option{vessel.WithDt(dt)}
	if solver != nil {
		opts = append(opts, vessel.WithSolver(solver))
	}
	v, err := vessel.New(p, opts...)
	if err != nil {
		return nil, err
	}
	u0 := v.SpeedFromPropellerRate(nps, 0, vessel.Forcing{})

	results := make([]SpiralPoint, 0, steps)
	step := 2 * p.RudderMax / float64(steps-1)

	for i := 0; i < steps; i++ {
		rudder := -p.RudderMax + float64(i)*step
		v.Reset(vessel.State{U: u0}, nps)
		v.Rudder = rudder

		// let the turn settle
		for t := 0.0; t < transient; t += dt {
			if err := v.Step(vessel.Forcing{}); err != nil {
				return results, fmt.Errorf("analysis: rudder %.4f: %w", rudder, err)
			}
		}

		var r, u float64
		n := 0
		for t := 0.0; t < record; t += dt {
			if err := v.Step(vessel.Forcing{}); err != nil {
				return results, fmt.Errorf("analysis: rudder %.4f: %w", rudder, err)
			}
			r += v.State.R
			u += v.Speed()
			n++
		}

		results = append(results, SpiralPoint{
			Rudder:  rudder,
			YawRate: r / float64(n),
			Speed:   u / float64(n),
		})
	}

	return results, nil
}
