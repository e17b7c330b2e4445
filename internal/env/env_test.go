package env_test

import (
	"errors"
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tankersim/internal/dynamo"
	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/field"
	"github.com/san-kum/tankersim/internal/geo"
	"github.com/san-kum/tankersim/internal/guidance"
	"github.com/san-kum/tankersim/internal/sensor"
	"github.com/san-kum/tankersim/internal/vessel"
)

// northbound is a straight route of n waypoints 0.01° apart.
func northbound(n int) guidance.Route {
	r := guidance.Route{Lat: make([]float64, n), Lon: make([]float64, n)}
	for i := 0; i < n; i++ {
		r.Lat[i] = 56.0 + 0.01*float64(i)
		r.Lon[i] = 7.4
	}
	return r
}

type brokenSolver struct{}

func (brokenSolver) Solve(dynamo.System, dynamo.State, dynamo.Control, float64, float64) (dynamo.State, error) {
	return nil, dynamo.ErrStepTooSmall
}

var _ = Describe("Env", func() {
	var (
		cfg   env.Config
		route guidance.Route
		e     *env.Env
	)

	BeforeEach(func() {
		cfg = env.DefaultConfig()
		route = northbound(40)
	})

	JustBeforeEach(func() {
		var err error
		e, err = env.New(cfg, route, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("rejects a route with a single waypoint", func() {
			_, err := env.New(cfg, northbound(1), nil)
			Expect(err).To(MatchError(guidance.ErrPathTooShort))
		})

		It("rejects invalid config", func() {
			bad := env.DefaultConfig()
			bad.Dt = 0
			_, err := env.New(bad, route, nil)
			Expect(err).To(HaveOccurred())
		})

		It("starts idle", func() {
			Expect(e.Status()).To(Equal(env.Idle))
			_, _, _, err := e.Step(0)
			Expect(err).To(MatchError(env.ErrNotReset))
		})
	})

	Describe("Reset", func() {
		It("starts a training episode at the route start", func() {
			obs, err := e.Reset(env.ResetOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status()).To(Equal(env.Running))
			Expect(obs).To(HaveLen(env.ObsCloseness + sensor.DefaultBeams))

			snap := e.Snapshot()
			Expect(snap.Lat).To(BeNumerically("~", route.Lat[0], 1e-6))
			Expect(snap.Lon).To(BeNumerically("~", route.Lon[0], 1e-6))
			Expect(snap.Step).To(Equal(0))
			Expect(snap.WP1).To(Equal(0))
			Expect(snap.WP2).To(Equal(1))
			Expect(snap.State.U).To(BeNumerically(">", 0))
			Expect(snap.State.V).To(BeZero())
			Expect(snap.State.R).To(BeZero())
			Expect(snap.Guidance.CrossTrack).To(BeNumerically("~", 0, 1e-6))

			Expect(obs[env.ObsU]).To(BeNumerically("~", snap.State.U/env.ScaleU, 1e-12))
			Expect(obs[env.ObsRudder]).To(BeZero())
			Expect(obs[env.ObsCourse]).To(BeNumerically("~", snap.Guidance.DesiredCourse/math.Pi, 1e-12))
		})

		It("starts a validation episode at the fixed position", func() {
			_, err := e.Reset(env.ResetOptions{Mode: env.Validate})
			Expect(err).NotTo(HaveOccurred())

			snap := e.Snapshot()
			Expect(snap.Lat).To(BeNumerically("~", env.ValidationLat, 1e-6))
			Expect(snap.Lon).To(BeNumerically("~", env.ValidationLon, 1e-6))
		})

		It("honours an explicit start and heading", func() {
			heading := 1.0
			start := env.LatLon{Lat: 56.105, Lon: 7.41}
			_, err := e.Reset(env.ResetOptions{Start: &start, Heading: &heading})
			Expect(err).NotTo(HaveOccurred())

			snap := e.Snapshot()
			Expect(snap.State.Psi).To(Equal(heading))
			Expect(snap.Lat).To(BeNumerically("~", 56.105, 1e-6))
			Expect(snap.WP1).To(Equal(10))
		})

		It("clears a terminated episode", func() {
			e, _ = env.New(cfg, route, nil, env.WithDone(func(env.Telemetry) bool { return true }))
			_, err := e.Reset(env.ResetOptions{})
			Expect(err).NotTo(HaveOccurred())
			_, _, done, err := e.Step(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeTrue())
			Expect(e.Status()).To(Equal(env.Terminated))

			_, _, _, err = e.Step(0)
			Expect(err).To(MatchError(env.ErrTerminated))

			_, err = e.Reset(env.ResetOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status()).To(Equal(env.Running))
			Expect(e.Steps()).To(Equal(0))
		})
	})

	Describe("Step", func() {
		JustBeforeEach(func() {
			_, err := e.Reset(env.ResetOptions{})
			Expect(err).NotTo(HaveOccurred())
		})

		It("advances time and the step counter", func() {
			for i := 0; i < 3; i++ {
				_, r, done, err := e.Step(0)
				Expect(err).NotTo(HaveOccurred())
				Expect(r).To(BeZero())
				Expect(done).To(BeFalse())
			}
			Expect(e.Steps()).To(Equal(3))
			Expect(e.Time()).To(BeNumerically("~", 3*cfg.Dt, 1e-12))
			Expect(e.Snapshot().Step).To(Equal(3))
		})

		It("rejects unknown actions without side effects", func() {
			before := e.Snapshot()
			_, _, _, err := e.Step(7)
			Expect(errors.Is(err, dynamo.ErrInvalidAction)).To(BeTrue())
			Expect(e.Steps()).To(Equal(0))
			Expect(e.Vessel().State).To(Equal(before.State))
			Expect(e.Vessel().Rudder).To(BeZero())
		})

		It("keeps the rudder within its limits", func() {
			p := cfg.Vessel
			actions := []int{1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 0, 1}
			for _, a := range actions {
				obs, _, _, err := e.Step(a)
				Expect(err).NotTo(HaveOccurred())
				Expect(math.Abs(e.Vessel().Rudder)).To(BeNumerically("<=", p.RudderMax))
				Expect(math.Abs(obs[env.ObsRudder])).To(BeNumerically("<=", 1))
			}
		})

		It("renders a status report", func() {
			_, _, _, err := e.Step(0)
			Expect(err).NotTo(HaveOccurred())
			s := e.Snapshot().String()
			Expect(s).To(ContainSubstring("Step: 1"))
			Expect(strings.Count(s, "\n")).To(Equal(7))
			Expect(s).To(ContainSubstring("CTE [m]"))
		})

		It("switches waypoints as the vessel passes them", func() {
			heading := e.Snapshot().Guidance.PathBearing
			_, err := e.Reset(env.ResetOptions{Heading: &heading})
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 150; i++ {
				_, _, _, err := e.Step(0)
				Expect(err).NotTo(HaveOccurred())
			}
			snap := e.Snapshot()
			Expect(snap.WP1).To(BeNumerically(">=", 1))
			Expect(snap.WP2).To(Equal(snap.WP1 + 1))
		})
	})

	Context("on the path at 5 m/s in calm water", func() {
		BeforeEach(func() {
			v, err := vessel.New(cfg.Vessel)
			Expect(err).NotTo(HaveOccurred())
			cfg.Nps = v.NpsFromSpeed(5)
		})

		It("moves about 15 m along the path in one step", func() {
			_, err := e.Reset(env.ResetOptions{})
			Expect(err).NotTo(HaveOccurred())
			bearing := e.Snapshot().Guidance.PathBearing

			_, err = e.Reset(env.ResetOptions{Heading: &bearing})
			Expect(err).NotTo(HaveOccurred())
			start := e.Snapshot()
			Expect(start.State.U).To(BeNumerically("~", 5, 1e-3))
			Expect(start.Guidance.CrossTrack).To(BeNumerically("~", 0, 1e-6))

			_, _, _, err = e.Step(0)
			Expect(err).NotTo(HaveOccurred())
			end := e.Snapshot()

			dN := end.State.North - start.State.North
			dE := end.State.East - start.State.East
			Expect(math.Hypot(dN, dE)).To(BeNumerically("~", 15, 0.5))
			Expect(geo.AngleToPi(math.Atan2(dE, dN) - bearing)).To(BeNumerically("~", 0, 1e-3))
			Expect(end.Guidance.CrossTrack).To(BeNumerically("~", 0, 0.05))
			Expect(math.Abs(end.State.Psi - start.State.Psi)).To(BeNumerically("<", 1e-3))
		})
	})

	Context("in shallow water", func() {
		It("reports closeness on every beam", func() {
			var err error
			shallow := field.NewEnvironment(field.Constant(5), nil, nil)
			e, err = env.New(cfg, route, shallow)
			Expect(err).NotTo(HaveOccurred())

			obs, err := e.Reset(env.ResetOptions{})
			Expect(err).NotTo(HaveOccurred())

			step := cfg.Sensor.Range / float64(cfg.Sensor.Samples)
			want := sensor.Closeness(step, cfg.Sensor.Range)
			for _, c := range obs.Closeness() {
				Expect(c).To(BeNumerically("~", want, 1e-12))
			}
		})
	})

	Context("with current", func() {
		It("stays finite and drifts with the current", func() {
			var err error
			drift := field.NewEnvironment(nil, field.Uniform(0.5, math.Pi/2), nil)
			e, err = env.New(cfg, route, drift)
			Expect(err).NotTo(HaveOccurred())

			_, err = e.Reset(env.ResetOptions{})
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 20; i++ {
				obs, _, _, err := e.Step(0)
				Expect(err).NotTo(HaveOccurred())
				Expect(dynamo.State(obs).IsValid()).To(BeTrue())
			}
			snap := e.Snapshot()
			Expect(snap.Env.CurrentSpeed).To(BeNumerically("~", 0.5, 1e-12))
		})
	})

	Context("when integration fails", func() {
		It("leaves the episode unchanged", func() {
			var err error
			e, err = env.New(cfg, route, nil, env.WithSolver(brokenSolver{}))
			Expect(err).NotTo(HaveOccurred())
			_, err = e.Reset(env.ResetOptions{})
			Expect(err).NotTo(HaveOccurred())
			before := e.Snapshot()

			_, _, _, err = e.Step(1)
			Expect(errors.Is(err, dynamo.ErrIntegrationFailure)).To(BeTrue())
			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(0))

			Expect(e.Vessel().State).To(Equal(before.State))
			Expect(e.Vessel().Rudder).To(BeZero())
			Expect(e.Steps()).To(Equal(0))
			Expect(e.Status()).To(Equal(env.Running))
		})
	})

	Context("with hooks", func() {
		It("passes reward through", func() {
			var err error
			e, err = env.New(cfg, route, nil, env.WithReward(func(t env.Telemetry) float64 {
				return -math.Abs(t.Guidance.CrossTrack)
			}))
			Expect(err).NotTo(HaveOccurred())
			_, err = e.Reset(env.ResetOptions{})
			Expect(err).NotTo(HaveOccurred())

			_, r, _, err := e.Step(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(r).To(Equal(-math.Abs(e.Snapshot().Guidance.CrossTrack)))
		})
	})
})
