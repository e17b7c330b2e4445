package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tankersim/internal/control"
	"github.com/san-kum/tankersim/internal/dynamo"
	"github.com/san-kum/tankersim/internal/env"
	"github.com/san-kum/tankersim/internal/guidance"
	"github.com/san-kum/tankersim/internal/metrics"
	"github.com/san-kum/tankersim/internal/sim"
)

func testRoute() guidance.Route {
	r := guidance.Route{}
	for i := 0; i < 30; i++ {
		r.Lat = append(r.Lat, 56.0+0.01*float64(i))
		r.Lon = append(r.Lon, 7.4+0.002*float64(i))
	}
	return r
}

func newEnv(opts ...env.Option) *env.Env {
	e, err := env.New(env.DefaultConfig(), testRoute(), nil, opts...)
	Expect(err).NotTo(HaveOccurred())
	return e
}

type failingSolver struct{}

func (failingSolver) Solve(dynamo.System, dynamo.State, dynamo.Control, float64, float64) (dynamo.State, error) {
	return nil, dynamo.ErrStepTooSmall
}

var _ = Describe("Runner", func() {
	It("runs the requested number of steps", func() {
		r := sim.New(newEnv(), control.NewHold())
		r.AddMetric(metrics.NewCrossTrackRMS())
		r.AddMetric(metrics.NewRudderActivity())

		res, err := r.Run(context.Background(), sim.Config{Steps: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(10))
		Expect(res.Telemetry).To(HaveLen(11))
		Expect(res.Actions).To(HaveLen(10))
		Expect(res.Rewards).To(HaveLen(10))
		Expect(res.Done).To(BeFalse())
		Expect(res.Final().Time).To(BeNumerically("~", 30, 1e-9))
		Expect(res.Metrics).To(HaveKey("cross_track_rms"))
		Expect(res.Metrics["rudder_activity"]).To(BeZero())
	})

	It("rejects a non-positive step count", func() {
		r := sim.New(newEnv(), control.NewHold())
		_, err := r.Run(context.Background(), sim.Config{Steps: 0})
		Expect(err).To(HaveOccurred())
	})

	It("stops when the episode is done", func() {
		e := newEnv(
			env.WithDone(func(t env.Telemetry) bool { return t.Step >= 4 }),
			env.WithReward(func(env.Telemetry) float64 { return 1 }),
		)
		res, err := sim.New(e, control.NewHold()).Run(context.Background(), sim.Config{Steps: 100})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Done).To(BeTrue())
		Expect(res.StepsTaken).To(Equal(4))
		Expect(res.Return).To(Equal(4.0))
	})

	It("notifies observers after each step", func() {
		var seen []int
		r := sim.New(newEnv(), control.NewScript([]int{1, 1, 2}, false))
		r.AddObserver(sim.ObserverFunc(func(t env.Telemetry, a int) {
			seen = append(seen, a)
			Expect(t.Step).To(Equal(len(seen)))
		}))

		_, err := r.Run(context.Background(), sim.Config{Steps: 4})
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(Equal([]int{1, 1, 2, 0}))
	})

	It("returns the partial result on cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		r := sim.New(newEnv(), control.NewHold())
		r.AddObserver(sim.ObserverFunc(func(t env.Telemetry, _ int) {
			if t.Step == 3 {
				cancel()
			}
		}))

		res, err := r.Run(ctx, sim.Config{Steps: 50})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.StepsTaken).To(Equal(3))
	})

	It("surfaces integration failures with the step index", func() {
		r := sim.New(newEnv(env.WithSolver(failingSolver{})), control.NewHold())
		res, err := r.Run(context.Background(), sim.Config{Steps: 5})
		Expect(errors.Is(err, dynamo.ErrIntegrationFailure)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("step 0"))
		Expect(res.StepsTaken).To(BeZero())
	})

	It("restarts stateful policies between episodes", func() {
		r := sim.New(newEnv(), control.NewRandom(7))
		a, err := r.Run(context.Background(), sim.Config{Steps: 8})
		Expect(err).NotTo(HaveOccurred())
		b, err := r.Run(context.Background(), sim.Config{Steps: 8})
		Expect(err).NotTo(HaveOccurred())
		Expect(b.Actions).To(Equal(a.Actions))
		Expect(b.Final().State).To(Equal(a.Final().State))
	})
})

var _ = Describe("Ensemble", func() {
	It("runs independent members in order", func() {
		factory := func(idx int, seed int64) (*sim.Runner, error) {
			e, err := env.New(env.DefaultConfig(), testRoute(), nil)
			if err != nil {
				return nil, err
			}
			return sim.New(e, control.NewRandom(seed)), nil
		}
		ens := sim.NewEnsemble(factory, 4, 100)
		ens.Workers = 2

		results, err := ens.Run(context.Background(), sim.Config{Steps: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for i, res := range results {
			Expect(res.Seed).To(Equal(int64(100 + i)))
			Expect(res.StepsTaken).To(Equal(5))
		}
	})

	It("reports factory errors", func() {
		boom := errors.New("boom")
		factory := func(idx int, seed int64) (*sim.Runner, error) {
			if idx == 1 {
				return nil, boom
			}
			e, err := env.New(env.DefaultConfig(), testRoute(), nil)
			if err != nil {
				return nil, err
			}
			return sim.New(e, control.NewHold()), nil
		}
		_, err := sim.NewEnsemble(factory, 3, 0).Run(context.Background(), sim.Config{Steps: 2})
		Expect(err).To(MatchError(boom))
	})
})
