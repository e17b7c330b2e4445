package env

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/tankersim/internal/dynamo"
	"github.com/san-kum/tankersim/internal/field"
	"github.com/san-kum/tankersim/internal/geo"
	"github.com/san-kum/tankersim/internal/guidance"
	"github.com/san-kum/tankersim/internal/sensor"
	"github.com/san-kum/tankersim/internal/vessel"
)

var (
	ErrNotReset   = errors.New("env: step before reset")
	ErrTerminated = errors.New("env: episode terminated")
)

type Status int

const (
	Idle Status = iota
	Running
	Terminated
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

type Mode int

const (
	Train Mode = iota
	Validate
)

func (m Mode) String() string {
	if m == Validate {
		return "validate"
	}
	return "train"
}

// ParseMode accepts "train" and "validate".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "train":
		return Train, nil
	case "validate":
		return Validate, nil
	}
	return Train, fmt.Errorf("env: unknown mode %q", s)
}

// LatLon is a geographic position in degrees.
type LatLon struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

type ResetOptions struct {
	Mode Mode

	// Start overrides the mode's start position.
	Start *LatLon

	// Heading [rad], zero (north) when nil.
	Heading *float64
}

type (
	RewardFunc func(Telemetry) float64
	DoneFunc   func(Telemetry) bool
)

// ProjectorFunc picks the planar frame for an episode starting at (lat, lon).
type ProjectorFunc func(lat, lon float64) (geo.Projector, error)

func utmProjector(lat, lon float64) (geo.Projector, error) {
	return geo.UTMFor(lat, lon)
}

type Option func(*Env)

func WithLogger(l zerolog.Logger) Option { return func(e *Env) { e.log = l } }

func WithReward(f RewardFunc) Option { return func(e *Env) { e.reward = f } }

func WithDone(f DoneFunc) Option { return func(e *Env) { e.done = f } }

// WithProjector replaces the UTM zone of the start position as the episode
// frame.
func WithProjector(f ProjectorFunc) Option { return func(e *Env) { e.projector = f } }

func WithSolver(s dynamo.Solver) Option { return func(e *Env) { e.solver = s } }

type Env struct {
	cfg         Config
	route       guidance.Route
	environment *field.Environment

	vessel  *vessel.Vessel
	sensor  *sensor.Sensor
	solver  dynamo.Solver
	proj    geo.Projector
	path    *guidance.Path
	tracker *guidance.Tracker

	status Status
	steps  int
	time   float64
	obs    Observation
	telem  Telemetry

	projector ProjectorFunc
	reward    RewardFunc
	done      DoneFunc
	log       zerolog.Logger
}

// New prepares an idle environment. The environment fields default to deep,
// calm water when nil.
func New(cfg Config, route guidance.Route, environment *field.Environment, opts ...Option) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(route.Lat) != len(route.Lon) {
		return nil, fmt.Errorf("env: route has %d latitudes and %d longitudes", len(route.Lat), len(route.Lon))
	}
	if route.Len() < 2 {
		return nil, guidance.ErrPathTooShort
	}
	if environment == nil {
		environment = field.CalmEnvironment()
	}

	e := &Env{
		cfg:         cfg,
		route:       route,
		environment: environment,
		projector:   utmProjector,
		reward:      func(Telemetry) float64 { return 0 },
		done:        func(Telemetry) bool { return false },
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	vopts := []vessel.Option{vessel.WithDt(cfg.Dt)}
	if e.solver != nil {
		vopts = append(vopts, vessel.WithSolver(e.solver))
	}
	v, err := vessel.New(cfg.Vessel, vopts...)
	if err != nil {
		return nil, err
	}
	s, err := sensor.New(cfg.Sensor)
	if err != nil {
		return nil, err
	}
	e.vessel = v
	e.sensor = s
	return e, nil
}

// Reset starts a new episode and returns the initial observation.
func (e *Env) Reset(opts ResetOptions) (Observation, error) {
	start := LatLon{Lat: e.route.Lat[0], Lon: e.route.Lon[0]}
	if opts.Mode == Validate {
		start = LatLon{Lat: ValidationLat, Lon: ValidationLon}
	}
	if opts.Start != nil {
		start = *opts.Start
	}

	// the frame is fixed for the whole episode, even if the vessel leaves
	// the zone
	proj, err := e.projector(start.Lat, start.Lon)
	if err != nil {
		return nil, fmt.Errorf("env: reset: %w", err)
	}
	path, err := e.route.Project(proj)
	if err != nil {
		return nil, fmt.Errorf("env: reset: %w", err)
	}

	var psi float64
	if opts.Heading != nil {
		psi = *opts.Heading
	}
	north, east := proj.ToPlanar(start.Lat, start.Lon)
	sample := e.environment.At(start.Lat, start.Lon)
	u := e.vessel.SpeedFromPropellerRate(e.cfg.Nps, psi, forcingOf(sample))
	e.vessel.Reset(vessel.State{North: north, East: east, Psi: psi, U: u}, e.cfg.Nps)

	e.proj = proj
	e.path = path
	e.tracker = guidance.NewTracker(path, guidance.Point{North: north, East: east}, e.cfg.Gain)
	e.steps = 0
	e.time = 0
	e.status = Running

	e.observe(start, sample)

	wp1, _ := e.tracker.Index()
	e.log.Debug().
		Str("mode", opts.Mode.String()).
		Float64("lat", start.Lat).
		Float64("lon", start.Lon).
		Str("frame", fmt.Sprint(proj)).
		Float64("path_m", path.Length()).
		Float64("u", u).
		Int("wp1", wp1).
		Msg("episode reset")

	return e.obs.Clone(), nil
}

// Step advances one control interval with a discrete rudder action. On error
// the vessel and the active segment are left as they were before the call.
func (e *Env) Step(action int) (Observation, float64, bool, error) {
	switch e.status {
	case Idle:
		return nil, 0, false, ErrNotReset
	case Terminated:
		return nil, 0, false, ErrTerminated
	}

	rudder := e.vessel.Rudder
	if err := e.vessel.ApplyControl(action); err != nil {
		return nil, 0, false, err
	}

	st := e.vessel.State
	lat, lon := e.proj.ToLatLon(st.North, st.East)
	sample := e.environment.At(lat, lon)

	if err := e.vessel.Step(forcingOf(sample)); err != nil {
		e.vessel.Rudder = rudder
		var simErr *dynamo.SimulationError
		if errors.As(err, &simErr) {
			simErr.Step = e.steps
			simErr.Time = e.time
		}
		e.log.Warn().Err(err).Int("step", e.steps).Msg("integration failed")
		return nil, 0, false, err
	}

	st = e.vessel.State
	pos := guidance.Point{North: st.North, East: st.East}
	if e.tracker.Update(pos) {
		wp1, wp2 := e.tracker.Index()
		e.log.Debug().Int("step", e.steps).Int("wp1", wp1).Int("wp2", wp2).Msg("waypoint switch")
	}

	e.steps++
	e.time += e.cfg.Dt

	lat, lon = e.proj.ToLatLon(st.North, st.East)
	e.observe(LatLon{Lat: lat, Lon: lon}, e.environment.At(lat, lon))

	r := e.reward(e.telem)
	done := e.done(e.telem)
	if done {
		e.status = Terminated
		e.log.Debug().Int("step", e.steps).Float64("time", e.time).Msg("episode terminated")
	}
	return e.obs.Clone(), r, done, nil
}

// observe recomputes guidance, sensor and observation for the current
// vessel state at pos.
func (e *Env) observe(pos LatLon, sample field.Sample) {
	st := e.vessel.State
	g := e.tracker.Guidance(guidance.Point{North: st.North, East: st.East})
	reading := e.sensor.Sense(st.North, st.East, st.Psi, e.environment.Depth, e.proj)
	closeness := e.sensor.Closeness(reading.Distances)

	p := e.vessel.Params()
	e.obs = assemble(st, e.vessel.NuDot.R, e.vessel.Rudder, p.RudderMax, g, p.Lpp, closeness)

	wp1, wp2 := e.tracker.Index()
	e.telem = Telemetry{
		Step:        e.steps,
		Time:        e.time,
		Lat:         pos.Lat,
		Lon:         pos.Lon,
		State:       st,
		Rudder:      e.vessel.Rudder,
		Nps:         e.vessel.Nps,
		Env:         sample,
		Guidance:    g,
		Course:      e.vessel.Course(),
		CourseError: geo.AngleToPi(g.DesiredCourse - e.vessel.Course()),
		WP1:         wp1,
		WP2:         wp2,
		Reading:     reading,
	}
}

func forcingOf(s field.Sample) vessel.Forcing {
	return vessel.Forcing{
		CurrentSpeed: s.CurrentSpeed,
		CurrentAngle: s.CurrentAngle,
		WindSpeed:    s.WindSpeed,
		WindAngle:    s.WindAngle,
		Depth:        s.Depth,
	}
}

func (e *Env) Status() Status { return e.status }
func (e *Env) Steps() int     { return e.steps }
func (e *Env) Time() float64  { return e.time }
func (e *Env) Config() Config { return e.cfg }

// Vessel exposes the simulated ship. Callers must not modify it between
// steps.
func (e *Env) Vessel() *vessel.Vessel { return e.vessel }

// Path is the route projected into the episode frame, nil before Reset.
func (e *Env) Path() *guidance.Path { return e.path }

// Projector is the episode frame, nil before Reset.
func (e *Env) Projector() geo.Projector { return e.proj }

// Observation returns a copy of the latest observation.
func (e *Env) Observation() Observation { return e.obs.Clone() }

// Snapshot returns the latest telemetry. The zero value is returned before
// the first Reset.
func (e *Env) Snapshot() Telemetry {
	t := e.telem
	t.Reading = sensor.Reading{
		Distances: append([]float64(nil), e.telem.Reading.Distances...),
		Hits:      append([]sensor.Hit(nil), e.telem.Reading.Hits...),
	}
	return t
}
