// Package env steps a single tanker along a desired path and produces one
// normalized observation per control interval.
//
// An [Env] is idle until [Env.Reset] places the vessel at the start of the
// route (training) or at a fixed validation position. Each [Env.Step] applies
// one discrete rudder action, samples the environment at the vessel
// position, integrates the dynamics, advances the active path segment,
// recomputes guidance and sweeps the depth sensor.
//
// An Env is not safe for concurrent use. The route and environment fields it
// reads are never modified and may be shared between Envs.
package env
