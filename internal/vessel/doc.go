// Package vessel implements the maneuvering model of a KVLCC2 tanker after
// the MMG standard method (Yasukawa & Yoshimura, 2015).
//
// The hull, propeller, rudder and current forces are evaluated by [MMG],
// which also satisfies [dynamo.System] so any integrator in the module can
// drive it. [Vessel] owns one ship's mutable state (pose, body velocities,
// rudder angle, propeller rate) and advances it one control interval at a
// time.
//
// # Frames
//
// Position is (north, east) in meters of a planar projection, heading ψ is
// clockwise from north in [0, 2π). Body velocities (u, v, r) are surge, sway
// and yaw rate.
//
// # Environment channels
//
// [Forcing] carries current, wind and water depth. Only the current enters
// the force equations; wind and depth are accepted and passed through so the
// interface stays stable once those models exist.
package vessel
