// Package dynamo provides the numerical primitives shared by the vessel
// model and the integrators.
//
// The package defines:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Solver]: integrates a system over one control interval
//
// together with the error taxonomy used across the simulator.
//
// # Example
//
//	model := vessel.NewMMG(vessel.DefaultKVLCC2())
//	solver := integrators.NewRK45()
//	x1, err := solver.Solve(model, x0, u, 0, 3.0)
//
// # Thread Safety
//
// State values are plain slices. Callers own them; integrators never retain
// the slices they are given.
package dynamo
