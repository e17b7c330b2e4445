// Package control provides rudder policies that drive an episode.
//
// A policy maps the latest observation and telemetry to one discrete action:
// hold, starboard or port. Continuous controllers compute a rudder command
// and move the rudder toward it one rate-limited increment at a time.
//
//   - [Hold]: never moves the rudder
//   - [Manual]: replays a script or an externally set action
//   - [Random]: uniform random actions, seeded
//   - [PID]: course keeping on the course error
//   - [Linear]: state feedback on the normalized observation
//
// Policies implementing [Tunable] support live adjustment.
package control
