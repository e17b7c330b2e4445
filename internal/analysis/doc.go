// Package analysis evaluates recorded and simulated voyages.
//
//   - [PowerSpectrum] and [DominantPeriod]: oscillations of heading, rudder
//     or cross-track error, e.g. a hunting autopilot
//   - [SpiralTest]: steady yaw rate against rudder angle
//   - [Turning]: advance, transfer and tactical diameter of a turn
//   - [TrackToASCII]: terminal plot of a track
package analysis
