// Package guidance steers a vessel along a polyline of waypoints with
// vector-field guidance (VFG).
//
// [Compute] turns the active segment and the vessel position into a signed
// cross-track error and a desired course. [Tracker] owns the active segment
// of a [Path] and advances it as the vessel passes waypoints.
//
// Cross-track error is positive when the vessel is to starboard of the path
// direction; the desired course then turns back to port.
package guidance
