// Package geo converts between geographic coordinates and the local planar
// frame the vessel is simulated in, and holds the angle conventions shared by
// the guidance law and the ranging sensor.
//
// Planar coordinates are UTM (north, east) in meters. Angles are measured
// clockwise from north, so a polar offset (r, angle) maps to
// east = r·sin(angle), north = r·cos(angle).
package geo
