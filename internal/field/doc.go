// Package field samples gridded environmental data (water depth, current,
// wind) at arbitrary geographic positions.
//
// A [Grid] is a regular latitude/longitude lattice queried by bilinear
// interpolation. Queries outside the lattice clamp to the nearest edge, so
// every query inside or outside the grid returns a finite value.
//
// Fields are immutable once built and may be shared read-only by any number
// of concurrently running episodes.
package field
