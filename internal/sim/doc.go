// Package sim runs episodes: a [Runner] couples one environment with a
// policy, metrics and observers, and an [Ensemble] runs independent
// episodes concurrently.
package sim
