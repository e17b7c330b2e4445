// Package metrics accumulates per-episode scores from step telemetry.
package metrics
