package dag

import "time"

// Result holds the outcome of a run.
type Result struct {
	// RunID identifies the run in logs and spans.
	RunID string
	// Ticks is the number of completed ticks.
	Ticks int
	// Waves lists element names per wave, in execution order.
	Waves [][]string
	// Duration is the wall time of the run.
	Duration time.Duration
	// Elements holds per-element counters keyed by element name.
	Elements map[string]ElementStats
}

// ElementStats counts what the scheduler did with one element.
type ElementStats struct {
	Invocations int64         `json:"invocations"`
	Skips       int64         `json:"skips"`
	Duration    time.Duration `json:"duration_ns"`
}
