// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Auth event names.
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventLogout   = "logout"
	EventVerify   = "verify"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth gate metrics
	IncAuthEvent(event, outcome string)
	IncRateLimited(route string)

	// Transfer metrics. direction is "upload" or "download".
	ObserveTransfer(direction string, originalBytes int64, duration time.Duration)
	ObserveCompressionRatio(ratio float64)
	IncTransferFailure(direction, reason string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
