package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncAuthEvent is a no-op.
func (n *NoopRecorder) IncAuthEvent(event, outcome string) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited(route string) {}

// ObserveTransfer is a no-op.
func (n *NoopRecorder) ObserveTransfer(direction string, originalBytes int64, duration time.Duration) {}

// ObserveCompressionRatio is a no-op.
func (n *NoopRecorder) ObserveCompressionRatio(ratio float64) {}

// IncTransferFailure is a no-op.
func (n *NoopRecorder) IncTransferFailure(direction, reason string) {}
