package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AuthEvents       map[string]uint64 // "event/outcome" -> count
	RateLimited      map[string]uint64
	Uploads          uint64
	Downloads        uint64
	BytesUploaded    int64
	BytesDownloaded  int64
	RatioCount       uint64
	RatioSum         float64
	TransferFailures map[string]uint64 // "direction/reason" -> count
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{snap: Snapshot{
		AuthEvents:       make(map[string]uint64),
		RateLimited:      make(map[string]uint64),
		TransferFailures: make(map[string]uint64),
	}}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.snap
	s.AuthEvents = copyCounts(m.snap.AuthEvents)
	s.RateLimited = copyCounts(m.snap.RateLimited)
	s.TransferFailures = copyCounts(m.snap.TransferFailures)
	return s
}

// IncAuthEvent counts an auth gate outcome.
func (m *InMemoryRecorder) IncAuthEvent(event, outcome string) {
	m.mu.Lock()
	m.snap.AuthEvents[event+"/"+outcome]++
	m.mu.Unlock()
}

// IncRateLimited counts a rejected request.
func (m *InMemoryRecorder) IncRateLimited(route string) {
	m.mu.Lock()
	m.snap.RateLimited[route]++
	m.mu.Unlock()
}

// ObserveTransfer records a completed transfer.
func (m *InMemoryRecorder) ObserveTransfer(direction string, originalBytes int64, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch direction {
	case "upload":
		m.snap.Uploads++
		m.snap.BytesUploaded += originalBytes
	case "download":
		m.snap.Downloads++
		m.snap.BytesDownloaded += originalBytes
	}
}

// ObserveCompressionRatio records an upload's ratio.
func (m *InMemoryRecorder) ObserveCompressionRatio(ratio float64) {
	m.mu.Lock()
	m.snap.RatioCount++
	m.snap.RatioSum += ratio
	m.mu.Unlock()
}

// IncTransferFailure counts a failed transfer.
func (m *InMemoryRecorder) IncTransferFailure(direction, reason string) {
	m.mu.Lock()
	m.snap.TransferFailures[direction+"/"+reason]++
	m.mu.Unlock()
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
