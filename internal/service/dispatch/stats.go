package dispatch

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats holds the dispatcher's process-wide counters. They reset on
// restart and live apart from the pipeline logic so the pipeline stays
// testable without a monitoring subsystem attached.
type Stats struct {
	received  atomic.Int64
	processed atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64

	windowMu    sync.Mutex
	windowStart time.Time
	windowCount int64
}

// MarkAlert counts one recorded alert in the rolling minute window and
// returns the window's running total, feeding the alerts-per-minute
// gauge. The window resets when a full minute has passed since it
// opened.
func (s *Stats) MarkAlert(now time.Time) int64 {
	s.windowMu.Lock()
	defer s.windowMu.Unlock()

	if now.Sub(s.windowStart) >= time.Minute {
		s.windowStart = now
		s.windowCount = 0
	}
	s.windowCount++
	return s.windowCount
}

// Snapshot is a point-in-time copy for the statistics endpoint.
type Snapshot struct {
	Received  int64   `json:"recibidos"`
	Processed int64   `json:"procesados"`
	Rejected  int64   `json:"rechazados"`
	Failed    int64   `json:"fallidos"`
	ErrorRate float64 `json:"tasa_error"`
}

func (s *Stats) Snapshot() Snapshot {
	received := s.received.Load()
	failed := s.failed.Load()
	rejected := s.rejected.Load()

	var rate float64
	if received > 0 {
		rate = float64(failed+rejected) / float64(received) * 100
	}

	return Snapshot{
		Received:  received,
		Processed: s.processed.Load(),
		Rejected:  rejected,
		Failed:    failed,
		ErrorRate: rate,
	}
}
