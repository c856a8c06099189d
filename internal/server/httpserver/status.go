package httpserver

import (
	"sync/atomic"
	"time"
)

// Snapshot is one build report. Snapshots are never modified once
// published.
type Snapshot struct {
	Valid       bool      `json:"valid"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Contexts    []string  `json:"contexts"`
	Error       string    `json:"error,omitempty"`
	ErrorCode   string    `json:"error_code,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Config is the built configuration, already redacted. It is only
	// served from the last valid snapshot.
	Config map[string]any `json:"-"`
}

// Status holds the latest snapshot and the last valid one. It is safe for
// concurrent use: one publisher, any number of readers.
type Status struct {
	current atomic.Pointer[Snapshot]
	good    atomic.Pointer[Snapshot]
}

// Publish makes snap the current snapshot, and the last valid one when
// snap.Valid is set.
func (s *Status) Publish(snap *Snapshot) {
	if snap == nil {
		return
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	if snap.Valid {
		s.good.Store(snap)
	}
	s.current.Store(snap)
}

// Current returns the latest snapshot, or nil before the first Publish.
func (s *Status) Current() *Snapshot {
	return s.current.Load()
}

// LastValid returns the most recent valid snapshot, or nil if no build
// has succeeded yet.
func (s *Status) LastValid() *Snapshot {
	return s.good.Load()
}
