// Package accuracy implements movement-accuracy tracking for mechanical
// watches: timestamped readings of the second hand against a reference clock,
// dynamic pairing of baseline and drift readings, and the derived drift
// statistics in seconds per day.
package accuracy

import (
	"time"

	"github.com/google/uuid"
)

// validSecondsPositions lists the quarter-minute marks a reading may record.
var validSecondsPositions = [...]int{0, 15, 30, 45}

// Reading is one observation of a watch's second-hand alignment against the
// reference clock. An initial reading asserts the watch was perfectly synced
// at that instant; a subsequent reading measures drift against the most
// recent initial before it.
type Reading struct {
	ID                   uuid.UUID `json:"id"`
	WatchID              uuid.UUID `json:"watch_id"`
	ReferenceTime        time.Time `json:"reference_time"`
	WatchSecondsPosition int       `json:"watch_seconds_position"`
	IsInitialReading     bool      `json:"is_initial_reading"`
	IsAtomicSource       bool      `json:"is_atomic_source"`
	Notes                *string   `json:"notes"`
	Timezone             string    `json:"timezone"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ReadingWithDrift decorates a Reading with its pairing-derived fields.
// The pointers stay nil for initial readings and for subsequent readings
// that cannot be paired with any earlier initial.
type ReadingWithDrift struct {
	Reading
	DriftSecondsPerDay *float64   `json:"drift_seconds_per_day"`
	HoursSinceInitial  *float64   `json:"hours_since_initial"`
	PairedInitialID    *uuid.UUID `json:"paired_initial_id"`
}

// ValidSecondsPosition reports whether pos is one of the accepted
// quarter-minute positions (0, 15, 30, 45).
func ValidSecondsPosition(pos int) bool {
	for _, v := range validSecondsPositions {
		if pos == v {
			return true
		}
	}
	return false
}

// PairInitial returns the most recent initial reading whose reference time is
// strictly before ts. initials must be ordered by reference time ascending.
// Pairing is always resolved at read time, never stored, so edits and
// deletions self-heal on the next query.
func PairInitial(initials []Reading, ts time.Time) (Reading, bool) {
	for i := len(initials) - 1; i >= 0; i-- {
		if initials[i].ReferenceTime.Before(ts) {
			return initials[i], true
		}
	}
	return Reading{}, false
}
