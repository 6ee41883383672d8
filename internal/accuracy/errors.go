package accuracy

import (
	"github.com/Homoney/watch-collection-tracker/internal/errors"
)

// Business-rule sentinels. Handlers map these to client errors.
var (
	// ErrFirstReadingMustBeInitial rejects a non-initial reading on a watch
	// that has no readings yet.
	ErrFirstReadingMustBeInitial = errors.New("first reading for a watch must be marked as initial (baseline)")

	// ErrNoInitialReading rejects a subsequent reading when no eligible
	// baseline exists before it.
	ErrNoInitialReading = errors.New("no initial reading found, create an initial reading first")

	// ErrNotFound is returned for readings that do not exist or are not
	// visible to the caller.
	ErrNotFound = errors.New("accuracy reading not found")

	// ErrWatchNotFound is returned when the parent watch does not exist or
	// does not belong to the caller. Ownership failures are deliberately
	// indistinguishable from absence.
	ErrWatchNotFound = errors.New("watch not found")
)

// ValidationError reports malformed input. Nothing is persisted when one is
// returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// InvalidPairingError reports which temporal pairing constraint failed
// (out of order, gap too short, or baseline too old).
type InvalidPairingError struct {
	Reason string
}

func (e *InvalidPairingError) Error() string {
	return e.Reason
}
