package accuracy

import (
	"fmt"
	"math"
	"time"
)

// Default pairing bounds. Gaps shorter than the minimum make the per-day
// extrapolation numerically unstable; baselines older than the maximum are no
// longer a meaningful reference.
const (
	DefaultMinPairHours = 6.0
	DefaultMaxPairDays  = 90
)

// ComputeDrift converts a baseline/subsequent reading pair into a drift rate
// in seconds per day, rounded to two decimals. Positive drift means the watch
// runs fast, negative means slow.
//
// The watch-elapsed term is the difference of the two quarter-minute
// positions; when it is negative the second hand passed the top of the
// minute, so one full minute is added back. The model assumes at most one
// wraparound, which holds whenever the reference gap is well beyond a minute.
func ComputeDrift(initialRef time.Time, initialSeconds int, currentRef time.Time, currentSeconds int) (float64, error) {
	referenceElapsed := currentRef.Sub(initialRef).Seconds()

	watchElapsed := float64(currentSeconds - initialSeconds)
	if watchElapsed < 0 {
		watchElapsed += 60 // hand wrapped past the top of the minute
	}

	hoursElapsed := referenceElapsed / 3600
	if hoursElapsed == 0 {
		// Unreachable behind ValidatePair, but analytics and backfills call
		// this directly, so the guard lives here too.
		return 0, &ValidationError{Reason: "time elapsed must be greater than zero"}
	}

	driftSeconds := watchElapsed - referenceElapsed

	return round2((driftSeconds / hoursElapsed) * 24), nil
}

// ValidatePair checks that a reading taken at subsequentTime may be paired
// with a baseline taken at initialTime. minHours is inclusive on the lower
// bound, maxDays (counted in whole elapsed days) is inclusive on the upper
// bound. Returns an *InvalidPairingError naming the violated constraint.
func ValidatePair(initialTime, subsequentTime time.Time, minHours float64, maxDays int) error {
	diff := subsequentTime.Sub(initialTime)

	if diff <= 0 {
		return &InvalidPairingError{Reason: "subsequent reading must be after initial reading"}
	}

	hoursElapsed := diff.Hours()
	if hoursElapsed < minHours {
		return &InvalidPairingError{
			Reason: fmt.Sprintf("minimum %.1f hours required between readings (got %.1fh)", minHours, hoursElapsed),
		}
	}

	daysElapsed := int(hoursElapsed / 24)
	if daysElapsed > maxDays {
		return &InvalidPairingError{
			Reason: fmt.Sprintf("maximum %d days allowed between readings (got %d days)", maxDays, daysElapsed),
		}
	}

	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
