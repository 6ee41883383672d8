package accuracy

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Homoney/watch-collection-tracker/internal/logging"
)

// Analytics summarizes a watch's drift observations. Statistical fields are
// nil when no drift observation exists; counts are always present.
type Analytics struct {
	WatchID                 uuid.UUID `json:"watch_id"`
	TotalReadings           int       `json:"total_readings"`
	TotalInitialReadings    int       `json:"total_initial_readings"`
	TotalSubsequentReadings int       `json:"total_subsequent_readings"`

	CurrentDriftSPD *float64   `json:"current_drift_spd"`
	LastReadingDate *time.Time `json:"last_reading_date"`

	AverageDriftSPD  *float64 `json:"average_drift_spd"`
	BestAccuracySPD  *float64 `json:"best_accuracy_spd"`
	WorstAccuracySPD *float64 `json:"worst_accuracy_spd"`

	Drift7DAvg  *float64 `json:"drift_7d_avg"`
	Drift30DAvg *float64 `json:"drift_30d_avg"`
	Drift90DAvg *float64 `json:"drift_90d_avg"`

	FirstReadingDate *time.Time `json:"first_reading_date"`
	DateRangeDays    *int       `json:"date_range_days"`
}

// driftObservation ties a computed drift to the reference time it was
// observed at, for the rolling-window averages.
type driftObservation struct {
	drift float64
	date  time.Time
}

// Aggregate folds a watch's readings into summary statistics. readings must
// be ordered by reference time ascending; now anchors the rolling windows.
// Subsequent readings that cannot be paired, or whose drift computation
// fails, are logged and skipped rather than failing the whole aggregation.
func Aggregate(ctx context.Context, watchID uuid.UUID, readings []Reading, now time.Time) Analytics {
	a := Analytics{
		WatchID:       watchID,
		TotalReadings: len(readings),
	}

	var initials, subsequents []Reading
	for _, r := range readings {
		if r.IsInitialReading {
			initials = append(initials, r)
		} else {
			subsequents = append(subsequents, r)
		}
	}
	a.TotalInitialReadings = len(initials)
	a.TotalSubsequentReadings = len(subsequents)

	if len(readings) == 0 {
		return a
	}

	first := readings[0].ReferenceTime
	last := readings[len(readings)-1].ReferenceTime
	a.FirstReadingDate = &first
	a.LastReadingDate = &last
	if len(readings) >= 2 {
		days := int(last.Sub(first).Hours() / 24)
		a.DateRangeDays = &days
	}

	obs := make([]driftObservation, 0, len(subsequents))
	for _, r := range subsequents {
		initial, ok := PairInitial(initials, r.ReferenceTime)
		if !ok {
			logging.L(ctx).Warn(
				"skipping unpairable subsequent reading",
				logging.StringAttr("reading_id", r.ID.String()),
				logging.StringAttr("watch_id", watchID.String()),
			)
			continue
		}

		drift, err := ComputeDrift(
			initial.ReferenceTime, initial.WatchSecondsPosition,
			r.ReferenceTime, r.WatchSecondsPosition,
		)
		if err != nil {
			logging.L(ctx).Error(
				"drift calculation failed during aggregation",
				logging.StringAttr("reading_id", r.ID.String()),
				logging.ErrAttr(err),
			)
			continue
		}

		obs = append(obs, driftObservation{drift: drift, date: r.ReferenceTime})
	}

	if len(obs) == 0 {
		return a
	}

	drifts := make([]float64, len(obs))
	for i, o := range obs {
		drifts[i] = o.drift
	}

	current := obs[len(obs)-1].drift
	a.CurrentDriftSPD = &current

	avg := round2(mean(drifts))
	a.AverageDriftSPD = &avg

	byAbs := append([]float64(nil), drifts...)
	sort.SliceStable(byAbs, func(i, j int) bool {
		return abs(byAbs[i]) < abs(byAbs[j])
	})
	best := byAbs[0]
	worst := byAbs[len(byAbs)-1]
	a.BestAccuracySPD = &best
	a.WorstAccuracySPD = &worst

	a.Drift7DAvg = windowAverage(obs, now, 7)
	a.Drift30DAvg = windowAverage(obs, now, 30)
	a.Drift90DAvg = windowAverage(obs, now, 90)

	return a
}

// windowAverage returns the mean drift of observations taken within the last
// windowDays whole days of now, or nil when the window is empty.
func windowAverage(obs []driftObservation, now time.Time, windowDays int) *float64 {
	var in []float64
	for _, o := range obs {
		if int(now.Sub(o.date).Hours()/24) <= windowDays {
			in = append(in, o.drift)
		}
	}
	if len(in) == 0 {
		return nil
	}
	avg := round2(mean(in))
	return &avg
}
