package accuracy

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Homoney/watch-collection-tracker/internal/clock"
	"github.com/Homoney/watch-collection-tracker/internal/errors"
	"github.com/Homoney/watch-collection-tracker/internal/logging"
)

// PairingCheck runs inside the repository's per-watch critical section when a
// reading is created. existing is the number of readings the watch already
// has; lastInitial is the most recent initial reading strictly before the new
// reading's reference time, or nil when none exists. Returning an error
// aborts the insert.
type PairingCheck func(existing int64, lastInitial *Reading) error

// Repository persists accuracy readings. Every operation is scoped to a
// single watch; implementations must serialize Create's check-then-insert per
// watch (the Postgres implementation holds an advisory lock).
type Repository interface {
	Create(ctx context.Context, r *Reading, check PairingCheck) error
	MostRecentInitialBefore(ctx context.Context, watchID uuid.UUID, before time.Time) (*Reading, error)
	ListByWatch(ctx context.Context, watchID uuid.UUID) ([]Reading, error)
	ListChronological(ctx context.Context, watchID uuid.UUID) ([]Reading, error)
	Get(ctx context.Context, watchID, readingID uuid.UUID) (*Reading, error)
	Update(ctx context.Context, r *Reading) error
	Delete(ctx context.Context, watchID, readingID uuid.UUID) error
}

// TimeProvider yields the reference timestamp for a timezone, plus whether it
// came from the external time service (true) or a local fallback (false).
// It never fails; degraded sources are reported through the flag.
type TimeProvider interface {
	Now(ctx context.Context, tz string) (time.Time, bool)
}

// WatchGuard resolves whether a watch exists and belongs to a user. Watch
// CRUD itself lives in another service; this is the only question we ask it.
type WatchGuard interface {
	Owns(ctx context.Context, watchID, userID uuid.UUID) (bool, error)
}

// AnalyticsCache is an optional read-through cache for analytics responses.
// Implementations must degrade silently: a miss and a failure look the same.
type AnalyticsCache interface {
	Get(ctx context.Context, watchID uuid.UUID) (*Analytics, bool)
	Set(ctx context.Context, watchID uuid.UUID, a *Analytics)
	Invalidate(ctx context.Context, watchID uuid.UUID)
}

// CreateInput carries the caller-supplied fields of a new reading.
type CreateInput struct {
	WatchSecondsPosition int
	IsInitialReading     bool
	Notes                *string
	Timezone             string
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	WatchSecondsPosition *int
	IsInitialReading     *bool
	Notes                *string
	Timezone             *string
}

// Service implements the accuracy-reading lifecycle: validated creation,
// listing with derived drift, mutation, deletion, and analytics.
type Service struct {
	repo     Repository
	guard    WatchGuard
	time     TimeProvider
	clk      clock.Clock
	cache    AnalyticsCache
	minHours float64
	maxDays  int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithAnalyticsCache attaches a cache for analytics responses.
func WithAnalyticsCache(c AnalyticsCache) ServiceOption {
	return func(s *Service) {
		s.cache = c
	}
}

// WithPairingBounds overrides the default 6-hour minimum and 90-day maximum
// gap between a baseline and a subsequent reading.
func WithPairingBounds(minHours float64, maxDays int) ServiceOption {
	return func(s *Service) {
		s.minHours = minHours
		s.maxDays = maxDays
	}
}

// NewService wires a Service from its collaborators.
func NewService(repo Repository, guard WatchGuard, tp TimeProvider, clk clock.Clock, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		guard:    guard,
		time:     tp,
		clk:      clk,
		minHours: DefaultMinPairHours,
		maxDays:  DefaultMaxPairDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReading validates and persists a new reading for the given watch.
//
// Rules: the watch's first ever reading must be initial; a subsequent reading
// must pair with the most recent initial strictly before its reference time,
// within the configured gap bounds. The checks run inside the repository's
// per-watch critical section so concurrent creators cannot race them.
func (s *Service) CreateReading(ctx context.Context, userID, watchID uuid.UUID, in CreateInput) (*Reading, error) {
	if err := s.authorize(ctx, watchID, userID); err != nil {
		return nil, err
	}

	if !ValidSecondsPosition(in.WatchSecondsPosition) {
		return nil, &ValidationError{Reason: "watch_seconds_position must be 0, 15, 30, or 45"}
	}

	tz := in.Timezone
	if tz == "" {
		tz = "UTC"
	}

	referenceTime, isAtomic := s.time.Now(ctx, tz)

	now := s.clk.Now().UTC()
	reading := &Reading{
		ID:                   uuid.New(),
		WatchID:              watchID,
		ReferenceTime:        referenceTime,
		WatchSecondsPosition: in.WatchSecondsPosition,
		IsInitialReading:     in.IsInitialReading,
		IsAtomicSource:       isAtomic,
		Notes:                in.Notes,
		Timezone:             tz,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err := s.repo.Create(ctx, reading, func(existing int64, lastInitial *Reading) error {
		if existing == 0 {
			if !in.IsInitialReading {
				return ErrFirstReadingMustBeInitial
			}
			return nil
		}
		if in.IsInitialReading {
			return nil
		}
		if lastInitial == nil {
			return ErrNoInitialReading
		}
		return ValidatePair(lastInitial.ReferenceTime, referenceTime, s.minHours, s.maxDays)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, watchID)

	logging.L(ctx).Info(
		"created accuracy reading",
		logging.StringAttr("watch_id", watchID.String()),
		logging.StringAttr("reading_id", reading.ID.String()),
		logging.BoolAttr("initial", reading.IsInitialReading),
		logging.IntAttr("position", reading.WatchSecondsPosition),
		logging.BoolAttr("atomic", isAtomic),
	)

	return reading, nil
}

// ListReadings returns the watch's readings sorted by reference time
// descending, each subsequent reading carrying its dynamically derived drift
// fields. Readings that cannot be paired are returned without drift data.
func (s *Service) ListReadings(ctx context.Context, userID, watchID uuid.UUID) ([]ReadingWithDrift, error) {
	if err := s.authorize(ctx, watchID, userID); err != nil {
		return nil, err
	}

	readings, err := s.repo.ListByWatch(ctx, watchID)
	if err != nil {
		return nil, errors.Wrap(err, "list readings")
	}

	// readings are descending; collect initials ascending for pairing.
	initials := make([]Reading, 0, len(readings))
	for i := len(readings) - 1; i >= 0; i-- {
		if readings[i].IsInitialReading {
			initials = append(initials, readings[i])
		}
	}

	out := make([]ReadingWithDrift, 0, len(readings))
	for _, r := range readings {
		out = append(out, s.decorate(ctx, r, initials))
	}
	return out, nil
}

// GetReading returns a single reading with derived drift fields.
func (s *Service) GetReading(ctx context.Context, userID, watchID, readingID uuid.UUID) (*ReadingWithDrift, error) {
	if err := s.authorize(ctx, watchID, userID); err != nil {
		return nil, err
	}

	reading, err := s.repo.Get(ctx, watchID, readingID)
	if err != nil {
		return nil, err
	}

	decorated := ReadingWithDrift{Reading: *reading}
	if !reading.IsInitialReading {
		initial, err := s.repo.MostRecentInitialBefore(ctx, watchID, reading.ReferenceTime)
		if err != nil {
			return nil, errors.Wrap(err, "resolve paired initial")
		}
		if initial != nil {
			s.attachDrift(ctx, &decorated, *initial)
		}
	}
	return &decorated, nil
}

// UpdateReading applies a partial in-place mutation. Historical pairing
// integrity is not re-validated: flipping is_initial_reading or moving
// reference points can silently invalidate readings that previously paired
// against this one. Pairing is recomputed on every read, so queries reflect
// the edited state immediately.
func (s *Service) UpdateReading(ctx context.Context, userID, watchID, readingID uuid.UUID, in UpdateInput) (*Reading, error) {
	if err := s.authorize(ctx, watchID, userID); err != nil {
		return nil, err
	}

	reading, err := s.repo.Get(ctx, watchID, readingID)
	if err != nil {
		return nil, err
	}

	if in.WatchSecondsPosition != nil {
		if !ValidSecondsPosition(*in.WatchSecondsPosition) {
			return nil, &ValidationError{Reason: "watch_seconds_position must be 0, 15, 30, or 45"}
		}
		reading.WatchSecondsPosition = *in.WatchSecondsPosition
	}
	if in.IsInitialReading != nil {
		reading.IsInitialReading = *in.IsInitialReading
	}
	if in.Notes != nil {
		reading.Notes = in.Notes
	}
	if in.Timezone != nil {
		reading.Timezone = *in.Timezone
	}
	reading.UpdatedAt = s.clk.Now().UTC()

	if err := s.repo.Update(ctx, reading); err != nil {
		return nil, err
	}

	s.invalidate(ctx, watchID)

	logging.L(ctx).Info(
		"updated accuracy reading",
		logging.StringAttr("watch_id", watchID.String()),
		logging.StringAttr("reading_id", readingID.String()),
	)

	return reading, nil
}

// DeleteReading hard-deletes a reading. Readings that paired against it are
// left untouched; their drift is re-derived against the remaining initials on
// the next read.
func (s *Service) DeleteReading(ctx context.Context, userID, watchID, readingID uuid.UUID) error {
	if err := s.authorize(ctx, watchID, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, watchID, readingID); err != nil {
		return err
	}

	s.invalidate(ctx, watchID)

	logging.L(ctx).Info(
		"deleted accuracy reading",
		logging.StringAttr("watch_id", watchID.String()),
		logging.StringAttr("reading_id", readingID.String()),
	)

	return nil
}

// WatchAnalytics aggregates all of the watch's readings into drift summary
// statistics. A watch with zero readings yields zero counts and nil
// statistics, not an error.
func (s *Service) WatchAnalytics(ctx context.Context, userID, watchID uuid.UUID) (*Analytics, error) {
	if err := s.authorize(ctx, watchID, userID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, watchID); ok {
			return cached, nil
		}
	}

	readings, err := s.repo.ListChronological(ctx, watchID)
	if err != nil {
		return nil, errors.Wrap(err, "load readings for analytics")
	}

	analytics := Aggregate(ctx, watchID, readings, s.clk.Now().UTC())

	if s.cache != nil {
		s.cache.Set(ctx, watchID, &analytics)
	}
	return &analytics, nil
}

func (s *Service) authorize(ctx context.Context, watchID, userID uuid.UUID) error {
	owns, err := s.guard.Owns(ctx, watchID, userID)
	if err != nil {
		return errors.Wrap(err, "verify watch ownership")
	}
	if !owns {
		return ErrWatchNotFound
	}
	return nil
}

// decorate attaches drift fields to a reading using the in-memory initials
// slice (ascending). Per-reading failures degrade to nil drift fields.
func (s *Service) decorate(ctx context.Context, r Reading, initials []Reading) ReadingWithDrift {
	decorated := ReadingWithDrift{Reading: r}
	if r.IsInitialReading {
		return decorated
	}
	initial, ok := PairInitial(initials, r.ReferenceTime)
	if !ok {
		return decorated
	}
	s.attachDrift(ctx, &decorated, initial)
	return decorated
}

func (s *Service) attachDrift(ctx context.Context, d *ReadingWithDrift, initial Reading) {
	drift, err := ComputeDrift(
		initial.ReferenceTime, initial.WatchSecondsPosition,
		d.ReferenceTime, d.WatchSecondsPosition,
	)
	if err != nil {
		logging.L(ctx).Error(
			"drift calculation failed",
			logging.StringAttr("reading_id", d.ID.String()),
			logging.ErrAttr(err),
		)
		return
	}

	hours := round2(d.ReferenceTime.Sub(initial.ReferenceTime).Hours())
	initialID := initial.ID

	d.DriftSecondsPerDay = &drift
	d.HoursSinceInitial = &hours
	d.PairedInitialID = &initialID
}

func (s *Service) invalidate(ctx context.Context, watchID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, watchID)
	}
}
