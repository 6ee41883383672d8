package accuracy

import (
	"context"
	stderrors "errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Homoney/watch-collection-tracker/internal/clock"
)

// fakeRepo is an in-memory Repository. Create honors the same contract as the
// Postgres implementation: the check callback sees the current reading count
// and the most recent initial strictly before the new reading.
type fakeRepo struct {
	readings []Reading
}

func (f *fakeRepo) Create(_ context.Context, r *Reading, check PairingCheck) error {
	var count int64
	for _, existing := range f.readings {
		if existing.WatchID == r.WatchID {
			count++
		}
	}
	lastInitial := f.lastInitialBefore(r.WatchID, r.ReferenceTime)
	if err := check(count, lastInitial); err != nil {
		return err
	}
	f.readings = append(f.readings, *r)
	return nil
}

func (f *fakeRepo) MostRecentInitialBefore(_ context.Context, watchID uuid.UUID, before time.Time) (*Reading, error) {
	return f.lastInitialBefore(watchID, before), nil
}

func (f *fakeRepo) lastInitialBefore(watchID uuid.UUID, before time.Time) *Reading {
	var best *Reading
	for i := range f.readings {
		r := f.readings[i]
		if r.WatchID != watchID || !r.IsInitialReading || !r.ReferenceTime.Before(before) {
			continue
		}
		if best == nil || r.ReferenceTime.After(best.ReferenceTime) {
			best = &f.readings[i]
		}
	}
	return best
}

func (f *fakeRepo) ListByWatch(_ context.Context, watchID uuid.UUID) ([]Reading, error) {
	out := f.forWatch(watchID)
	sort.Slice(out, func(i, j int) bool { return out[i].ReferenceTime.After(out[j].ReferenceTime) })
	return out, nil
}

func (f *fakeRepo) ListChronological(_ context.Context, watchID uuid.UUID) ([]Reading, error) {
	out := f.forWatch(watchID)
	sort.Slice(out, func(i, j int) bool { return out[i].ReferenceTime.Before(out[j].ReferenceTime) })
	return out, nil
}

func (f *fakeRepo) forWatch(watchID uuid.UUID) []Reading {
	var out []Reading
	for _, r := range f.readings {
		if r.WatchID == watchID {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeRepo) Get(_ context.Context, watchID, readingID uuid.UUID) (*Reading, error) {
	for i := range f.readings {
		if f.readings[i].WatchID == watchID && f.readings[i].ID == readingID {
			r := f.readings[i]
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, r *Reading) error {
	for i := range f.readings {
		if f.readings[i].WatchID == r.WatchID && f.readings[i].ID == r.ID {
			f.readings[i] = *r
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) Delete(_ context.Context, watchID, readingID uuid.UUID) error {
	for i := range f.readings {
		if f.readings[i].WatchID == watchID && f.readings[i].ID == readingID {
			f.readings = append(f.readings[:i], f.readings[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// fakeGuard owns every watch in the set.
type fakeGuard struct {
	owned map[uuid.UUID]uuid.UUID // watch -> owner
}

func (f *fakeGuard) Owns(_ context.Context, watchID, userID uuid.UUID) (bool, error) {
	owner, ok := f.owned[watchID]
	return ok && owner == userID, nil
}

// fakeTime returns a scripted timestamp and atomic flag.
type fakeTime struct {
	now    time.Time
	atomic bool
}

func (f *fakeTime) Now(_ context.Context, _ string) (time.Time, bool) {
	return f.now, f.atomic
}

// spyCache records cache traffic and serves one scripted hit.
type spyCache struct {
	hit         *Analytics
	gets        int
	sets        int
	invalidates int
}

func (c *spyCache) Get(_ context.Context, _ uuid.UUID) (*Analytics, bool) {
	c.gets++
	if c.hit != nil {
		return c.hit, true
	}
	return nil, false
}

func (c *spyCache) Set(_ context.Context, _ uuid.UUID, _ *Analytics) { c.sets++ }

func (c *spyCache) Invalidate(_ context.Context, _ uuid.UUID) { c.invalidates++ }

type fixture struct {
	service *Service
	repo    *fakeRepo
	time    *fakeTime
	cache   *spyCache
	userID  uuid.UUID
	watchID uuid.UUID
}

func newFixture(t *testing.T, opts ...ServiceOption) *fixture {
	t.Helper()
	userID := uuid.New()
	watchID := uuid.New()
	repo := &fakeRepo{}
	tp := &fakeTime{now: baseTime, atomic: true}
	cache := &spyCache{}
	opts = append([]ServiceOption{WithAnalyticsCache(cache)}, opts...)
	service := NewService(
		repo,
		&fakeGuard{owned: map[uuid.UUID]uuid.UUID{watchID: userID}},
		tp,
		clock.Fixed(baseTime),
		opts...,
	)
	return &fixture{service: service, repo: repo, time: tp, cache: cache, userID: userID, watchID: watchID}
}

func (f *fixture) create(t *testing.T, at time.Time, pos int, initial bool) *Reading {
	t.Helper()
	f.time.now = at
	r, err := f.service.CreateReading(context.Background(), f.userID, f.watchID, CreateInput{
		WatchSecondsPosition: pos,
		IsInitialReading:     initial,
	})
	if err != nil {
		t.Fatalf("CreateReading: %v", err)
	}
	return r
}

func TestCreateReadingFirstMustBeInitial(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateReading(context.Background(), f.userID, f.watchID, CreateInput{
		WatchSecondsPosition: 0,
		IsInitialReading:     false,
	})
	if !stderrors.Is(err, ErrFirstReadingMustBeInitial) {
		t.Fatalf("err = %v, want ErrFirstReadingMustBeInitial", err)
	}

	// Once an initial exists the same input succeeds.
	f.create(t, baseTime, 0, true)
	f.time.now = baseTime.Add(24 * time.Hour)
	if _, err := f.service.CreateReading(context.Background(), f.userID, f.watchID, CreateInput{
		WatchSecondsPosition: 15,
		IsInitialReading:     false,
	}); err != nil {
		t.Fatalf("subsequent after initial: %v", err)
	}
}

func TestCreateReadingRejectsInvalidPosition(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateReading(context.Background(), f.userID, f.watchID, CreateInput{
		WatchSecondsPosition: 17,
		IsInitialReading:     true,
	})
	var verr *ValidationError
	if !stderrors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestCreateReadingPairingBounds(t *testing.T) {
	f := newFixture(t)
	f.create(t, baseTime, 0, true)

	tests := []struct {
		name    string
		gap     time.Duration
		wantErr bool
	}{
		{name: "TooSoon", gap: 3 * time.Hour, wantErr: true},
		{name: "ExactlyMinimum", gap: 6 * time.Hour, wantErr: false},
		{name: "PastMaximum", gap: 91 * 24 * time.Hour, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.time.now = baseTime.Add(tt.gap)
			_, err := f.service.CreateReading(context.Background(), f.userID, f.watchID, CreateInput{
				WatchSecondsPosition: 15,
				IsInitialReading:     false,
			})
			if tt.wantErr {
				var pairingErr *InvalidPairingError
				if !stderrors.As(err, &pairingErr) {
					t.Fatalf("err = %v, want *InvalidPairingError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateReading: %v", err)
			}
		})
	}
}

func TestCreateReadingNoEligibleInitial(t *testing.T) {
	f := newFixture(t)
	f.create(t, baseTime.Add(48*time.Hour), 0, true)

	// A second watch reading whose reference time predates every initial.
	f.time.now = baseTime
	_, err := f.service.CreateReading(context.Background(), f.userID, f.watchID, CreateInput{
		WatchSecondsPosition: 15,
		IsInitialReading:     false,
	})
	if !stderrors.Is(err, ErrNoInitialReading) {
		t.Fatalf("err = %v, want ErrNoInitialReading", err)
	}
}

func TestCreateReadingUnknownWatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateReading(context.Background(), f.userID, uuid.New(), CreateInput{
		WatchSecondsPosition: 0,
		IsInitialReading:     true,
	})
	if !stderrors.Is(err, ErrWatchNotFound) {
		t.Fatalf("err = %v, want ErrWatchNotFound", err)
	}
}

func TestCreateReadingOtherUsersWatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateReading(context.Background(), uuid.New(), f.watchID, CreateInput{
		WatchSecondsPosition: 0,
		IsInitialReading:     true,
	})
	if !stderrors.Is(err, ErrWatchNotFound) {
		t.Fatalf("err = %v, want ErrWatchNotFound", err)
	}
}

func TestCreateReadingPopulatesFields(t *testing.T) {
	f := newFixture(t)
	f.time.atomic = false

	notes := "after regulation"
	r, err := f.service.CreateReading(context.Background(), f.userID, f.watchID, CreateInput{
		WatchSecondsPosition: 30,
		IsInitialReading:     true,
		Notes:                &notes,
	})
	if err != nil {
		t.Fatalf("CreateReading: %v", err)
	}

	if r.ID == uuid.Nil {
		t.Error("ID not assigned")
	}
	if r.WatchID != f.watchID {
		t.Errorf("WatchID = %v, want %v", r.WatchID, f.watchID)
	}
	if !r.ReferenceTime.Equal(baseTime) {
		t.Errorf("ReferenceTime = %v, want provider time %v", r.ReferenceTime, baseTime)
	}
	if r.IsAtomicSource {
		t.Error("IsAtomicSource = true, want false from degraded provider")
	}
	if r.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want default UTC", r.Timezone)
	}
	if r.Notes == nil || *r.Notes != notes {
		t.Errorf("Notes = %v, want %q", r.Notes, notes)
	}
	if f.cache.invalidates != 1 {
		t.Errorf("cache invalidations = %d, want 1", f.cache.invalidates)
	}
}

func TestListReadingsDerivesDrift(t *testing.T) {
	f := newFixture(t)

	initial := f.create(t, baseTime, 0, true)
	subsequent := f.create(t, baseTime.Add(24*time.Hour), 15, false)

	list, err := f.service.ListReadings(context.Background(), f.userID, f.watchID)
	if err != nil {
		t.Fatalf("ListReadings: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}

	// Newest first.
	if list[0].ID != subsequent.ID || list[1].ID != initial.ID {
		t.Fatal("readings not in reference-time descending order")
	}

	got := list[0]
	if got.DriftSecondsPerDay == nil || *got.DriftSecondsPerDay != -86385.00 {
		t.Errorf("DriftSecondsPerDay = %v, want -86385.00", got.DriftSecondsPerDay)
	}
	if got.HoursSinceInitial == nil || *got.HoursSinceInitial != 24.00 {
		t.Errorf("HoursSinceInitial = %v, want 24.00", got.HoursSinceInitial)
	}
	if got.PairedInitialID == nil || *got.PairedInitialID != initial.ID {
		t.Errorf("PairedInitialID = %v, want %v", got.PairedInitialID, initial.ID)
	}

	if list[1].DriftSecondsPerDay != nil {
		t.Error("initial reading must carry no drift fields")
	}
}

func TestListReadingsPairsWithMostRecentInitial(t *testing.T) {
	f := newFixture(t)

	f.create(t, baseTime, 0, true)
	second := f.create(t, baseTime.Add(48*time.Hour), 30, true)
	f.create(t, baseTime.Add(72*time.Hour), 45, false)

	list, err := f.service.ListReadings(context.Background(), f.userID, f.watchID)
	if err != nil {
		t.Fatalf("ListReadings: %v", err)
	}

	got := list[0]
	if got.PairedInitialID == nil || *got.PairedInitialID != second.ID {
		t.Errorf("PairedInitialID = %v, want the later initial %v", got.PairedInitialID, second.ID)
	}
	if got.HoursSinceInitial == nil || *got.HoursSinceInitial != 24.00 {
		t.Errorf("HoursSinceInitial = %v, want 24.00", got.HoursSinceInitial)
	}
}

func TestGetReadingAttachesDrift(t *testing.T) {
	f := newFixture(t)

	f.create(t, baseTime, 0, true)
	subsequent := f.create(t, baseTime.Add(24*time.Hour), 15, false)

	got, err := f.service.GetReading(context.Background(), f.userID, f.watchID, subsequent.ID)
	if err != nil {
		t.Fatalf("GetReading: %v", err)
	}
	if got.DriftSecondsPerDay == nil || *got.DriftSecondsPerDay != -86385.00 {
		t.Errorf("DriftSecondsPerDay = %v, want -86385.00", got.DriftSecondsPerDay)
	}
}

func TestGetReadingNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetReading(context.Background(), f.userID, f.watchID, uuid.New())
	if !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateReadingPartial(t *testing.T) {
	f := newFixture(t)
	r := f.create(t, baseTime, 0, true)

	pos := 45
	updated, err := f.service.UpdateReading(context.Background(), f.userID, f.watchID, r.ID, UpdateInput{
		WatchSecondsPosition: &pos,
	})
	if err != nil {
		t.Fatalf("UpdateReading: %v", err)
	}
	if updated.WatchSecondsPosition != 45 {
		t.Errorf("WatchSecondsPosition = %d, want 45", updated.WatchSecondsPosition)
	}
	if !updated.IsInitialReading {
		t.Error("IsInitialReading changed without being supplied")
	}

	bad := 17
	_, err = f.service.UpdateReading(context.Background(), f.userID, f.watchID, r.ID, UpdateInput{
		WatchSecondsPosition: &bad,
	})
	var verr *ValidationError
	if !stderrors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestDeleteReadingLeavesOthersIntact(t *testing.T) {
	f := newFixture(t)

	f.create(t, baseTime, 0, true)
	doomed := f.create(t, baseTime.Add(24*time.Hour), 15, false)
	f.create(t, baseTime.Add(48*time.Hour), 30, false)

	if err := f.service.DeleteReading(context.Background(), f.userID, f.watchID, doomed.ID); err != nil {
		t.Fatalf("DeleteReading: %v", err)
	}

	list, err := f.service.ListReadings(context.Background(), f.userID, f.watchID)
	if err != nil {
		t.Fatalf("ListReadings: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2 after delete", len(list))
	}
	if list[0].DriftSecondsPerDay == nil {
		t.Error("surviving subsequent reading lost its drift")
	}

	if err := f.service.DeleteReading(context.Background(), f.userID, f.watchID, doomed.ID); !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestWatchAnalyticsUsesCache(t *testing.T) {
	f := newFixture(t)
	f.create(t, baseTime, 0, true)

	// Miss computes and stores.
	a, err := f.service.WatchAnalytics(context.Background(), f.userID, f.watchID)
	if err != nil {
		t.Fatalf("WatchAnalytics: %v", err)
	}
	if a.TotalReadings != 1 {
		t.Errorf("TotalReadings = %d, want 1", a.TotalReadings)
	}
	if f.cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", f.cache.sets)
	}

	// Hit short-circuits the repository.
	cached := &Analytics{WatchID: f.watchID, TotalReadings: 42}
	f.cache.hit = cached
	a, err = f.service.WatchAnalytics(context.Background(), f.userID, f.watchID)
	if err != nil {
		t.Fatalf("WatchAnalytics: %v", err)
	}
	if a.TotalReadings != 42 {
		t.Errorf("TotalReadings = %d, want cached value 42", a.TotalReadings)
	}
}

func TestWatchAnalyticsEmptyWatch(t *testing.T) {
	f := newFixture(t)

	a, err := f.service.WatchAnalytics(context.Background(), f.userID, f.watchID)
	if err != nil {
		t.Fatalf("WatchAnalytics: %v", err)
	}
	if a.TotalReadings != 0 || a.CurrentDriftSPD != nil {
		t.Errorf("empty watch analytics = %+v, want zero counts and nil stats", a)
	}
}

func TestCustomPairingBounds(t *testing.T) {
	f := newFixture(t, WithPairingBounds(1.0, 2))
	f.create(t, baseTime, 0, true)

	f.time.now = baseTime.Add(90 * time.Minute)
	if _, err := f.service.CreateReading(context.Background(), f.userID, f.watchID, CreateInput{
		WatchSecondsPosition: 15,
		IsInitialReading:     false,
	}); err != nil {
		t.Fatalf("90 minutes with 1-hour minimum: %v", err)
	}

	f.time.now = baseTime.Add(3 * 24 * time.Hour)
	_, err := f.service.CreateReading(context.Background(), f.userID, f.watchID, CreateInput{
		WatchSecondsPosition: 15,
		IsInitialReading:     false,
	})
	var pairingErr *InvalidPairingError
	if !stderrors.As(err, &pairingErr) {
		t.Fatalf("err = %v, want *InvalidPairingError past 2-day maximum", err)
	}
}
