package timesource

import (
	"context"
	"testing"
	"time"

	"github.com/Homoney/watch-collection-tracker/internal/clock"
	"github.com/Homoney/watch-collection-tracker/internal/errors"
)

type stubSource struct {
	t   time.Time
	err error
}

func (s stubSource) Now(_ context.Context, _ string) (time.Time, error) {
	return s.t, s.err
}

func TestProviderRemoteSuccess(t *testing.T) {
	remote := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	local := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	p := NewProvider(stubSource{t: remote}, clock.Fixed(local))

	got, atomic := p.Now(context.Background(), "UTC")
	if !atomic {
		t.Error("atomic = false, want true for remote success")
	}
	if !got.Equal(remote) {
		t.Errorf("Now = %v, want remote time %v", got, remote)
	}
}

func TestProviderFallsBackToLocalClock(t *testing.T) {
	local := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	p := NewProvider(stubSource{err: errors.New("unreachable")}, clock.Fixed(local))

	got, atomic := p.Now(context.Background(), "Europe/Zurich")
	if atomic {
		t.Error("atomic = true, want false on fallback")
	}
	if !got.Equal(local) {
		t.Errorf("Now = %v, want local clock %v", got, local)
	}
	if got.Location() != time.UTC {
		t.Errorf("fallback location = %v, want UTC", got.Location())
	}
}
