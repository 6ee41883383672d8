package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Homoney/watch-collection-tracker/internal/errors"
)

// WatchGuard answers watch existence and ownership. The watches table is
// owned by the collection service; this is a read-only lookup.
type WatchGuard struct {
	pool *pgxpool.Pool
}

// NewWatchGuard creates a guard over the given pool.
func NewWatchGuard(pool *pgxpool.Pool) *WatchGuard {
	return &WatchGuard{pool: pool}
}

// Owns reports whether the watch exists and belongs to the user. A missing
// watch and a watch owned by someone else are indistinguishable by design.
func (g *WatchGuard) Owns(ctx context.Context, watchID, userID uuid.UUID) (bool, error) {
	var owns bool
	err := g.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM watches WHERE id = $1 AND user_id = $2)`,
		watchID, userID,
	).Scan(&owns)
	if err != nil {
		return false, errors.Wrap(err, "check watch ownership")
	}
	return owns, nil
}
