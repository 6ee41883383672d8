package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Homoney/watch-collection-tracker/internal/accuracy"
	"github.com/Homoney/watch-collection-tracker/internal/errors"
)

const readingColumns = `id, watch_id, reference_time, watch_seconds_position,
	is_initial_reading, is_atomic_source, notes, timezone, created_at, updated_at`

// ReadingRepository implements accuracy.Repository on Postgres.
type ReadingRepository struct {
	pool *pgxpool.Pool
}

// NewReadingRepository creates a repository over the given pool.
func NewReadingRepository(pool *pgxpool.Pool) *ReadingRepository {
	return &ReadingRepository{pool: pool}
}

// Create inserts a reading after running the pairing check inside a
// transaction holding a per-watch advisory lock. The lock serializes the
// first-reading and most-recent-initial checks against concurrent creators
// for the same watch; creators for different watches do not contend.
func (r *ReadingRepository) Create(ctx context.Context, reading *accuracy.Reading, check accuracy.PairingCheck) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1::text))`,
		reading.WatchID,
	); err != nil {
		return errors.Wrap(err, "acquire watch lock")
	}

	var count int64
	if err := tx.QueryRow(ctx,
		`SELECT count(*) FROM movement_accuracy_readings WHERE watch_id = $1`,
		reading.WatchID,
	).Scan(&count); err != nil {
		return errors.Wrap(err, "count readings")
	}

	lastInitial, err := mostRecentInitialBefore(ctx, tx, reading.WatchID, reading.ReferenceTime)
	if err != nil {
		return err
	}

	if err := check(count, lastInitial); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO movement_accuracy_readings (`+readingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		reading.ID, reading.WatchID, reading.ReferenceTime, reading.WatchSecondsPosition,
		reading.IsInitialReading, reading.IsAtomicSource, reading.Notes, reading.Timezone,
		reading.CreatedAt, reading.UpdatedAt,
	); err != nil {
		return errors.Wrap(err, "insert reading")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit reading")
	}
	return nil
}

// MostRecentInitialBefore returns the watch's latest initial reading with a
// reference time strictly before the given instant, or nil when none exists.
func (r *ReadingRepository) MostRecentInitialBefore(ctx context.Context, watchID uuid.UUID, before time.Time) (*accuracy.Reading, error) {
	return mostRecentInitialBefore(ctx, r.pool, watchID, before)
}

// ListByWatch returns all readings for a watch, reference time descending.
func (r *ReadingRepository) ListByWatch(ctx context.Context, watchID uuid.UUID) ([]accuracy.Reading, error) {
	return r.list(ctx, watchID, "DESC")
}

// ListChronological returns all readings for a watch, reference time
// ascending, the order analytics aggregation expects.
func (r *ReadingRepository) ListChronological(ctx context.Context, watchID uuid.UUID) ([]accuracy.Reading, error) {
	return r.list(ctx, watchID, "ASC")
}

func (r *ReadingRepository) list(ctx context.Context, watchID uuid.UUID, order string) ([]accuracy.Reading, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+readingColumns+`
		 FROM movement_accuracy_readings
		 WHERE watch_id = $1
		 ORDER BY reference_time `+order,
		watchID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query readings")
	}
	defer rows.Close()

	var readings []accuracy.Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, *reading)
	}
	return readings, errors.Wrap(rows.Err(), "iterate readings")
}

// Get returns a single reading scoped to the watch.
func (r *ReadingRepository) Get(ctx context.Context, watchID, readingID uuid.UUID) (*accuracy.Reading, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+readingColumns+`
		 FROM movement_accuracy_readings
		 WHERE id = $1 AND watch_id = $2`,
		readingID, watchID,
	)

	reading, err := scanReading(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accuracy.ErrNotFound
		}
		return nil, err
	}
	return reading, nil
}

// Update overwrites the reading's mutable fields in place.
func (r *ReadingRepository) Update(ctx context.Context, reading *accuracy.Reading) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE movement_accuracy_readings
		 SET reference_time = $1, watch_seconds_position = $2, is_initial_reading = $3,
		     notes = $4, timezone = $5, updated_at = $6
		 WHERE id = $7 AND watch_id = $8`,
		reading.ReferenceTime, reading.WatchSecondsPosition, reading.IsInitialReading,
		reading.Notes, reading.Timezone, reading.UpdatedAt,
		reading.ID, reading.WatchID,
	)
	if err != nil {
		return errors.Wrap(err, "update reading")
	}
	if tag.RowsAffected() == 0 {
		return accuracy.ErrNotFound
	}
	return nil
}

// Delete removes a reading. Dependent readings are untouched; pairing is
// recomputed on read.
func (r *ReadingRepository) Delete(ctx context.Context, watchID, readingID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM movement_accuracy_readings WHERE id = $1 AND watch_id = $2`,
		readingID, watchID,
	)
	if err != nil {
		return errors.Wrap(err, "delete reading")
	}
	if tag.RowsAffected() == 0 {
		return accuracy.ErrNotFound
	}
	return nil
}

// querier covers both pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func mostRecentInitialBefore(ctx context.Context, q querier, watchID uuid.UUID, before time.Time) (*accuracy.Reading, error) {
	row := q.QueryRow(ctx,
		`SELECT `+readingColumns+`
		 FROM movement_accuracy_readings
		 WHERE watch_id = $1 AND is_initial_reading AND reference_time < $2
		 ORDER BY reference_time DESC
		 LIMIT 1`,
		watchID, before,
	)

	reading, err := scanReading(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return reading, nil
}

func scanReading(row pgx.Row) (*accuracy.Reading, error) {
	var reading accuracy.Reading
	err := row.Scan(
		&reading.ID, &reading.WatchID, &reading.ReferenceTime, &reading.WatchSecondsPosition,
		&reading.IsInitialReading, &reading.IsAtomicSource, &reading.Notes, &reading.Timezone,
		&reading.CreatedAt, &reading.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "scan reading")
	}
	return &reading, nil
}
