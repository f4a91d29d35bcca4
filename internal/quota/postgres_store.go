package quota

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	getUsageSQL = `
		SELECT
			COALESCE((
				SELECT tokens FROM token_usage
				WHERE actor_type = $1 AND actor_id = $2 AND period = 'day' AND period_key = $3
			), 0),
			COALESCE((
				SELECT tokens FROM token_usage
				WHERE actor_type = $1 AND actor_id = $2 AND period = 'month' AND period_key = $4
			), 0),
			COALESCE((
				SELECT images FROM image_usage
				WHERE actor_type = $1 AND actor_id = $2 AND period = 'month' AND period_key = $4
			), 0)
	`

	upsertTokensSQL = `
		INSERT INTO token_usage (actor_type, actor_id, period, period_key, tokens)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (actor_type, actor_id, period, period_key)
		DO UPDATE SET
			tokens = token_usage.tokens + EXCLUDED.tokens,
			updated_at = NOW()
	`

	upsertImagesSQL = `
		INSERT INTO image_usage (actor_type, actor_id, period, period_key, images)
		VALUES ($1, $2, 'month', $3, $4)
		ON CONFLICT (actor_type, actor_id, period, period_key)
		DO UPDATE SET
			images = image_usage.images + EXCLUDED.images,
			updated_at = NOW()
	`

	dailyHistorySQL = `
		SELECT period_key, tokens, updated_at
		FROM token_usage
		WHERE actor_type = $1 AND actor_id = $2 AND period = 'day'
		ORDER BY period_key DESC
		LIMIT $3
	`
)

// subset of pgxpool.Pool used by the store
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// implements Store using PostgreSQL (token_usage and image_usage tables)
type PostgresStore struct {
	db DB
}

// creates a new PostgreSQL usage store
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// reads the three current-bucket counters in one round trip
func (s *PostgresStore) GetUsage(ctx context.Context, actor Actor, keys PeriodKeys) (Usage, error) {
	var daily, monthly, images int64

	err := s.db.QueryRow(ctx, getUsageSQL,
		string(actor.Type),
		actor.ID,
		keys.Day,
		keys.Month,
	).Scan(&daily, &monthly, &images)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to read usage: %w", err)
	}

	return Usage{
		Daily:   int(daily),
		Monthly: int(monthly),
		Images:  int(images),
	}, nil
}

// upserts the day and month token buckets in a single transaction
func (s *PostgresStore) AddTokens(ctx context.Context, actor Actor, keys PeriodKeys, tokens int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	batch := &pgx.Batch{}

	for _, p := range []Period{PeriodDay, PeriodMonth} {
		batch.Queue(upsertTokensSQL,
			string(actor.Type),
			actor.ID,
			string(p),
			keys.For(p),
			tokens,
		)
	}

	br := tx.SendBatch(ctx, batch)

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck,gosec // already failing
			return fmt.Errorf("failed to increment token usage: %w", err)
		}
	}

	// batch results must be closed before commit, otherwise the connection is still busy
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit token usage: %w", err)
	}

	return nil
}

// upserts the month image bucket
func (s *PostgresStore) AddImages(ctx context.Context, actor Actor, keys PeriodKeys, images int) error {
	_, err := s.db.Exec(ctx, upsertImagesSQL,
		string(actor.Type),
		actor.ID,
		keys.Month,
		images,
	)
	if err != nil {
		return fmt.Errorf("failed to increment image usage: %w", err)
	}

	return nil
}

// lists the most recent day buckets of an actor, newest first
func (s *PostgresStore) DailyHistory(ctx context.Context, actor Actor, limit int) ([]DailyUsage, error) {
	rows, err := s.db.Query(ctx, dailyHistorySQL, string(actor.Type), actor.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage history: %w", err)
	}
	defer rows.Close()

	history := []DailyUsage{}

	for rows.Next() {
		var du DailyUsage
		var tokens int64

		if err := rows.Scan(&du.Date, &tokens, &du.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage history: %w", err)
		}

		du.Tokens = int(tokens)
		history = append(history, du)
	}

	return history, rows.Err()
}
