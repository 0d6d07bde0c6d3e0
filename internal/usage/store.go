// README: Postgres ledger of generation attempts.
package usage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles generation_usage persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Record appends one attempt to the ledger.
func (s *Store) Record(ctx context.Context, ev Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO generation_usage (model, stage, outcome, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ev.Model, ev.Stage, ev.Outcome, ev.Latency.Milliseconds(), ev.At)
	return err
}

// Totals counts attempts and failures per model for created_at in [from, to).
func (s *Store) Totals(ctx context.Context, from, to time.Time) ([]ModelUsage, error) {
	rows, err := s.db.Query(ctx, `
		SELECT model,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE outcome <> $3)
		FROM generation_usage
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY model
		ORDER BY model
	`, from, to, OutcomeOK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ModelUsage{}
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Attempts, &u.Failures); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
