package usage

import (
	"context"
	"fmt"
	"time"
)

// Ledger is the persistence the Service needs.
type Ledger interface {
	Record(ctx context.Context, ev Event) error
	Totals(ctx context.Context, from, to time.Time) ([]ModelUsage, error)
}

// Service answers usage questions over a Ledger.
type Service struct {
	ledger Ledger
	now    func() time.Time
}

// NewService creates a Service backed by the given Ledger.
func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger, now: time.Now}
}

// Summary returns per-model totals for month (YYYY-MM, UTC).
// An empty month means the current one.
func (s *Service) Summary(ctx context.Context, month string) (*MonthlyUsage, error) {
	if month == "" {
		month = s.now().UTC().Format("2006-01")
	}
	from, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	models, err := s.ledger.Totals(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("usage totals: %w", err)
	}
	return &MonthlyUsage{Month: month, Models: models}, nil
}
