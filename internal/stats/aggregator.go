// Package stats derives sales summaries from the persisted sales. It holds no
// state of its own.
package stats

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"stockpos/internal/domain"
)

// RecentDays is how many per-day buckets a summary carries.
const RecentDays = 7

type Source interface {
	Totals(ctx context.Context) (int64, decimal.Decimal, error)
	DailyTotals(ctx context.Context, limit int) ([]domain.DayStats, error)
}

type Aggregator struct {
	src Source
}

func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// Compute returns the sale count, total revenue and the most recent days'
// rollups, newest first. With no sales it returns zeros and an empty,
// non-nil PerDay.
func (a *Aggregator) Compute(ctx context.Context) (domain.SaleStats, error) {
	count, revenue, err := a.src.Totals(ctx)
	if err != nil {
		return domain.SaleStats{}, fmt.Errorf("computing sale totals: %w", err)
	}

	days, err := a.src.DailyTotals(ctx, RecentDays)
	if err != nil {
		return domain.SaleStats{}, fmt.Errorf("computing daily totals: %w", err)
	}

	if days == nil {
		days = []domain.DayStats{}
	}
	if len(days) > RecentDays {
		days = days[:RecentDays]
	}

	return domain.SaleStats{
		Count:        count,
		TotalRevenue: revenue,
		PerDay:       days,
	}, nil
}
