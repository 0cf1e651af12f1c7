package stats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpos/internal/domain"
)

type mockSource struct {
	TotalsFunc      func(ctx context.Context) (int64, decimal.Decimal, error)
	DailyTotalsFunc func(ctx context.Context, limit int) ([]domain.DayStats, error)
}

func (m *mockSource) Totals(ctx context.Context) (int64, decimal.Decimal, error) {
	return m.TotalsFunc(ctx)
}

func (m *mockSource) DailyTotals(ctx context.Context, limit int) ([]domain.DayStats, error) {
	return m.DailyTotalsFunc(ctx, limit)
}

func TestCompute_EmptyStore(t *testing.T) {
	src := &mockSource{
		TotalsFunc: func(ctx context.Context) (int64, decimal.Decimal, error) {
			return 0, decimal.Zero, nil
		},
		DailyTotalsFunc: func(ctx context.Context, limit int) ([]domain.DayStats, error) {
			return nil, nil
		},
	}

	st, err := NewAggregator(src).Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Count)
	assert.True(t, st.TotalRevenue.IsZero())
	assert.NotNil(t, st.PerDay)
	assert.Empty(t, st.PerDay)
}

func TestCompute_RequestsSevenDays(t *testing.T) {
	src := &mockSource{
		TotalsFunc: func(ctx context.Context) (int64, decimal.Decimal, error) {
			return 3, decimal.RequireFromString("34.98"), nil
		},
		DailyTotalsFunc: func(ctx context.Context, limit int) ([]domain.DayStats, error) {
			assert.Equal(t, RecentDays, limit)
			return []domain.DayStats{
				{Day: "2024-01-02", Count: 1, Revenue: decimal.NewFromInt(15)},
				{Day: "2024-01-01", Count: 2, Revenue: decimal.RequireFromString("19.98")},
			}, nil
		},
	}

	st, err := NewAggregator(src).Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Count)
	assert.Equal(t, "34.98", st.TotalRevenue.String())
	require.Len(t, st.PerDay, 2)
	assert.Equal(t, "2024-01-02", st.PerDay[0].Day)
}

func TestCompute_CapsAtSevenDays(t *testing.T) {
	src := &mockSource{
		TotalsFunc: func(ctx context.Context) (int64, decimal.Decimal, error) {
			return 10, decimal.NewFromInt(55), nil
		},
		DailyTotalsFunc: func(ctx context.Context, limit int) ([]domain.DayStats, error) {
			days := make([]domain.DayStats, 0, 10)
			for d := 10; d >= 1; d-- {
				days = append(days, domain.DayStats{Day: fmt.Sprintf("2024-01-%02d", d), Count: 1, Revenue: decimal.NewFromInt(int64(d))})
			}
			return days, nil
		},
	}

	st, err := NewAggregator(src).Compute(context.Background())
	require.NoError(t, err)
	require.Len(t, st.PerDay, RecentDays)
	assert.Equal(t, "2024-01-10", st.PerDay[0].Day)
	assert.Equal(t, "2024-01-04", st.PerDay[6].Day)
}

func TestCompute_PropagatesErrors(t *testing.T) {
	boom := errors.New("connection reset")
	src := &mockSource{
		TotalsFunc: func(ctx context.Context) (int64, decimal.Decimal, error) {
			return 0, decimal.Zero, boom
		},
	}

	_, err := NewAggregator(src).Compute(context.Background())
	assert.ErrorIs(t, err, boom)
}
