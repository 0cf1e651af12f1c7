package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"stockpos/internal/domain"
	"stockpos/internal/errors"
	"stockpos/internal/storage"
)

var saleColumns = []string{"id", "timestamp", "total"}

type MySQLSaleRepository struct {
	exec storage.Executor
}

func NewMySQLSaleRepository(exec storage.Executor) *MySQLSaleRepository {
	return &MySQLSaleRepository{exec: exec}
}

func (r *MySQLSaleRepository) executor(tx storage.Executor) storage.Executor {
	if tx != nil {
		return tx
	}
	return r.exec
}

// Insert writes the sale header only. Lines are inserted separately within
// the same transaction.
func (r *MySQLSaleRepository) Insert(ctx context.Context, tx storage.Executor, sale domain.Sale) (int64, error) {
	query := `INSERT INTO sale (timestamp, total) VALUES (?, ?)`

	res, err := r.executor(tx).Execute(ctx, query, sale.Timestamp, sale.Total)
	if err != nil {
		return 0, fmt.Errorf("inserting sale: %w", err)
	}

	return res.GeneratedID, nil
}

func (r *MySQLSaleRepository) FindAll(ctx context.Context) ([]domain.Sale, error) {
	query, args, err := sq.Select(saleColumns...).
		From("sale").
		OrderBy("timestamp DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building sale list query: %w", err)
	}

	return r.querySales(ctx, query, args...)
}

func (r *MySQLSaleRepository) FindByTimestampPrefix(ctx context.Context, prefix string) ([]domain.Sale, error) {
	query, args, err := sq.Select(saleColumns...).
		From("sale").
		Where(sq.Like{"timestamp": storage.EscapeLike(prefix) + "%"}).
		OrderBy("timestamp DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building sale prefix query: %w", err)
	}

	return r.querySales(ctx, query, args...)
}

func (r *MySQLSaleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	query, args, err := sq.Select(saleColumns...).
		From("sale").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building sale query: %w", err)
	}

	sales, err := r.querySales(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	if len(sales) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("sale with id %d not found", id))
	}

	return &sales[0], nil
}

// Delete removes the sale header; its lines go with it through the
// ON DELETE CASCADE key. Product stock is not touched.
func (r *MySQLSaleRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM sale WHERE id = ?`

	res, err := r.exec.Execute(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting sale: %w", err)
	}

	if res.AffectedRows == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("sale with id %d not found", id))
	}

	return nil
}

// Totals returns the number of sales and the sum of their totals.
func (r *MySQLSaleRepository) Totals(ctx context.Context) (int64, decimal.Decimal, error) {
	query, args, err := sq.Select("COUNT(*) AS sale_count", "COALESCE(SUM(total), 0) AS revenue").
		From("sale").
		ToSql()
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("building sale totals query: %w", err)
	}

	res, err := r.exec.Execute(ctx, query, args...)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("querying sale totals: %w", err)
	}

	if len(res.Rows) == 0 {
		return 0, decimal.Zero, nil
	}

	count, err := res.Rows[0].Int64("sale_count")
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("scanning sale count: %w", err)
	}

	revenue, err := res.Rows[0].Decimal("revenue")
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("scanning sale revenue: %w", err)
	}

	return count, revenue, nil
}

// DailyTotals groups sales by the date part of their timestamp, most recent
// day first, returning at most limit days.
func (r *MySQLSaleRepository) DailyTotals(ctx context.Context, limit int) ([]domain.DayStats, error) {
	query, args, err := sq.Select(
		"SUBSTRING(timestamp, 1, 10) AS day",
		"COUNT(*) AS sale_count",
		"COALESCE(SUM(total), 0) AS revenue",
	).
		From("sale").
		GroupBy("day").
		OrderBy("day DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building daily totals query: %w", err)
	}

	res, err := r.exec.Execute(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying daily totals: %w", err)
	}

	days := make([]domain.DayStats, 0, len(res.Rows))
	for _, row := range res.Rows {
		var d domain.DayStats
		if d.Day, err = row.String("day"); err != nil {
			return nil, fmt.Errorf("scanning day: %w", err)
		}
		if d.Count, err = row.Int64("sale_count"); err != nil {
			return nil, fmt.Errorf("scanning day count: %w", err)
		}
		if d.Revenue, err = row.Decimal("revenue"); err != nil {
			return nil, fmt.Errorf("scanning day revenue: %w", err)
		}
		days = append(days, d)
	}

	return days, nil
}

func (r *MySQLSaleRepository) querySales(ctx context.Context, query string, args ...any) ([]domain.Sale, error) {
	res, err := r.exec.Execute(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sales: %w", err)
	}

	sales := make([]domain.Sale, 0, len(res.Rows))
	for _, row := range res.Rows {
		var s domain.Sale
		if s.ID, err = row.Int64("id"); err != nil {
			return nil, fmt.Errorf("scanning sale id: %w", err)
		}
		if s.Timestamp, err = row.String("timestamp"); err != nil {
			return nil, fmt.Errorf("scanning sale timestamp: %w", err)
		}
		if s.Total, err = row.Decimal("total"); err != nil {
			return nil, fmt.Errorf("scanning sale total: %w", err)
		}
		sales = append(sales, s)
	}

	return sales, nil
}
