package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"stockpos/internal/domain"
	"stockpos/internal/errors"
	"stockpos/internal/storage"
)

type MySQLSaleLineRepository struct {
	exec storage.Executor
}

func NewMySQLSaleLineRepository(exec storage.Executor) *MySQLSaleLineRepository {
	return &MySQLSaleLineRepository{exec: exec}
}

func (r *MySQLSaleLineRepository) Insert(ctx context.Context, tx storage.Executor, line domain.SaleLine) (int64, error) {
	query := `INSERT INTO sale_line (sale_id, product_id, quantity, subtotal) VALUES (?, ?, ?, ?)`

	exec := r.exec
	if tx != nil {
		exec = tx
	}

	res, err := exec.Execute(ctx, query, line.SaleID, line.ProductID, line.Quantity, line.Subtotal)
	if err != nil {
		if storage.IsMissingReference(err) {
			return 0, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", line.ProductID))
		}
		return 0, fmt.Errorf("inserting sale line: %w", err)
	}

	return res.GeneratedID, nil
}

// FindBySaleID returns the sale's lines in insertion order, each carrying the
// current name of its product.
func (r *MySQLSaleLineRepository) FindBySaleID(ctx context.Context, saleID int64) ([]domain.SaleLine, error) {
	query, args, err := sq.Select(
		"sl.id AS id",
		"sl.sale_id AS sale_id",
		"sl.product_id AS product_id",
		"p.name AS product_name",
		"sl.quantity AS quantity",
		"sl.subtotal AS subtotal",
	).
		From("sale_line sl").
		Join("product p ON p.id = sl.product_id").
		Where(sq.Eq{"sl.sale_id": saleID}).
		OrderBy("sl.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building sale line query: %w", err)
	}

	res, err := r.exec.Execute(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sale lines: %w", err)
	}

	lines := make([]domain.SaleLine, 0, len(res.Rows))
	for _, row := range res.Rows {
		l, err := scanSaleLine(row)
		if err != nil {
			return nil, fmt.Errorf("scanning sale line row: %w", err)
		}
		lines = append(lines, l)
	}

	return lines, nil
}

func scanSaleLine(row storage.Row) (domain.SaleLine, error) {
	var (
		l   domain.SaleLine
		err error
	)

	if l.ID, err = row.Int64("id"); err != nil {
		return l, err
	}
	if l.SaleID, err = row.Int64("sale_id"); err != nil {
		return l, err
	}
	if l.ProductID, err = row.Int64("product_id"); err != nil {
		return l, err
	}
	if l.ProductName, err = row.String("product_name"); err != nil {
		return l, err
	}
	if l.Quantity, err = row.Int("quantity"); err != nil {
		return l, err
	}
	if l.Subtotal, err = row.Decimal("subtotal"); err != nil {
		return l, err
	}

	return l, nil
}
