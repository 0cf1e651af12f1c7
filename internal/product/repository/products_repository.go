package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"stockpos/internal/domain"
	"stockpos/internal/errors"
	"stockpos/internal/storage"
)

var productColumns = []string{"id", "name", "price", "stock"}

type MySQLRepository struct {
	exec storage.Executor
}

func NewMySQLRepository(exec storage.Executor) *MySQLRepository {
	return &MySQLRepository{exec: exec}
}

// executor returns tx when the caller runs inside a unit of work and the
// repository's own executor otherwise.
func (r *MySQLRepository) executor(tx storage.Executor) storage.Executor {
	if tx != nil {
		return tx
	}
	return r.exec
}

func (r *MySQLRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	query, args, err := sq.Select(productColumns...).
		From("product").
		OrderBy("name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building product list query: %w", err)
	}

	return r.queryProducts(ctx, r.exec, query, args...)
}

func (r *MySQLRepository) SearchByName(ctx context.Context, substring string) ([]domain.Product, error) {
	query, args, err := sq.Select(productColumns...).
		From("product").
		Where(sq.Like{"name": "%" + storage.EscapeLike(substring) + "%"}).
		OrderBy("name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building product search query: %w", err)
	}

	return r.queryProducts(ctx, r.exec, query, args...)
}

func (r *MySQLRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query, args, err := sq.Select(productColumns...).
		From("product").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building product query: %w", err)
	}

	return r.queryOne(ctx, r.exec, id, query, args...)
}

// FindByIDForUpdate loads the product and locks its row until tx ends.
func (r *MySQLRepository) FindByIDForUpdate(ctx context.Context, tx storage.Executor, id int64) (*domain.Product, error) {
	query, args, err := sq.Select(productColumns...).
		From("product").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building product lock query: %w", err)
	}

	return r.queryOne(ctx, r.executor(tx), id, query, args...)
}

func (r *MySQLRepository) Insert(ctx context.Context, p domain.Product) (int64, error) {
	query := `INSERT INTO product (name, price, stock) VALUES (?, ?, ?)`

	res, err := r.exec.Execute(ctx, query, p.Name, p.Price, p.Stock)
	if err != nil {
		return 0, fmt.Errorf("inserting product: %w", err)
	}

	return res.GeneratedID, nil
}

// Update relies on the connection reporting matched rather than changed rows
// (clientFoundRows), so an update that leaves values as they were still
// counts as a match.
func (r *MySQLRepository) Update(ctx context.Context, p domain.Product) error {
	query := `UPDATE product SET name = ?, price = ?, stock = ? WHERE id = ?`

	res, err := r.exec.Execute(ctx, query, p.Name, p.Price, p.Stock, p.ID)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	if res.AffectedRows == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", p.ID))
	}

	return nil
}

func (r *MySQLRepository) UpdateStock(ctx context.Context, tx storage.Executor, id int64, stock int) error {
	query := `UPDATE product SET stock = ? WHERE id = ?`

	res, err := r.executor(tx).Execute(ctx, query, stock, id)
	if err != nil {
		if storage.IsCheckViolation(err) {
			return errors.NewValidationError("stock rejected by store",
				errors.ValidationDetail{Field: "stock", Message: "must be greater than or equal to 0"})
		}
		return fmt.Errorf("updating product stock: %w", err)
	}

	if res.AffectedRows == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}

	return nil
}

func (r *MySQLRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM product WHERE id = ?`

	res, err := r.exec.Execute(ctx, query, id)
	if err != nil {
		if storage.IsRowReferenced(err) {
			return errors.NewReferentialIntegrityError(
				fmt.Sprintf("product with id %d is referenced by sale lines", id), err)
		}
		return fmt.Errorf("deleting product: %w", err)
	}

	if res.AffectedRows == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}

	return nil
}

func (r *MySQLRepository) queryOne(ctx context.Context, exec storage.Executor, id int64, query string, args ...any) (*domain.Product, error) {
	products, err := r.queryProducts(ctx, exec, query, args...)
	if err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}

	return &products[0], nil
}

func (r *MySQLRepository) queryProducts(ctx context.Context, exec storage.Executor, query string, args ...any) ([]domain.Product, error) {
	res, err := exec.Execute(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}

	products := make([]domain.Product, 0, len(res.Rows))
	for _, row := range res.Rows {
		p, err := scanProduct(row)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	return products, nil
}

func scanProduct(row storage.Row) (domain.Product, error) {
	var (
		p   domain.Product
		err error
	)

	if p.ID, err = row.Int64("id"); err != nil {
		return p, err
	}
	if p.Name, err = row.String("name"); err != nil {
		return p, err
	}
	if p.Price, err = row.Decimal("price"); err != nil {
		return p, err
	}
	if p.Stock, err = row.Int("stock"); err != nil {
		return p, err
	}

	return p, nil
}
