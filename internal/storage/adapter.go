package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "stockpos/internal/errors"
)

// DBTX is the subset of *sql.DB and *sql.Tx the adapter needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Executor runs a single parameterized statement.
type Executor interface {
	Execute(ctx context.Context, statement string, args ...any) (*Result, error)
}

// Result is the normalized outcome of a statement. Reads fill Rows; writes
// fill AffectedRows and, for inserts, GeneratedID.
type Result struct {
	AffectedRows int64
	GeneratedID  int64
	Rows         []Row
}

type Adapter struct {
	conn DBTX
}

func NewAdapter(conn DBTX) *Adapter {
	return &Adapter{conn: conn}
}

func (a *Adapter) Execute(ctx context.Context, statement string, args ...any) (*Result, error) {
	switch verbOf(statement) {
	case "SELECT", "WITH", "SHOW", "DESCRIBE", "EXPLAIN":
		return a.query(ctx, statement, args)
	case "INSERT", "REPLACE":
		return a.exec(ctx, statement, args, true)
	default:
		return a.exec(ctx, statement, args, false)
	}
}

func (a *Adapter) query(ctx context.Context, statement string, args []any) (*Result, error) {
	rows, err := a.conn.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, apperrors.NewStorageError(statement, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.NewStorageError(statement, fmt.Errorf("reading columns: %w", err))
	}

	result := &Result{Rows: []Row{}}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.NewStorageError(statement, fmt.Errorf("scanning row: %w", err))
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(statement, fmt.Errorf("iterating rows: %w", err))
	}

	return result, nil
}

func (a *Adapter) exec(ctx context.Context, statement string, args []any, insert bool) (*Result, error) {
	res, err := a.conn.ExecContext(ctx, statement, args...)
	if err != nil {
		return nil, apperrors.NewStorageError(statement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, apperrors.NewStorageError(statement, fmt.Errorf("getting rows affected: %w", err))
	}

	result := &Result{AffectedRows: affected}
	if insert {
		id, err := res.LastInsertId()
		if err != nil {
			return nil, apperrors.NewStorageError(statement, fmt.Errorf("getting last insert id: %w", err))
		}
		result.GeneratedID = id
	}

	return result, nil
}

func verbOf(statement string) string {
	fields := strings.Fields(statement)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimLeft(fields[0], "("))
}
