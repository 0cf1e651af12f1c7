package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stockpos/internal/errors"
)

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAdapter(db), mock
}

func TestVerbOf(t *testing.T) {
	tests := []struct {
		statement string
		want      string
	}{
		{"SELECT * FROM product", "SELECT"},
		{"  select id from sale", "SELECT"},
		{"\n\tINSERT INTO sale (timestamp, total) VALUES (?, ?)", "INSERT"},
		{"(SELECT 1)", "SELECT"},
		{"update product set stock = ?", "UPDATE"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, verbOf(tt.statement))
		})
	}
}

func TestAdapter_Execute_Select(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, price, stock FROM product WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(int64(1), "Widget", 9.99, int64(10)))

	res, err := adapter.Execute(context.Background(), "SELECT id, name, price, stock FROM product WHERE id = ?", 1)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Zero(t, res.AffectedRows)
	assert.Zero(t, res.GeneratedID)

	id, err := res.Rows[0].Int64("id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	name, err := res.Rows[0].String("name")
	require.NoError(t, err)
	assert.Equal(t, "Widget", name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_Execute_SelectNoRows(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM sale")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	res, err := adapter.Execute(context.Background(), "SELECT id FROM sale")
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_Execute_Insert(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sale (timestamp, total) VALUES (?, ?)")).
		WithArgs("2024-01-01T10:00:00Z", "19.98").
		WillReturnResult(sqlmock.NewResult(42, 1))

	res, err := adapter.Execute(context.Background(),
		"INSERT INTO sale (timestamp, total) VALUES (?, ?)", "2024-01-01T10:00:00Z", "19.98")
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.GeneratedID)
	assert.Equal(t, int64(1), res.AffectedRows)
	assert.Empty(t, res.Rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_Execute_Update(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE product SET stock = ? WHERE id = ?")).
		WithArgs(8, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := adapter.Execute(context.Background(), "UPDATE product SET stock = ? WHERE id = ?", 8, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.AffectedRows)
	assert.Zero(t, res.GeneratedID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_Execute_WrapsStoreError(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	cause := errors.New("disk I/O error")

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM product WHERE id = ?")).
		WithArgs(1).
		WillReturnError(cause)

	_, err := adapter.Execute(context.Background(), "DELETE FROM product WHERE id = ?", 1)
	require.Error(t, err)

	se, ok := apperrors.IsStorageError(err)
	require.True(t, ok)
	assert.Equal(t, "DELETE FROM product WHERE id = ?", se.Statement)
	assert.True(t, errors.Is(err, cause))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_Execute_QueryError(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM sale")).
		WillReturnError(errors.New("connection reset"))

	res, err := adapter.Execute(context.Background(), "SELECT id FROM sale")
	assert.Nil(t, res)
	_, ok := apperrors.IsStorageError(err)
	assert.True(t, ok)
}
