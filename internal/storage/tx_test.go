package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stockpos/internal/errors"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestStore_InTx_Commit(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sale")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.InTx(context.Background(), nil, func(exec Executor) error {
		_, err := exec.Execute(context.Background(), "INSERT INTO sale (timestamp, total) VALUES (?, ?)", "2024-01-01", "1")
		return err
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InTx_RollbackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	failure := errors.New("line 2 failed")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sale")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	err := store.InTx(context.Background(), nil, func(exec Executor) error {
		if _, err := exec.Execute(context.Background(), "INSERT INTO sale (timestamp, total) VALUES (?, ?)", "2024-01-01", "1"); err != nil {
			return err
		}
		return failure
	})

	assert.ErrorIs(t, err, failure)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InTx_RollbackFailureJoined(t *testing.T) {
	store, mock := newMockStore(t)
	failure := errors.New("validation failed")
	rbFailure := errors.New("connection lost")

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(rbFailure)

	err := store.InTx(context.Background(), nil, func(exec Executor) error {
		return failure
	})

	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, err, rbFailure)
}

func TestStore_InTx_RollbackOnPanic(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = store.InTx(context.Background(), nil, func(exec Executor) error {
			panic("boom")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InTx_BeginError(t *testing.T) {
	store, mock := newMockStore(t)

	cause := errors.New("too many connections")
	mock.ExpectBegin().WillReturnError(cause)

	called := false
	err := store.InTx(context.Background(), nil, func(exec Executor) error {
		called = true
		return nil
	})

	se, ok := apperrors.IsStorageError(err)
	require.True(t, ok)
	assert.Equal(t, "BEGIN", se.Statement)
	assert.ErrorIs(t, err, cause)
	assert.False(t, called)
}

func TestStore_InTx_CommitError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})

	err := store.InTx(context.Background(), nil, func(exec Executor) error {
		return nil
	})

	se, ok := apperrors.IsStorageError(err)
	require.True(t, ok)
	assert.Equal(t, "COMMIT", se.Statement)
	assert.True(t, IsDeadlock(err))
}

func TestMySQLErrorClassification(t *testing.T) {
	assert.True(t, IsDeadlock(&mysql.MySQLError{Number: 1213}))
	assert.True(t, IsDeadlock(&mysql.MySQLError{Number: 1205}))
	assert.False(t, IsDeadlock(&mysql.MySQLError{Number: 1451}))
	assert.False(t, IsDeadlock(errors.New("plain")))

	assert.True(t, IsRowReferenced(&mysql.MySQLError{Number: 1451}))
	assert.True(t, IsMissingReference(&mysql.MySQLError{Number: 1452}))
	assert.True(t, IsCheckViolation(&mysql.MySQLError{Number: 3819}))
}
