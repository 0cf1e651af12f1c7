package storage

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
	errCheckConstraint = 3819
)

func mysqlErrorNumber(err error) (uint16, bool) {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number, true
	}
	return 0, false
}

// IsDeadlock reports a deadlock or lock wait timeout. Both abort the
// transaction, which may be retried from the start.
func IsDeadlock(err error) bool {
	n, ok := mysqlErrorNumber(err)
	return ok && (n == errDeadlock || n == errLockWaitTimeout)
}

// IsRowReferenced reports a delete blocked by an ON DELETE RESTRICT key.
func IsRowReferenced(err error) bool {
	n, ok := mysqlErrorNumber(err)
	return ok && n == errRowIsReferenced
}

// IsMissingReference reports an insert whose foreign key has no parent row.
func IsMissingReference(err error) bool {
	n, ok := mysqlErrorNumber(err)
	return ok && n == errNoReferencedRow
}

func IsCheckViolation(err error) bool {
	n, ok := mysqlErrorNumber(err)
	return ok && n == errCheckConstraint
}
