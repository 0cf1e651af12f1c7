package errors

import (
	"errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// InsufficientStockError reports a sale line asking for more units than the
// product holds at the moment the line is processed.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): requested %d, available %d",
		e.ProductID, e.ProductName, e.Requested, e.Available)
}

func NewInsufficientStockError(productID int64, productName string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID:   productID,
		ProductName: productName,
		Requested:   requested,
		Available:   available,
	}
}

func IsInsufficientStockError(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

type ReferentialIntegrityError struct {
	Message string
	Cause   error
}

func (e *ReferentialIntegrityError) Error() string {
	return e.Message
}

func (e *ReferentialIntegrityError) Unwrap() error {
	return e.Cause
}

func NewReferentialIntegrityError(message string, cause error) *ReferentialIntegrityError {
	return &ReferentialIntegrityError{
		Message: message,
		Cause:   cause,
	}
}

func IsReferentialIntegrityError(err error) (*ReferentialIntegrityError, bool) {
	var rie *ReferentialIntegrityError
	if errors.As(err, &rie) {
		return rie, true
	}
	return nil, false
}

// StorageError wraps a failure of the underlying store together with the
// statement that produced it.
type StorageError struct {
	Statement string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("executing %q: %v", e.Statement, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

func NewStorageError(statement string, cause error) *StorageError {
	return &StorageError{
		Statement: statement,
		Cause:     cause,
	}
}

func IsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

type DeadlockError struct {
	Message string
}

func (e *DeadlockError) Error() string {
	return e.Message
}

func NewDeadlockError(message string) *DeadlockError {
	return &DeadlockError{Message: message}
}

func IsDeadlockError(err error) (*DeadlockError, bool) {
	var de *DeadlockError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
