// Package validation holds the input rules applied before any catalog or
// sale write.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "stockpos/internal/errors"
)

// Money columns are DECIMAL(12,2) and stock/quantity columns are INT, so
// inputs are bounded to what the store keeps without rounding or overflow.
type ProductInput struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price" validate:"gt=0,lte=9999999999.99,cents"`
	Stock int             `json:"stock" validate:"gte=0,lte=2147483647"`
}

type StockInput struct {
	Stock int `json:"stock" validate:"gte=0,lte=2147483647"`
}

// SaleHeaderInput carries the lines only to check that there is at least
// one; each line is validated on its own as it is processed.
type SaleHeaderInput struct {
	Timestamp string          `json:"timestamp" validate:"required"`
	Total     decimal.Decimal `json:"total" validate:"gt=0,lte=9999999999.99,cents"`
	Lines     []SaleLineInput `json:"lines" validate:"min=1"`
}

type SaleLineInput struct {
	ProductID int64           `json:"productId" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"gt=0,lte=2147483647"`
	Subtotal  decimal.Decimal `json:"subtotal" validate:"gte=0,lte=9999999999.99,cents"`
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("cents", hasCents)

	return v
}

// hasCents reports whether a decimal field has at most two decimal places.
// The custom type func hands the rule a float64, so the decimal is read back
// from the parent struct.
func hasCents(fl validator.FieldLevel) bool {
	parent := fl.Parent()
	for parent.Kind() == reflect.Ptr {
		if parent.IsNil() {
			return true
		}
		parent = parent.Elem()
	}

	field := parent.FieldByName(fl.StructFieldName())
	for field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}

	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return d.Equal(d.Truncate(2))
}

// NormalizeName trims surrounding whitespace from a product name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

func ValidateProduct(in ProductInput) error {
	return check(in, "")
}

func ValidateStock(in StockInput) error {
	return check(in, "")
}

func ValidateSaleHeader(in SaleHeaderInput) error {
	return check(in, "")
}

// ValidateRequest checks the validate tags of a decoded request body, such
// as fields that must be present.
func ValidateRequest(v any) error {
	return check(v, "")
}

// ValidateSaleLine validates the line at position index of a sale.
func ValidateSaleLine(index int, in SaleLineInput) error {
	return check(in, fmt.Sprintf("lines[%d].", index))
}

func check(v any, prefix string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(err.Error())
	}

	details := make([]apperrors.ValidationDetail, 0, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := prefix + fieldPath(fe)
		msg := field + " " + describe(fe)
		details = append(details, apperrors.ValidationDetail{Field: field, Message: msg})
		messages = append(messages, msg)
	}

	return apperrors.NewValidationError(strings.Join(messages, "; "), details...)
}

// fieldPath is the JSON path of the field below the validated struct, for
// example "lines[1].subtotal".
func fieldPath(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "cents":
		return "must have at most 2 decimal places"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must not be empty"
		}
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}
