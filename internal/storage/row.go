package storage

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Row maps column names to the values the driver returned. MySQL hands back
// []byte for text-protocol results and typed values for prepared statements,
// so the accessors accept both.
type Row map[string]any

func (r Row) value(col string) (any, error) {
	v, ok := r[col]
	if !ok {
		return nil, fmt.Errorf("column %q not in result", col)
	}
	if b, ok := v.([]byte); ok {
		return string(b), nil
	}
	return v, nil
}

func (r Row) Int64(col string) (int64, error) {
	v, err := r.value(col)
	if err != nil {
		return 0, err
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", col, err)
	}
	return n, nil
}

func (r Row) Int(col string) (int, error) {
	n, err := r.Int64(col)
	return int(n), err
}

func (r Row) String(col string) (string, error) {
	v, err := r.value(col)
	if err != nil {
		return "", err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("column %q: %w", col, err)
	}
	return s, nil
}

// Decimal reads a numeric column. NULL (e.g. SUM over no rows) reads as zero.
func (r Row) Decimal(col string) (decimal.Decimal, error) {
	v, err := r.value(col)
	if err != nil {
		return decimal.Zero, err
	}

	switch x := v.(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Zero, fmt.Errorf("column %q: %w", col, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	default:
		f, err := cast.ToFloat64E(x)
		if err != nil {
			return decimal.Zero, fmt.Errorf("column %q: %w", col, err)
		}
		return decimal.NewFromFloat(f), nil
	}
}
