package model

import (
	"fmt"
	"math"
	"strconv"
)

// FormatValue renders a scalar value in its persisted text form.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// NormalizeValue converts decoded values to the scalar set used by records.
// Integral numbers become int, other numbers float64, anything non-scalar its text form.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string, bool, int:
		return val
	case int64:
		return int(val)
	case int32:
		return int(val)
	case float32:
		return NormalizeValue(float64(val))
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return int(val)
		}
		return val
	case interface{ Int64() (int64, error) }:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		if f, ok := v.(interface{ Float64() (float64, error) }); ok {
			if fv, err := f.Float64(); err == nil {
				return fv
			}
		}
		return fmt.Sprint(val)
	default:
		return fmt.Sprint(val)
	}
}
