package utils

import "strconv"

// ToFloat64 converts the loosely-typed values found in upstream API payloads
// to float64. The EIA API reports numeric series values as JSON strings, so
// string parsing is supported alongside the numeric types.
// Returns 0 and false when the value cannot be interpreted as a number.
func ToFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
