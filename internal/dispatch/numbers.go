package dispatch

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// parseNumber reads an openWB scalar payload. Surrounding whitespace is
// ignored and an empty payload reads as 0. Anything else that is not a
// number yields NaN, which is stored as-is.
func parseNumber(payload string) float64 {
	s := strings.TrimSpace(payload)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			// ParseFloat already returns ±Inf for out-of-range values.
			return v
		}
		return math.NaN()
	}
	return v
}
