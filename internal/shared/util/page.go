package util

import "strconv"

// ParsePage reads limit/offset query values. Missing or out-of-range limits
// fall back to def or are capped at max; negative offsets become zero.
func ParsePage(limitStr, offsetStr string, def, max int) (int, int) {
	limit := def
	if v, err := strconv.Atoi(limitStr); err == nil {
		limit = v
	}
	if limit <= 0 || limit > max {
		limit = max
	}
	offset := 0
	if v, err := strconv.Atoi(offsetStr); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
