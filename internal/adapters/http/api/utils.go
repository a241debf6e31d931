package api

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// queryTime parses an optional RFC3339 parameter. A missing value is the zero time.
func queryTime(q url.Values, name string) (time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s; must be RFC3339", name)
	}
	return t, nil
}

// queryInt parses an optional non-negative integer. A missing value is zero.
func queryInt(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s; must be a non-negative integer", name)
	}
	return n, nil
}

// queryFloat parses an optional positive number. A missing value is zero.
func queryFloat(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s; must be a positive number", name)
	}
	return f, nil
}
