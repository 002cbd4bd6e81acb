package server

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Filter params are optional: empty means absent, anything else must parse
// or the request is rejected.

const dateOnly = "2006-01-02"

var errBadTimeParam = errors.New("invalid_time")

func parseOptionalBool(raw string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseOptionalInt64(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseOptionalTime accepts RFC 3339 or a bare date. A bare date snaps to the
// start of its day, or to the last nanosecond when it bounds the end of a
// range.
func parseOptionalTime(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	day, err := time.Parse(dateOnly, raw)
	if err != nil {
		return nil, errBadTimeParam
	}
	ts := day.UTC()
	if endOfDay {
		ts = ts.Add(24*time.Hour - time.Nanosecond)
	}
	return &ts, nil
}
