package ingest

import (
	"fmt"
	"time"
)

// timestamp layouts tried in order, matching the crates.io dump's mixed
// history of export formats.
const (
	layoutFractional = "2006-01-02 15:04:05.999999999"
	layoutPlain      = "2006-01-02 15:04:05"
)

// parseTimestamp accepts RFC3339, then the two strftime-derived layouts
// the dump historically used, in that order.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(layoutFractional, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(layoutPlain, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", s)
}
