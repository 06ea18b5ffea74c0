package models

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the wire format for every timestamp in the public API.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateTime wraps time.Time to marshal as "yyyy-MM-dd HH:mm:ss" instead of RFC 3339.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateTimeLayout) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		return fmt.Errorf("invalid datetime %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// ParseDateTime parses a query-parameter timestamp in the API wire format.
func ParseDateTime(s string) (time.Time, error) {
	return time.Parse(DateTimeLayout, s)
}
