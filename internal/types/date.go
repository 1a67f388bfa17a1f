package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the accepted input formats, tried in order. LLMs and
// uploaded resumes produce a mix of ISO dates and human-readable months.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"January 2006",
	"Jan 2006",
}

// Date is a calendar date with lenient JSON decoding. The zero value means
// "absent"; an absent end date is rendered as ongoing/"Present".
type Date struct {
	t time.Time
}

// NewDate builds a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses s using the accepted layouts.
// Empty input yields the zero Date without error.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	// Full timestamps occasionally come back from models; keep the date part.
	if len(s) > 10 && s[4] == '-' && s[7] == '-' {
		s = s[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t: t.UTC()}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(other Date) bool {
	if d.IsZero() || other.IsZero() {
		return d.IsZero() == other.IsZero()
	}
	return d.t.Equal(other.t)
}

// Time returns the underlying time at midnight UTC.
func (d Date) Time() time.Time {
	return d.t
}

// String returns the ISO form, or an empty string when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01-02")
}

// YearMonth returns the "YYYY-MM" projection used by renderers.
func (d Date) YearMonth() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format("2006-01")
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when absent.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null, "", and any of the lenient layouts.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a JSON string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
