package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
)

// Timestamp is a backend time value. Decoding is lenient: ISO-8601 with or
// without zone, epoch seconds or milliseconds and common textual layouts are
// accepted; anything else decodes as the zero time.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s the way JSON timestamps are decoded. Zone-less values are UTC.
func ParseTimestamp(s string) (Timestamp, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, false
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return Timestamp{}, false
	}

	return Timestamp{Time: t}, true
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			raw = ""
		}
	}

	*t, _ = ParseTimestamp(raw)

	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(t.UTC().Format(time.RFC3339Nano)) //nolint:wrapcheck
}

// Date renders the calendar date, e.g. "Jan 2, 2006".
func (t Timestamp) Date() string {
	if t.IsZero() {
		return "Unknown date"
	}

	return t.Format("Jan 2, 2006")
}

// DateTime renders the short date and clock time, e.g. "Jan 2, 3:04 PM".
func (t Timestamp) DateTime() string {
	if t.IsZero() {
		return ""
	}

	return t.Format("Jan 2, 3:04 PM")
}

// Ago renders the distance to now, e.g. "3 days ago".
func (t Timestamp) Ago() string {
	if t.IsZero() {
		return ""
	}

	return humanize.Time(t.Time)
}
