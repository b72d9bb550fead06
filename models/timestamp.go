package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Timestamp is an optional upstream time. The zero value means absent.
//
// Decoding never fails: RFC 3339, offset-less ISO 8601 (read as UTC) and
// bare dates are accepted, anything else decodes as absent.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// ParseTimestamp reads s with the accepted layouts. ok is false when none
// matches.
func ParseTimestamp(s string) (Timestamp, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{Time: t}, true
		}
	}
	return Timestamp{}, false
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	*t = Timestamp{}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	if parsed, ok := ParseTimestamp(raw); ok {
		*t = parsed
	}
	return nil
}

// MarshalJSON writes null for an absent time and RFC 3339 otherwise.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
