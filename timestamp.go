package mailtm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayout is the fixed layout the API uses, minus the "+00:00" suffix.
const (
	timestampLayout = "2006-01-02T15:04:05"
	timestampSuffix = "+00:00"
)

// Timestamp is a UTC instant in the API's "YYYY-MM-DDTHH:MM:SS+00:00" format.
// Decoding anything else fails.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s in the API timestamp format.
func ParseTimestamp(s string) (Timestamp, error) {
	if !strings.HasSuffix(s, timestampSuffix) {
		return Timestamp{}, fmt.Errorf("timestamp %q: want UTC offset %s", s, timestampSuffix)
	}
	value := strings.TrimSuffix(s, timestampSuffix)
	// time.Parse accepts fractional seconds the layout does not mention.
	if len(value) != len(timestampLayout) {
		return Timestamp{}, fmt.Errorf("timestamp %q: want layout %s%s", s, timestampLayout, timestampSuffix)
	}
	t, err := time.ParseInLocation(timestampLayout, value, time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return Timestamp{Time: t}, nil
}

// String formats the timestamp in the API format.
func (t Timestamp) String() string {
	return t.UTC().Format(timestampLayout) + timestampSuffix
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("timestamp is null")
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
