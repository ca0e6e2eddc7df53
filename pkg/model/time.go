package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ISOTime is a time.Time that also accepts ISO-8601 timestamps without a
// zone designator, which the submission side historically produced. Zoneless
// values are interpreted as UTC.
type ISOTime time.Time

const isoNoZone = "2006-01-02T15:04:05"

func (t ISOTime) Time() time.Time {
	return time.Time(t)
}

func (t ISOTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).Format(time.RFC3339))
}

func (t *ISOTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		*t = ISOTime(parsed)
		return nil
	}
	parsed, err := time.Parse(isoNoZone, s)
	if err != nil {
		return fmt.Errorf("invalid booking_datetime %q: %w", s, err)
	}
	*t = ISOTime(parsed.UTC())
	return nil
}
