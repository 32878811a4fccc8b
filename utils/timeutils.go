package utils

import (
	"time"
)

// ISO8601Millis is the layout browsers produce with Date.prototype.toISOString.
const ISO8601Millis = "2006-01-02T15:04:05.000Z07:00"

// Iso8601 formats t in UTC with millisecond precision.
func Iso8601(t time.Time) string {
	return t.UTC().Format(ISO8601Millis)
}

// FromUnixSeconds converts a feed timestamp to a UTC time.
func FromUnixSeconds(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// MinutesUntil returns whole minutes from now until t, rounded down and
// clamped at zero for times already passed.
func MinutesUntil(t, now time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// Timestamp is a time.Time that marshals to JSON via Iso8601.
type Timestamp time.Time

// Time returns the underlying time.
func (t Timestamp) Time() time.Time { return time.Time(t) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Iso8601(time.Time(t)) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	parsed, err := time.Parse(`"`+time.RFC3339Nano+`"`, string(b))
	if err != nil {
		return err
	}
	*t = Timestamp(parsed.UTC())
	return nil
}
