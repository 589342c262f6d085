// Package chromet converts between Go time.Time values and Chrome's
// history timestamp format: microseconds since 1601-01-01T00:00:00Z.
package chromet

import (
	"errors"
	"time"
)

// Seconds between the Chrome epoch (1601-01-01) and the Unix epoch (1970-01-01).
const unixToChromeSeconds = 11644473600

// ErrInvalidTime is returned when a conversion is attempted on an instant
// that carries no usable point in time (the zero time.Time).
var ErrInvalidTime = errors.New("chromet: invalid instant")

// ToChromeTime converts an absolute instant to Chrome microseconds.
// The computation goes through Unix seconds rather than time.Sub, because
// the 424-year span to the Chrome epoch overflows time.Duration.
func ToChromeTime(t time.Time) (int64, error) {
	if t.IsZero() {
		return 0, ErrInvalidTime
	}
	return (t.Unix()+unixToChromeSeconds)*1_000_000 + int64(t.Nanosecond())/1_000, nil
}

// FromChromeTime converts Chrome microseconds back to a UTC instant.
func FromChromeTime(us int64) time.Time {
	sec := us/1_000_000 - unixToChromeSeconds
	rem := us % 1_000_000
	return time.Unix(sec, rem*1_000).UTC()
}
