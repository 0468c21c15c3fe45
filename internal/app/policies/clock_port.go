package policies

import "time"

// Clock supplies "now" so handlers can be tested against fixed dates.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
