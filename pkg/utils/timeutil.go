package utils

import (
	"time"
)

// Layouts used across the newsletter, mail subject and search queries.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

// Clock returns the current time. Components take one so tests can pin it.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// LoadLocation resolves an IANA zone name. An empty name or "Local" yields
// time.Local; an unknown zone falls back to time.Local as well, together with
// the lookup error so callers can log it.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local, err
	}
	return loc, nil
}

// In returns a clock that reports c's time in loc.
func (c Clock) In(loc *time.Location) Clock {
	if loc == nil {
		return c
	}
	return func() time.Time { return c().In(loc) }
}

// FormatDate formats t as "2006-01-02".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDateTime formats t as "2006-01-02 15:04" (minute precision).
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// DaysAgo returns midnight of the calendar day that lies the given number of
// 24h days before now, in now's location. Used as the lower bound of a news
// search window.
func DaysAgo(now time.Time, days int) time.Time {
	return StartOfDay(now.Add(-time.Duration(days) * 24 * time.Hour))
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
