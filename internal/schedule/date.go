package schedule

import (
	"fmt"
	"time"
)

// Date is a plain calendar date with no zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses "YYYY-MM-DD" without inventing a timezone for it.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}, nil
}

// Weekday resolves the day of week by anchoring the date at local noon.
// Anchoring at midnight is wrong: normalizing a midnight instant through a
// negative UTC offset (America/Sao_Paulo is UTC-3) lands on the previous
// calendar day. Noon is immune to any real-world offset.
func (d Date) Weekday(loc *time.Location) time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, loc).Weekday()
}

// At places a wall-clock time on this date in loc.
func (d Date) At(tod TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, tod.Hour, tod.Minute, tod.Second, 0, loc)
}

// NextMidnight is local midnight of the following calendar day, the
// normalized form of the "00:00:00" end-time sentinel.
func (d Date) NextMidnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, loc)
}

// Bounds returns the inclusive [startOfDay, endOfDay] range used to fetch
// the day's appointments.
func (d Date) Bounds(loc *time.Location) (time.Time, time.Time) {
	start := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	end := time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 999_000_000, loc)
	return start, end
}
