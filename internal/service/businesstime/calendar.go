package businesstime

import (
	"time"
)

// ReferenceTimezone is the single timezone all weekend and elapsed-time
// decisions are made in, regardless of the host's local timezone.
const ReferenceTimezone = "America/New_York"

// Calendar classifies instants as business or weekend time in the
// reference timezone and measures business durations.
type Calendar struct {
	loc *time.Location
}

func NewCalendar() (*Calendar, error) {
	loc, err := time.LoadLocation(ReferenceTimezone)
	if err != nil {
		return nil, err
	}
	return &Calendar{loc: loc}, nil
}

// IsWeekend reports whether t falls on a Saturday or Sunday in the
// reference timezone.
func (c *Calendar) IsWeekend(t time.Time) bool {
	day := t.In(c.loc).Weekday()
	return day == time.Saturday || day == time.Sunday
}

// Duration returns the portion of [start, end) that falls on business
// days in the reference timezone. The interval is walked one calendar
// day at a time; weekend days contribute nothing and partial first and
// last days count only their overlap with the interval. start >= end
// yields zero.
func (c *Calendar) Duration(start, end time.Time) time.Duration {
	if !start.Before(end) {
		return 0
	}

	var total time.Duration

	cursor := start.In(c.loc)
	endLocal := end.In(c.loc)

	for cursor.Before(endLocal) {
		dayEnd := startOfNextDay(cursor)
		segmentEnd := dayEnd
		if endLocal.Before(dayEnd) {
			segmentEnd = endLocal
		}

		if !c.IsWeekend(cursor) {
			total += segmentEnd.Sub(cursor)
		}

		cursor = dayEnd
	}

	return total
}

// startOfNextDay returns midnight of the calendar day after t, in t's
// location. DST transitions are handled by date normalization.
func startOfNextDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, t.Location())
}
