package responder

import "time"

// Unit is a lookback time unit code as written in a trigger query.
type Unit string

const (
	UnitSecond Unit = "s"
	UnitMinute Unit = "min"
	UnitHour   Unit = "h"
	UnitDay    Unit = "d"
	UnitWeek   Unit = "w"
	UnitMonth  Unit = "m"
)

// maxLookbackMonths bounds every scan. This is a hard ceiling, not a
// configurable option.
const maxLookbackMonths = 3

// DefaultCutoff returns now shifted back the maximum lookback and floored to
// the start of that month.
func DefaultCutoff(now time.Time) time.Time {
	return monthStart(now, maxLookbackMonths)
}

// Resolve converts a (magnitude, unit) lookback into an absolute cutoff,
// floored to the unit's boundary. Magnitude must be non-negative.
//
// An unrecognized unit, or a cutoff further back than DefaultCutoff, yields
// DefaultCutoff instead, so the result always satisfies
// DefaultCutoff(now) <= cutoff <= now.
func Resolve(now time.Time, magnitude int, unit Unit) time.Time {
	fallback := DefaultCutoff(now)

	var cutoff time.Time
	switch unit {
	case UnitSecond:
		cutoff = floorSecond(now.Add(-time.Duration(magnitude) * time.Second))
	case UnitMinute:
		cutoff = floorMinute(now.Add(-time.Duration(magnitude) * time.Minute))
	case UnitHour:
		cutoff = floorHour(now.Add(-time.Duration(magnitude) * time.Hour))
	case UnitDay:
		cutoff = floorDay(now.AddDate(0, 0, -magnitude))
	case UnitWeek:
		cutoff = floorWeek(now.AddDate(0, 0, -7*magnitude))
	case UnitMonth:
		cutoff = monthStart(now, magnitude)
	default:
		return fallback
	}

	if cutoff.Before(fallback) {
		return fallback
	}

	return cutoff
}

// monthStart returns the first instant of the calendar month `months` before
// now's month. Calendar subtraction, so variable month lengths never skew the
// result the way day-based approximations do.
func monthStart(now time.Time, months int) time.Time {
	year, month := now.Year(), int(now.Month())
	month -= months
	for month < 1 {
		month += 12
		year--
	}
	for month > 12 {
		month -= 12
		year++
	}

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
}

func floorSecond(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

func floorMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func floorHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func floorDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// floorWeek floors to the start of the ISO week (Monday).
func floorWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return floorDay(t).AddDate(0, 0, -offset)
}
