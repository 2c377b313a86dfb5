package responder

import (
	"testing"
	"time"
)

var testNow = time.Date(2015, 3, 18, 17, 10, 14, 0, time.UTC)

func TestResolveFloorsToUnitBoundary(t *testing.T) {
	tests := []struct {
		name      string
		magnitude int
		unit      Unit
		want      time.Time
	}{
		{"five days", 5, UnitDay, time.Date(2015, 3, 13, 0, 0, 0, 0, time.UTC)},
		{"five weeks", 5, UnitWeek, time.Date(2015, 2, 9, 0, 0, 0, 0, time.UTC)},
		{"two months", 2, UnitMonth, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"ten hours", 10, UnitHour, time.Date(2015, 3, 18, 7, 0, 0, 0, time.UTC)},
		{"ten minutes", 10, UnitMinute, time.Date(2015, 3, 18, 17, 0, 0, 0, time.UTC)},
		{"three hundred seconds", 300, UnitSecond, time.Date(2015, 3, 18, 17, 5, 14, 0, time.UTC)},
		{"zero days is start of today", 0, UnitDay, time.Date(2015, 3, 18, 0, 0, 0, 0, time.UTC)},
		{"zero weeks is start of this week", 0, UnitWeek, time.Date(2015, 3, 16, 0, 0, 0, 0, time.UTC)},
		{"zero months is start of this month", 0, UnitMonth, time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(testNow, tt.magnitude, tt.unit)
			if !got.Equal(tt.want) {
				t.Fatalf("Resolve(%d, %q) = %v, want %v", tt.magnitude, tt.unit, got, tt.want)
			}
		})
	}
}

func TestResolveClampsToDefaultCutoff(t *testing.T) {
	want := time.Date(2014, 12, 1, 0, 0, 0, 0, time.UTC)

	if got := DefaultCutoff(testNow); !got.Equal(want) {
		t.Fatalf("DefaultCutoff = %v, want %v", got, want)
	}

	// Seven months exceeds the maximum lookback.
	if got := Resolve(testNow, 7, UnitMonth); !got.Equal(want) {
		t.Fatalf("Resolve(7, m) = %v, want default cutoff %v", got, want)
	}

	// Unrecognized units fall back the same way.
	if got := Resolve(testNow, 2, Unit("q")); !got.Equal(want) {
		t.Fatalf("Resolve(2, q) = %v, want default cutoff %v", got, want)
	}
}

func TestResolveNeverExceedsNow(t *testing.T) {
	units := []Unit{UnitSecond, UnitMinute, UnitHour, UnitDay, UnitWeek, UnitMonth}
	for _, unit := range units {
		for _, magnitude := range []int{0, 1, 10, 1000} {
			got := Resolve(testNow, magnitude, unit)
			if got.After(testNow) {
				t.Fatalf("Resolve(%d, %q) = %v is after now %v", magnitude, unit, got, testNow)
			}
			if got.Before(DefaultCutoff(testNow)) {
				t.Fatalf("Resolve(%d, %q) = %v is before the default cutoff", magnitude, unit, got)
			}
		}
	}
}

func TestMonthArithmeticUsesCalendarMonths(t *testing.T) {
	// End-of-month anchors must not slide into the wrong month the way a
	// fixed 30-day shift would.
	now := time.Date(2015, 3, 31, 12, 0, 0, 0, time.UTC)

	want := time.Date(2015, 2, 1, 0, 0, 0, 0, time.UTC)
	if got := Resolve(now, 1, UnitMonth); !got.Equal(want) {
		t.Fatalf("Resolve(1, m) from Mar 31 = %v, want %v", got, want)
	}
}

func TestMonthStartCrossesYearBoundary(t *testing.T) {
	now := time.Date(2015, 1, 15, 8, 0, 0, 0, time.UTC)

	want := time.Date(2014, 10, 1, 0, 0, 0, 0, time.UTC)
	if got := DefaultCutoff(now); !got.Equal(want) {
		t.Fatalf("DefaultCutoff in January = %v, want %v", got, want)
	}
}
