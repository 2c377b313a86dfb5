package responder

import (
	"testing"
	"time"
)

func TestParseTimeTokens(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"today", time.Date(2015, 3, 18, 0, 0, 0, 0, time.UTC)},
		{"this week", time.Date(2015, 3, 16, 0, 0, 0, 0, time.UTC)},
		{"this month", time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"5d", time.Date(2015, 3, 13, 0, 0, 0, 0, time.UTC)},
		{"d5", time.Date(2015, 3, 13, 0, 0, 0, 0, time.UTC)},
		{"2m", time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"m2", time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"10min", time.Date(2015, 3, 18, 17, 0, 0, 0, time.UTC)},
		{"min10", time.Date(2015, 3, 18, 17, 0, 0, 0, time.UTC)},
		{"d", time.Date(2015, 3, 18, 0, 0, 0, 0, time.UTC)},
		{"w", time.Date(2015, 3, 16, 0, 0, 0, 0, time.UTC)},
		// Unknown single-letter units clamp to the default lookback.
		{"2q", time.Date(2014, 12, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Parse(tt.raw, testNow)
			if !got.HasCutoff() {
				t.Fatalf("Parse(%q) has no cutoff, want %v", tt.raw, tt.want)
			}
			if !got.Cutoff.Equal(tt.want) {
				t.Fatalf("Parse(%q).Cutoff = %v, want %v", tt.raw, got.Cutoff, tt.want)
			}
			if got.Count != 0 {
				t.Fatalf("Parse(%q).Count = %d, want 0", tt.raw, got.Count)
			}
		})
	}
}

func TestParseBareCount(t *testing.T) {
	got := Parse("3", testNow)
	if got.Count != 3 {
		t.Fatalf("Parse(\"3\").Count = %d, want 3", got.Count)
	}
	if got.HasCutoff() {
		t.Fatalf("Parse(\"3\") has cutoff %v, want none", got.Cutoff)
	}
}

func TestParseUnrecognizedYieldsZeroQuery(t *testing.T) {
	for _, raw := range []string{"", "   ", "0", "-2", "hello world", "5days", "2.5d", "this"} {
		got := Parse(raw, testNow)
		if got.HasCutoff() || got.Count != 0 || got.Note != "" {
			t.Fatalf("Parse(%q) = %+v, want zero query", raw, got)
		}
	}
}

func TestParseCapturesTrailingNote(t *testing.T) {
	tests := []struct {
		raw  string
		note string
	}{
		{"5d please check the doodle", "please check the doodle"},
		{"3 see you tomorrow", "see you tomorrow"},
		{"today standup in 5", "standup in 5"},
		{"this week   retro time", "retro time"},
	}

	for _, tt := range tests {
		got := Parse(tt.raw, testNow)
		if got.Note != tt.note {
			t.Fatalf("Parse(%q).Note = %q, want %q", tt.raw, got.Note, tt.note)
		}
	}
}

func TestParseIsCaseInsensitive(t *testing.T) {
	upper := Parse("TODAY", testNow)
	lower := Parse("today", testNow)
	if !upper.Cutoff.Equal(lower.Cutoff) {
		t.Fatalf("Parse(\"TODAY\").Cutoff = %v, want %v", upper.Cutoff, lower.Cutoff)
	}

	got := Parse("5D", testNow)
	want := time.Date(2015, 3, 13, 0, 0, 0, 0, time.UTC)
	if !got.Cutoff.Equal(want) {
		t.Fatalf("Parse(\"5D\").Cutoff = %v, want %v", got.Cutoff, want)
	}
}

func TestSplitTimeToken(t *testing.T) {
	tests := []struct {
		token     string
		magnitude int
		unit      Unit
		ok        bool
	}{
		{"5d", 5, UnitDay, true},
		{"d5", 5, UnitDay, true},
		{"10min", 10, UnitMinute, true},
		{"min10", 10, UnitMinute, true},
		{"w", 0, UnitWeek, true},
		{"300s", 300, UnitSecond, true},
		{"5", 0, "", false},
		{"5days", 0, "", false},
		{"mins", 0, "", false},
		{"5d5", 0, "", false},
		{"d5d", 0, "", false},
	}

	for _, tt := range tests {
		magnitude, unit, ok := splitTimeToken(tt.token)
		if ok != tt.ok {
			t.Fatalf("splitTimeToken(%q) ok = %v, want %v", tt.token, ok, tt.ok)
		}
		if !ok {
			continue
		}
		if magnitude != tt.magnitude || unit != tt.unit {
			t.Fatalf("splitTimeToken(%q) = (%d, %q), want (%d, %q)", tt.token, magnitude, unit, tt.magnitude, tt.unit)
		}
	}
}
