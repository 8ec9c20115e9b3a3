package model

import (
	"testing"
	"time"
)

func TestWeekdayNameTotal(t *testing.T) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := WeekdayName(wd)
		if name == "" {
			t.Fatalf("no name for weekday %v", wd)
		}
		if !IsWeekdayName(name) {
			t.Fatalf("WeekdayName(%v) = %q, but IsWeekdayName rejects it", wd, name)
		}
	}
}

func TestWeekdayNamesOrder(t *testing.T) {
	names := WeekdayNames()
	if len(names) != 7 {
		t.Fatalf("expected 7 weekdays, got %d", len(names))
	}
	if names[0] != "Montag" {
		t.Fatalf("week starts with %q, expected Montag", names[0])
	}
	if names[6] != "Sonntag" {
		t.Fatalf("week ends with %q, expected Sonntag", names[6])
	}

	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			t.Fatalf("duplicate weekday %q", name)
		}
		seen[name] = true
	}
}

func TestIsWeekdayNameRejectsUnknown(t *testing.T) {
	for _, name := range []string{"", "Monday", "montag", "Feiertag"} {
		if IsWeekdayName(name) {
			t.Fatalf("IsWeekdayName(%q) = true", name)
		}
	}
}
