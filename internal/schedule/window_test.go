package schedule_test

import (
	"testing"
	"time"

	"github.com/kiddoconnect/campaign-service/internal/schedule"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence_SameYear(t *testing.T) {
	birth := date(2019, time.June, 28)
	asOf := date(2025, time.March, 30)

	got := schedule.NextOccurrence(birth, asOf)
	want := date(2025, time.June, 28)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextOccurrence_RollsToNextYear(t *testing.T) {
	birth := date(2019, time.January, 10)
	asOf := date(2025, time.March, 30)

	got := schedule.NextOccurrence(birth, asOf)
	want := date(2026, time.January, 10)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextOccurrence_TodayCountsAsNext(t *testing.T) {
	birth := date(2019, time.March, 30)
	asOf := date(2025, time.March, 30)

	got := schedule.NextOccurrence(birth, asOf)
	if !got.Equal(date(2025, time.March, 30)) {
		t.Fatalf("occurrence on asOf's day must not roll over, got %v", got)
	}
	if days := schedule.DaysUntil(birth, asOf); days != 0 {
		t.Fatalf("expected 0 days until, got %d", days)
	}
}

// A Feb-29 birthdate in a non-leap year must clamp to Feb 28, not resolve
// to Mar 1 or error out.
func TestNextOccurrence_LeapDayClamp(t *testing.T) {
	birth := date(2020, time.February, 29)

	got := schedule.NextOccurrence(birth, date(2025, time.January, 15))
	want := date(2025, time.February, 28)
	if !got.Equal(want) {
		t.Fatalf("expected clamp to %v, got %v", want, got)
	}

	// In a leap year the real Feb 29 is used.
	got = schedule.NextOccurrence(birth, date(2028, time.January, 15))
	want = date(2028, time.February, 29)
	if !got.Equal(want) {
		t.Fatalf("expected %v in leap year, got %v", want, got)
	}
}

func TestDaysUntil_ExactCount(t *testing.T) {
	// March 30 to June 28 of the same non-leap year is exactly 90 days.
	birth := date(2018, time.June, 28)
	asOf := date(2025, time.March, 30)

	if days := schedule.DaysUntil(birth, asOf); days != 90 {
		t.Fatalf("expected 90 days, got %d", days)
	}
}

func TestDaysUntil_IgnoresTimeOfDay(t *testing.T) {
	birth := date(2018, time.June, 28)
	asOf := time.Date(2025, time.March, 30, 23, 59, 59, 0, time.UTC)

	if days := schedule.DaysUntil(birth, asOf); days != 90 {
		t.Fatalf("expected 90 days regardless of wall clock, got %d", days)
	}
}

func TestMatchOffset(t *testing.T) {
	offsets := []int{90, 60, 30, 15}

	tests := []struct {
		name      string
		birth     time.Time
		asOf      time.Time
		want      int
		wantMatch bool
	}{
		{"90 days out", date(2018, time.June, 28), date(2025, time.March, 30), 90, true},
		{"30 days out", date(2018, time.April, 29), date(2025, time.March, 30), 30, true},
		{"15 days out", date(2018, time.April, 14), date(2025, time.March, 30), 15, true},
		{"no window", date(2018, time.April, 1), date(2025, time.March, 30), 0, false},
		{"birthday today is not a window", date(2018, time.March, 30), date(2025, time.March, 30), 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := schedule.MatchOffset(tc.birth, tc.asOf, offsets)
			if ok != tc.wantMatch || got != tc.want {
				t.Fatalf("expected (%d,%v), got (%d,%v)", tc.want, tc.wantMatch, got, ok)
			}
		})
	}
}

func TestAgeAtNextOccurrence(t *testing.T) {
	birth := date(2020, time.June, 28)

	// Before this year's birthday: turns 5 in 2025.
	if age := schedule.AgeAtNextOccurrence(birth, date(2025, time.March, 30)); age != 5 {
		t.Fatalf("expected age 5, got %d", age)
	}
	// After this year's birthday: next occurrence is 2026, turns 6.
	if age := schedule.AgeAtNextOccurrence(birth, date(2025, time.July, 1)); age != 6 {
		t.Fatalf("expected age 6, got %d", age)
	}
}
