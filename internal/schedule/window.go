// Package schedule computes reminder windows for recurring yearly dates.
//
// All calculations are date-only and carried out in UTC so that two runs on
// the same calendar day always agree, regardless of wall-clock time.
package schedule

import "time"

// DefaultOffsets is the deployment default list of lead-time offsets, in
// days before the next occurrence at which a reminder should fire.
var DefaultOffsets = []int{90, 60, 30, 15}

// Midnight truncates t to its UTC calendar day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// occurrenceIn places the recurring month/day into the given year, clamping
// to the last valid day of the month when the day does not exist there.
// A Feb-29 birthdate therefore resolves to Feb 28 in non-leap years, never
// to Mar 1.
func occurrenceIn(year int, month time.Month, day int) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NextOccurrence returns the next occurrence of birthdate's month/day on or
// after asOf. An occurrence falling on asOf's own day counts as next, not as
// already passed.
func NextOccurrence(birthdate, asOf time.Time) time.Time {
	today := Midnight(asOf)
	_, m, d := birthdate.UTC().Date()

	occ := occurrenceIn(today.Year(), m, d)
	if occ.Before(today) {
		occ = occurrenceIn(today.Year()+1, m, d)
	}
	return occ
}

// DaysUntil returns the number of whole days from asOf to the next
// occurrence of birthdate. Zero means the occurrence is today.
func DaysUntil(birthdate, asOf time.Time) int {
	return int(NextOccurrence(birthdate, asOf).Sub(Midnight(asOf)) / (24 * time.Hour))
}

// MatchOffset reports the lead-time offset, if any, for which the next
// occurrence is exactly that many days away.
func MatchOffset(birthdate, asOf time.Time, offsets []int) (int, bool) {
	days := DaysUntil(birthdate, asOf)
	for _, off := range offsets {
		if days == off {
			return off, true
		}
	}
	return 0, false
}

// AgeAtNextOccurrence returns the age the recipient turns at the next
// occurrence of their birthdate.
func AgeAtNextOccurrence(birthdate, asOf time.Time) int {
	return NextOccurrence(birthdate, asOf).Year() - birthdate.UTC().Year()
}
