package services

import "time"

// MinimumAge is the youngest age a profile can be discovered at.
const MinimumAge = 18

// yearsBefore returns the calendar date n years before day, as UTC midnight.
// A day that does not exist in the target year (Feb 29) clamps to the last
// day of that month.
func yearsBefore(day time.Time, n int) time.Time {
	y, m, d := day.Date()
	y -= n
	if last := daysIn(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// birthBounds turns the adult rule and an optional age range into birth-date
// bounds for day (the requester's calendar date).
//
// latest is inclusive: anyone born on or before it is old enough.
// earliest is exclusive: anyone born after it is younger than maxAge+1.
func birthBounds(day time.Time, minAge, maxAge *int) (latest time.Time, earliest *time.Time) {
	latest = yearsBefore(day, MinimumAge)
	if minAge != nil && *minAge > MinimumAge {
		latest = yearsBefore(day, *minAge)
	}
	if maxAge != nil {
		e := yearsBefore(day, *maxAge+1)
		earliest = &e
	}
	return latest, earliest
}
