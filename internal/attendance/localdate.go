package attendance

import "time"

// DateLayout is the ISO 8601 calendar-day layout used throughout the HR API.
const DateLayout = "2006-01-02"

// DateProvider yields the current calendar day as YYYY-MM-DD.
type DateProvider func() string

// LocalDate formats the calendar day of now as observed in loc.
// A nil location means the host's local zone, never UTC.
func LocalDate(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).Format(DateLayout)
}

// NewDateProvider binds a clock and a location into a DateProvider.
func NewDateProvider(clock func() time.Time, loc *time.Location) DateProvider {
	if clock == nil {
		clock = time.Now
	}
	return func() string {
		return LocalDate(clock(), loc)
	}
}

// ValidDate reports whether s is a well-formed calendar day.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
