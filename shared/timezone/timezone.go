package timezone

import (
	"time"
)

const (
	// OffsetHours is the fixed offset from UTC used for every calendar computation.
	OffsetHours = 7

	DateLayout = "2006-01-02"
	zoneName   = "UTC+7"
)

var (
	appLocation = time.FixedZone(zoneName, OffsetHours*60*60)

	nowFunc = time.Now
)

// Now returns the current time in the application timezone
func Now() time.Time {
	return nowFunc().In(appLocation)
}

// Today returns the start of the current calendar day in the application timezone.
func Today() time.Time {
	return DateOf(nowFunc())
}

// DateOf truncates t to the start of its calendar day in the application timezone.
func DateOf(t time.Time) time.Time {
	local := t.In(appLocation)

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, appLocation)
}

// IsPast reports whether the calendar day of t is strictly before today.
func IsPast(t time.Time) bool {
	return DateOf(t).Before(Today())
}

// ToAppTime converts a time to the application timezone
func ToAppTime(t time.Time) time.Time {
	return t.In(appLocation)
}

// GetLocation returns the application timezone location
func GetLocation() *time.Location {
	return appLocation
}

// Parse parses a time string in the application timezone
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, appLocation)
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in the application timezone.
func ParseDate(value string) (time.Time, error) {
	return Parse(DateLayout, value)
}

// Format formats a time in the application timezone
func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// FormatDate formats the calendar day of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return Format(t, DateLayout)
}

// SetNow replaces the clock behind Now and Today and returns a function restoring the
// previous one. Intended for tests.
func SetNow(fn func() time.Time) (restore func()) {
	previous := nowFunc
	nowFunc = fn

	return func() { nowFunc = previous }
}
