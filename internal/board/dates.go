package board

import (
	"time"

	"github.com/msu-tj/schedule-desk-api/internal/models"
)

const (
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04:05"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// DateRange computes the fetch window for the given navigation date and
// calendar view. Weeks run Sunday through Saturday, matching the dashboard
// calendar.
func DateRange(date time.Time, view models.CalendarView) (from, to string) {
	switch view {
	case models.ViewDay:
		day := date.Format(dateLayout)
		return day, day
	default:
		start := date.AddDate(0, 0, -int(date.Weekday()))
		end := start.AddDate(0, 0, 6)
		return start.Format(dateLayout), end.Format(dateLayout)
	}
}

// CombineDateTime joins a lesson date and clock string into a local
// wall-clock time. No timezone conversion happens: schedule times are local
// to the institution.
func CombineDateTime(date, clock string) (time.Time, error) {
	return time.ParseInLocation(dateTimeLayout, date+"T"+clock, time.Local)
}

// SplitDateTime is the inverse of CombineDateTime, reproducing the lesson's
// date and time fields from a calendar instant.
func SplitDateTime(t time.Time) (date, clock string) {
	return t.Format(dateLayout), t.Format(clockLayout)
}

// ParseDate parses a lesson date string.
func ParseDate(date string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, date, time.Local)
}
