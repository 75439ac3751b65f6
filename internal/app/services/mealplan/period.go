package mealplan

import (
	"time"

	calendarstore "github.com/dalemusser/mealhub/internal/app/store/calendars"
)

// Planning periods.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// periodDays maps a period onto the number of days after the start date that
// the plan also covers. A month is a fixed 30-day window.
var periodDays = map[string]int{
	PeriodDay:   0,
	PeriodWeek:  6,
	PeriodMonth: 29,
}

// Window returns the first and last day (inclusive, UTC midnight) covered by
// a plan of the given period starting on start.
func Window(start time.Time, period string) (time.Time, time.Time, error) {
	n, ok := periodDays[period]
	if !ok {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	first := calendarstore.Day(start)
	return first, first.AddDate(0, 0, n), nil
}

// days lists every date in [first, last] in ascending order.
func days(first, last time.Time) []time.Time {
	var out []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}
