package market

import "time"

// Regular session bounds, local wall clock.
const (
	tradeOpenHour   = 9
	tradeOpenMinute = 30
	tradeCloseHour  = 16
)

// InTradingHours reports whether t falls inside the regular weekday session
// (09:30 to 16:00). The sampler and the policy runner both gate on this so
// after-hours cycles do not burn feed calls or record stale decisions.
func InTradingHours(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hhmm := t.Hour()*100 + t.Minute()
	return hhmm >= tradeOpenHour*100+tradeOpenMinute && hhmm < tradeCloseHour*100
}

// NextTradingOpen returns the next session open at or after t.
func NextTradingOpen(t time.Time) time.Time {
	open := time.Date(t.Year(), t.Month(), t.Day(), tradeOpenHour, tradeOpenMinute, 0, 0, t.Location())
	if !t.Before(open) {
		open = open.AddDate(0, 0, 1)
	}
	for open.Weekday() == time.Saturday || open.Weekday() == time.Sunday {
		open = open.AddDate(0, 0, 1)
	}
	return open
}
