// Package calendar answers whether the NYSE is open: regular session
// hours in US Eastern time, weekends, fixed and floating US market
// holidays, and weekend-observance shifts.
package calendar

import (
	"time"

	"github.com/quantfarer/vigil/internal/core"
)

// Session boundaries in seconds since Eastern midnight, inclusive at
// both ends.
const (
	openSecond  = 9*3600 + 30*60 // 09:30
	closeSecond = 16 * 3600      // 16:00
)

var errTimezone = &core.Error{Code: "CALENDAR_TZ", Message: "load Eastern timezone"}

// Clock supplies the current time. Injectable so tests can pin a
// moment without sleeping through a trading day.
type Clock func() time.Time

// Calendar knows the NYSE trading schedule.
type Calendar struct {
	loc *time.Location
	now Clock
}

// New loads the Eastern timezone and returns a wall-clock calendar.
func New() (*Calendar, error) {
	return NewWithClock(time.Now)
}

// NewWithClock is New with an injected clock.
func NewWithClock(clock Clock) (*Calendar, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, core.WrapError(errTimezone, err)
	}
	return &Calendar{loc: loc, now: clock}, nil
}

// Now returns the current time in US Eastern.
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// Location returns the exchange timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// IsOpen reports whether the regular session is in progress right now.
func (c *Calendar) IsOpen() bool {
	now := c.Now()
	if !c.IsTradingDay(now) {
		return false
	}
	s := secondOfDay(now)
	return s >= openSecond && s <= closeSecond
}

// Status is a point-in-time description of the market session.
type Status struct {
	IsOpen       bool      `json:"is_open"`
	IsTradingDay bool      `json:"is_trading_day"`
	CurrentTime  time.Time `json:"current_time_est"`
	MarketOpen   string    `json:"market_open"`
	MarketClose  string    `json:"market_close"`
	Message      string    `json:"message"`
}

// Status reports the current session state with a human-readable note.
func (c *Calendar) Status() Status {
	now := c.Now()
	tradingDay := c.IsTradingDay(now)
	s := secondOfDay(now)
	open := tradingDay && s >= openSecond && s <= closeSecond

	st := Status{
		IsOpen:       open,
		IsTradingDay: tradingDay,
		CurrentTime:  now,
		MarketOpen:   "09:30 EST",
		MarketClose:  "16:00 EST",
	}

	switch {
	case open:
		st.Message = "market open"
	case tradingDay && s < openSecond:
		st.Message = "pre-market"
	case tradingDay && s > closeSecond:
		st.Message = "after hours"
	default:
		st.Message = "market holiday"
	}
	return st
}

// IsTradingDay reports whether t falls on a NYSE trading day. The time
// is interpreted in Eastern.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	t = t.In(c.loc)
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}

	year, month, day := t.Year(), int(t.Month()), t.Day()

	// New Year's, Juneteenth, Independence Day, Christmas. A Saturday
	// holiday is observed the Friday before, a Sunday holiday the
	// Monday after.
	fixed := [][2]int{{1, 1}, {6, 19}, {7, 4}, {12, 25}}
	for _, h := range fixed {
		hm, hd := h[0], h[1]
		if month == hm && day == hd {
			return false
		}
		hwd := time.Date(year, time.Month(hm), hd, 0, 0, 0, 0, c.loc).Weekday()
		if hwd == time.Saturday && month == hm && day == hd-1 {
			return false
		}
		if hwd == time.Sunday && month == hm && day == hd+1 {
			return false
		}
	}

	// Floating Monday holidays plus Thanksgiving.
	switch {
	case month == 1 && wd == time.Monday && day >= 15 && day <= 21: // MLK Day
		return false
	case month == 2 && wd == time.Monday && day >= 15 && day <= 21: // Presidents' Day
		return false
	case month == 5 && wd == time.Monday && day >= 25: // Memorial Day
		return false
	case month == 9 && wd == time.Monday && day <= 7: // Labor Day
		return false
	case month == 11 && wd == time.Thursday && day >= 22 && day <= 28: // Thanksgiving
		return false
	}

	return true
}

func secondOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
