package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/order"
)

// DefaultDateLayouts are tried in order by ParseDate when no layout is given.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"02/01/06",
	"2006.01.02",
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

var clockRe = regexp.MustCompile(`(?i)^(\d{1,2})(?:[:h.]?(\d{2}))?\s*(am|pm)?$`)

// ParseClock accepts "08:00", "8h00", "0800", "8:00pm", "4pm".
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return Clock{}, common.DateParseFailure(s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return Clock{}, common.DateParseFailure(s)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// ParseClockRange parses "HH:MM-HH:MM", "HHhMM - HHhMM", "HHMM-HHMM" or a
// single clock. to is nil when only a start is given.
func ParseClockRange(s string) (from *Clock, to *Clock, err error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "–", "-"))
	if s == "" {
		return nil, nil, nil
	}
	parts := strings.Split(s, "-")
	if len(parts) > 2 {
		return nil, nil, common.DateParseFailure(s)
	}
	f, err := ParseClock(parts[0])
	if err != nil {
		return nil, nil, common.DateParseFailure(s)
	}
	from = &f
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		t, err := ParseClock(parts[1])
		if err != nil {
			return nil, nil, common.DateParseFailure(s)
		}
		to = &t
	}
	return from, to, nil
}

// ParseDate parses a calendar date as local midnight in loc, trying layouts
// (DefaultDateLayouts when none are given).
func ParseDate(s string, loc *time.Location, layouts ...string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, common.DateParseFailure(s)
}

// At returns day at the given clock in day's location.
func At(day time.Time, c Clock) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// Window builds a time window on day. Without a start clock the window
// starts at midnight. datetime_to is dropped when absent or equal to the start.
func Window(day time.Time, from, to *Clock) *order.TimeWindow {
	start := At(day, Clock{})
	if from != nil {
		start = At(day, *from)
	}
	w := &order.TimeWindow{From: start}
	if to != nil {
		end := At(day, *to)
		if !end.Equal(start) {
			w.To = &end
		}
	}
	return w
}

// ParseWindow combines a date token and an optional time-range token.
func ParseWindow(date, timeRange string, loc *time.Location, layouts ...string) (*order.TimeWindow, error) {
	day, err := ParseDate(date, loc, layouts...)
	if err != nil {
		return nil, err
	}
	from, to, err := ParseClockRange(timeRange)
	if err != nil {
		return nil, err
	}
	return Window(day, from, to), nil
}

// MustLocation loads an IANA zone. The zone database is embedded, so a
// failure means a misspelt constant.
func MustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("normalize: unknown location %q: %v", name, err))
	}
	return loc
}
