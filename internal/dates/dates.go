// Package dates holds the calendar arithmetic shared by the orchestrator and
// the command layer. All values are local calendar days at midnight.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// ISOLayout is the input format used on the command line and in batch files.
	ISOLayout = "2006-01-02"
	// DisplayLayout is the format the portal renders dates in.
	DisplayLayout = "02.01.2006"
	// MonthLayout is the month filter format.
	MonthLayout = "01.2006"
)

// Day truncates t to midnight in its location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Today returns the current local day.
func Today() time.Time {
	return Day(time.Now())
}

// ParseISO parses YYYY-MM-DD as a local calendar day.
func ParseISO(s string) (time.Time, error) {
	t, err := time.ParseInLocation(ISOLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// ParseDisplay parses DD.MM.YYYY as a local calendar day.
func ParseDisplay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DisplayLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected DD.MM.YYYY)", s)
	}
	return t, nil
}

// ISO formats t as YYYY-MM-DD.
func ISO(t time.Time) string { return t.Format(ISOLayout) }

// Display formats t as DD.MM.YYYY.
func Display(t time.Time) string { return t.Format(DisplayLayout) }

// DayMonth formats t as DD.MM. for compact week headers.
func DayMonth(t time.Time) string { return t.Format("02.01.") }

// DisplayToISO converts DD.MM.YYYY to YYYY-MM-DD, returning s unchanged
// when it does not parse.
func DisplayToISO(s string) string {
	t, err := ParseDisplay(s)
	if err != nil {
		return s
	}
	return ISO(t)
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses MM.YYYY.
func ParseMonth(s string) (Month, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 2 {
		return Month{}, fmt.Errorf("invalid month %q (expected MM.YYYY)", s)
	}
	mm, err1 := strconv.Atoi(parts[0])
	yyyy, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || mm < 1 || mm > 12 || yyyy < 1000 {
		return Month{}, fmt.Errorf("invalid month %q (expected MM.YYYY)", s)
	}
	return Month{Year: yyyy, Month: time.Month(mm)}, nil
}

// String formats the month as MM.YYYY.
func (m Month) String() string {
	return fmt.Sprintf("%02d.%04d", int(m.Month), m.Year)
}

// First returns the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.Local)
}

// Last returns the last day of the month.
func (m Month) Last() time.Time {
	return m.First().AddDate(0, 1, -1)
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Weekdays returns every Monday–Friday in [from, to], inclusive.
func Weekdays(from, to time.Time) []time.Time {
	var out []time.Time
	for d := Day(from); !d.After(Day(to)); d = d.AddDate(0, 0, 1) {
		if !IsWeekend(d) {
			out = append(out, d)
		}
	}
	return out
}

// WeekBounds returns the Monday and Friday of the week containing t.
func WeekBounds(t time.Time) (monday, friday time.Time) {
	d := Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	monday = d.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 4)
}

// ISOWeek returns the ISO 8601 week number of t.
func ISOWeek(t time.Time) int {
	_, w := t.ISOWeek()
	return w
}

// Min returns the earlier of a and b.
func Min(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

// Months returns the distinct months touched by [from, to] in order.
func Months(from, to time.Time) []Month {
	var out []Month
	for m := MonthOf(from); !m.First().After(Day(to)); m = MonthOf(m.First().AddDate(0, 1, 0)) {
		out = append(out, m)
	}
	return out
}
