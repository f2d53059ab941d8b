package progress

import (
	"fmt"
	"strings"
	"time"
)

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod accepts week, month and all (case insensitive). Empty means week,
// the default selection of the progress view.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodWeek, nil
	case PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	}
	return "", fmt.Errorf("unknown period [%s], expected one of: week, month, all", s)
}

// day is a calendar date, independent of time zone and DST.
type day struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time, loc *time.Location) day {
	y, m, d := t.In(loc).Date()
	return day{year: y, month: m, day: d}
}

// number counts days since the unix epoch, so consecutive dates differ by exactly one.
func (d day) number() int64 {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func (d day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

func (d day) addDays(n int) day {
	t := time.Date(d.year, d.month, d.day+n, 0, 0, 0, 0, time.UTC)
	return day{year: t.Year(), month: t.Month(), day: t.Day()}
}

// weekStart returns the Monday of the week containing d.
func (d day) weekStart() day {
	wd := time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC).Weekday()
	offset := (int(wd) + 6) % 7
	return d.addDays(-offset)
}

// bounds returns the first and the last calendar day of the period around today.
// ok is false for PeriodAll, which has no bounds.
func bounds(p Period, today day) (from, to day, ok bool) {
	switch p {
	case PeriodWeek:
		from = today.weekStart()
		return from, from.addDays(6), true
	case PeriodMonth:
		from = day{year: today.year, month: today.month, day: 1}
		last := time.Date(today.year, today.month+1, 0, 0, 0, 0, 0, time.UTC)
		return from, day{year: last.Year(), month: last.Month(), day: last.Day()}, true
	}
	return day{}, day{}, false
}
