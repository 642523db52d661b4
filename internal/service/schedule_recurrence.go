package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var dayIndexMap = map[int]string{
	1: "MONDAY",
	2: "TUESDAY",
	3: "WEDNESDAY",
	4: "THURSDAY",
	5: "FRIDAY",
	6: "SATURDAY",
	7: "SUNDAY",
}

var dayNameIndex = map[string]int{
	"MONDAY":    1,
	"MON":       1,
	"TUESDAY":   2,
	"TUE":       2,
	"WEDNESDAY": 3,
	"WED":       3,
	"THURSDAY":  4,
	"THU":       4,
	"FRIDAY":    5,
	"FRI":       5,
	"SATURDAY":  6,
	"SAT":       6,
	"SUNDAY":    7,
	"SUN":       7,
}

// ParseWeekday accepts an ISO index ("1".."7") or a day name in any case.
func ParseWeekday(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > 7 {
			return 0, fmt.Errorf("weekday %d out of range 1..7", n)
		}
		return n, nil
	}
	if day, ok := dayNameIndex[strings.ToUpper(raw)]; ok {
		return day, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

// WeekdayName returns the upper-case name of an ISO weekday.
func WeekdayName(day int) string {
	return dayIndexMap[day]
}

// isoWeekday maps time.Weekday (Sunday=0) onto ISO numbering (Monday=1..Sunday=7).
func isoWeekday(d time.Time) int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ValidateWeekdays rejects empty sets, out of range values and duplicates.
func ValidateWeekdays(days []int) error {
	if len(days) == 0 {
		return fmt.Errorf("weekday set is empty")
	}
	seen := make(map[int]struct{}, len(days))
	for _, day := range days {
		if day < 1 || day > 7 {
			return fmt.Errorf("weekday %d out of range 1..7", day)
		}
		if _, dup := seen[day]; dup {
			return fmt.Errorf("weekday %s listed more than once", WeekdayName(day))
		}
		seen[day] = struct{}{}
	}
	return nil
}

// sortedWeekdays returns a sorted copy, used when comparing two patterns.
func sortedWeekdays(days []int) []int {
	out := append([]int(nil), days...)
	sort.Ints(out)
	return out
}

// ExpandOptions parameterises ExpandDates. From and To are inclusive.
type ExpandOptions struct {
	From       time.Time
	To         time.Time
	Weekdays   []int
	Exclusions []time.Time
	MaxCount   int
}

// ExpandDates walks the range day by day and returns the ascending dates whose
// weekday is requested and which are not excluded. Dates are UTC midnights.
func ExpandDates(opts ExpandOptions) []time.Time {
	if len(opts.Weekdays) == 0 {
		return nil
	}
	from := truncateDate(opts.From)
	to := truncateDate(opts.To)
	if from.After(to) {
		return nil
	}

	wanted := make(map[int]struct{}, len(opts.Weekdays))
	for _, day := range opts.Weekdays {
		wanted[day] = struct{}{}
	}
	excluded := make(map[string]struct{}, len(opts.Exclusions))
	for _, ex := range opts.Exclusions {
		excluded[dateKey(ex)] = struct{}{}
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if _, ok := wanted[isoWeekday(d)]; !ok {
			continue
		}
		if _, skip := excluded[dateKey(d)]; skip {
			continue
		}
		dates = append(dates, d)
		if opts.MaxCount > 0 && len(dates) >= opts.MaxCount {
			break
		}
	}
	return dates
}

// truncateDate keeps the calendar date of t and returns it as UTC midnight.
func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}
