package service

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// TimeOfDay counts minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS" (as returned by a postgres TIME column).
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid second in %q", raw)
		}
	}
	return TimeOfDay(hour*60 + minute), nil
}

// String renders the value as HH:MM. 24:00 is allowed as an exclusive end.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Interval is a half-open [Start, Start+Duration) slot within one day.
type Interval struct {
	Start    TimeOfDay
	Duration int
}

// NewInterval parses the start time and pairs it with a duration in minutes.
func NewInterval(start string, durationMinutes int) (Interval, error) {
	tod, err := ParseTimeOfDay(start)
	if err != nil {
		return Interval{}, err
	}
	if durationMinutes <= 0 {
		return Interval{}, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}
	return Interval{Start: tod, Duration: durationMinutes}, nil
}

// End returns the exclusive end of the interval.
func (i Interval) End() TimeOfDay {
	return i.Start + TimeOfDay(i.Duration)
}

// CrossesMidnight reports whether the interval ends after 24:00.
func (i Interval) CrossesMidnight() bool {
	return int(i.End()) > minutesPerDay
}

// Overlaps is the single overlap predicate used by every conflict dimension.
// Touching intervals (one ends exactly when the other starts) do not overlap.
func Overlaps(a, b Interval) bool {
	return !(a.End() <= b.Start || b.End() <= a.Start)
}

// OverlapMinutes returns the length of the shared part of a and b, zero when disjoint.
func OverlapMinutes(a, b Interval) int {
	if !Overlaps(a, b) {
		return 0
	}
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End()
	if b.End() < end {
		end = b.End()
	}
	return int(end - start)
}
