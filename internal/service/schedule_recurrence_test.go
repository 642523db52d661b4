package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := ParseDate(raw)
	require.NoError(t, err)
	return d
}

func dateStrings(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(dateLayout)
	}
	return out
}

func TestParseWeekday(t *testing.T) {
	for raw, want := range map[string]int{"1": 1, "MONDAY": 1, "mon": 1, " Wednesday ": 3, "7": 7, "sun": 7} {
		got, err := ParseWeekday(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"0", "8", "funday", ""} {
		_, err := ParseWeekday(raw)
		assert.Error(t, err, raw)
	}
}

func TestValidateWeekdays(t *testing.T) {
	assert.NoError(t, ValidateWeekdays([]int{1, 3, 5}))
	assert.Error(t, ValidateWeekdays(nil))
	assert.Error(t, ValidateWeekdays([]int{0}))
	assert.Error(t, ValidateWeekdays([]int{1, 8}))
	assert.ErrorContains(t, ValidateWeekdays([]int{1, 3, 1}), "MONDAY")
}

func TestExpandDatesMonWedFri(t *testing.T) {
	dates := ExpandDates(ExpandOptions{
		From:     day(t, "2024-09-02"),
		To:       day(t, "2024-09-15"),
		Weekdays: []int{1, 3, 5},
	})
	assert.Equal(t, []string{"2024-09-02", "2024-09-04", "2024-09-06", "2024-09-09", "2024-09-11", "2024-09-13"}, dateStrings(dates))
}

func TestExpandDatesExclusionsAndCap(t *testing.T) {
	opts := ExpandOptions{
		From:       day(t, "2024-09-02"),
		To:         day(t, "2024-09-15"),
		Weekdays:   []int{1, 3, 5},
		Exclusions: []time.Time{day(t, "2024-09-04"), time.Date(2024, 9, 9, 15, 0, 0, 0, time.FixedZone("WIB", 7*3600))},
	}
	assert.Equal(t, []string{"2024-09-02", "2024-09-06", "2024-09-11", "2024-09-13"}, dateStrings(ExpandDates(opts)))

	opts.MaxCount = 2
	assert.Equal(t, []string{"2024-09-02", "2024-09-06"}, dateStrings(ExpandDates(opts)))
}

func TestExpandDatesEdgeCases(t *testing.T) {
	assert.Empty(t, ExpandDates(ExpandOptions{From: day(t, "2024-09-02"), To: day(t, "2024-09-30")}))
	assert.Empty(t, ExpandDates(ExpandOptions{From: day(t, "2024-09-10"), To: day(t, "2024-09-02"), Weekdays: []int{1}}))

	single := ExpandDates(ExpandOptions{From: day(t, "2024-09-08"), To: day(t, "2024-09-08"), Weekdays: []int{7}})
	assert.Equal(t, []string{"2024-09-08"}, dateStrings(single))

	// Time of day on the bounds does not shift the calendar date.
	shifted := ExpandDates(ExpandOptions{
		From:     time.Date(2024, 9, 2, 22, 0, 0, 0, time.UTC),
		To:       time.Date(2024, 9, 2, 1, 0, 0, 0, time.UTC),
		Weekdays: []int{1},
	})
	assert.Equal(t, []string{"2024-09-02"}, dateStrings(shifted))
	assert.Equal(t, time.UTC, shifted[0].Location())
}

func TestExpandDatesProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := day(t, "2024-01-01")
	for i := 0; i < 200; i++ {
		from := base.AddDate(0, 0, rng.Intn(365))
		to := from.AddDate(0, 0, rng.Intn(120))
		var weekdays []int
		for d := 1; d <= 7; d++ {
			if rng.Intn(2) == 0 {
				weekdays = append(weekdays, d)
			}
		}
		var exclusions []time.Time
		for j := 0; j < rng.Intn(10); j++ {
			exclusions = append(exclusions, from.AddDate(0, 0, rng.Intn(120)))
		}
		excluded := map[string]bool{}
		for _, ex := range exclusions {
			excluded[ex.Format(dateLayout)] = true
		}
		wanted := map[int]bool{}
		for _, d := range weekdays {
			wanted[d] = true
		}

		dates := ExpandDates(ExpandOptions{From: from, To: to, Weekdays: weekdays, Exclusions: exclusions})
		for n, d := range dates {
			assert.False(t, d.Before(from) || d.After(to), "date out of range")
			assert.True(t, wanted[isoWeekday(d)], "weekday not requested")
			assert.False(t, excluded[d.Format(dateLayout)], "excluded date returned")
			if n > 0 {
				assert.True(t, d.After(dates[n-1]), "dates not strictly ascending")
			}
		}
	}
}
