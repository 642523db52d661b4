package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInterval(t *testing.T, start string, minutes int) Interval {
	t.Helper()
	iv, err := NewInterval(start, minutes)
	require.NoError(t, err)
	return iv
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(570), tod)
	assert.Equal(t, "09:30", tod.String())

	tod, err = ParseTimeOfDay("23:59:00")
	require.NoError(t, err)
	assert.Equal(t, "23:59", tod.String())

	for _, raw := range []string{"", "9", "24:00", "12:60", "aa:bb", "10:00:99", "1:2:3:4"} {
		_, err := ParseTimeOfDay(raw)
		assert.Error(t, err, raw)
	}
}

func TestNewIntervalRejectsNonPositiveDuration(t *testing.T) {
	_, err := NewInterval("09:00", 0)
	assert.Error(t, err)
	_, err = NewInterval("09:00", -15)
	assert.Error(t, err)
}

func TestOverlapsHalfOpen(t *testing.T) {
	nineToTen := mustInterval(t, "09:00", 60)

	cases := []struct {
		name  string
		other Interval
		want  bool
	}{
		{"back to back after", mustInterval(t, "10:00", 60), false},
		{"back to back before", mustInterval(t, "08:00", 60), false},
		{"partial overlap", mustInterval(t, "09:30", 60), true},
		{"contained", mustInterval(t, "09:15", 15), true},
		{"containing", mustInterval(t, "08:00", 180), true},
		{"identical", mustInterval(t, "09:00", 60), true},
		{"disjoint", mustInterval(t, "13:00", 45), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(nineToTen, tc.other))
			assert.Equal(t, tc.want, Overlaps(tc.other, nineToTen))
		})
	}
}

func TestOverlapMinutes(t *testing.T) {
	assert.Equal(t, 30, OverlapMinutes(mustInterval(t, "09:00", 60), mustInterval(t, "09:30", 90)))
	assert.Equal(t, 15, OverlapMinutes(mustInterval(t, "09:00", 60), mustInterval(t, "09:15", 15)))
	assert.Equal(t, 0, OverlapMinutes(mustInterval(t, "09:00", 60), mustInterval(t, "10:00", 60)))
}

func TestCrossesMidnight(t *testing.T) {
	assert.False(t, mustInterval(t, "23:00", 60).CrossesMidnight())
	assert.True(t, mustInterval(t, "23:30", 45).CrossesMidnight())
	assert.Equal(t, "24:00", mustInterval(t, "23:00", 60).End().String())
}
