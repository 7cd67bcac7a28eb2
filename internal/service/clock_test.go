package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/liturgical/internal/apperr"
)

func fixedClock(t *testing.T, date string) *Clock {
	t.Helper()
	day, err := time.Parse(DateLayout, date)
	require.NoError(t, err)
	noon := day.Add(12 * time.Hour)
	return NewClock(time.UTC).WithNow(func() time.Time { return noon })
}

func TestClock_Sundays(t *testing.T) {
	tests := []struct {
		name  string
		today string
		last  string
		next  string
	}{
		{name: "wednesday", today: "2024-06-12", last: "2024-06-09", next: "2024-06-16"},
		{name: "saturday", today: "2024-06-15", last: "2024-06-09", next: "2024-06-16"},
		{name: "monday", today: "2024-06-10", last: "2024-06-09", next: "2024-06-16"},
		{name: "sunday steps a full week", today: "2024-06-09", last: "2024-06-02", next: "2024-06-16"},
		{name: "across a year boundary", today: "2024-12-31", last: "2024-12-29", next: "2025-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fixedClock(t, tt.today)
			assert.Equal(t, tt.today, c.Today())
			assert.Equal(t, tt.last, c.LastSunday())
			assert.Equal(t, tt.next, c.NextSunday())
		})
	}
}

func TestClock_UsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	// 01:00 UTC on the 10th is still the 9th in UTC-3.
	c := NewClock(loc).WithNow(func() time.Time {
		return time.Date(2024, 6, 10, 1, 0, 0, 0, time.UTC)
	})
	assert.Equal(t, "2024-06-09", c.Today())
}

func TestClock_ResolveDate(t *testing.T) {
	c := fixedClock(t, "2024-06-12")

	tests := []struct {
		token string
		want  string
	}{
		{token: "today", want: "2024-06-12"},
		{token: "last_sunday", want: "2024-06-09"},
		{token: "next_sunday", want: "2024-06-16"},
		{token: "2024-02-29", want: "2024-02-29"},
	}
	for _, tt := range tests {
		got, err := c.ResolveDate(tt.token)
		require.NoError(t, err, tt.token)
		assert.Equal(t, tt.want, got, tt.token)
	}
}

func TestClock_ResolveDateRejectsMalformed(t *testing.T) {
	c := fixedClock(t, "2024-06-12")

	for _, token := range []string{"bogus", "", "2024-6-9", "2024-02-30", "2023-02-29", "09/06/2024", "2024-06-09T00:00:00Z", " 2024-06-09"} {
		_, err := c.ResolveDate(token)
		require.Error(t, err, token)
		assert.True(t, apperr.Is(err, apperr.KindInvalidDate), token)
		assert.Equal(t, "Data inválida. Use: today, last_sunday, next_sunday ou Y-m-d", err.Error())
	}
}

func TestClock_ResolveRelative(t *testing.T) {
	c := fixedClock(t, "2024-06-12")
	assert.Equal(t, "2024-06-09", c.ResolveRelative("last_sunday"))
	assert.Equal(t, "2024-06-16", c.ResolveRelative("next_sunday"))
	assert.Equal(t, "2024-06-12", c.ResolveRelative("today"))
	assert.Equal(t, "2024-06-12", c.ResolveRelative("2020-01-01"))
}

func TestClock_UpcomingDates(t *testing.T) {
	c := fixedClock(t, "2024-06-14") // Friday

	assert.Equal(t,
		[]string{"2024-06-14", "2024-06-15", "2024-06-16", "2024-06-23"},
		c.UpcomingDates(3, 2),
		"the first Sunday is inside the day range and appears once")
	assert.Empty(t, c.UpcomingDates(0, 0))
}
