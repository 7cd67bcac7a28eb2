package service

import (
	"slices"
	"time"

	"github.com/jjenkins/liturgical/internal/apperr"
)

// DateLayout is the only accepted explicit date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Relative date tokens
const (
	TokenToday      = "today"
	TokenLastSunday = "last_sunday"
	TokenNextSunday = "next_sunday"
)

const invalidDateMessage = "Data inválida. Use: today, last_sunday, next_sunday ou Y-m-d"

// Clock computes calendar dates in the configured timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock creates a Clock for loc, falling back to UTC when loc is nil.
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: time.Now}
}

// WithNow replaces the time source.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	c.now = now
	return c
}

func (c *Clock) current() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current date.
func (c *Clock) Today() string {
	return c.current().Format(DateLayout)
}

// LastSunday returns the most recent Sunday strictly before today. On a
// Sunday that is seven days ago.
func (c *Clock) LastSunday() string {
	t := c.current()
	back := int(t.Weekday())
	if back == 0 {
		back = 7
	}
	return t.AddDate(0, 0, -back).Format(DateLayout)
}

// NextSunday returns the first Sunday strictly after today. On a Sunday that
// is seven days ahead.
func (c *Clock) NextSunday() string {
	t := c.current()
	return t.AddDate(0, 0, 7-int(t.Weekday())).Format(DateLayout)
}

// ResolveDate maps a date token to a concrete YYYY-MM-DD date. Anything other
// than the three relative tokens must be an exact YYYY-MM-DD date.
func (c *Clock) ResolveDate(token string) (string, error) {
	switch token {
	case TokenToday:
		return c.Today(), nil
	case TokenLastSunday:
		return c.LastSunday(), nil
	case TokenNextSunday:
		return c.NextSunday(), nil
	}

	if _, err := ParseDate(token); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveRelative maps the admin preview's date selector to a date. Unknown
// values mean today.
func (c *Clock) ResolveRelative(token string) string {
	switch token {
	case TokenLastSunday:
		return c.LastSunday()
	case TokenNextSunday:
		return c.NextSunday()
	default:
		return c.Today()
	}
}

// ParseDate parses s as YYYY-MM-DD and rejects anything that does not format
// back to exactly s.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return time.Time{}, apperr.InvalidDate(invalidDateMessage)
	}
	return t, nil
}

// UpcomingDates returns today and the following days-1 days, then the next
// sundays Sundays, without duplicates and in chronological order.
func (c *Clock) UpcomingDates(days, sundays int) []string {
	today := c.current()
	seen := make(map[string]bool)
	var out []string
	add := func(t time.Time) {
		d := t.Format(DateLayout)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}

	for i := 0; i < days; i++ {
		add(today.AddDate(0, 0, i))
	}
	first := today.AddDate(0, 0, 7-int(today.Weekday()))
	for i := 0; i < sundays; i++ {
		add(first.AddDate(0, 0, 7*i))
	}

	// Sundays can fall inside the day range; YYYY-MM-DD sorts lexically.
	slices.Sort(out)
	return out
}
