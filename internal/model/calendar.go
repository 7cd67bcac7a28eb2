package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// CalendarEntry represents one day of the liturgical calendar as returned by the API.
// Every string field uses "" for "absent"; callers decide per field whether absent
// means omit or fall back.
type CalendarEntry struct {
	Date             string       `json:"date"`
	LiturgicalSeason string       `json:"liturgical_season"`
	LiturgicalColor  string       `json:"liturgical_color"`
	LiturgicalYear   string       `json:"liturgical_year"`
	SundayName       string       `json:"sunday_name"`
	DayOfWeek        string       `json:"day_of_week"`
	Celebration      *Celebration `json:"celebration,omitempty"`
	Collect          []Collect    `json:"collect,omitempty"`
	Readings         Readings     `json:"readings"`

	// Raw is the payload exactly as received from the API.
	Raw json.RawMessage `json:"-"`
}

// Celebration is a feast or commemoration that may override the day's color
type Celebration struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Collect is a single collect prayer for the day
type Collect struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Text     string `json:"text"`
}

// Readings holds the lectionary readings keyed by their position in the service
type Readings struct {
	FirstReading  *ReadingEntry `json:"first_reading,omitempty"`
	Psalm         *ReadingEntry `json:"psalm,omitempty"`
	SecondReading *ReadingEntry `json:"second_reading,omitempty"`
	Gospel        *ReadingEntry `json:"gospel,omitempty"`
}

// ReadingEntry is a scripture reference with its optional text
type ReadingEntry struct {
	Reference string          `json:"reference"`
	Content   *ReadingContent `json:"content,omitempty"`
}

// ReadingContent wraps the verses of a reading
type ReadingContent struct {
	Verses []Verse `json:"verses"`
}

// Verse is one numbered verse of a reading
type Verse struct {
	Number VerseNumber `json:"number"`
	Text   string      `json:"text"`
}

// VerseNumber accepts both JSON numbers and strings ("12", "12a").
type VerseNumber string

// UnmarshalJSON implements json.Unmarshaler.
func (n *VerseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = VerseNumber(s)
		return nil
	}
	var f json.Number
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if i, err := f.Int64(); err == nil {
		*n = VerseNumber(strconv.FormatInt(i, 10))
		return nil
	}
	*n = VerseNumber(f.String())
	return nil
}

// ReadingSlot pairs a reading key with the reading it selects.
type ReadingSlot struct {
	Key     string
	Reading *ReadingEntry
}

// Slots returns the readings in liturgical order: first reading, psalm,
// second reading, gospel. Absent readings are returned with a nil Reading.
func (r Readings) Slots() []ReadingSlot {
	return []ReadingSlot{
		{Key: "first_reading", Reading: r.FirstReading},
		{Key: "psalm", Reading: r.Psalm},
		{Key: "second_reading", Reading: r.SecondReading},
		{Key: "gospel", Reading: r.Gospel},
	}
}

// IsEmpty reports whether no reading is present at all.
func (r Readings) IsEmpty() bool {
	return r.FirstReading == nil && r.Psalm == nil && r.SecondReading == nil && r.Gospel == nil
}

// CelebrationName returns the celebration name, or "" when there is no celebration.
func (e *CalendarEntry) CelebrationName() string {
	if e.Celebration == nil {
		return ""
	}
	return e.Celebration.Name
}

// CelebrationColor returns the celebration color, or "" when there is no celebration.
func (e *CalendarEntry) CelebrationColor() string {
	if e.Celebration == nil {
		return ""
	}
	return e.Celebration.Color
}

// DayName picks the most specific name for the day: the Sunday name, then the
// celebration name, then the weekday. Returns "" when none is present.
func (e *CalendarEntry) DayName() string {
	switch {
	case e.SundayName != "":
		return e.SundayName
	case e.CelebrationName() != "":
		return e.CelebrationName()
	default:
		return e.DayOfWeek
	}
}

// PrayerBook is an entry of the /prayer_books list
type PrayerBook struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
}

// Label is the display text used in the settings form.
func (p PrayerBook) Label() string {
	if p.Jurisdiction == "" {
		return p.Name
	}
	return p.Name + " - " + p.Jurisdiction
}

// BibleVersion is an entry of the /bible_versions list
type BibleVersion struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	FullName string `json:"full_name,omitempty"`
	Language string `json:"language,omitempty"`
}

// Label is the display text used in the settings form.
func (v BibleVersion) Label() string {
	name := v.FullName
	if name == "" {
		name = v.Name
	}
	return v.Code + " - " + name
}
