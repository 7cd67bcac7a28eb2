package model

import "strings"

// Banner styles
const (
	StyleSimple  = "simple"
	StyleElegant = "elegant"
	StyleModern  = "modern"
	StyleCompact = "compact"
)

// Banner elements
const (
	ElementDate     = "date"
	ElementTitle    = "title"
	ElementYear     = "year"
	ElementReadings = "readings"
)

// Default preference values
const (
	DefaultPrayerBookCode = "loc_2015"
	DefaultBibleVersion   = "nvi"
	DefaultBannerStyle    = StyleSimple
)

// BannerStyles lists the known banner styles with their display labels, in form order.
var BannerStyles = []struct {
	Value string
	Label string
}{
	{StyleSimple, "Simples"},
	{StyleElegant, "Elegante/Clássico"},
	{StyleModern, "Moderno/Glass"},
	{StyleCompact, "Compacto"},
}

// BannerElements is the whitelist of banner elements in rendering order.
var BannerElements = []string{ElementDate, ElementTitle, ElementYear, ElementReadings}

// DefaultBannerElements returns a fresh copy of the default banner elements.
func DefaultBannerElements() []string {
	return []string{ElementTitle, ElementYear, ElementReadings}
}

// Preferences are the persisted user settings.
type Preferences struct {
	PrayerBookCode string
	BibleVersion   string
	BannerStyle    string
	BannerElements []string
}

// DefaultPreferences returns the settings used before anything was saved.
func DefaultPreferences() Preferences {
	return Preferences{
		PrayerBookCode: DefaultPrayerBookCode,
		BibleVersion:   DefaultBibleVersion,
		BannerStyle:    DefaultBannerStyle,
		BannerElements: DefaultBannerElements(),
	}
}

// API returns the subset of preferences sent to the calendar API.
func (p Preferences) API() APIPreferences {
	return APIPreferences{PrayerBookCode: p.PrayerBookCode, BibleVersion: p.BibleVersion}
}

// APIPreferences are the two settings that change the API payload and therefore
// take part in the cache key.
type APIPreferences struct {
	PrayerBookCode string `json:"prayer_book_code"`
	BibleVersion   string `json:"bible_version"`
}

// IsBannerStyle reports whether style is one of the known banner styles.
func IsBannerStyle(style string) bool {
	for _, s := range BannerStyles {
		if s.Value == style {
			return true
		}
	}
	return false
}

// FilterBannerElements keeps the known banner elements from requested, in
// whitelist order and without duplicates.
func FilterBannerElements(requested []string) []string {
	return Intersect(requested, BannerElements)
}

// Intersect returns the members of allowed that appear in requested (after
// trimming), preserving the order of allowed.
func Intersect(requested, allowed []string) []string {
	want := make(map[string]bool, len(requested))
	for _, r := range requested {
		want[strings.TrimSpace(r)] = true
	}
	var out []string
	for _, a := range allowed {
		if want[a] {
			out = append(out, a)
		}
	}
	return out
}
