// Package templates holds the templ components for the embeddable fragments
// and the admin settings page. The _templ.go files are generated with
// `templ generate`; edit the .templ sources instead.
package templates

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/a-h/templ"

	"github.com/jjenkins/liturgical/internal/model"
)

// Calendar field names accepted by the show attribute, in rendering order.
const (
	FieldDate         = "date"
	FieldDayName      = "day_name"
	FieldSeason       = "season"
	FieldColor        = "color"
	FieldYear         = "year"
	FieldCollect      = "collect"
	FieldReadings     = "readings"
	FieldReadingsFull = "readings_full"
	FieldCelebration  = "celebration"
)

// CalendarFields is the full list of calendar fields.
var CalendarFields = []string{
	FieldDate, FieldDayName, FieldSeason, FieldColor, FieldYear,
	FieldCollect, FieldReadings, FieldReadingsFull, FieldCelebration,
}

var readingLabels = map[string]string{
	"first_reading":  "Primeira Leitura",
	"psalm":          "Salmo",
	"second_reading": "Segunda Leitura",
	"gospel":         "Evangelho",
}

// BannerView holds the already selected banner content. Empty parts are not
// rendered.
type BannerView struct {
	Style    string
	Color    string
	Date     string
	Title    string
	Year     string
	Readings string
}

// SettingsView is everything the admin settings page shows.
type SettingsView struct {
	Prefs         model.Preferences
	PrayerBooks   []model.PrayerBook
	BibleVersions []model.BibleVersion
	// Set when the corresponding list could not be loaded; the field then
	// falls back to a free text input.
	PrayerBooksErr   error
	BibleVersionsErr error
	Updated          bool
	Errors           []string
}

// Bible version language groups shown in the settings form
var bibleLanguageGroups = []struct {
	Language string
	Label    string
}{
	{"pt-BR", "Português"},
	{"en", "Inglês"},
}

var bannerElementLabels = []struct {
	Value string
	Label string
}{
	{model.ElementDate, "Data"},
	{model.ElementTitle, "Título (Estação/Celebração)"},
	{model.ElementYear, "Ano Litúrgico"},
	{model.ElementReadings, "Referências das Leituras"},
}

type bibleGroup struct {
	Label    string
	Versions []model.BibleVersion
}

// groupBibleVersions buckets versions by language in form order. Languages
// without a group and empty groups are left out.
func groupBibleVersions(versions []model.BibleVersion) []bibleGroup {
	var groups []bibleGroup
	for _, lang := range bibleLanguageGroups {
		g := bibleGroup{Label: lang.Label}
		for _, v := range versions {
			if v.Language == lang.Language {
				g.Versions = append(g.Versions, v)
			}
		}
		if len(g.Versions) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// SanitizeClass reduces s to the characters allowed in a CSS class name
// (ASCII letters, digits, '-' and '_'), dropping percent-encoded octets first.
func SanitizeClass(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			i += 2
			continue
		}
		if ch == '-' || ch == '_' || ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func isHex(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

// UpperFirst upper-cases the first letter of s.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var lineBreaks = strings.NewReplacer("\r\n", "<br />\r\n", "\n", "<br />\n", "\r", "<br />\r")

// multiline escapes s and marks each line break with <br />.
func multiline(s string) string {
	return lineBreaks.Replace(templ.EscapeString(s))
}
