package shortcode

import (
	"slices"
	"strings"

	"github.com/jjenkins/liturgical/internal/model"
	"github.com/jjenkins/liturgical/internal/service"
	"github.com/jjenkins/liturgical/internal/templates"
)

var bannerReadingLabels = map[string]string{
	"first_reading":  "1a Leit.",
	"psalm":          "Sl",
	"second_reading": "2a Leit.",
	"gospel":         "Ev.",
}

// BuildBanner selects the banner content for entry. Only the requested
// elements are filled in; an empty selection means the default elements.
func BuildBanner(entry *model.CalendarEntry, style string, elements []string) templates.BannerView {
	if len(elements) == 0 {
		elements = model.DefaultBannerElements()
	}

	view := templates.BannerView{Style: style, Color: BannerColor(entry)}

	if slices.Contains(elements, model.ElementDate) {
		view.Date = entry.Date
	}
	if slices.Contains(elements, model.ElementTitle) {
		view.Title = BannerTitle(entry)
	}
	if slices.Contains(elements, model.ElementYear) {
		view.Year = entry.LiturgicalYear
	}
	if slices.Contains(elements, model.ElementReadings) {
		view.Readings = ReadingsSummary(entry.Readings)
	}
	return view
}

// BannerColor prefers the celebration color over the day color.
func BannerColor(entry *model.CalendarEntry) string {
	if c := entry.CelebrationColor(); c != "" {
		return c
	}
	if entry.LiturgicalColor != "" {
		return entry.LiturgicalColor
	}
	return FallbackColor
}

// BannerTitle joins the celebration name and the season with " - ", falling
// back to the Sunday name.
func BannerTitle(entry *model.CalendarEntry) string {
	var parts []string
	if name := entry.CelebrationName(); name != "" {
		parts = append(parts, name)
	}
	if entry.LiturgicalSeason != "" {
		parts = append(parts, entry.LiturgicalSeason)
	}
	if title := strings.Join(parts, " - "); title != "" {
		return title
	}
	return entry.SundayName
}

// ReadingsSummary lists the reading references as "1a Leit.: ref | Sl: ref | ...".
func ReadingsSummary(r model.Readings) string {
	var refs []string
	for _, slot := range r.Slots() {
		if slot.Reading == nil || slot.Reading.Reference == "" {
			continue
		}
		refs = append(refs, bannerReadingLabels[slot.Key]+": "+slot.Reading.Reference)
	}
	return strings.Join(refs, " | ")
}

// BannerShortcode writes the directive that reproduces a preview, leaving out
// attributes that match the defaults.
func BannerShortcode(dateType, style string, elements []string) string {
	var attrs []string
	if dateType != "" && dateType != service.TokenToday {
		attrs = append(attrs, `date="`+dateType+`"`)
	}
	if style != "" && style != model.DefaultBannerStyle {
		attrs = append(attrs, `style="`+style+`"`)
	}
	if len(elements) > 0 && !sameElements(elements, model.DefaultBannerElements()) {
		attrs = append(attrs, `show="`+strings.Join(elements, ",")+`"`)
	}

	if len(attrs) == 0 {
		return "[" + BannerDirective + "]"
	}
	return "[" + BannerDirective + " " + strings.Join(attrs, " ") + "]"
}

func sameElements(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, e := range a {
		if !slices.Contains(b, e) {
			return false
		}
	}
	return true
}
