// Package shortcode turns the liturgical_calendar and liturgical_banner
// directives into rendered components.
package shortcode

import (
	"context"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/jjenkins/liturgical/internal/apperr"
	"github.com/jjenkins/liturgical/internal/model"
	"github.com/jjenkins/liturgical/internal/service"
	"github.com/jjenkins/liturgical/internal/store"
	"github.com/jjenkins/liturgical/internal/templates"
)

const (
	// Directive names
	CalendarDirective = "liturgical_calendar"
	BannerDirective   = "liturgical_banner"

	// FallbackColor is the banner color when the day has none.
	FallbackColor = "verde"

	internalErrorMessage = "Erro ao carregar o calendário litúrgico"
)

// CalendarSource fetches calendar entries for explicit preferences.
type CalendarSource interface {
	GetCalendar(ctx context.Context, date string, prefs model.APIPreferences) (*model.CalendarEntry, error)
}

// CalendarAttrs are the liturgical_calendar attributes. An empty Date means today.
type CalendarAttrs struct {
	Date string
	Show string
}

// BannerAttrs are the liturgical_banner attributes. An empty Date means today.
type BannerAttrs struct {
	Date  string
	Style string
	Show  string
}

// Renderer resolves directive attributes, fetches the day and renders it.
// Every failure renders as the inline error block.
type Renderer struct {
	calendar CalendarSource
	prefs    store.PreferenceStore
	clock    *service.Clock
	logger   *zap.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(calendar CalendarSource, prefs store.PreferenceStore, clock *service.Clock, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{calendar: calendar, prefs: prefs, clock: clock, logger: logger}
}

// Calendar renders the liturgical_calendar directive.
func (r *Renderer) Calendar(ctx context.Context, attrs CalendarAttrs) templ.Component {
	entry, _, err := r.load(ctx, attrs.Date)
	if err != nil {
		return r.failure(CalendarDirective, err)
	}
	return templates.Calendar(entry, ParseShowAttribute(attrs.Show))
}

// Banner renders the liturgical_banner directive. A known style attribute
// overrides the stored style; a show attribute naming at least one known
// element overrides the stored elements.
func (r *Renderer) Banner(ctx context.Context, attrs BannerAttrs) templ.Component {
	entry, prefs, err := r.load(ctx, attrs.Date)
	if err != nil {
		return r.failure(BannerDirective, err)
	}

	style := attrs.Style
	if !model.IsBannerStyle(style) {
		style = prefs.BannerStyle
	}
	elements := ParseBannerElements(attrs.Show)
	if len(elements) == 0 {
		elements = prefs.BannerElements
	}

	return templates.Banner(BuildBanner(entry, style, elements))
}

func (r *Renderer) load(ctx context.Context, dateAttr string) (*model.CalendarEntry, model.Preferences, error) {
	if dateAttr == "" {
		dateAttr = service.TokenToday
	}
	date, err := r.clock.ResolveDate(dateAttr)
	if err != nil {
		return nil, model.Preferences{}, err
	}

	prefs, err := r.prefs.Load(ctx)
	if err != nil {
		return nil, model.Preferences{}, err
	}

	entry, err := r.calendar.GetCalendar(ctx, date, prefs.API())
	if err != nil {
		return nil, model.Preferences{}, err
	}
	return entry, prefs, nil
}

func (r *Renderer) failure(directive string, err error) templ.Component {
	r.logger.Warn("directive rendered an error",
		zap.String("directive", directive),
		zap.String("kind", string(apperr.KindOf(err))),
		zap.String("error", apperr.Detail(err)),
	)
	return templates.Error(ErrorMessage(err))
}

// ErrorMessage returns the user facing text for err. Errors that do not carry
// a message of their own get a generic one.
func ErrorMessage(err error) string {
	if apperr.KindOf(err) == apperr.KindInternal {
		return internalErrorMessage
	}
	return err.Error()
}

// ParseShowAttribute returns the calendar fields named in show, in rendering
// order. An empty or entirely unrecognized list selects every field.
func ParseShowAttribute(show string) []string {
	fields := model.Intersect(strings.Split(show, ","), templates.CalendarFields)
	if len(fields) == 0 {
		return append([]string(nil), templates.CalendarFields...)
	}
	return fields
}

// ParseBannerElements returns the banner elements named in show, in rendering
// order. The result is empty when nothing known is named.
func ParseBannerElements(show string) []string {
	if strings.TrimSpace(show) == "" {
		return nil
	}
	return model.FilterBannerElements(strings.Split(show, ","))
}
