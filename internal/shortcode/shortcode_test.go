package shortcode

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jjenkins/liturgical/internal/apperr"
	"github.com/jjenkins/liturgical/internal/model"
	"github.com/jjenkins/liturgical/internal/service"
	"github.com/jjenkins/liturgical/internal/store"
	"github.com/jjenkins/liturgical/internal/templates"
)

type fakeCalendar struct {
	entry *model.CalendarEntry
	err   error

	calls []fakeCall
}

type fakeCall struct {
	date  string
	prefs model.APIPreferences
}

func (f *fakeCalendar) GetCalendar(_ context.Context, date string, prefs model.APIPreferences) (*model.CalendarEntry, error) {
	f.calls = append(f.calls, fakeCall{date: date, prefs: prefs})
	return f.entry, f.err
}

type failingPrefs struct{ *store.MemoryPreferences }

func (failingPrefs) Load(context.Context) (model.Preferences, error) {
	return model.Preferences{}, errors.New("connection refused")
}

func newRenderer(t *testing.T, cal *fakeCalendar, prefs store.PreferenceStore) *Renderer {
	t.Helper()
	wednesday := time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)
	clock := service.NewClock(time.UTC).WithNow(func() time.Time { return wednesday })
	return NewRenderer(cal, prefs, clock, nil)
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func pentecost() *model.CalendarEntry {
	return &model.CalendarEntry{
		Date:             "2024-06-09",
		LiturgicalColor:  "verde",
		LiturgicalSeason: "Pentecostes",
		LiturgicalYear:   "B",
		Readings:         model.Readings{Gospel: &model.ReadingEntry{Reference: "Mc 4:26-34"}},
	}
}

func TestParseShowAttribute(t *testing.T) {
	assert.Equal(t, templates.CalendarFields, ParseShowAttribute(""))
	assert.Equal(t, templates.CalendarFields, ParseShowAttribute("bogus,values"))
	assert.Equal(t, []string{"date", "color"}, ParseShowAttribute("date, color"))
	assert.Equal(t, []string{"date", "color"}, ParseShowAttribute("color,date,nope"))
	assert.Equal(t, []string{"readings", "readings_full"}, ParseShowAttribute(" readings_full , readings "))
}

func TestParseBannerElements(t *testing.T) {
	assert.Empty(t, ParseBannerElements(""))
	assert.Empty(t, ParseBannerElements("collect"))
	assert.Equal(t, []string{"date", "readings"}, ParseBannerElements("readings, date"))
}

func TestCalendar_EndToEnd(t *testing.T) {
	cal := &fakeCalendar{entry: pentecost()}
	r := newRenderer(t, cal, store.NewMemoryPreferences())

	out := render(t, r.Calendar(context.Background(), CalendarAttrs{Date: "2024-06-09", Show: "color,year,readings"}))

	colorAt := bytes.Index([]byte(out), []byte(`class="liturgical-color"`))
	yearAt := bytes.Index([]byte(out), []byte(`class="liturgical-year"`))
	readingsAt := bytes.Index([]byte(out), []byte(`class="liturgical-readings"`))
	require.True(t, colorAt > 0 && yearAt > colorAt && readingsAt > yearAt, out)

	assert.Contains(t, out, `<span class="liturgical-value">Verde</span>`)
	assert.Contains(t, out, `Ano Litúrgico:</span> <span class="liturgical-value">B</span>`)
	assert.Contains(t, out, `Evangelho:</span> <span class="liturgical-reading-reference">Mc 4:26-34</span>`)
	assert.NotContains(t, out, "liturgical-collect")
	assert.NotContains(t, out, "liturgical-celebration")

	require.Len(t, cal.calls, 1)
	assert.Equal(t, model.APIPreferences{PrayerBookCode: "loc_2015", BibleVersion: "nvi"}, cal.calls[0].prefs)
}

func TestCalendar_ResolvesRelativeDates(t *testing.T) {
	cal := &fakeCalendar{entry: pentecost()}
	r := newRenderer(t, cal, store.NewMemoryPreferences())

	for token, want := range map[string]string{"": "2024-06-12", "today": "2024-06-12", "last_sunday": "2024-06-09", "next_sunday": "2024-06-16"} {
		render(t, r.Calendar(context.Background(), CalendarAttrs{Date: token}))
		assert.Equal(t, want, cal.calls[len(cal.calls)-1].date, token)
	}
}

func TestCalendar_InvalidDate(t *testing.T) {
	cal := &fakeCalendar{entry: pentecost()}
	r := newRenderer(t, cal, store.NewMemoryPreferences())

	out := render(t, r.Calendar(context.Background(), CalendarAttrs{Date: "2024-02-30"}))
	assert.Equal(t, `<div class="liturgical-error">Data inválida. Use: today, last_sunday, next_sunday ou Y-m-d</div>`, out)
	assert.Empty(t, cal.calls)
}

func TestCalendar_APIError(t *testing.T) {
	cal := &fakeCalendar{err: apperr.HTTPStatus(500)}
	r := newRenderer(t, cal, store.NewMemoryPreferences())

	out := render(t, r.Calendar(context.Background(), CalendarAttrs{}))
	assert.Equal(t, `<div class="liturgical-error">Erro na API: código 500</div>`, out)
}

func TestCalendar_APIErrorLogsCause(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cal := &fakeCalendar{err: apperr.Network(errors.New("dial tcp: connection refused"))}
	clock := service.NewClock(time.UTC)
	r := NewRenderer(cal, store.NewMemoryPreferences(), clock, zap.New(core))

	out := render(t, r.Calendar(context.Background(), CalendarAttrs{}))
	assert.Equal(t, `<div class="liturgical-error">Erro de conexão com a API</div>`, out)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, CalendarDirective, fields["directive"])
	assert.Equal(t, "network", fields["kind"])
	assert.Equal(t, "Erro de conexão com a API: dial tcp: connection refused", fields["error"])
}

func TestBanner_PreferenceErrorIsGeneric(t *testing.T) {
	cal := &fakeCalendar{entry: pentecost()}
	r := newRenderer(t, cal, failingPrefs{store.NewMemoryPreferences()})

	out := render(t, r.Banner(context.Background(), BannerAttrs{}))
	assert.Equal(t, `<div class="liturgical-error">Erro ao carregar o calendário litúrgico</div>`, out)
	assert.Empty(t, cal.calls)
}

func TestBanner_AttributesOverridePreferences(t *testing.T) {
	ctx := context.Background()
	prefs := store.NewMemoryPreferences()
	require.NoError(t, prefs.Save(ctx, model.Preferences{
		PrayerBookCode: "bcp_1662",
		BibleVersion:   "kjv",
		BannerStyle:    model.StyleCompact,
		BannerElements: []string{model.ElementDate},
	}))
	cal := &fakeCalendar{entry: pentecost()}
	r := newRenderer(t, cal, prefs)

	stored := render(t, r.Banner(ctx, BannerAttrs{Date: "2024-06-09", Style: "neon", Show: "nothing"}))
	assert.Contains(t, stored, "liturgical-banner-style-compact")
	assert.Contains(t, stored, `<div class="liturgical-banner-date">2024-06-09</div>`)
	assert.NotContains(t, stored, "liturgical-banner-title")
	assert.Equal(t, model.APIPreferences{PrayerBookCode: "bcp_1662", BibleVersion: "kjv"}, cal.calls[0].prefs)

	override := render(t, r.Banner(ctx, BannerAttrs{Date: "2024-06-09", Style: "elegant", Show: "title,year"}))
	assert.Contains(t, override, "liturgical-banner-style-elegant")
	assert.Contains(t, override, `<div class="liturgical-banner-title">Pentecostes</div>`)
	assert.Contains(t, override, `<div class="liturgical-banner-year">Ano Litúrgico B</div>`)
	assert.NotContains(t, override, "liturgical-banner-date")
}

func TestBuildBanner_Title(t *testing.T) {
	tests := []struct {
		name  string
		entry model.CalendarEntry
		want  string
	}{
		{
			name:  "celebration and season",
			entry: model.CalendarEntry{LiturgicalSeason: "Pentecostes", Celebration: &model.Celebration{Name: "São Pedro"}},
			want:  "São Pedro - Pentecostes",
		},
		{
			name:  "celebration only",
			entry: model.CalendarEntry{Celebration: &model.Celebration{Name: "São Pedro"}},
			want:  "São Pedro",
		},
		{
			name:  "sunday name fallback",
			entry: model.CalendarEntry{SundayName: "2º Domingo"},
			want:  "2º Domingo",
		},
		{
			name:  "nothing to show",
			entry: model.CalendarEntry{},
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := BuildBanner(&tt.entry, model.StyleSimple, []string{model.ElementTitle})
			assert.Equal(t, tt.want, view.Title)
		})
	}

	out := render(t, templates.Banner(BuildBanner(&model.CalendarEntry{}, model.StyleSimple, []string{model.ElementTitle})))
	assert.NotContains(t, out, "liturgical-banner-title")
}

func TestBuildBanner_ColorAndReadings(t *testing.T) {
	entry := &model.CalendarEntry{
		LiturgicalColor: "verde",
		Celebration:     &model.Celebration{Color: "vermelho"},
		Readings: model.Readings{
			Gospel:        &model.ReadingEntry{Reference: "Mt 16.13-19"},
			FirstReading:  &model.ReadingEntry{Reference: "At 12.1-11"},
			Psalm:         &model.ReadingEntry{Reference: ""},
			SecondReading: &model.ReadingEntry{Reference: "2Tm 4.6-8"},
		},
	}

	view := BuildBanner(entry, model.StyleModern, nil)
	assert.Equal(t, "vermelho", view.Color)
	assert.Equal(t, "1a Leit.: At 12.1-11 | 2a Leit.: 2Tm 4.6-8 | Ev.: Mt 16.13-19", view.Readings)
	assert.Empty(t, view.Date, "date is not a default element")

	assert.Equal(t, "verde", BannerColor(&model.CalendarEntry{LiturgicalColor: "verde"}))
	assert.Equal(t, FallbackColor, BannerColor(&model.CalendarEntry{}))
}

func TestBannerShortcode(t *testing.T) {
	assert.Equal(t, "[liturgical_banner]", BannerShortcode("today", "simple", []string{"readings", "title", "year"}))
	assert.Equal(t, `[liturgical_banner date="next_sunday" style="elegant"]`, BannerShortcode("next_sunday", "elegant", nil))
	assert.Equal(t, `[liturgical_banner style="modern" show="title,readings"]`, BannerShortcode("today", "modern", []string{"title", "readings"}))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Erro ao processar resposta da API", ErrorMessage(apperr.Decode(errors.New("eof"))))
	assert.Equal(t, internalErrorMessage, ErrorMessage(errors.New("pq: connection refused")))
}
