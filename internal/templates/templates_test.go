package templates

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/liturgical/internal/model"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func sampleEntry() *model.CalendarEntry {
	return &model.CalendarEntry{
		Date:             "2024-06-09",
		LiturgicalSeason: "Tempo Comum",
		LiturgicalColor:  "verde",
		LiturgicalYear:   "B",
		SundayName:       "2º Domingo após Pentecostes",
		Collect: []model.Collect{
			{Title: "Coleta", Subtitle: "Tradicional", Text: "Ó Deus,\nconcede <paz>"},
		},
		Readings: model.Readings{
			FirstReading: &model.ReadingEntry{Reference: "Gn 3.8-15"},
			Gospel: &model.ReadingEntry{
				Reference: "Mc 3.20-35",
				Content:   &model.ReadingContent{Verses: []model.Verse{{Number: "20", Text: "E foi para casa."}}},
			},
		},
	}
}

func TestCalendar_SelectedFields(t *testing.T) {
	out := render(t, Calendar(sampleEntry(), []string{FieldColor, FieldYear, FieldReadings}))

	assert.Equal(t,
		`<div class="liturgical-calendar liturgical-color-verde">`+
			`<div class="liturgical-color"><span class="liturgical-color-indicator" data-color="verde"></span><span class="liturgical-value">Verde</span></div>`+
			`<div class="liturgical-year"><span class="liturgical-label">Ano Litúrgico:</span> <span class="liturgical-value">B</span></div>`+
			`<div class="liturgical-readings"><h4 class="liturgical-readings-title">Leituras</h4>`+
			`<div class="liturgical-reading liturgical-reading-first_reading"><span class="liturgical-reading-label">Primeira Leitura:</span> <span class="liturgical-reading-reference">Gn 3.8-15</span></div>`+
			`<div class="liturgical-reading liturgical-reading-gospel"><span class="liturgical-reading-label">Evangelho:</span> <span class="liturgical-reading-reference">Mc 3.20-35</span></div>`+
			`</div></div>`,
		out)
}

func TestCalendar_FullReadingsAndCollect(t *testing.T) {
	out := render(t, Calendar(sampleEntry(), []string{FieldCollect, FieldReadingsFull}))

	assert.Contains(t, out, `<h4 class="liturgical-collect-title">Coleta <span class="liturgical-collect-subtitle">(Tradicional)</span></h4>`)
	assert.Contains(t, out, `<div class="liturgical-collect-text">Ó Deus,<br />`+"\n"+`concede &lt;paz&gt;</div>`)
	assert.Contains(t, out, `<span class="liturgical-verse"><sup class="liturgical-verse-number">20</sup> E foi para casa.</span> `)
	assert.NotContains(t, out, "liturgical-reading-psalm")
}

func TestCalendar_CollectWithoutSubtitle(t *testing.T) {
	entry := &model.CalendarEntry{Collect: []model.Collect{{Title: "Coleta"}}}
	out := render(t, Calendar(entry, []string{FieldCollect}))
	assert.Equal(t,
		`<div class="liturgical-calendar"><div class="liturgical-collects"><div class="liturgical-collect">`+
			`<h4 class="liturgical-collect-title">Coleta</h4></div></div></div>`,
		out)
}

func TestCalendar_MissingDataSuppressesFields(t *testing.T) {
	entry := &model.CalendarEntry{Date: "2024-06-10"}
	out := render(t, Calendar(entry, CalendarFields))
	assert.Equal(t, `<div class="liturgical-calendar"><div class="liturgical-date">2024-06-10</div></div>`, out)
}

func TestCalendar_Celebration(t *testing.T) {
	entry := &model.CalendarEntry{
		LiturgicalColor: "vermelho",
		Celebration:     &model.Celebration{Name: "São Pedro", Description: "Apóstolo", Color: "vermelho"},
	}
	out := render(t, Calendar(entry, []string{FieldDayName, FieldCelebration}))
	assert.Contains(t, out, `<div class="liturgical-day-name">São Pedro</div>`)
	assert.Contains(t, out, `<div class="liturgical-celebration"><div class="liturgical-celebration-name">São Pedro</div><div class="liturgical-celebration-description">Apóstolo</div><div class="liturgical-celebration-color">`)
}

func TestBanner(t *testing.T) {
	out := render(t, Banner(BannerView{
		Style:    "elegant",
		Color:    "roxo",
		Title:    "Advento",
		Year:     "C",
		Readings: "Ev.: Lc 21.25-36",
	}))
	assert.Equal(t,
		`<div class="liturgical-banner liturgical-banner-style-elegant liturgical-banner-roxo" data-color="roxo">`+
			`<div class="liturgical-banner-title">Advento</div>`+
			`<div class="liturgical-banner-year">Ano Litúrgico C</div>`+
			`<div class="liturgical-banner-readings">Ev.: Lc 21.25-36</div></div>`,
		out)
}

func TestBanner_EscapesHostileValues(t *testing.T) {
	out := render(t, Banner(BannerView{Style: `x" onclick="y`, Color: `<b>`, Title: `<script>`}))
	assert.Contains(t, out, `liturgical-banner-style-xonclicky liturgical-banner-b" data-color="&lt;b&gt;"`)
	assert.Contains(t, out, `&lt;script&gt;`)
	assert.NotContains(t, out, `<script>`)
}

func TestError(t *testing.T) {
	assert.Equal(t, `<div class="liturgical-error">Erro na API: código 500</div>`, render(t, Error("Erro na API: código 500")))
}

func TestSanitizeClass(t *testing.T) {
	assert.Equal(t, "verde", SanitizeClass("verde"))
	assert.Equal(t, "rosa-claro_2", SanitizeClass("rosa-claro_2"))
	assert.Equal(t, "ab", SanitizeClass("a%20b"))
	assert.Equal(t, "branco", SanitizeClass("bran co!"))
	assert.Equal(t, "co", SanitizeClass("ção"))
}

func TestUpperFirst(t *testing.T) {
	assert.Equal(t, "Verde", UpperFirst("verde"))
	assert.Equal(t, "Ébano", UpperFirst("ébano"))
	assert.Equal(t, "", UpperFirst(""))
}

func TestSettingsPage(t *testing.T) {
	out := render(t, SettingsPage(SettingsView{
		Prefs: model.Preferences{PrayerBookCode: "loc_2015", BibleVersion: "nvi", BannerStyle: "modern", BannerElements: []string{"title"}},
		PrayerBooks: []model.PrayerBook{
			{Code: "loc_2015", Name: "LOC 2015", Jurisdiction: "IEAB"},
			{Code: "bcp_1662", Name: "BCP 1662"},
		},
		BibleVersions: []model.BibleVersion{
			{Code: "NVI", Name: "NVI", FullName: "Nova Versão Internacional", Language: "pt-BR"},
			{Code: "KJV", Name: "King James", Language: "en"},
			{Code: "XX", Name: "Other", Language: "es"},
		},
		Updated: true,
	}))

	assert.Contains(t, out, "Configurações salvas. Cache limpo.")
	assert.Contains(t, out, `<option value="loc_2015" selected>LOC 2015 - IEAB</option>`)
	assert.Contains(t, out, `<option value="bcp_1662">BCP 1662</option>`)
	assert.Contains(t, out, `<optgroup label="Português"><option value="nvi" selected>NVI - Nova Versão Internacional</option></optgroup>`)
	assert.Contains(t, out, `<optgroup label="Inglês"><option value="kjv">KJV - King James</option></optgroup>`)
	assert.NotContains(t, out, "XX - Other")
	assert.Contains(t, out, `value="modern" class="preview-trigger" checked`)
	assert.Contains(t, out, `value="title" class="preview-trigger" checked`)
	assert.NotContains(t, out, `value="date" class="preview-trigger" checked`)
}

func TestSettingsPage_ListErrorsFallBackToTextInputs(t *testing.T) {
	out := render(t, SettingsPage(SettingsView{
		Prefs:            model.DefaultPreferences(),
		PrayerBooksErr:   errors.New("down"),
		BibleVersionsErr: errors.New("down"),
	}))
	assert.Contains(t, out, "Erro ao carregar livros de oração da API.")
	assert.Contains(t, out, `<input type="text" name="prayer_book" id="prayer_book" value="loc_2015" class="preview-trigger">`)
	assert.Contains(t, out, `<input type="text" name="bible_version" id="bible_version" value="nvi" class="preview-trigger">`)
	assert.NotContains(t, out, "Configurações salvas")
}
