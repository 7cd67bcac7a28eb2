package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jjenkins/liturgical/internal/apperr"
	"github.com/jjenkins/liturgical/internal/model"
	"github.com/jjenkins/liturgical/internal/service"
	"github.com/jjenkins/liturgical/internal/shortcode"
	"github.com/jjenkins/liturgical/internal/store"
	"github.com/jjenkins/liturgical/internal/templates"
)

// CalendarService is the part of the API client the admin screens use.
type CalendarService interface {
	shortcode.CalendarSource
	GetPrayerBooks(ctx context.Context) ([]model.PrayerBook, error)
	GetBibleVersions(ctx context.Context) ([]model.BibleVersion, error)
	ClearCache(ctx context.Context) (int, error)
}

// Admin groups the dependencies of the admin handlers.
type Admin struct {
	Calendar CalendarService
	Prefs    store.PreferenceStore
	Clock    *service.Clock
	Validate *validator.Validate
	Logger   *zap.Logger
}

// settingsForm is the submitted settings form. Missing elements mean the
// defaults; an explicit empty selection cannot be expressed by a form post.
type settingsForm struct {
	PrayerBook   string   `validate:"required,max=64,printascii"`
	BibleVersion string   `validate:"required,max=64,printascii"`
	Style        string   `validate:"required,oneof=simple elegant modern compact"`
	Elements     []string `validate:"max=8,dive,max=32"`
}

// previewForm is the preview request. Every field has a default.
type previewForm struct {
	PrayerBook   string   `validate:"max=64,printascii"`
	BibleVersion string   `validate:"max=64,printascii"`
	Style        string   `validate:"max=32"`
	Elements     []string `validate:"max=8,dive,max=32"`
	DateType     string   `validate:"max=32"`
}

// PreviewResult is the data of a successful preview response.
type PreviewResult struct {
	HTML      string          `json:"html"`
	Data      json.RawMessage `json:"data"`
	Shortcode string          `json:"shortcode"`
}

func formValue(c *fiber.Ctx, key, fallback string) string {
	if v := strings.TrimSpace(c.FormValue(key)); v != "" {
		return v
	}
	return fallback
}

// formList returns every value posted under key, or nil when the key is absent.
func formList(c *fiber.Ctx, key string) []string {
	raw := c.Request().PostArgs().PeekMulti(key)
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, strings.TrimSpace(string(v)))
	}
	return out
}

// validationMessages flattens validator errors into one line per field.
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("Campo inválido: %s (%s)", fe.Field(), fe.Tag()))
	}
	return out
}

// SettingsPageHandler shows the settings form. The option lists come from the
// API; a list that fails to load turns its field into a text input.
func SettingsPageHandler(a Admin) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		prefs, err := a.Prefs.Load(ctx)
		if err != nil {
			a.Logger.Error("failed to load preferences", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading settings")
		}

		view := a.settingsView(ctx, prefs)
		view.Updated = c.Query("settings-updated") != ""
		return render(c, templates.SettingsPage(view))
	}
}

func (a Admin) settingsView(ctx context.Context, prefs model.Preferences) templates.SettingsView {
	view := templates.SettingsView{Prefs: prefs}
	view.PrayerBooks, view.PrayerBooksErr = a.Calendar.GetPrayerBooks(ctx)
	view.BibleVersions, view.BibleVersionsErr = a.Calendar.GetBibleVersions(ctx)
	return view
}

// SaveSettingsHandler stores the submitted preferences, clears the cache and
// redirects back to the form.
func SaveSettingsHandler(a Admin) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		form := settingsForm{
			PrayerBook:   formValue(c, "prayer_book", ""),
			BibleVersion: formValue(c, "bible_version", ""),
			Style:        formValue(c, "style", model.DefaultBannerStyle),
			Elements:     formList(c, "elements[]"),
		}
		if err := a.Validate.Struct(form); err != nil {
			current, loadErr := a.Prefs.Load(ctx)
			if loadErr != nil {
				current = model.DefaultPreferences()
			}
			view := a.settingsView(ctx, current)
			view.Errors = validationMessages(err)
			return renderStatus(c, fiber.StatusBadRequest, templates.SettingsPage(view))
		}

		elements := model.DefaultBannerElements()
		if form.Elements != nil {
			elements = model.FilterBannerElements(form.Elements)
		}

		prefs := model.Preferences{
			PrayerBookCode: form.PrayerBook,
			BibleVersion:   form.BibleVersion,
			BannerStyle:    form.Style,
			BannerElements: elements,
		}
		if err := a.Prefs.Save(ctx, prefs); err != nil {
			a.Logger.Error("failed to save preferences", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).SendString("Error saving settings")
		}

		if _, err := a.Calendar.ClearCache(ctx); err != nil {
			a.Logger.Warn("failed to clear cache after saving settings", zap.Error(err))
		}

		a.Logger.Info("settings saved",
			zap.String("prayer_book", prefs.PrayerBookCode),
			zap.String("bible_version", prefs.BibleVersion),
			zap.String("banner_style", prefs.BannerStyle),
			zap.Strings("banner_elements", prefs.BannerElements),
		)
		return c.Redirect("/admin/settings?settings-updated=1", fiber.StatusSeeOther)
	}
}

// PreviewHandler renders a banner for unsaved settings. The cache is cleared
// first so the preview always reflects fresh API data, and the previewed
// preferences are passed to the client without being stored.
func PreviewHandler(a Admin) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		form := previewForm{
			PrayerBook:   formValue(c, "prayer_book", model.DefaultPrayerBookCode),
			BibleVersion: formValue(c, "bible_version", model.DefaultBibleVersion),
			Style:        formValue(c, "style", model.DefaultBannerStyle),
			Elements:     formList(c, "elements[]"),
			DateType:     formValue(c, "date_type", service.TokenToday),
		}
		if err := a.Validate.Struct(form); err != nil {
			return writeError(c, fiber.StatusBadRequest, strings.Join(validationMessages(err), "; "), "BAD_REQUEST")
		}

		elements := model.DefaultBannerElements()
		if form.Elements != nil {
			elements = model.FilterBannerElements(form.Elements)
		}

		if _, err := a.Calendar.ClearCache(ctx); err != nil {
			a.Logger.Warn("failed to clear cache before preview", zap.Error(err))
		}

		dateType := form.DateType
		if dateType != service.TokenLastSunday && dateType != service.TokenNextSunday {
			dateType = service.TokenToday
		}
		style := form.Style
		if !model.IsBannerStyle(style) {
			style = model.DefaultBannerStyle
		}

		date := a.Clock.ResolveRelative(dateType)
		prefs := model.APIPreferences{PrayerBookCode: form.PrayerBook, BibleVersion: form.BibleVersion}

		entry, err := a.Calendar.GetCalendar(ctx, date, prefs)
		if err != nil {
			return writeError(c, apperr.HTTPCode(err), shortcode.ErrorMessage(err), strings.ToUpper(string(apperr.KindOf(err))))
		}

		html, err := renderString(ctx, templates.Banner(shortcode.BuildBanner(entry, style, elements)))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "Erro ao carregar preview", "INTERNAL")
		}

		data := entry.Raw
		if len(data) == 0 {
			data, _ = json.Marshal(entry)
		}

		return writeSuccess(c, PreviewResult{
			HTML:      html,
			Data:      data,
			Shortcode: shortcode.BannerShortcode(dateType, style, elements),
		})
	}
}

// ClearCacheHandler purges the cached API data.
func ClearCacheHandler(a Admin) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := a.Calendar.ClearCache(c.UserContext())
		if err != nil {
			a.Logger.Error("failed to clear cache", zap.Error(err))
			return writeError(c, fiber.StatusInternalServerError, "Erro ao limpar o cache", "INTERNAL")
		}
		return writeSuccess(c, fiber.Map{"cleared": n})
	}
}
