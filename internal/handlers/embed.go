package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/liturgical/internal/shortcode"
)

// CalendarEmbedHandler serves the liturgical_calendar fragment. Errors are part
// of the fragment, so the status is always 200.
func CalendarEmbedHandler(renderer *shortcode.Renderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		attrs := shortcode.CalendarAttrs{
			Date: c.Query("date"),
			Show: c.Query("show"),
		}
		return render(c, renderer.Calendar(c.UserContext(), attrs))
	}
}

// BannerEmbedHandler serves the liturgical_banner fragment.
func BannerEmbedHandler(renderer *shortcode.Renderer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		attrs := shortcode.BannerAttrs{
			Date:  c.Query("date"),
			Style: c.Query("style"),
			Show:  c.Query("show"),
		}
		return render(c, renderer.Banner(c.UserContext(), attrs))
	}
}
