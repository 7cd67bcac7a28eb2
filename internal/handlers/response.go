package handlers

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Response is the JSON envelope of the admin endpoints.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed admin request.
type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func writeSuccess(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{Success: true, Data: data})
}

func writeError(c *fiber.Ctx, status int, message string, code ...string) error {
	info := ErrorInfo{Message: message}
	if len(code) > 0 {
		info.Code = code[0]
	}
	return c.Status(status).JSON(Response{Success: false, Error: &info})
}

// render serves a templ component as an HTML page or fragment with status 200.
func render(c *fiber.Ctx, component templ.Component) error {
	return renderStatus(c, fiber.StatusOK, component)
}

func renderStatus(c *fiber.Ctx, status int, component templ.Component) error {
	handler := adaptor.HTTPHandler(templ.Handler(component, templ.WithStatus(status)))
	return handler(c)
}

func renderString(ctx context.Context, component templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
