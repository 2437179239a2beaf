package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/api"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	if st := storeOf(c); st != nil {
		data["CartCount"] = st.Count()
	}
	data["Theme"] = validate.Theme(c.Cookies("theme"))
	data["Path"] = c.Path()
	return c.Render(tmpl, data)
}

// renderError shows the retryable error page. The message is the
// marketplace's when it sent one, else fallback.
func renderError(c *fiber.Ctx, err error, fallback string) error {
	status := fiber.StatusBadGateway
	switch {
	case api.IsStatus(err, http.StatusNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusGatewayTimeout
	}
	applog.Error(c, "view.load.fail", err, map[string]any{"view": c.Route().Path})
	c.Status(status)
	return render(c, "error", fiber.Map{
		"Title":    "Error",
		"Message":  api.Message(err, fallback),
		"RetryURL": validate.LocalPath(c.OriginalURL(), "/"),
	})
}

func notFound(c *fiber.Ctx, msg string) error {
	c.Status(fiber.StatusNotFound)
	return render(c, "notfound", fiber.Map{"Title": "Not Found", "Message": msg})
}

// viewCtx bounds everything a single page load asks of the marketplace.
func viewCtx(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), timeout)
}

type PrefsHandler struct {
	CookieSecure bool
}

// Theme flips between the light and dark stylesheet.
func (h *PrefsHandler) Theme(c *fiber.Ctx) error {
	next := "dark"
	if validate.Theme(c.Cookies("theme")) == "dark" {
		next = "light"
	}
	c.Cookie(&fiber.Cookie{
		Name:     "theme",
		Value:    next,
		Path:     "/",
		MaxAge:   365 * 24 * 3600,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
	})
	return c.Redirect(validate.LocalPath(c.FormValue("next"), "/products"))
}
