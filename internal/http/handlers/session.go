package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"storefront/internal/cart"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func ensureSID(c *fiber.Ctx, secure bool) string {
	sid := c.Cookies("sid")
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   secure,
		})
	}
	c.Locals("sid", sid)
	return sid
}

func sidOf(c *fiber.Ctx) string {
	sid, _ := c.Locals("sid").(string)
	return sid
}

func sessionOf(c *fiber.Ctx) *repos.Session {
	s, _ := c.Locals("session").(*repos.Session)
	return s
}

func storeOf(c *fiber.Ctx) *cart.Store {
	st, _ := c.Locals("cart").(*cart.Store)
	return st
}

// Session attaches the browser session, its signed-in user (if any) and its
// cart store to every request.
func Session(auth *services.AuthService, carts *cart.Manager, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := ensureSID(c, secure)
		sess, err := auth.CurrentUser(c.UserContext(), sid)
		switch {
		case err == nil:
			c.Locals("session", sess)
			c.Locals("user", &sess.User)
			c.Locals("user_id", sess.User.ID)
		case !errors.Is(err, repos.ErrNoSession):
			applog.Error(c, "session.load.fail", err, nil)
			sess = nil
		}
		c.Locals("cart", carts.Open(c.UserContext(), sid, auth.Remote(sess)))
		return c.Next()
	}
}

// RequireUser sends signed-out visitors to the login page, or answers 401 on
// JSON routes.
func RequireUser(c *fiber.Ctx) error {
	if sessionOf(c) != nil {
		return c.Next()
	}
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Not signed in"})
	}
	return c.Redirect("/login")
}
