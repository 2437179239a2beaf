package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/api"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AuthHandler struct {
	Auth    *services.AuthService
	Timeout time.Duration
}

func (h *AuthHandler) Home(c *fiber.Ctx) error {
	if sessionOf(c) != nil {
		return c.Redirect("/products")
	}
	return c.Redirect("/login")
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if sessionOf(c) != nil {
		return c.Redirect("/products")
	}
	return render(c, "login", fiber.Map{"Title": "Sign in", "Err": "", "Email": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := sidOf(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{"Title": "Sign in", "Err": "Please enter a valid email address", "Email": email})
	}
	if !validate.Password(pass) {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_password_format"})
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{"Title": "Sign in", "Err": "Invalid email or password", "Email": email})
	}

	ctx, cancel := viewCtx(c, h.Timeout)
	defer cancel()
	if _, err := h.Auth.Login(ctx, sid, email, pass); err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			log.Security(c, "auth.login.fail", map[string]any{"email": email})
			c.Status(fiber.StatusUnauthorized)
			return render(c, "login", fiber.Map{"Title": "Sign in", "Err": "Invalid email or password", "Email": email})
		}
		log.Error(c, "auth.login.error", err, map[string]any{"email": email})
		c.Status(fiber.StatusBadGateway)
		return render(c, "login", fiber.Map{"Title": "Sign in", "Err": api.Message(err, "Login failed"), "Email": email})
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/products")
}

// Logout signs the session out but keeps the sid cookie so the local cart
// survives.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := sidOf(c)
	ctx, cancel := viewCtx(c, h.Timeout)
	defer cancel()
	if err := h.Auth.Logout(ctx, sid); err != nil {
		log.Error(c, "auth.logout.fail", err, nil)
	}
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/login")
}
