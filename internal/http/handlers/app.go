package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	applog "storefront/internal/log"
	"storefront/internal/view"
	"storefront/web"
)

func newEngine(dir string) *html.Engine {
	var engine *html.Engine
	if dir != "" {
		applog.Info(nil, "views.disk", map[string]any{"dir": dir})
		engine = html.New(dir, ".html")
		engine.Reload(true)
	} else {
		engine = html.NewFileSystem(http.FS(web.Templates()), ".html")
	}
	for name, fn := range view.Funcs() {
		engine.AddFunc(name, fn)
	}
	return engine
}

// NewApp builds the storefront with its full middleware stack and routes.
func NewApp(d *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:       newEngine(d.Cfg.TemplatesDisk),
		ViewsLayout: "layouts/main",
		// Form values and cookies outlive the request in cart mirror tasks.
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			applog.Error(c, "server.error", err, nil)
			c.Status(code)
			if rerr := render(c, "error", fiber.Map{
				"Title":    "Error",
				"Message":  "Something went wrong. Please try again.",
				"RetryURL": "/",
			}); rerr != nil {
				return c.Status(code).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())

	app.Use("/static", filesystem.New(filesystem.Config{Root: http.FS(web.Static())}))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   d.Cfg.CookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			c.Status(fiber.StatusForbidden)
			return render(c, "notfound", fiber.Map{"Title": "Forbidden", "Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	app.Use(Session(d.Auth, d.Carts, d.Cfg.CookieSecure))

	app.Get("/", d.AuthHandler.Home)
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			c.Status(fiber.StatusTooManyRequests)
			return render(c, "login", fiber.Map{"Title": "Sign in", "Err": "Too many attempts. Please try again later.", "Email": ""})
		},
	}), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)
	app.Post("/theme", d.PrefsHandler.Theme)

	app.Get("/products", RequireUser, d.ProductHandler.List)
	app.Get("/products/:id", RequireUser, d.ProductHandler.Detail)

	app.Get("/cart", RequireUser, d.CartHandler.View)
	app.Post("/cart", RequireUser, d.CartHandler.Add)
	app.Post("/cart/update", RequireUser, d.CartHandler.Update)
	app.Post("/cart/remove", RequireUser, d.CartHandler.Remove)
	app.Post("/cart/clear", RequireUser, d.CartHandler.Clear)

	app.Get("/orders", RequireUser, d.OrderHandler.History)
	app.Get("/profile", RequireUser, d.OrderHandler.Profile)

	api := app.Group("/api/v1")
	api.Get("/cart", RequireUser, d.CartHandler.Summary)

	app.Use(func(c *fiber.Ctx) error {
		return notFound(c, "Page not found")
	})
	return app
}
