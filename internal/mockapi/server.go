// Package mockapi is an in-memory stand-in for the marketplace API. It speaks
// the same envelope and routes as the real service and is used for local
// development (cmd/mockmarket) and tests.
package mockapi

import (
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
)

type failure struct {
	status  int
	message string
}

type Server struct {
	mu         sync.Mutex
	categories []domain.Category
	products   []domain.Product
	reviews    map[string][]review
	accounts   map[string]account // by lower-cased email
	tokens     map[string]string  // token -> user id
	carts      map[string][]domain.CartLine
	orders     map[string][]domain.Order
	failures   map[string]failure // "METHOD /route/pattern" -> forced reply
	calls      []string
}

func New() *Server {
	cats, prods := seedCatalog()
	s := &Server{
		categories: cats,
		products:   prods,
		reviews:    seedReviews(),
		accounts:   map[string]account{},
		tokens:     map[string]string{},
		carts:      map[string][]domain.CartLine{},
		orders:     seedOrders(prods),
		failures:   map[string]failure{},
	}
	for _, a := range seedAccounts() {
		s.accounts[strings.ToLower(a.User.Email)] = a
	}
	return s
}

// Fail makes every request matching route ("GET /products") answer with status and message.
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Calls lists "METHOD /path" for every authenticated cart call received, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Server) CartOf(userID string) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.carts[userID]...)
}

func (s *Server) SetCart(userID string, lines []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = append([]domain.CartLine(nil), lines...)
}

func (s *Server) Product(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func fail(c *fiber.Ctx, status int, message string) error {
	body := fiber.Map{"success": false}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Post("/auth/login", s.guard("POST /auth/login", s.login))
	app.Get("/products", s.guard("GET /products", s.listProducts))
	app.Get("/products/:id", s.guard("GET /products/:id", s.getProduct))
	app.Get("/products/:id/reviews", s.guard("GET /products/:id/reviews", s.listReviews))
	app.Get("/categories", s.guard("GET /categories", s.listCategories))

	auth := s.requireToken
	app.Post("/auth/logout", auth, s.guard("POST /auth/logout", s.logout))
	app.Get("/auth/me", auth, s.guard("GET /auth/me", s.me))
	app.Get("/cart", auth, s.guard("GET /cart", s.getCart))
	app.Post("/cart/items", auth, s.guard("POST /cart/items", s.addItem))
	app.Put("/cart/items/:productId", auth, s.guard("PUT /cart/items/:productId", s.updateItem))
	app.Delete("/cart/items/:productId", auth, s.guard("DELETE /cart/items/:productId", s.removeItem))
	app.Delete("/cart", auth, s.guard("DELETE /cart", s.clearCart))
	app.Get("/orders", auth, s.guard("GET /orders", s.listOrders))

	app.Use(func(c *fiber.Ctx) error { return fail(c, fiber.StatusNotFound, "Route not found") })
	return app
}

// guard answers with a forced failure when one is registered for route.
func (s *Server) guard(route string, h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s.mu.Lock()
		f, forced := s.failures[route]
		if strings.Contains(route, "/cart") {
			s.calls = append(s.calls, c.Method()+" "+c.Path())
		}
		s.mu.Unlock()
		if forced {
			return fail(c, f.status, f.message)
		}
		return h(c)
	}
}

func (s *Server) requireToken(c *fiber.Ctx) error {
	tok := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	s.mu.Lock()
	uid, found := s.tokens[tok]
	s.mu.Unlock()
	if tok == "" || !found {
		return fail(c, fiber.StatusUnauthorized, "Not authorized")
	}
	c.Locals("uid", uid)
	c.Locals("token", tok)
	return c.Next()
}

func (s *Server) login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	s.mu.Lock()
	acct, found := s.accounts[strings.ToLower(strings.TrimSpace(in.Email))]
	s.mu.Unlock()
	if !found || bcrypt.CompareHashAndPassword(acct.Hash, []byte(in.Password)) != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	tok := uuid.NewString()
	s.mu.Lock()
	s.tokens[tok] = acct.User.ID
	s.mu.Unlock()
	return ok(c, fiber.Map{"token": tok, "user": acct.User})
}

func (s *Server) logout(c *fiber.Ctx) error {
	s.mu.Lock()
	delete(s.tokens, c.Locals("token").(string))
	s.mu.Unlock()
	return ok(c, nil)
}

func (s *Server) me(c *fiber.Ctx) error {
	uid := c.Locals("uid").(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.User.ID == uid {
			return ok(c, a.User)
		}
	}
	return fail(c, fiber.StatusNotFound, "User not found")
}

func (s *Server) listProducts(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ok(c, fiber.Map{"products": s.products})
}

func (s *Server) getProduct(c *fiber.Ctx) error {
	p, found := s.Product(c.Params("id"))
	if !found {
		return fail(c, fiber.StatusNotFound, "Product not found")
	}
	return ok(c, p)
}

func (s *Server) listReviews(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs := s.reviews[c.Params("id")]
	if rs == nil {
		rs = []review{}
	}
	return ok(c, fiber.Map{"reviews": rs})
}

func (s *Server) listCategories(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ok(c, s.categories)
}

func (s *Server) getCart(c *fiber.Ctx) error {
	lines := s.CartOf(c.Locals("uid").(string))
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return ok(c, fiber.Map{"items": lines})
}

type itemBody struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) addItem(c *fiber.Ctx) error {
	var in itemBody
	if err := c.BodyParser(&in); err != nil || in.Quantity < 1 {
		return fail(c, fiber.StatusBadRequest, "Invalid cart item")
	}
	p, found := s.Product(in.ProductID)
	if !found {
		return fail(c, fiber.StatusNotFound, "Product not found")
	}
	uid := c.Locals("uid").(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[uid]
	for i := range lines {
		if lines[i].Product.ID == p.ID {
			lines[i].Quantity += in.Quantity
			return ok(c, fiber.Map{"items": lines})
		}
	}
	s.carts[uid] = append(lines, domain.CartLine{Product: p, Quantity: in.Quantity})
	return ok(c, fiber.Map{"items": s.carts[uid]})
}

func (s *Server) updateItem(c *fiber.Ctx) error {
	var in itemBody
	if err := c.BodyParser(&in); err != nil || in.Quantity < 1 {
		return fail(c, fiber.StatusBadRequest, "Invalid cart item")
	}
	uid, pid := c.Locals("uid").(string), c.Params("productId")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.carts[uid] {
		if s.carts[uid][i].Product.ID == pid {
			s.carts[uid][i].Quantity = in.Quantity
			return ok(c, fiber.Map{"items": s.carts[uid]})
		}
	}
	return fail(c, fiber.StatusNotFound, "Item not in cart")
}

func (s *Server) removeItem(c *fiber.Ctx) error {
	uid, pid := c.Locals("uid").(string), c.Params("productId")
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.carts[uid][:0:0]
	for _, l := range s.carts[uid] {
		if l.Product.ID != pid {
			kept = append(kept, l)
		}
	}
	s.carts[uid] = kept
	return ok(c, fiber.Map{"items": kept})
}

func (s *Server) clearCart(c *fiber.Ctx) error {
	s.mu.Lock()
	delete(s.carts, c.Locals("uid").(string))
	s.mu.Unlock()
	return ok(c, fiber.Map{"items": []domain.CartLine{}})
}

func (s *Server) listOrders(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := s.orders[c.Locals("uid").(string)]
	if orders == nil {
		orders = []domain.Order{}
	}
	return ok(c, fiber.Map{"orders": orders})
}

// Serve runs the mock on a loopback httptest server; callers Close it.
func Serve(s *Server) *httptest.Server {
	return httptest.NewServer(adaptor.FiberApp(s.App()))
}
