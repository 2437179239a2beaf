package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

type OrderHandler struct {
	Orders  *services.OrderService
	Timeout time.Duration
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	ctx, cancel := viewCtx(c, h.Timeout)
	defer cancel()
	orders, err := h.Orders.History(ctx, sessionOf(c))
	if err != nil {
		return renderError(c, err, "Failed to load orders")
	}
	return render(c, "orders", fiber.Map{"Title": "My Orders", "Orders": orders})
}

func (h *OrderHandler) Profile(c *fiber.Ctx) error {
	ctx, cancel := viewCtx(c, h.Timeout)
	defer cancel()
	p := h.Orders.Profile(ctx, sessionOf(c))
	return render(c, "profile", fiber.Map{"Title": "My Profile", "P": p})
}
