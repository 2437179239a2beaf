package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart    *services.CartService
	Timeout time.Duration
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Redirect("/products")
	}
	qty := validate.Qty(c.FormValue("qty"))
	back := "/products/" + productID

	ctx, cancel := viewCtx(c, h.Timeout)
	defer cancel()
	res, err := h.Cart.Add(ctx, storeOf(c), productID, qty)
	if err != nil {
		log.Error(c, "cart.add.fail", err, map[string]any{"product": productID})
		return c.Redirect(back + "?flash=failed")
	}
	if !res.OK {
		log.Info(c, "cart.add.refused", map[string]any{"product": productID, "reason": res.Message})
		return c.Redirect(back + "?flash=oos")
	}
	log.Audit(c, "cart.add", map[string]any{"product": productID, "qty": qty})
	if c.FormValue("next") == "cart" {
		return c.Redirect("/cart")
	}
	return c.Redirect(back + "?flash=added")
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	sum := h.Cart.Summary(storeOf(c))
	return render(c, "cart", fiber.Map{"Title": "Shopping Cart", "S": sum})
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.FormValue("productId"))
	qty, qok := validate.SetQty(c.FormValue("qty"))
	if !ok || !qok {
		log.Security(c, "validation.fail", map[string]any{"field": "cart.update"})
		return c.Redirect("/cart")
	}
	h.Cart.Update(c.UserContext(), storeOf(c), productID, qty)
	log.Audit(c, "cart.update", map[string]any{"product": productID, "qty": qty})
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Redirect("/cart")
	}
	storeOf(c).Remove(c.UserContext(), productID)
	log.Audit(c, "cart.remove", map[string]any{"product": productID})
	return c.Redirect("/cart")
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	storeOf(c).Clear(c.UserContext())
	log.Audit(c, "cart.clear", nil)
	return c.Redirect("/cart")
}

// Summary feeds the nav badge.
func (h *CartHandler) Summary(c *fiber.Ctx) error {
	sum := h.Cart.Summary(storeOf(c))
	lines := make([]fiber.Map, 0, len(sum.Lines))
	for _, l := range sum.Lines {
		lines = append(lines, fiber.Map{
			"productId": l.Product.ID,
			"name":      l.Product.Name,
			"quantity":  l.Quantity,
			"subtotal":  l.Subtotal().StringFixed(2),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"count": sum.Count,
			"total": sum.Subtotal.StringFixed(2),
			"lines": lines,
		},
	})
}
