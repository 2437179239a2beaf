package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
	"storefront/internal/view"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Timeout time.Duration
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q"})
	}
	cat, ok := validate.Category(c.Query("category"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
	}
	query := services.Query{Search: q, CategoryID: cat, Sort: validate.Sort(c.Query("sort"))}

	ctx, cancel := viewCtx(c, h.Timeout)
	defer cancel()
	listing, err := h.Catalog.Browse(ctx, query)
	if err != nil {
		return renderError(c, err, "Failed to load products")
	}

	catName := ""
	for _, cc := range listing.Categories {
		if cc.ID == query.CategoryID {
			catName = cc.Name
		}
	}
	return render(c, "products", fiber.Map{
		"Title":        "Products",
		"L":            listing,
		"Q":            query,
		"CategoryName": catName,
		"Filtered":     query.Search != "" || query.CategoryID != "",
	})
}

func flashText(code string) (string, bool) {
	switch code {
	case "added":
		return "Added to cart successfully!", true
	case "failed":
		return "Failed to add to cart", false
	case "oos":
		return "This product is out of stock", false
	}
	return "", true
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "Product not found")
	}

	ctx, cancel := viewCtx(c, h.Timeout)
	defer cancel()
	d, err := h.Catalog.Detail(ctx, id)
	if err != nil {
		return renderError(c, err, "Failed to load product details")
	}

	flash, flashOK := flashText(c.Query("flash"))
	images := d.Product.Images
	if len(images) == 0 {
		images = []string{view.PlaceholderImage}
	}
	return render(c, "product", fiber.Map{
		"Title":   d.Product.Name,
		"P":       d.Product,
		"Images":  images,
		"Reviews": d.Reviews,
		"Flash":   flash,
		"FlashOK": flashOK,
		"MaxQty":  maxQty(d.Product),
	})
}

func maxQty(p domain.Product) int {
	if p.Stock > validate.MaxQty {
		return validate.MaxQty
	}
	return p.Stock
}
