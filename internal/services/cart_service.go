package services

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

type CartService struct {
	Catalog Catalog
	TaxRate decimal.Decimal
}

func NewCartService(catalog Catalog, taxRate float64) *CartService {
	return &CartService{Catalog: catalog, TaxRate: decimal.NewFromFloat(taxRate)}
}

// Add looks the product up so the line carries a fresh snapshot, refuses
// out-of-stock products and clamps qty to [1, stock].
func (s *CartService) Add(ctx context.Context, st *cart.Store, productID string, qty int) (cart.Result, error) {
	p, err := s.Catalog.Product(ctx, productID)
	if err != nil {
		return cart.Result{Message: "Failed to add to cart"}, err
	}
	if !p.InStock() {
		return cart.Result{Message: "Out of stock"}, nil
	}
	if qty < 1 {
		qty = 1
	}
	if qty > p.Stock {
		qty = p.Stock
	}
	return st.Add(ctx, p, qty), nil
}

// Update clamps qty to the stock recorded on the line; zero removes it.
func (s *CartService) Update(ctx context.Context, st *cart.Store, productID string, qty int) cart.Result {
	for _, l := range st.Lines() {
		if l.Product.ID == productID && l.Product.Stock > 0 && qty > l.Product.Stock {
			qty = l.Product.Stock
		}
	}
	return st.UpdateQuantity(ctx, productID, qty)
}

// Summary is the cart page's order summary. Shipping is always free.
type Summary struct {
	Lines    []domain.CartLine
	Count    int
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

func (s *CartService) Summary(st *cart.Store) Summary {
	lines := st.Lines()
	sum := Summary{Lines: lines, Shipping: decimal.Zero, Subtotal: decimal.Zero}
	for _, l := range lines {
		sum.Count += l.Quantity
		sum.Subtotal = sum.Subtotal.Add(l.Subtotal())
	}
	sum.Tax = sum.Subtotal.Mul(s.TaxRate).Round(2)
	sum.Total = sum.Subtotal.Add(sum.Shipping).Add(sum.Tax)
	return sum
}
