package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  string          `json:"categoryId"`
	Images      []string        `json:"images"`
	Rating      float64         `json:"rating"`
}

// Normalize clamps fields the remote system is not trusted to keep in range.
func (p *Product) Normalize() {
	p.ID = strings.TrimSpace(p.ID)
	if p.Stock < 0 {
		p.Stock = 0
	}
	switch {
	case p.Rating < 0:
		p.Rating = 0
	case p.Rating > 5:
		p.Rating = 5
	}
	if p.Images == nil {
		p.Images = []string{}
	}
}

func (p Product) InStock() bool { return p.Stock > 0 }

// Image returns the i-th image URL or "" when there is none.
func (p Product) Image(i int) string {
	if i < 0 || i >= len(p.Images) {
		return ""
	}
	return p.Images[i]
}

// CartLine is one product/quantity pairing. Quantity is always >= 1.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s %s", a.Street, a.City, a.State, a.ZipCode)
}

type Review struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r Review) Author() string {
	if strings.TrimSpace(r.UserName) == "" {
		return "Anonymous"
	}
	return r.UserName
}
