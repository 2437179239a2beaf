package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain"
)

func validProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(in))
	for _, p := range in {
		p.Normalize()
		if p.ID == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var data struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &data); err != nil {
		return nil, err
	}
	return validProducts(data.Products), nil
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), "", nil, &p); err != nil {
		return domain.Product{}, err
	}
	p.Normalize()
	if p.ID == "" {
		return domain.Product{}, &Error{Status: http.StatusNotFound, Message: "Product not found"}
	}
	return p, nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var data []domain.Category
	if err := c.do(ctx, http.MethodGet, "/categories", "", nil, &data); err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(data))
	for _, cat := range data {
		if strings.TrimSpace(cat.ID) == "" {
			continue
		}
		out = append(out, cat)
	}
	return out, nil
}

type wireReview struct {
	ID      string `json:"id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	User    *struct {
		Name string `json:"name"`
	} `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Client) Reviews(ctx context.Context, productID string) ([]domain.Review, error) {
	var data struct {
		Reviews []wireReview `json:"reviews"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID)+"/reviews", "", nil, &data); err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(data.Reviews))
	for _, w := range data.Reviews {
		r := domain.Review{ID: w.ID, Rating: w.Rating, Comment: w.Comment, CreatedAt: w.CreatedAt}
		if w.User != nil {
			r.UserName = w.User.Name
		}
		r.Rating = min(max(r.Rating, 0), 5)
		out = append(out, r)
	}
	return out, nil
}
