package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain"
)

type Auth struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (Auth, error) {
	var a Auth
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", credentials{Email: email, Password: password}, &a); err != nil {
		return Auth{}, err
	}
	if a.Token == "" || a.User.ID == "" {
		return Auth{}, &Error{Status: http.StatusBadGateway, Message: "Malformed login response"}
	}
	return a, nil
}

func (s *Session) Logout(ctx context.Context) error {
	return s.c.do(ctx, http.MethodPost, "/auth/logout", s.token, nil, nil)
}

func (s *Session) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	if err := s.c.do(ctx, http.MethodGet, "/auth/me", s.token, nil, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

type cartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart returns the server-side cart. Invalid or duplicate lines are folded away.
func (s *Session) Cart(ctx context.Context) ([]domain.CartLine, error) {
	var data struct {
		Items []domain.CartLine `json:"items"`
	}
	if err := s.c.do(ctx, http.MethodGet, "/cart", s.token, nil, &data); err != nil {
		return nil, err
	}
	return domain.NormalizeLines(data.Items), nil
}

func (s *Session) AddItem(ctx context.Context, productID string, qty int) error {
	return s.c.do(ctx, http.MethodPost, "/cart/items", s.token, cartItem{ProductID: productID, Quantity: qty}, nil)
}

func (s *Session) UpdateItem(ctx context.Context, productID string, qty int) error {
	return s.c.do(ctx, http.MethodPut, "/cart/items/"+url.PathEscape(productID), s.token, cartItem{ProductID: productID, Quantity: qty}, nil)
}

func (s *Session) RemoveItem(ctx context.Context, productID string) error {
	return s.c.do(ctx, http.MethodDelete, "/cart/items/"+url.PathEscape(productID), s.token, nil, nil)
}

func (s *Session) ClearCart(ctx context.Context) error {
	return s.c.do(ctx, http.MethodDelete, "/cart", s.token, nil, nil)
}

func (s *Session) Orders(ctx context.Context) ([]domain.Order, error) {
	var data struct {
		Orders []domain.Order `json:"orders"`
	}
	if err := s.c.do(ctx, http.MethodGet, "/orders", s.token, nil, &data); err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(data.Orders))
	for _, o := range data.Orders {
		if o.ID == "" {
			continue
		}
		for i := range o.Items {
			if p := o.Items[i].Product; p != nil {
				p.Normalize()
			}
		}
		out = append(out, o)
	}
	return out, nil
}
