package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/api"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

type OrderService struct {
	API *api.Client
}

func NewOrderService(c *api.Client) *OrderService { return &OrderService{API: c} }

// History lists the signed-in user's orders as the marketplace returns them.
func (s *OrderService) History(ctx context.Context, sess *repos.Session) ([]domain.Order, error) {
	return s.API.As(sess.Token).Orders(ctx)
}

type Stats struct {
	Orders      int
	Spent       decimal.Decimal
	MemberSince time.Time
}

type Profile struct {
	User  domain.User
	Stats Stats
}

// Profile refreshes the user from the marketplace (falling back to the
// snapshot taken at sign-in) and totals their order history. Neither failure
// hides the page.
func (s *OrderService) Profile(ctx context.Context, sess *repos.Session) Profile {
	remote := s.API.As(sess.Token)
	out := Profile{User: sess.User, Stats: Stats{Spent: decimal.Zero}}

	if u, err := remote.Me(ctx); err == nil {
		out.User = u
	} else {
		applog.Warn(nil, "profile.me.fail", err, map[string]any{"user_id": sess.User.ID})
	}
	out.Stats.MemberSince = out.User.CreatedAt

	orders, err := remote.Orders(ctx)
	if err != nil {
		applog.Warn(nil, "profile.orders.fail", err, map[string]any{"user_id": sess.User.ID})
		return out
	}
	out.Stats.Orders = len(orders)
	for _, o := range orders {
		out.Stats.Spent = out.Stats.Spent.Add(o.TotalAmount)
	}
	return out
}
