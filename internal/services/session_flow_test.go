package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/mockapi"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type harness struct {
	auth  *services.AuthService
	carts *cart.Manager
	cartS *services.CartService
	order *services.OrderService
	mock  *mockapi.Server
}

func newHarness(t *testing.T) harness {
	t.Helper()
	c, mock := marketplace(t)
	db := memdb(t)
	carts := cart.NewManager(cart.Options{Storage: repos.NewStateRepo(db)})
	return harness{
		auth:  services.NewAuthService(c, repos.NewSessionRepo(db), carts),
		carts: carts,
		cartS: services.NewCartService(c, 0.10),
		order: services.NewOrderService(c),
		mock:  mock,
	}
}

func TestLoginBindsSessionAndAdoptsRemoteCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	hat, _ := h.mock.Product("p-blue-hat")
	radio, _ := h.mock.Product("p-radio")
	h.mock.SetCart("u-alice", []domain.CartLine{{Product: radio, Quantity: 1}})

	h.carts.Open(ctx, "sid-1", nil).Add(ctx, hat, 2)

	u, err := h.auth.Login(ctx, "sid-1", "Alice@Market.test", mockapi.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "u-alice", u.ID)

	sess, err := h.auth.CurrentUser(ctx, "sid-1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	lines := h.carts.Open(ctx, "sid-1", h.auth.Remote(sess)).Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p-radio", lines[0].Product.ID)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newHarness(t)
	_, err := h.auth.Login(context.Background(), "sid-1", "alice@market.test", "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrBadCreds))

	_, err = h.auth.CurrentUser(context.Background(), "sid-1")
	assert.ErrorIs(t, err, repos.ErrNoSession)
}

func TestLogoutKeepsLocalCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.auth.Login(ctx, "sid-1", "bob@market.test", mockapi.DemoPassword)
	require.NoError(t, err)
	sess, _ := h.auth.CurrentUser(ctx, "sid-1")

	st := h.carts.Open(ctx, "sid-1", h.auth.Remote(sess))
	res, err := h.cartS.Add(ctx, st, "p-jacket", 2)
	require.NoError(t, err)
	require.True(t, res.OK)
	require.NoError(t, <-res.Mirror)

	require.NoError(t, h.auth.Logout(ctx, "sid-1"))
	_, err = h.auth.CurrentUser(ctx, "sid-1")
	assert.ErrorIs(t, err, repos.ErrNoSession)
	assert.Nil(t, h.auth.Remote(nil))
	assert.Equal(t, 0, h.carts.Len(), "logout drops the in-memory store")

	st = h.carts.Open(ctx, "sid-1", nil)
	assert.Equal(t, 2, st.Count())
	r := st.Add(ctx, domain.Product{ID: "p-jacket"}, 1)
	assert.Nil(t, r.Mirror, "signed out after logout")
}

func TestCartServiceClampsToStock(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.carts.Open(ctx, "sid-1", nil)

	res, err := h.cartS.Add(ctx, st, "p-radio", 10)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 3, st.Count())

	res, err = h.cartS.Add(ctx, st, "p-watch", 1)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "Out of stock", res.Message)

	_, err = h.cartS.Add(ctx, st, "nope", 1)
	require.Error(t, err)

	h.cartS.Update(ctx, st, "p-radio", 9)
	assert.Equal(t, 3, st.Count())
	h.cartS.Update(ctx, st, "p-radio", 0)
	assert.Equal(t, 0, st.Count())
}

func TestCartSummary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st := h.carts.Open(ctx, "sid-1", nil)
	_, err := h.cartS.Add(ctx, st, "p-red-shoe", 2) // 100.00
	require.NoError(t, err)
	_, err = h.cartS.Add(ctx, st, "p-jacket", 1) // 79.50
	require.NoError(t, err)

	sum := h.cartS.Summary(st)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, "179.50", sum.Subtotal.StringFixed(2))
	assert.True(t, sum.Shipping.IsZero())
	assert.Equal(t, "17.95", sum.Tax.StringFixed(2))
	assert.Equal(t, "197.45", sum.Total.StringFixed(2))
}

func TestProfileStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.auth.Login(ctx, "sid-1", "alice@market.test", mockapi.DemoPassword)
	require.NoError(t, err)
	sess, _ := h.auth.CurrentUser(ctx, "sid-1")

	p := h.order.Profile(ctx, sess)
	assert.Equal(t, "alice@market.test", p.User.Email)
	assert.Equal(t, 2, p.Stats.Orders)
	assert.Equal(t, "199.00", p.Stats.Spent.StringFixed(2))
	assert.False(t, p.Stats.MemberSince.IsZero())

	orders, err := h.order.History(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
