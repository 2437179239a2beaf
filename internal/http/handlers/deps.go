package handlers

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type Deps struct {
	Cfg   config.Config
	Auth  *services.AuthService
	Carts *cart.Manager

	AuthHandler    *AuthHandler
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	PrefsHandler   *PrefsHandler
}

func NewDeps(cfg config.Config, client *api.Client, db *sqlx.DB, carts *cart.Manager) *Deps {
	sessionRepo := repos.NewSessionRepo(db)

	authSvc := services.NewAuthService(client, sessionRepo, carts)
	catalogSvc := services.NewCatalogService(client)
	cartSvc := services.NewCartService(client, cfg.TaxRate)
	orderSvc := services.NewOrderService(client)

	return &Deps{
		Cfg:            cfg,
		Auth:           authSvc,
		Carts:          carts,
		AuthHandler:    &AuthHandler{Auth: authSvc, Timeout: cfg.APITimeout},
		ProductHandler: &ProductHandler{Catalog: catalogSvc, Timeout: cfg.APITimeout},
		CartHandler:    &CartHandler{Cart: cartSvc, Timeout: cfg.APITimeout},
		OrderHandler:   &OrderHandler{Orders: orderSvc, Timeout: cfg.APITimeout},
		PrefsHandler:   &PrefsHandler{CookieSecure: cfg.CookieSecure},
	}
}
