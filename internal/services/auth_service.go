package services

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	API      *api.Client
	Sessions *repos.SessionRepo
	Carts    *cart.Manager
}

func NewAuthService(c *api.Client, sessions *repos.SessionRepo, carts *cart.Manager) *AuthService {
	return &AuthService{API: c, Sessions: sessions, Carts: carts}
}

// Login signs sid in against the marketplace, remembers the bearer token, and
// reconciles the session's cart with the remote one.
func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	auth, err := s.API.Login(ctx, email, password)
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) || api.IsStatus(err, http.StatusBadRequest) {
			return nil, errors.Join(ErrBadCreds, err)
		}
		return nil, err
	}
	if err := s.Sessions.BindSession(ctx, sid, auth.User, auth.Token); err != nil {
		return nil, err
	}
	s.Carts.Open(ctx, sid, s.API.As(auth.Token)).Sync(ctx)
	return &auth.User, nil
}

// Logout tells the marketplace first, but a failure there never keeps the
// browser session signed in. The local cart stays.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if sess, err := s.Sessions.SessionUser(ctx, sid); err == nil {
		if err := s.API.As(sess.Token).Logout(ctx); err != nil {
			applog.Warn(nil, "auth.remote_logout.fail", err, map[string]any{"sid": sid})
		}
	}
	if err := s.Sessions.UnbindSession(ctx, sid); err != nil {
		return err
	}
	s.Carts.Forget(sid)
	return nil
}

// CurrentUser returns repos.ErrNoSession for signed-out sessions.
func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*repos.Session, error) {
	return s.Sessions.SessionUser(ctx, sid)
}

// Remote is the marketplace cart for sess, or nil when signed out.
func (s *AuthService) Remote(sess *repos.Session) cart.Remote {
	if sess == nil || sess.Token == "" {
		return nil
	}
	return s.API.As(sess.Token)
}
