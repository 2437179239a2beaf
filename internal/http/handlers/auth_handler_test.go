package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"storefront/internal/mockapi"
)

func TestProtectedRoutesRequireLogin(t *testing.T) {
	a := newTestApp(t)

	for _, p := range []string{"/products", "/products/p-red-shoe", "/cart", "/orders", "/profile"} {
		r := a.get(p)
		if r.Status != http.StatusFound || r.Location != "/login" {
			t.Fatalf("%s: expected redirect to /login, got %d %q", p, r.Status, r.Location)
		}
	}
	r := a.get("/api/v1/cart")
	if r.Status != http.StatusUnauthorized || !strings.Contains(r.Body, `"success":false`) {
		t.Fatalf("api without session: %d %s", r.Status, r.Body)
	}
	if r := a.get("/"); r.Location != "/login" {
		t.Fatalf("root should send signed-out visitors to login, got %q", r.Location)
	}
}

func TestLoginSuccessAndFailure(t *testing.T) {
	a := newTestApp(t)

	var bad result
	entries := captureLogs(t, func() {
		bad = a.login("alice@market.test", "wrong-password")
	})
	if bad.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", bad.Status)
	}
	mustContain(t, bad.Body, "Invalid email or password")
	if !hasAction(entries, "warn", "auth.login.fail") {
		t.Fatalf("expected auth.login.fail security log, got %+v", entries)
	}

	r := a.post("/login", url.Values{"email": {"not-an-email"}, "password": {"x"}})
	if r.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed email, got %d", r.Status)
	}
	mustContain(t, r.Body, "valid email")

	entries = captureLogs(t, func() { a.loginAlice() })
	if !hasAction(entries, "audit", "auth.login.success") {
		t.Fatalf("expected auth.login.success audit log, got %+v", entries)
	}
	if r := a.get("/login"); r.Location != "/products" {
		t.Fatalf("signed-in visitor should skip the login form, got %d %q", r.Status, r.Location)
	}
	if r := a.get("/"); r.Location != "/products" {
		t.Fatalf("root should go to products, got %q", r.Location)
	}
	mustContain(t, a.get("/products").Body, "Hi, Alice Doe", "Logout")
}

func TestLoginUpstreamFailureShowsMessage(t *testing.T) {
	a := newTestApp(t)
	a.mock.Fail("POST /auth/login", http.StatusServiceUnavailable, "Auth service down")

	r := a.login("alice@market.test", mockapi.DemoPassword)
	if r.Status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", r.Status)
	}
	mustContain(t, r.Body, "Auth service down")
}

func TestLoginThrottle(t *testing.T) {
	a := newTestApp(t)
	a.get("/login")
	var last result
	for i := 0; i < 6; i++ {
		last = a.post("/login", url.Values{"email": {"alice@market.test"}, "password": {"wrong"}})
	}
	if last.Status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after 5 attempts, got %d", last.Status)
	}
	mustContain(t, last.Body, "Too many attempts")
}

func TestLogoutKeepsLocalCart(t *testing.T) {
	a := newTestApp(t)
	a.loginAlice()
	sid := a.jar["sid"]

	if r := a.post("/cart", url.Values{"productId": {"p-blue-hat"}, "qty": {"2"}}); r.Status != http.StatusFound {
		t.Fatalf("add: %d", r.Status)
	}
	r := a.post("/logout", nil)
	if r.Status != http.StatusFound || r.Location != "/login" {
		t.Fatalf("logout: %d %q", r.Status, r.Location)
	}
	if a.jar["sid"] != sid {
		t.Fatal("logout must keep the browser session")
	}
	if r := a.get("/cart"); r.Location != "/login" {
		t.Fatalf("cart after logout should need login, got %d", r.Status)
	}
	a.carts.Flush()
	if got := a.carts.Open(t.Context(), sid, nil).Count(); got != 2 {
		t.Fatalf("local cart lost on logout: count=%d", got)
	}
}

func TestCSRFRequiredOnPost(t *testing.T) {
	a := newTestApp(t)
	a.get("/login")
	r := a.do("POST", "/login", url.Values{"email": {"alice@market.test"}, "password": {mockapi.DemoPassword}})
	if r.Status != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf token, got %d", r.Status)
	}
	mustContain(t, r.Body, "Security check failed")
}
