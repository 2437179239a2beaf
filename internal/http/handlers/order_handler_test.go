package handlers_test

import (
	"net/http"
	"testing"
)

func TestOrderHistory(t *testing.T) {
	a := newTestApp(t)
	a.loginAlice()

	r := a.get("/orders")
	if r.Status != http.StatusOK {
		t.Fatalf("orders: %d", r.Status)
	}
	mustContain(t, r.Body,
		"Order #o-1001", "Order #o-1002",
		"status-delivered", "Delivered",
		"status-pending", "On-hold",
		"Shipping Address", "1 Main St",
		"Red Shoe", "$110.00",
	)
}

func TestOrderHistoryFailure(t *testing.T) {
	a := newTestApp(t)
	a.loginAlice()
	a.mock.Fail("GET /orders", http.StatusInternalServerError, "")

	r := a.get("/orders")
	if r.Status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", r.Status)
	}
	mustContain(t, r.Body, "Failed to load orders", "Try Again")
}

func TestProfile(t *testing.T) {
	a := newTestApp(t)
	a.loginAlice()

	r := a.get("/profile")
	if r.Status != http.StatusOK {
		t.Fatalf("profile: %d", r.Status)
	}
	mustContain(t, r.Body, "Alice Doe", "alice@market.test", "555-0100", "Total Orders", "$199.00", "June 1, 2024")
}

func TestProfileSurvivesOrderOutage(t *testing.T) {
	a := newTestApp(t)
	a.loginAlice()
	a.mock.Fail("GET /orders", http.StatusServiceUnavailable, "")

	r := a.get("/profile")
	if r.Status != http.StatusOK {
		t.Fatalf("profile should render without orders, got %d", r.Status)
	}
	mustContain(t, r.Body, "Alice Doe", "$0.00")
}
