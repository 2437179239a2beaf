package mockapi

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "Passw0rd!"

type account struct {
	User domain.User
	Hash []byte
}

type reviewer struct {
	Name string `json:"name"`
}

type review struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	User      *reviewer `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedCatalog() ([]domain.Category, []domain.Product) {
	cats := []domain.Category{
		{ID: "apparel", Name: "Apparel"},
		{ID: "accessories", Name: "Accessories"},
		{ID: "electronics", Name: "Electronics"},
	}
	prods := []domain.Product{
		{ID: "p-red-shoe", Name: "Red Shoe", Description: "Canvas sneaker in bright red", Price: price("50.00"), Stock: 12, CategoryID: "apparel", Images: []string{"/static/img/red-shoe.jpg"}, Rating: 4.5},
		{ID: "p-blue-hat", Name: "Blue Hat", Description: "Wool beanie, one size", Price: price("10.00"), Stock: 40, CategoryID: "accessories", Images: []string{"/static/img/blue-hat.jpg", "/static/img/blue-hat-2.jpg"}, Rating: 3.8},
		{ID: "p-radio", Name: "Transistor Radio", Description: "Pocket AM/FM radio, runs on a 9V battery", Price: price("89.00"), Stock: 3, CategoryID: "electronics", Rating: 4.9},
		{ID: "p-watch", Name: "Field Watch", Description: "Hand-wound watch with a canvas strap", Price: price("149.99"), Stock: 0, CategoryID: "accessories", Images: []string{"/static/img/watch.jpg"}},
		{ID: "p-jacket", Name: "Denim Jacket", Description: "Classic trucker jacket", Price: price("79.50"), Stock: 7, CategoryID: "apparel", Rating: 4.1},
	}
	return cats, prods
}

func seedReviews() map[string][]review {
	named := func(n string) *reviewer { return &reviewer{Name: n} }
	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	return map[string][]review{
		"p-red-shoe": {
			{ID: "r1", Rating: 5, Comment: "Comfortable from day one.", User: named("Alice Doe"), CreatedAt: at},
			{ID: "r2", Rating: 4, Comment: "Runs a little small.", CreatedAt: at.Add(48 * time.Hour)},
		},
		"p-radio": {
			{ID: "r3", Rating: 5, Comment: "Great reception.", User: named("Bob Roe"), CreatedAt: at},
		},
	}
}

func seedAccounts() []account {
	mk := func(u domain.User) account {
		h, _ := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		return account{User: u, Hash: h}
	}
	joined := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	return []account{
		mk(domain.User{
			ID: "u-alice", FirstName: "Alice", LastName: "Doe", Email: "alice@market.test", Role: "customer",
			Phone: "555-0100", Address: &domain.Address{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701"},
			CreatedAt: joined,
		}),
		mk(domain.User{ID: "u-bob", FirstName: "Bob", LastName: "Roe", Email: "bob@market.test", Role: "customer", CreatedAt: joined}),
	}
}

func seedOrders(prods []domain.Product) map[string][]domain.Order {
	byID := map[string]domain.Product{}
	for _, p := range prods {
		byID[p.ID] = p
	}
	ref := func(id string) *domain.Product { p := byID[id]; return &p }
	return map[string][]domain.Order{
		"u-alice": {
			{
				ID: "o-1001", Status: domain.StatusDelivered, TotalAmount: price("110.00"),
				Items: []domain.OrderItem{
					{ProductID: "p-red-shoe", Product: ref("p-red-shoe"), Quantity: 2, Price: price("50.00")},
					{ProductID: "p-blue-hat", Product: ref("p-blue-hat"), Quantity: 1, Price: price("10.00")},
				},
				ShippingAddress: &domain.Address{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701"},
				CreatedAt:       time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC),
			},
			{
				ID: "o-1002", Status: "on-hold", TotalAmount: price("89.00"),
				Items:     []domain.OrderItem{{ProductID: "p-radio", Quantity: 1, Price: price("89.00")}},
				CreatedAt: time.Date(2025, 2, 11, 8, 15, 0, 0, time.UTC),
			},
		},
	}
}
