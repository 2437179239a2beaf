package services

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

// Sort keys accepted by FilterProducts.
const (
	SortName      = "name"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
)

// Catalog is the read side of the marketplace API.
type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Reviews(ctx context.Context, productID string) ([]domain.Review, error)
}

type Query struct {
	Search     string
	CategoryID string
	Sort       string
}

// FilterProducts keeps products whose name or description contains Search
// (case-insensitive) and whose category equals CategoryID when one is given,
// then stable-sorts by Sort. An unknown sort keeps the input order. The input
// slice is not modified.
func FilterProducts(products []domain.Product, q Query) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		if q.CategoryID != "" && p.CategoryID != q.CategoryID {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortName:
		col := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool { return col.CompareString(out[i].Name, out[j].Name) < 0 })
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}
	return out
}

type CatalogService struct {
	API Catalog
}

func NewCatalogService(api Catalog) *CatalogService { return &CatalogService{API: api} }

// Listing is one rendered page of the product list.
type Listing struct {
	Products   []domain.Product
	Total      int // before filtering
	Categories []domain.Category
	Query      Query
}

// Browse fetches products and categories and applies q. A category failure
// only costs the filter dropdown.
func (s *CatalogService) Browse(ctx context.Context, q Query) (Listing, error) {
	products, err := s.API.Products(ctx)
	if err != nil {
		return Listing{}, err
	}
	cats, err := s.API.Categories(ctx)
	if err != nil {
		applog.Warn(nil, "catalog.categories.fail", err, nil)
		cats = []domain.Category{}
	}
	return Listing{
		Products:   FilterProducts(products, q),
		Total:      len(products),
		Categories: cats,
		Query:      q,
	}, nil
}

type Detail struct {
	Product domain.Product
	Reviews []domain.Review
}

// Detail fetches one product and its reviews. Missing reviews are not an error.
func (s *CatalogService) Detail(ctx context.Context, id string) (Detail, error) {
	p, err := s.API.Product(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	reviews, err := s.API.Reviews(ctx, id)
	if err != nil {
		applog.Warn(nil, "catalog.reviews.fail", err, map[string]any{"product_id": id})
		reviews = []domain.Review{}
	}
	return Detail{Product: p, Reviews: reviews}, nil
}
