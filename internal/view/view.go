// Package view holds the formatting helpers templates call.
package view

import (
	"html/template"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"storefront/internal/domain"
)

// PlaceholderImage is shown wherever a product has no image.
const PlaceholderImage = "/static/img/placeholder.svg"

// Money renders d as US dollars with cents and thousands grouping.
func Money(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	cents := fixed[len(fixed)-2:]
	p := message.NewPrinter(language.AmericanEnglish)
	return sign + "$" + p.Sprintf("%d", d.IntPart()) + "." + cents
}

// StatusClass maps a raw order status to its badge class. Unknown statuses
// get the pending style.
func StatusClass(raw domain.OrderStatus) string {
	return "status-" + string(domain.ParseOrderStatus(string(raw)))
}

// StatusLabel is the badge text. Unknown statuses are shown as sent.
func StatusLabel(raw domain.OrderStatus) string {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return domain.StatusPending.Label()
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Stars renders a 0..5 rating as filled and empty stars, rounded to the
// nearest whole star.
func Stars(rating float64) string {
	n := int(math.Round(rating))
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func ImageOr(url string) string {
	if strings.TrimSpace(url) == "" {
		return PlaceholderImage
	}
	return url
}

func Date(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("January 2, 2006")
}

// Funcs is the template function map registered on the view engine.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money":       Money,
		"statusClass": StatusClass,
		"statusLabel": StatusLabel,
		"stars":       Stars,
		"starsN":      func(n int) string { return Stars(float64(n)) },
		"hasPrefix":   strings.HasPrefix,
		"imageOr":     ImageOr,
		"date":        Date,
		"inc":         func(n int) int { return n + 1 },
		"dec":         func(n int) int { return n - 1 },
		"rating1":     func(r float64) string { return decimal.NewFromFloat(r).StringFixed(1) },
	}
}
