package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	sorts   = map[string]bool{"name": true, "price-low": true, "price-high": true, "rating": true}
)

// MaxQty caps any single quantity a form can submit.
const MaxQty = 99

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Password only bounds length; the marketplace decides what is valid.
func Password(s string) bool {
	return len(s) > 0 && len(s) <= 128
}

// Q validates a search query: trims, clamps to 50 runes and rejects control
// characters. An empty query is valid and means "no filter".
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > 50 {
		s = strings.TrimSpace(string(r[:50]))
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", false
		}
	}
	return s, true
}

// ID validates a simple resource identifier (product/category ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Category is an optional ID: empty means all categories.
func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return ID(s)
}

// Sort returns s when it is a known sort key and "" otherwise.
func Sort(s string) string {
	s = strings.TrimSpace(s)
	if sorts[s] {
		return s
	}
	return ""
}

// Qty parses an add-to-cart quantity, defaulting to 1 and clamping to [1, MaxQty].
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > MaxQty {
		return MaxQty
	}
	return n
}

// SetQty parses a quantity update where zero means remove. ok is false for
// anything unparsable or negative.
func SetQty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	if n > MaxQty {
		n = MaxQty
	}
	return n, true
}

// Theme accepts only the two supported themes.
func Theme(s string) string {
	if strings.TrimSpace(s) == "dark" {
		return "dark"
	}
	return "light"
}

// LocalPath returns p when it is a same-site path, else fallback.
func LocalPath(p, fallback string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return fallback
	}
	return p
}
