package domain

import (
	"strings"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	Address   *Address  `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName is what the nav bar shows for the signed-in user.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if n := u.FullName(); n != "" {
		return n
	}
	return u.Email
}

func (u User) Initial() string {
	for _, s := range []string{u.FirstName, u.Email} {
		if s = strings.TrimSpace(s); s != "" {
			return strings.ToUpper(string([]rune(s)[:1]))
		}
	}
	return ""
}
