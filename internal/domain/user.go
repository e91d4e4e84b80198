package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// ParseTier accepts "free" or "pro" in any case.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierFree:
		return TierFree, nil
	case TierPro:
		return TierPro, nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

// User owns clients, entries and timesheets. Every query is scoped to one.
type User struct {
	ID        int64
	Email     string
	Tier      Tier
	CreatedAt time.Time
}

// NewUser creates a free-tier user
func NewUser(email string) *User {
	return &User{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Tier:      TierFree,
		CreatedAt: time.Now().UTC(),
	}
}

func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("email is invalid")
	}
	return nil
}

// ClientLimit returns the maximum number of clients, or 0 for unlimited.
func (u *User) ClientLimit() int {
	if u.Tier == TierPro {
		return 0
	}
	return FreeTierClientLimit
}
