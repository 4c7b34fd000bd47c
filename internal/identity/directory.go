package identity

import (
	"context"
	"time"
)

// listCap mirrors the provider's page limit; the surface deliberately has no
// pagination beyond it.
const listCap = 1000

// Account is one user record from the auth provider.
type Account struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	PhotoURL      string    `json:"photoURL"`
	EmailVerified bool      `json:"emailVerified"`
	Disabled      bool      `json:"disabled"`
	CreatedAt     time.Time `json:"createdAt"`
	LastSignInAt  time.Time `json:"lastSignInAt"`
}

// Directory is the auth provider's admin surface: list accounts and delete
// one. Implementations return coded errors.
type Directory interface {
	List(ctx context.Context) ([]Account, error)
	Delete(ctx context.Context, uid string) error
}
