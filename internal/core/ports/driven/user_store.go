package driven

import (
	"context"

	"github.com/custodia-labs/authgate/internal/core/domain"
)

// UserStore handles user persistence (PostgreSQL)
type UserStore interface {
	// Create inserts a new user and assigns its ID.
	// Returns domain.ErrEmailTaken when the normalized email already exists.
	Create(ctx context.Context, user *domain.User) error

	// Get retrieves a user by ID
	Get(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by normalized email (case-insensitive match)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// BumpTokenVersion increments the user's token version by one.
	// The token version only ever increases.
	BumpTokenVersion(ctx context.Context, id int64) error
}

// TenantStore handles tenant persistence (PostgreSQL)
type TenantStore interface {
	// GetByName retrieves a tenant by case-insensitive name
	GetByName(ctx context.Context, name string) (*domain.Tenant, error)

	// Create inserts a new tenant and assigns its ID
	Create(ctx context.Context, tenant *domain.Tenant) error
}
