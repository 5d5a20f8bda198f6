package postgres

import (
	"context"
	"database/sql"

	"github.com/custodia-labs/authgate/internal/core/domain"
	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TenantStore = (*TenantStore)(nil)

// TenantStore implements driven.TenantStore using PostgreSQL
type TenantStore struct {
	db *DB
}

// NewTenantStore creates a new TenantStore
func NewTenantStore(db *DB) *TenantStore {
	return &TenantStore{db: db}
}

// GetByName retrieves a tenant by case-insensitive name
func (s *TenantStore) GetByName(ctx context.Context, name string) (*domain.Tenant, error) {
	query := `
		SELECT id, name, created_at
		FROM tenants
		WHERE LOWER(name) = LOWER(TRIM($1))
	`

	var tenant domain.Tenant
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &tenant, nil
}

// Create inserts a new tenant and assigns its ID
func (s *TenantStore) Create(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		INSERT INTO tenants (name, created_at)
		VALUES ($1, $2)
		RETURNING id
	`
	return s.db.QueryRowContext(ctx, query, tenant.Name, tenant.CreatedAt).Scan(&tenant.ID)
}
