package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/custodia-labs/authgate/internal/core/domain"
	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UserStore = (*UserStore)(nil)

// UserStore implements driven.UserStore using PostgreSQL
type UserStore struct {
	db *DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// unique_violation, raised by the case-insensitive email index
const pqUniqueViolation = "23505"

// Create inserts a new user and assigns its ID
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, full_name, roles, token_version, active, tenant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		NullString(user.FullName),
		pq.Array(user.RoleStrings()),
		user.TokenVersion,
		user.Active,
		NullInt64(user.TenantID),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
		return domain.ErrEmailTaken
	}
	return err
}

// Get retrieves a user by ID
func (s *UserStore) Get(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, full_name, roles, token_version, active, tenant_id, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by normalized email. The match is
// case-insensitive to back the email uniqueness invariant.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, full_name, roles, token_version, active, tenant_id, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// BumpTokenVersion increments the user's token version by one
func (s *UserStore) BumpTokenVersion(ctx context.Context, id int64) error {
	query := `UPDATE users SET token_version = token_version + 1, updated_at = now() WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UserStore) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var fullName sql.NullString
	var tenantID sql.NullInt64
	var roles pq.StringArray

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&fullName,
		&roles,
		&user.TokenVersion,
		&user.Active,
		&tenantID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user.FullName = fullName.String
	user.TenantID = Int64Ptr(tenantID)
	user.Roles = make([]domain.Role, len(roles))
	for i, r := range roles {
		user.Roles[i] = domain.Role(r)
	}
	return &user, nil
}
