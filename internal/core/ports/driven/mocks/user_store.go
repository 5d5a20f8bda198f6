package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/authgate/internal/core/domain"
	"github.com/custodia-labs/authgate/internal/core/ports/driven"
)

// Ensure MockUserStore implements UserStore
var _ driven.UserStore = (*MockUserStore)(nil)

// MockUserStore is an in-memory UserStore for testing
type MockUserStore struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]*domain.User
	byEmail map[string]*domain.User

	// CreateErr forces Create to fail when set
	CreateErr error

	// GetErr forces Get to fail when set
	GetErr error
}

// NewMockUserStore creates a new MockUserStore
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		nextID:  1,
		users:   make(map[int64]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	m.byEmail[user.Email] = user
	return nil
}

func (m *MockUserStore) Get(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (m *MockUserStore) BumpTokenVersion(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.TokenVersion++
	return nil
}

// Ensure MockTenantStore implements TenantStore
var _ driven.TenantStore = (*MockTenantStore)(nil)

// MockTenantStore is an in-memory TenantStore for testing
type MockTenantStore struct {
	mu      sync.RWMutex
	nextID  int64
	tenants map[string]*domain.Tenant // keyed by lowercased name
}

// NewMockTenantStore creates a new MockTenantStore
func NewMockTenantStore() *MockTenantStore {
	return &MockTenantStore{
		nextID:  1,
		tenants: make(map[string]*domain.Tenant),
	}
}

func (m *MockTenantStore) GetByName(ctx context.Context, name string) (*domain.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tenant, ok := m.tenants[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return tenant, nil
}

func (m *MockTenantStore) Create(ctx context.Context, tenant *domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tenant.ID = m.nextID
	m.nextID++
	m.tenants[strings.ToLower(strings.TrimSpace(tenant.Name))] = tenant
	return nil
}

// Count reports the number of stored tenants
func (m *MockTenantStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tenants)
}
