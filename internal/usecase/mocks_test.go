package usecase

import (
	"context"
	"sync"

	"evalue-storefront/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) GetAll(ctx context.Context, collection string) ([]domain.Document, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentStore) GetOne(ctx context.Context, collection, id string) (*domain.Document, error) {
	args := m.Called(ctx, collection, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentStore) UpsertMerge(ctx context.Context, collection, id string, partial map[string]any) error {
	args := m.Called(ctx, collection, id, partial)
	return args.Error(0)
}

func (m *MockDocumentStore) DeleteField(ctx context.Context, collection, id string, path domain.FieldPath) error {
	args := m.Called(ctx, collection, id, path)
	return args.Error(0)
}

type MockAuthProvider struct {
	mock.Mock
}

func (m *MockAuthProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAuthProvider) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAuthProvider) SignOut(ctx context.Context, session *domain.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockAuthProvider) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAuthProvider) Subscribe(fn func(domain.AuthChange)) domain.Unsubscribe {
	return m.Called(fn).Get(0).(domain.Unsubscribe)
}

// stubCatalog serves products from a map and counts reads.
type stubCatalog struct {
	mu       sync.Mutex
	products map[string]domain.Product
	reads    int
}

func newStubCatalog(products ...domain.Product) *stubCatalog {
	c := &stubCatalog{products: make(map[string]domain.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *stubCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []domain.PlacedOrder
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, order domain.PlacedOrder) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
}
