package usecase

import (
	"context"
	"errors"
	"testing"

	"evalue-storefront/internal/domain"
	"evalue-storefront/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var errRemote = domain.Unavailable("write", errors.New("network down"))

type CartUsecaseSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memstore.Store
	catalog *stubCatalog
	uc      *CartUsecase
	sess    *domain.Session
}

func (s *CartUsecaseSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memstore.New()
	s.catalog = newStubCatalog(sampleCatalog()...)
	s.uc = NewCartUsecase(s.store, s.catalog)
	s.sess = &domain.Session{User: domain.User{ID: "u1", Email: "u1@example.com"}}
}

func (s *CartUsecaseSuite) emptyView() *domain.MembershipView {
	return domain.NewMembershipView(domain.MembershipState{Kind: domain.KindCart, UserID: "u1", Products: []domain.Product{}})
}

func (s *CartUsecaseSuite) remoteIDs() []string {
	doc, err := s.store.GetOne(s.ctx, domain.CollectionCart, "u1")
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	s.Require().NoError(err)
	return domain.MembershipIDs(domain.KindCart, doc)
}

func (s *CartUsecaseSuite) TestAddToCart_IsIdempotent() {
	view := s.emptyView()
	s.Require().NoError(s.uc.AddToCart(s.ctx, s.sess, view, "a"))
	s.Require().NoError(s.uc.AddToCart(s.ctx, s.sess, view, "a"))

	s.Equal([]string{"a"}, ids(view.Snapshot().Products))
	s.Equal([]string{"a"}, s.remoteIDs())
}

func (s *CartUsecaseSuite) TestAddToCart_RequiresSession() {
	view := s.emptyView()
	err := s.uc.AddToCart(s.ctx, nil, view, "a")
	s.ErrorIs(err, domain.ErrNotAuthenticated)
	s.Empty(view.Snapshot().Products)
	s.Nil(s.remoteIDs())
}

func (s *CartUsecaseSuite) TestAddToCart_UnknownProductStillWritten() {
	view := s.emptyView()
	s.Require().NoError(s.uc.AddToCart(s.ctx, s.sess, view, "ghost"))
	s.Empty(view.Snapshot().Products)
	s.Equal([]string{"ghost"}, s.remoteIDs())
}

func (s *CartUsecaseSuite) TestRemoveFromCart_AbsentIsNoop() {
	s.Require().NoError(s.uc.AddToCart(s.ctx, s.sess, s.emptyView(), "a"))
	view := domain.NewMembershipView(domain.MembershipState{Products: []domain.Product{{ID: "a"}}})

	s.Require().NoError(s.uc.RemoveFromCart(s.ctx, s.sess, view, "b"))
	s.Equal([]string{"a"}, ids(view.Snapshot().Products))
	s.Equal([]string{"a"}, s.remoteIDs())

	s.Require().NoError(s.uc.RemoveFromCart(s.ctx, s.sess, view, "a"))
	s.Empty(view.Snapshot().Products)
	s.Empty(s.remoteIDs())
}

func (s *CartUsecaseSuite) TestEmptyCart_Unauthenticated() {
	view := domain.NewMembershipView(domain.MembershipState{Products: []domain.Product{{ID: "a", Price: "30"}}})
	outcome, err := s.uc.EmptyCart(s.ctx, nil, view)

	s.ErrorIs(err, domain.ErrNotAuthenticated)
	s.False(outcome.Placed)
	s.Len(view.Snapshot().Products, 1)
}

func (s *CartUsecaseSuite) TestEmptyCart_PlacesOrder() {
	notifier := &recordingNotifier{}
	s.uc.WithNotifier(notifier)

	view := s.emptyView()
	for _, id := range []string{"a", "b"} {
		s.Require().NoError(s.uc.AddToCart(s.ctx, s.sess, view, id))
	}

	outcome, err := s.uc.EmptyCart(s.ctx, s.sess, view)
	s.Require().NoError(err)
	s.True(outcome.Placed)
	s.NotEmpty(outcome.OrderID)
	s.Equal(2, outcome.Summary.Items)
	s.Equal(150.0, outcome.Summary.ItemsPrice)
	s.Equal(0.0, outcome.Summary.DeliveryPrice)

	s.Empty(view.Snapshot().Products)
	doc, err := s.store.GetOne(s.ctx, domain.CollectionCart, "u1")
	s.Require().NoError(err)
	s.Equal(map[string]any{}, doc.Data["cart"])

	s.Require().Len(notifier.orders, 1)
	s.Equal(outcome.OrderID, notifier.orders[0].OrderID)
	s.Equal("u1@example.com", notifier.orders[0].Email)
	s.Equal([]string{"a", "b"}, ids(notifier.orders[0].Products))
}

func TestCartUsecaseSuite(t *testing.T) {
	suite.Run(t, new(CartUsecaseSuite))
}

func TestCartUsecase_RollbackOnRemoteFailure(t *testing.T) {
	ctx := context.Background()
	sess := &domain.Session{User: domain.User{ID: "u1"}}
	store := new(MockDocumentStore)
	store.On("UpsertMerge", mock.Anything, domain.CollectionCart, "u1", mock.Anything).Return(errRemote)
	store.On("DeleteField", mock.Anything, domain.CollectionCart, "u1", mock.Anything).Return(errRemote)
	uc := NewCartUsecase(store, newStubCatalog(sampleCatalog()...))

	view := domain.NewMembershipView(domain.MembershipState{Products: []domain.Product{{ID: "a", Price: "30"}}})

	err := uc.AddToCart(ctx, sess, view, "b")
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Equal(t, []string{"a"}, ids(view.Snapshot().Products))

	err = uc.RemoveFromCart(ctx, sess, view, "a")
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Equal(t, []string{"a"}, ids(view.Snapshot().Products))

	notifier := &recordingNotifier{}
	uc.WithNotifier(notifier)
	_, err = uc.EmptyCart(ctx, sess, view)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	assert.Equal(t, []string{"a"}, ids(view.Snapshot().Products))
	assert.Empty(t, notifier.orders)
}

// seedFailingStore passes everything through except merges into the cart.
type seedFailingStore struct {
	*memstore.Store
}

func (s seedFailingStore) UpsertMerge(ctx context.Context, collection, id string, partial map[string]any) error {
	if set, ok := partial[domain.KindCart.Field()].(map[string]any); ok && collection == domain.CollectionCart && len(set) == 0 {
		return errRemote
	}
	return s.Store.UpsertMerge(ctx, collection, id, partial)
}

func TestCartUsecase_EmptyCartSurvivesFailedReseed(t *testing.T) {
	ctx := context.Background()
	sess := &domain.Session{User: domain.User{ID: "u1"}}
	store := seedFailingStore{Store: memstore.New()}
	uc := NewCartUsecase(store, newStubCatalog(sampleCatalog()...))

	view := domain.NewMembershipView(domain.MembershipState{Products: []domain.Product{}})
	require.NoError(t, uc.AddToCart(ctx, sess, view, "a"))

	outcome, err := uc.EmptyCart(ctx, sess, view)
	require.NoError(t, err)
	assert.True(t, outcome.Placed)
	assert.Empty(t, view.Snapshot().Products)

	doc, err := store.GetOne(ctx, domain.CollectionCart, "u1")
	require.NoError(t, err)
	assert.Empty(t, domain.MembershipIDs(domain.KindCart, doc))
}

func TestCartUsecase_RejectsBadProductID(t *testing.T) {
	store := new(MockDocumentStore)
	uc := NewCartUsecase(store, newStubCatalog())
	sess := &domain.Session{User: domain.User{ID: "u1"}}

	var verr *domain.ValidationError
	require.ErrorAs(t, uc.AddToCart(context.Background(), sess, nil, ""), &verr)
	require.ErrorAs(t, uc.RemoveFromCart(context.Background(), sess, nil, "cart.x"), &verr)
	store.AssertNotCalled(t, "UpsertMerge", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSummarize(t *testing.T) {
	cases := []struct {
		name     string
		prices   []string
		items    float64
		delivery float64
	}{
		{"empty", nil, 0, 10},
		{"at threshold", []string{"60", "40"}, 100, 10},
		{"above threshold", []string{"60", "40.01"}, 100.01, 0},
		{"unparsable counts as zero", []string{"20", "n/a"}, 20, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			products := make([]domain.Product, len(tc.prices))
			for i, p := range tc.prices {
				products[i] = domain.Product{ID: p, Price: p}
			}
			sum := Summarize(products)
			assert.Equal(t, len(tc.prices), sum.Items)
			assert.InDelta(t, tc.items, sum.ItemsPrice, 1e-9)
			assert.Equal(t, tc.delivery, sum.DeliveryPrice)
			assert.InDelta(t, tc.items+tc.delivery, sum.Total, 1e-9)
		})
	}
}
