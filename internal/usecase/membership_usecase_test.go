package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"evalue-storefront/internal/domain"
	"evalue-storefront/internal/infrastructure/cache"
	"evalue-storefront/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMembership(store domain.DocumentStore, catalog domain.ProductReader, fanout int) *MembershipUsecase {
	return NewMembershipUsecase(store, catalog, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, fanout)
}

func TestMembershipUsecase_ResolveMissingDocument(t *testing.T) {
	uc := newMembership(memstore.New(), newStubCatalog(), 4)

	state := uc.Resolve(context.Background(), domain.KindCart, "u1")
	assert.False(t, state.Loading)
	assert.NotNil(t, state.Products)
	assert.Empty(t, state.Products)
}

func TestMembershipUsecase_ResolveDropsMissingProducts(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	for _, id := range []string{"c", "ghost", "a"} {
		require.NoError(t, store.UpsertMerge(ctx, domain.CollectionFavorites, "u1", domain.KindFavorites.EntryPatch(id)))
	}
	catalog := newStubCatalog(sampleCatalog()...)
	uc := newMembership(store, catalog, 4)

	state := uc.Resolve(ctx, domain.KindFavorites, "u1")
	assert.Equal(t, []string{"a", "c"}, ids(state.Products))
	assert.Equal(t, 3, catalog.reads)
}

func TestMembershipUsecase_ResolveStoreFailureIsEmpty(t *testing.T) {
	store := new(MockDocumentStore)
	store.On("GetOne", mock.Anything, domain.CollectionCart, "u1").Return(nil, domain.Unavailable("get", errors.New("timeout")))
	uc := newMembership(store, newStubCatalog(), 4)

	state := uc.Resolve(context.Background(), domain.KindCart, "u1")
	assert.Empty(t, state.Products)
	assert.False(t, state.Loading)
}

// countingCatalog records the peak number of concurrent reads.
type countingCatalog struct {
	inner   domain.ProductReader
	active  atomic.Int32
	peak    atomic.Int32
	release chan struct{}
}

func (c *countingCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	<-c.release
	return c.inner.GetProduct(ctx, id)
}

func TestMembershipUsecase_ResolveFanOutIsBounded(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	for _, p := range sampleCatalog() {
		require.NoError(t, store.UpsertMerge(ctx, domain.CollectionCart, "u1", domain.KindCart.EntryPatch(p.ID)))
	}
	catalog := &countingCatalog{inner: newStubCatalog(sampleCatalog()...), release: make(chan struct{})}
	uc := newMembership(store, catalog, 2)

	var (
		state domain.MembershipState
		wg    sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		state = uc.Resolve(ctx, domain.KindCart, "u1")
	}()
	for range sampleCatalog() {
		catalog.release <- struct{}{}
	}
	wg.Wait()

	assert.Len(t, state.Products, 5)
	assert.LessOrEqual(t, catalog.peak.Load(), int32(2))
}

func TestMembershipUsecase_ViewIsCachedUntilDropped(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, store.UpsertMerge(ctx, domain.CollectionCart, "u1", domain.KindCart.EntryPatch("a")))
	catalog := newStubCatalog(sampleCatalog()...)
	uc := newMembership(store, catalog, 4)

	first := uc.View(ctx, domain.KindCart, "u1")
	assert.Same(t, first, uc.View(ctx, domain.KindCart, "u1"))
	assert.Equal(t, 1, catalog.reads)

	uc.Drop("u1")
	second := uc.View(ctx, domain.KindCart, "u1")
	assert.NotSame(t, first, second)
	assert.Equal(t, []string{"a"}, ids(second.Snapshot().Products))
}

func TestInSet(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, store.UpsertMerge(ctx, domain.CollectionFavorites, "u1", domain.KindFavorites.EntryPatch("a")))

	assert.True(t, inSet(ctx, store, domain.KindFavorites, "u1", "a"))
	assert.False(t, inSet(ctx, store, domain.KindFavorites, "u1", "b"))
	assert.False(t, inSet(ctx, store, domain.KindFavorites, "u2", "a"))
}
