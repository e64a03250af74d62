package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/cache"
	"evalue-storefront/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// MembershipUsecase materializes a user's cart or favorites set into products
// and keeps one optimistic local view per user and kind.
type MembershipUsecase struct {
	store   domain.DocumentStore
	catalog domain.ProductReader
	views   cache.CacheService
	ttl     time.Duration
	fanout  int

	mu      sync.Mutex
	entries map[string]*liveness
}

func NewMembershipUsecase(store domain.DocumentStore, catalog domain.ProductReader, views cache.CacheService, ttl time.Duration, fanout int) *MembershipUsecase {
	uc := &MembershipUsecase{
		store:   store,
		catalog: catalog,
		views:   views,
		ttl:     ttl,
		fanout:  max(fanout, 1),
		entries: make(map[string]*liveness),
	}
	views.OnEvicted(func(key string, _ interface{}) {
		uc.mu.Lock()
		defer uc.mu.Unlock()
		if live, ok := uc.entries[key]; ok {
			live.close()
			delete(uc.entries, key)
		}
	})
	return uc
}

// Resolve reads the user's set document and fetches every listed product
// concurrently, returning once all reads have settled. A missing document
// or field is an empty set. Products that cannot be read are dropped.
func (uc *MembershipUsecase) Resolve(ctx context.Context, kind domain.MembershipKind, userID string) domain.MembershipState {
	state := domain.MembershipState{Kind: kind, UserID: userID, Products: []domain.Product{}}
	log := logger.WithContext(ctx)

	doc, err := uc.store.GetOne(ctx, kind.Collection(), userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Str("kind", string(kind)).Str("user_id", userID).Msg("Failed to read membership set")
		}
		return state
	}

	ids := domain.MembershipIDs(kind, doc)
	if len(ids) == 0 {
		return state
	}

	found := make([]*domain.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.fanout)
	for i, id := range ids {
		g.Go(func() error {
			p, err := uc.catalog.GetProduct(gctx, id)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				log.Warn().Str("product_id", id).Str("kind", string(kind)).Msg("Product not found, dropping from set")
			case err != nil:
				log.Error().Err(err).Str("product_id", id).Str("kind", string(kind)).Msg("Failed to read product")
			default:
				found[i] = p
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, p := range found {
		if p != nil {
			state.Products = append(state.Products, *p)
		}
	}
	return state
}

// inSet reads one set document and checks for productID. Any failure reads as false.
func inSet(ctx context.Context, store domain.DocumentStore, kind domain.MembershipKind, userID, productID string) bool {
	doc, err := store.GetOne(ctx, kind.Collection(), userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.WithContext(ctx).Error().Err(err).Str("kind", string(kind)).Msg("Failed to read membership set")
		}
		return false
	}
	set, _ := doc.Data[kind.Field()].(map[string]any)
	_, ok := set[productID]
	return ok
}

// View returns the user's local view, resolving it on first use. A
// resolution that finishes after the view was dropped is not kept.
func (uc *MembershipUsecase) View(ctx context.Context, kind domain.MembershipKind, userID string) *domain.MembershipView {
	key := membershipKey(kind, userID)
	if view, found := cache.Lookup[*domain.MembershipView](uc.views, key); found {
		return view
	}

	uc.mu.Lock()
	live, ok := uc.entries[key]
	if !ok {
		live = &liveness{}
		uc.entries[key] = live
	}
	uc.mu.Unlock()

	token := live.begin()
	view := domain.NewMembershipView(uc.Resolve(ctx, kind, userID))
	if !live.current(token) {
		logger.WithContext(ctx).Debug().Str("key", key).Msg("Discarding stale membership resolution")
		return view
	}
	uc.views.Set(key, view, uc.ttl)
	return view
}

// Drop forgets every local view of userID. In-flight resolutions are discarded.
func (uc *MembershipUsecase) Drop(userID string) {
	for _, kind := range []domain.MembershipKind{domain.KindCart, domain.KindFavorites} {
		key := membershipKey(kind, userID)
		uc.mu.Lock()
		if live, ok := uc.entries[key]; ok {
			live.close()
			delete(uc.entries, key)
		}
		uc.mu.Unlock()
		uc.views.Delete(key)
	}
}

func membershipKey(kind domain.MembershipKind, userID string) string {
	return fmt.Sprintf("membership:%s:%s", kind, userID)
}
