package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/cache"
	"evalue-storefront/pkg/logger"
)

const (
	catalogCachePrefix = "catalog:"
	catalogAllKey      = catalogCachePrefix + "products:all"
)

type CatalogUsecase struct {
	store domain.DocumentStore
	cache cache.CacheService
	ttl   time.Duration
}

func NewCatalogUsecase(store domain.DocumentStore, cache cache.CacheService, ttl time.Duration) *CatalogUsecase {
	return &CatalogUsecase{
		store: store,
		cache: cache,
		ttl:   ttl,
	}
}

// Load issues one bulk read of the products collection. A failed read is
// logged and yields an empty, no longer loading state.
func (uc *CatalogUsecase) Load(ctx context.Context) domain.CatalogState {
	products, err := uc.fetchAll(ctx)
	if err != nil {
		logger.WithContext(ctx).Error().Err(err).Msg("Failed to load catalog")
		return domain.CatalogState{Products: []domain.Product{}, Loading: false}
	}
	return domain.CatalogState{Products: products, Loading: false}
}

// Products is the cached catalog used by stateless listings. Failed loads are not cached.
func (uc *CatalogUsecase) Products(ctx context.Context) []domain.Product {
	if products, found := cache.Lookup[[]domain.Product](uc.cache, catalogAllKey); found {
		return products
	}

	products, err := uc.fetchAll(ctx)
	if err != nil {
		logger.WithContext(ctx).Error().Err(err).Msg("Failed to load catalog")
		return []domain.Product{}
	}

	uc.cache.Set(catalogAllKey, products, uc.ttl)
	return products
}

// List runs the listing pipeline over the cached catalog.
func (uc *CatalogUsecase) List(ctx context.Context, f domain.FilterState, visibleCount int) domain.ListResult {
	return ApplyPipeline(uc.Products(ctx), f, visibleCount)
}

func (uc *CatalogUsecase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if err := domain.ValidateKey("productId", id); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%sproduct:%s", catalogCachePrefix, id)
	if p, found := cache.Lookup[domain.Product](uc.cache, key); found {
		return &p, nil
	}

	doc, err := uc.store.GetOne(ctx, domain.CollectionProducts, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}

	p := domain.ProductFromDocument(*doc)
	uc.cache.Set(key, p, uc.ttl)
	return &p, nil
}

func (uc *CatalogUsecase) Options() domain.CatalogOptions {
	return domain.DefaultCatalogOptions()
}

func (uc *CatalogUsecase) fetchAll(ctx context.Context) ([]domain.Product, error) {
	docs, err := uc.store.GetAll(ctx, domain.CollectionProducts)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, domain.ProductFromDocument(doc))
	}
	return products, nil
}
