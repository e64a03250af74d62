package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/cache"
	"evalue-storefront/pkg/logger"

	"github.com/google/uuid"
)

const viewKeyPrefix = "view:"

// ViewUsecase keeps mounted product views. A view that expires is unmounted.
type ViewUsecase struct {
	loader CatalogLoader
	views  cache.CacheService
	ttl    time.Duration
}

func NewViewUsecase(loader CatalogLoader, views cache.CacheService, ttl time.Duration) *ViewUsecase {
	uc := &ViewUsecase{loader: loader, views: views, ttl: ttl}
	views.OnEvicted(func(key string, value interface{}) {
		if v, ok := value.(*ProductView); ok && strings.HasPrefix(key, viewKeyPrefix) {
			v.Close()
		}
	})
	return uc
}

// Create mounts a new view and performs its initial catalog load.
func (uc *ViewUsecase) Create(ctx context.Context, filter domain.FilterState) domain.ViewInfo {
	view := NewProductView(uuid.NewString(), uc.loader, filter)
	uc.views.Set(viewKeyPrefix+view.ID(), view, uc.ttl)
	view.Mount(ctx)

	logger.WithContext(ctx).Debug().Str("view_id", view.ID()).Msg("View mounted")
	return view.Info()
}

func (uc *ViewUsecase) Get(id string) (domain.ViewInfo, error) {
	view, err := uc.lookup(id)
	if err != nil {
		return domain.ViewInfo{}, err
	}
	return view.Info(), nil
}

func (uc *ViewUsecase) Update(id string, patch domain.FilterPatch) (domain.ViewInfo, error) {
	view, err := uc.lookup(id)
	if err != nil {
		return domain.ViewInfo{}, err
	}
	if err := view.Patch(patch); err != nil {
		return domain.ViewInfo{}, err
	}
	return view.Info(), nil
}

func (uc *ViewUsecase) LoadMore(id string) (domain.ViewInfo, error) {
	view, err := uc.lookup(id)
	if err != nil {
		return domain.ViewInfo{}, err
	}
	view.LoadMore()
	return view.Info(), nil
}

// Reload remounts the view with a fresh catalog read.
func (uc *ViewUsecase) Reload(ctx context.Context, id string) (domain.ViewInfo, error) {
	view, err := uc.lookup(id)
	if err != nil {
		return domain.ViewInfo{}, err
	}
	view.Mount(ctx)
	return view.Info(), nil
}

// Delete unmounts the view. Deleting an unknown view is not an error.
func (uc *ViewUsecase) Delete(id string) {
	uc.views.Delete(viewKeyPrefix + id)
}

// lookup returns a live view and extends its lifetime.
func (uc *ViewUsecase) lookup(id string) (*ProductView, error) {
	view, found := cache.Lookup[*ProductView](uc.views, viewKeyPrefix+id)
	if !found || view.Closed() {
		return nil, fmt.Errorf("view %s: %w", id, domain.ErrNotFound)
	}
	uc.views.Set(viewKeyPrefix+id, view, uc.ttl)
	return view, nil
}
