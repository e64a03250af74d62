package usecase

import (
	"context"
	"sync"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"
)

// CatalogLoader performs one bulk catalog read.
type CatalogLoader interface {
	Load(ctx context.Context) domain.CatalogState
}

// ProductView is one mounted product list: its catalog, filters and cursor.
type ProductView struct {
	id     string
	loader CatalogLoader
	live   liveness

	mu      sync.Mutex
	catalog domain.CatalogState
	filter  domain.FilterState
	visible int
}

func NewProductView(id string, loader CatalogLoader, filter domain.FilterState) *ProductView {
	return &ProductView{
		id:      id,
		loader:  loader,
		catalog: domain.CatalogState{Products: []domain.Product{}, Loading: true},
		filter:  filter,
		visible: domain.InitialVisibleCount,
	}
}

func (v *ProductView) ID() string { return v.id }

// Mount loads the catalog. The result is discarded when the view was closed
// or remounted while the load was in flight; Mount then returns false.
func (v *ProductView) Mount(ctx context.Context) bool {
	token := v.live.begin()

	v.mu.Lock()
	v.catalog.Loading = true
	v.mu.Unlock()

	state := v.loader.Load(ctx)

	if !v.live.current(token) {
		logger.WithContext(ctx).Debug().Str("view_id", v.id).Msg("Discarding stale catalog load")
		return false
	}
	v.mu.Lock()
	v.catalog = state
	v.mu.Unlock()
	return true
}

// Close tears the view down. In-flight loads will not apply.
func (v *ProductView) Close() {
	v.live.close()
}

func (v *ProductView) Closed() bool {
	return v.live.isClosed()
}

// SetCategory changes the category and clears the sub-category.
func (v *ProductView) SetCategory(c *domain.Category) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = v.filter.WithCategory(c)
}

func (v *ProductView) SetSubCategory(sc *domain.SubCategory) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.SubCategory = sc
}

func (v *ProductView) SetColor(c *domain.Color) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Color = c
}

func (v *ProductView) SetPrice(r domain.PriceRange) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Price = r
}

func (v *ProductView) SetRating(r *domain.Rating) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Rating = r
}

func (v *ProductView) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Search = term
}

func (v *ProductView) SetSort(mode domain.SortMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Sort = mode
}

// Patch applies a validated filter patch atomically.
func (v *ProductView) Patch(p domain.FilterPatch) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	next, err := p.ApplyTo(v.filter)
	if err != nil {
		return err
	}
	v.filter = next
	return nil
}

// LoadMore widens the window by one step and returns the new visible count.
func (v *ProductView) LoadMore() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.visible += domain.LoadMoreStep
	return v.visible
}

func (v *ProductView) Filter() domain.FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *ProductView) Result() domain.ListResult {
	v.mu.Lock()
	products, filter, visible := v.catalog.Products, v.filter, v.visible
	v.mu.Unlock()
	return ApplyPipeline(products, filter, visible)
}

func (v *ProductView) Info() domain.ViewInfo {
	v.mu.Lock()
	loading := v.catalog.Loading
	v.mu.Unlock()
	return domain.ViewInfo{
		ID:      v.id,
		Filter:  v.Filter(),
		Loading: loading,
		Result:  v.Result(),
	}
}
