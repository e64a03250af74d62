package usecase

import (
	"cmp"
	"slices"
	"strings"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/utils"
)

// ApplyPipeline filters, paginates and sorts products. It never mutates its input.
//
// With SortNone the whole filtered set is returned. Every other mode first
// keeps the leading visibleCount items and only then sorts that window, so an
// explicit sort never pulls items in from beyond the current page.
func ApplyPipeline(products []domain.Product, f domain.FilterState, visibleCount int) domain.ListResult {
	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if matchCategory(p, f) && matchSearch(p, f) && matchColor(p, f) && matchPrice(p, f) && matchRating(p, f) {
			filtered = append(filtered, p)
		}
	}

	var window []domain.Product
	if f.Sort == domain.SortNone {
		window = filtered
	} else {
		window = slices.Clone(filtered[:min(max(visibleCount, 0), len(filtered))])
	}
	if cmpFn := comparator(f.Sort); cmpFn != nil {
		slices.SortStableFunc(window, cmpFn)
	}

	return domain.ListResult{
		Products:      window,
		AllLoaded:     visibleCount >= len(filtered),
		VisibleCount:  visibleCount,
		FilteredCount: len(filtered),
	}
}

// matchCategory checks the sub-category only once the category has passed.
func matchCategory(p domain.Product, f domain.FilterState) bool {
	if f.Category != nil && !strings.EqualFold(p.Category, string(*f.Category)) {
		return false
	}
	return f.SubCategory == nil || strings.EqualFold(p.SubCategory, string(*f.SubCategory))
}

func matchSearch(p domain.Product, f domain.FilterState) bool {
	if f.Search == "" {
		return true
	}
	return utils.ContainsFold(p.Title, f.Search)
}

func matchColor(p domain.Product, f domain.FilterState) bool {
	return f.Color == nil || strings.EqualFold(p.Color, string(*f.Color))
}

func matchPrice(p domain.Product, f domain.FilterState) bool {
	return f.Price.Contains(p.PriceValue())
}

func matchRating(p domain.Product, f domain.FilterState) bool {
	return f.Rating == nil || p.RatingString() == f.Rating.String()
}

func comparator(mode domain.SortMode) func(a, b domain.Product) int {
	switch mode {
	case domain.SortPriceAsc:
		return func(a, b domain.Product) int { return comparePrice(a, b) }
	case domain.SortPriceDesc:
		return func(a, b domain.Product) int { return comparePrice(b, a) }
	case domain.SortRatingDesc:
		return func(a, b domain.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	}
	return nil
}

// comparePrice follows cmp.Compare, so unparsable (NaN) prices sort lowest.
func comparePrice(a, b domain.Product) int {
	return cmp.Compare(a.PriceValue(), b.PriceValue())
}
