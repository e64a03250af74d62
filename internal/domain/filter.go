package domain

import (
	"math"
	"strconv"
	"strings"
)

type Category string

const (
	CategoryWomen Category = "women"
	CategoryMen   Category = "men"
	CategoryKids  Category = "kids"
)

var Categories = []Category{CategoryWomen, CategoryMen, CategoryKids}

type SubCategory string

const (
	SubCategoryClothes     SubCategory = "clothes"
	SubCategoryShoes       SubCategory = "shoes"
	SubCategoryAccessories SubCategory = "accessories"
)

var SubCategories = []SubCategory{SubCategoryClothes, SubCategoryShoes, SubCategoryAccessories}

type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorBlack  Color = "black"
	ColorWhite  Color = "white"
	ColorYellow Color = "yellow"
)

var Colors = []Color{ColorRed, ColorBlue, ColorGreen, ColorBlack, ColorWhite, ColorYellow}

// Rating is an exact star rating constraint.
type Rating int

// PricePresets are the ranges offered by the storefront price selector.
var PricePresets = []string{"0-50", "50-100", "100-150", "150-200", "200+"}

// SortMode selects the comparator applied after filtering.
//
// SortUnset keeps input order and honours the pagination window.
// SortNone is the "no explicit sort" sentinel: the whole filtered set is
// returned in input order, ignoring the window.
type SortMode string

const (
	SortUnset      SortMode = ""
	SortNone       SortMode = "none"
	SortPriceAsc   SortMode = "priceAsc"
	SortPriceDesc  SortMode = "priceDesc"
	SortRatingDesc SortMode = "ratingDesc"
)

var SortModes = []SortMode{SortNone, SortPriceAsc, SortPriceDesc, SortRatingDesc}

func ParseCategory(s string) (Category, error) {
	return parseToken("category", s, Categories)
}

func ParseSubCategory(s string) (SubCategory, error) {
	return parseToken("subCategory", s, SubCategories)
}

func ParseColor(s string) (Color, error) {
	return parseToken("color", s, Colors)
}

func parseToken[T ~string](field, s string, allowed []T) (T, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, a := range allowed {
		if string(a) == v {
			return a, nil
		}
	}
	var zero T
	return zero, NewValidationError(field, "unknown value "+strconv.Quote(s))
}

func ParseRating(s string) (Rating, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < MinRating || n > MaxRating {
		return 0, NewValidationError("rating", "must be an integer between 0 and 5")
	}
	return Rating(n), nil
}

func (r Rating) String() string {
	return strconv.Itoa(int(r))
}

func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "no-sort":
		return SortUnset, nil
	case "none", "default-sort":
		return SortNone, nil
	case "priceasc", "price-asc":
		return SortPriceAsc, nil
	case "pricedesc", "price-desc":
		return SortPriceDesc, nil
	case "ratingdesc", "rating-desc":
		return SortRatingDesc, nil
	}
	return SortUnset, NewValidationError("sort", "unknown value "+strconv.Quote(s))
}

// PriceRange is an inclusive interval; a nil bound is unbounded.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// ParsePriceRange accepts "min-max", "min+", "min-" and "-max".
func ParsePriceRange(s string) (PriceRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PriceRange{}, nil
	}
	if lo, ok := strings.CutSuffix(s, "+"); ok {
		s = lo + "-"
	}
	loStr, hiStr, found := strings.Cut(s, "-")
	if !found {
		return PriceRange{}, NewValidationError("price", "expected a range like 50-100 or 200+")
	}
	var r PriceRange
	if loStr = strings.TrimSpace(loStr); loStr != "" {
		v, err := strconv.ParseFloat(loStr, 64)
		if err != nil || math.IsNaN(v) {
			return PriceRange{}, NewValidationError("price", "invalid lower bound")
		}
		r.Min = &v
	}
	if hiStr = strings.TrimSpace(hiStr); hiStr != "" {
		v, err := strconv.ParseFloat(hiStr, 64)
		if err != nil || math.IsNaN(v) {
			return PriceRange{}, NewValidationError("price", "invalid upper bound")
		}
		r.Max = &v
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return PriceRange{}, NewValidationError("price", "lower bound exceeds upper bound")
	}
	return r, nil
}

func (r PriceRange) IsZero() bool {
	return r.Min == nil && r.Max == nil
}

// Contains reports whether price lies in the range. NaN fails any present bound.
func (r PriceRange) Contains(price float64) bool {
	switch {
	case r.Min == nil && r.Max == nil:
		return true
	case r.Max == nil:
		return price >= *r.Min
	case r.Min == nil:
		return price <= *r.Max
	default:
		return price >= *r.Min && price <= *r.Max
	}
}

func (r PriceRange) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case r.Min == nil && r.Max == nil:
		return ""
	case r.Max == nil:
		return f(*r.Min) + "+"
	case r.Min == nil:
		return "-" + f(*r.Max)
	default:
		return f(*r.Min) + "-" + f(*r.Max)
	}
}

// FilterState holds every listing constraint. Nil fields are unconstrained.
type FilterState struct {
	Category    *Category    `json:"category,omitempty"`
	SubCategory *SubCategory `json:"subCategory,omitempty"`
	Color       *Color       `json:"color,omitempty"`
	Price       PriceRange   `json:"price"`
	Rating      *Rating      `json:"rating,omitempty"`
	Search      string       `json:"search,omitempty"`
	Sort        SortMode     `json:"sort,omitempty"`
}

// WithCategory sets the category and always clears the sub-category.
func (f FilterState) WithCategory(c *Category) FilterState {
	f.Category = c
	f.SubCategory = nil
	return f
}

// FilterParams is the raw, string-typed form of a FilterState as it arrives
// from query strings and request bodies.
type FilterParams struct {
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	Color       string `json:"color"`
	Price       string `json:"price"`
	Rating      string `json:"rating"`
	Search      string `json:"search"`
	Sort        string `json:"sort"`
}

// Parse validates raw params into a FilterState. Empty strings mean no constraint.
func (p FilterParams) Parse() (FilterState, error) {
	var f FilterState
	if p.Category != "" {
		c, err := ParseCategory(p.Category)
		if err != nil {
			return FilterState{}, err
		}
		f.Category = &c
	}
	if p.SubCategory != "" {
		sc, err := ParseSubCategory(p.SubCategory)
		if err != nil {
			return FilterState{}, err
		}
		f.SubCategory = &sc
	}
	if p.Color != "" {
		c, err := ParseColor(p.Color)
		if err != nil {
			return FilterState{}, err
		}
		f.Color = &c
	}
	price, err := ParsePriceRange(p.Price)
	if err != nil {
		return FilterState{}, err
	}
	f.Price = price
	if p.Rating != "" {
		r, err := ParseRating(p.Rating)
		if err != nil {
			return FilterState{}, err
		}
		f.Rating = &r
	}
	f.Search = p.Search
	sort, err := ParseSortMode(p.Sort)
	if err != nil {
		return FilterState{}, err
	}
	f.Sort = sort
	return f, nil
}

// ListResult is one evaluation of the listing pipeline.
type ListResult struct {
	Products      []Product `json:"products"`
	AllLoaded     bool      `json:"allLoaded"`
	VisibleCount  int       `json:"visibleCount"`
	FilteredCount int       `json:"filteredCount"`
}

// CatalogOptions describes the selectable filter values.
type CatalogOptions struct {
	Categories    []Category    `json:"categories"`
	SubCategories []SubCategory `json:"subCategories"`
	Colors        []Color       `json:"colors"`
	PricePresets  []string      `json:"pricePresets"`
	Ratings       []int         `json:"ratings"`
	SortModes     []SortMode    `json:"sortModes"`
}

func DefaultCatalogOptions() CatalogOptions {
	ratings := make([]int, 0, MaxRating-MinRating+1)
	for r := MaxRating; r >= MinRating; r-- {
		ratings = append(ratings, r)
	}
	return CatalogOptions{
		Categories:    Categories,
		SubCategories: SubCategories,
		Colors:        Colors,
		PricePresets:  PricePresets,
		Ratings:       ratings,
		SortModes:     SortModes,
	}
}

// FilterPatch changes selected FilterState fields. A nil field is left as
// is, an empty string clears the constraint.
type FilterPatch struct {
	Category    *string `json:"category"`
	SubCategory *string `json:"subCategory"`
	Color       *string `json:"color"`
	Price       *string `json:"price"`
	Rating      *string `json:"rating"`
	Search      *string `json:"search"`
	Sort        *string `json:"sort"`
}

// ApplyTo validates the patch and returns the patched state. Changing the
// category clears the sub-category unless the patch sets one too.
func (p FilterPatch) ApplyTo(cur FilterState) (FilterState, error) {
	f := cur
	if p.Category != nil {
		var c *Category
		if *p.Category != "" {
			v, err := ParseCategory(*p.Category)
			if err != nil {
				return cur, err
			}
			c = &v
		}
		f = f.WithCategory(c)
	}
	if p.SubCategory != nil {
		f.SubCategory = nil
		if *p.SubCategory != "" {
			v, err := ParseSubCategory(*p.SubCategory)
			if err != nil {
				return cur, err
			}
			f.SubCategory = &v
		}
	}
	if p.Color != nil {
		f.Color = nil
		if *p.Color != "" {
			v, err := ParseColor(*p.Color)
			if err != nil {
				return cur, err
			}
			f.Color = &v
		}
	}
	if p.Price != nil {
		v, err := ParsePriceRange(*p.Price)
		if err != nil {
			return cur, err
		}
		f.Price = v
	}
	if p.Rating != nil {
		f.Rating = nil
		if *p.Rating != "" {
			v, err := ParseRating(*p.Rating)
			if err != nil {
				return cur, err
			}
			f.Rating = &v
		}
	}
	if p.Search != nil {
		f.Search = *p.Search
	}
	if p.Sort != nil {
		v, err := ParseSortMode(*p.Sort)
		if err != nil {
			return cur, err
		}
		f.Sort = v
	}
	return f, nil
}
