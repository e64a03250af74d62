package domain

import (
	"context"
	"math"
	"strconv"
	"strings"
)

// Product is a catalog record as stored under products/{id}.
// Price is kept as text; numeric comparisons parse it on demand.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	Price       string   `json:"price"`
	Rating      int      `json:"rating"`
	Image1      string   `json:"image1"`
	Image2      string   `json:"image2"`
	Images      []string `json:"images"`
	Color       string   `json:"color"`
}

// CatalogState is what a catalog load exposes to its consumer.
type CatalogState struct {
	Products []Product `json:"products"`
	Loading  bool      `json:"loading"`
}

// ProductReader is the narrow read side of the catalog used by the accessors.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
}

// PriceValue parses the price text. Unparsable prices yield NaN.
func (p Product) PriceValue() float64 {
	return ParsePrice(p.Price)
}

// RatingString is the decimal form used for exact rating matches.
func (p Product) RatingString() string {
	return strconv.Itoa(p.Rating)
}

// Gallery lists image1, image2 and any extra images without blanks or duplicates.
func (p Product) Gallery() []string {
	out := make([]string, 0, 2+len(p.Images))
	seen := make(map[string]struct{}, 2+len(p.Images))
	for _, img := range append([]string{p.Image1, p.Image2}, p.Images...) {
		if img == "" {
			continue
		}
		if _, ok := seen[img]; ok {
			continue
		}
		seen[img] = struct{}{}
		out = append(out, img)
	}
	return out
}

// ToDocument renders the product into the stored field layout. The id lives in the key.
func (p Product) ToDocument() map[string]any {
	images := make([]any, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img)
	}
	return map[string]any{
		"title":       p.Title,
		"category":    p.Category,
		"subCategory": p.SubCategory,
		"price":       p.Price,
		"rating":      p.Rating,
		"image1":      p.Image1,
		"image2":      p.Image2,
		"images":      images,
		"color":       p.Color,
	}
}

// ProductFromDocument normalizes a raw stored record. Missing or mistyped
// fields fall back to empty values so one bad record never fails a whole load.
func ProductFromDocument(doc Document) Product {
	d := doc.Data
	return Product{
		ID:          doc.ID,
		Title:       stringField(d, "title"),
		Category:    stringField(d, "category"),
		SubCategory: stringField(d, "subCategory"),
		Price:       priceField(d, "price"),
		Rating:      ratingField(d, "rating"),
		Image1:      stringField(d, "image1"),
		Image2:      stringField(d, "image2"),
		Images:      stringsField(d, "images"),
		Color:       stringField(d, "color"),
	}
}

// ParsePrice parses a leading decimal number the way storefront prices are
// written ("30", "19.99", "200+"). Anything without a numeric prefix is NaN.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	end := 0
	seenDot := false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
	}
	if end == 0 {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func stringField(d map[string]any, key string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return ""
}

func priceField(d map[string]any, key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

func ratingField(d map[string]any, key string) int {
	var r int
	switch v := d[key].(type) {
	case float64:
		r = int(v)
	case float32:
		r = int(v)
	case int:
		r = v
	case int32:
		r = int(v)
	case int64:
		r = int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		r = n
	}
	return min(max(r, MinRating), MaxRating)
}

func stringsField(d map[string]any, key string) []string {
	switch v := d[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}
