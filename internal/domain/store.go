package domain

import (
	"context"
	"strings"
)

// Collection names of the persisted layout.
const (
	CollectionProducts   = "products"
	CollectionCart       = "cart"
	CollectionFavorites  = "favorites"
	CollectionUsers      = "users"
	CollectionUserEmails = "user_emails"
)

// Document is one keyed record in a collection.
type Document struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// FieldPath addresses a nested field, outermost key first.
type FieldPath []string

func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

// DocumentStore is the remote document database.
//
// UpsertMerge deep-merges nested maps in partial into the stored document,
// creating it when absent. An empty map creates the field when it is missing
// and leaves a stored map untouched. DeleteField removes the addressed field and is a
// no-op when the document or the field does not exist. GetOne returns
// ErrNotFound for a missing document.
type DocumentStore interface {
	GetAll(ctx context.Context, collection string) ([]Document, error)
	GetOne(ctx context.Context, collection, id string) (*Document, error)
	UpsertMerge(ctx context.Context, collection, id string, partial map[string]any) error
	DeleteField(ctx context.Context, collection, id string, path FieldPath) error
}

// ValidateKey rejects ids that cannot be used as a document id or map key.
// Dots and dollar signs would be read as path separators or operators by
// the backing stores.
func ValidateKey(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return NewValidationError(field, "is required")
	}
	if strings.ContainsAny(id, ".$/") {
		return NewValidationError(field, "must not contain '.', '$' or '/'")
	}
	return nil
}

// DeepMerge merges src into dst in place. Nested maps merge recursively,
// every other value replaces what dst held.
func DeepMerge(dst, src map[string]any) {
	for k, v := range src {
		sv, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		dv, ok := dst[k].(map[string]any)
		if !ok {
			dv = make(map[string]any, len(sv))
			dst[k] = dv
		}
		DeepMerge(dv, sv)
	}
}

// DeletePath removes the field at path from data and reports whether anything changed.
func DeletePath(data map[string]any, path FieldPath) bool {
	if len(path) == 0 {
		return false
	}
	cur := data
	for _, key := range path[:len(path)-1] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return false
		}
		cur = next
	}
	last := path[len(path)-1]
	if _, ok := cur[last]; !ok {
		return false
	}
	delete(cur, last)
	return true
}

// CloneMap deep-copies nested maps and slices so callers never share state with a store.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneMap(t)
	case []any:
		cp := make([]any, len(t))
		for i, item := range t {
			cp[i] = cloneValue(item)
		}
		return cp
	case []string:
		return append([]string(nil), t...)
	}
	return v
}
