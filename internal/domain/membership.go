package domain

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MembershipKind names one of the per-user product sets.
type MembershipKind string

const (
	KindCart      MembershipKind = "cart"
	KindFavorites MembershipKind = "favorites"
)

// Collection is where the per-user set document lives.
func (k MembershipKind) Collection() string {
	if k == KindFavorites {
		return CollectionFavorites
	}
	return CollectionCart
}

// Field is the top-level key holding the set inside the document.
func (k MembershipKind) Field() string {
	return string(k)
}

// EntryPatch is the partial document that inserts productID into the set.
func (k MembershipKind) EntryPatch(productID string) map[string]any {
	return map[string]any{
		k.Field(): map[string]any{
			productID: map[string]any{"product": productID},
		},
	}
}

// EmptyPatch is the partial document holding an empty set.
func (k MembershipKind) EmptyPatch() map[string]any {
	return map[string]any{k.Field(): map[string]any{}}
}

// EntryPath addresses productID's key inside the set.
func (k MembershipKind) EntryPath(productID string) FieldPath {
	return FieldPath{k.Field(), productID}
}

// MembershipIDs extracts the sorted product ids from a raw set document.
func MembershipIDs(kind MembershipKind, doc *Document) []string {
	if doc == nil {
		return nil
	}
	set, ok := doc.Data[kind.Field()].(map[string]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

type LikeKind string

const (
	LikeAdded   LikeKind = "added"
	LikeRemoved LikeKind = "removed"
)

// LikeOutcome reports what a like toggle did.
type LikeOutcome struct {
	Kind      LikeKind `json:"kind"`
	ProductID string   `json:"productId"`
}

// OrderSummary totals a cart. Delivery is free above FreeDeliveryThreshold.
type OrderSummary struct {
	Items         int     `json:"items"`
	ItemsPrice    float64 `json:"itemsPrice"`
	DeliveryPrice float64 `json:"deliveryPrice"`
	Total         float64 `json:"total"`
}

// OrderOutcome is returned by checkout.
type OrderOutcome struct {
	Placed  bool         `json:"placed"`
	OrderID string       `json:"orderId,omitempty"`
	Summary OrderSummary `json:"summary"`
}

// PlacedOrder is handed to an OrderNotifier after a successful checkout.
type PlacedOrder struct {
	OrderID  string
	UserID   string
	Email    string
	Products []Product
	Summary  OrderSummary
	PlacedAt time.Time
}

// OrderNotifier is told about placed orders. It must not block.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order PlacedOrder)
}

// MembershipState is the locally held, materialized view of one user's set.
type MembershipState struct {
	Kind     MembershipKind `json:"kind"`
	UserID   string         `json:"userId"`
	Products []Product      `json:"products"`
	Loading  bool           `json:"loading"`
}

// MembershipView guards a MembershipState that is updated optimistically.
// Add, Remove and Clear return a restore func that undoes only that change.
type MembershipView struct {
	mu    sync.Mutex
	state MembershipState
}

func NewMembershipView(state MembershipState) *MembershipView {
	return &MembershipView{state: state}
}

func (v *MembershipView) Snapshot() MembershipState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Products = slices.Clone(v.state.Products)
	return s
}

func (v *MembershipView) Contains(productID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.ContainsFunc(v.state.Products, func(p Product) bool { return p.ID == productID })
}

// Add appends p unless its id is already present. The restore func drops
// p again and leaves any other change made in between.
func (v *MembershipView) Add(p Product) (restore func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.indexLocked(p.ID) >= 0 {
		return func() {}
	}
	v.state.Products = append(slices.Clone(v.state.Products), p)
	return func() { v.drop(p.ID) }
}

// Remove drops productID and reports whether it was present. The restore
// func puts the product back at its old position.
func (v *MembershipView) Remove(productID string) (restore func(), removed bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	idx := v.indexLocked(productID)
	if idx < 0 {
		return func() {}, false
	}
	p := v.state.Products[idx]
	v.state.Products = slices.Delete(slices.Clone(v.state.Products), idx, idx+1)
	return func() { v.reinsert(idx, []Product{p}) }, true
}

// Clear empties the view. The restore func puts the cleared products back
// ahead of anything added since.
func (v *MembershipView) Clear() (restore func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	prev := v.state.Products
	v.state.Products = []Product{}
	return func() { v.reinsert(0, prev) }
}

func (v *MembershipView) indexLocked(productID string) int {
	return slices.IndexFunc(v.state.Products, func(p Product) bool { return p.ID == productID })
}

func (v *MembershipView) drop(productID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if idx := v.indexLocked(productID); idx >= 0 {
		v.state.Products = slices.Delete(slices.Clone(v.state.Products), idx, idx+1)
	}
}

// reinsert puts products at idx, skipping ids the view already holds.
func (v *MembershipView) reinsert(idx int, products []Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	missing := make([]Product, 0, len(products))
	for _, p := range products {
		if v.indexLocked(p.ID) < 0 {
			missing = append(missing, p)
		}
	}
	idx = min(idx, len(v.state.Products))
	v.state.Products = slices.Insert(slices.Clone(v.state.Products), idx, missing...)
}
