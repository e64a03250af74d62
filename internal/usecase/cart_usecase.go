package usecase

import (
	"context"
	"math"
	"time"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"

	"github.com/google/uuid"
)

// CartUsecase mutates a user's cart. Local views are updated first and
// rolled back when the remote write fails.
type CartUsecase struct {
	store    domain.DocumentStore
	catalog  domain.ProductReader
	notifier domain.OrderNotifier
}

func NewCartUsecase(store domain.DocumentStore, catalog domain.ProductReader) *CartUsecase {
	return &CartUsecase{store: store, catalog: catalog}
}

// WithNotifier reports every placed order to n.
func (uc *CartUsecase) WithNotifier(n domain.OrderNotifier) *CartUsecase {
	uc.notifier = n
	return uc
}

// AddToCart upserts productID into the cart set. Repeating it changes nothing.
func (uc *CartUsecase) AddToCart(ctx context.Context, sess *domain.Session, view *domain.MembershipView, productID string) error {
	if sess == nil {
		return domain.ErrNotAuthenticated
	}
	if err := domain.ValidateKey("productId", productID); err != nil {
		return err
	}

	restore := addLocal(ctx, uc.catalog, view, productID)
	if err := uc.store.UpsertMerge(ctx, domain.CollectionCart, sess.UserID(), domain.KindCart.EntryPatch(productID)); err != nil {
		restore()
		logger.WithContext(ctx).Error().Err(err).Str("product_id", productID).Msg("Error adding to cart")
		return err
	}
	return nil
}

// addLocal optimistically inserts the product into view. A product that
// cannot be read is left out of the view but still written remotely.
func addLocal(ctx context.Context, catalog domain.ProductReader, view *domain.MembershipView, productID string) (restore func()) {
	if view == nil || view.Contains(productID) {
		return func() {}
	}
	p, err := catalog.GetProduct(ctx, productID)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("product_id", productID).Msg("Product could not be materialized")
		return func() {}
	}
	return view.Add(*p)
}

// RemoveFromCart drops productID locally, then deletes its key remotely.
// Removing an id that is not in the cart is a no-op on both sides.
func (uc *CartUsecase) RemoveFromCart(ctx context.Context, sess *domain.Session, view *domain.MembershipView, productID string) error {
	if sess == nil {
		return domain.ErrNotAuthenticated
	}
	if err := domain.ValidateKey("productId", productID); err != nil {
		return err
	}

	restore := func() {}
	if view != nil {
		restore, _ = view.Remove(productID)
	}

	if err := uc.store.DeleteField(ctx, domain.CollectionCart, sess.UserID(), domain.KindCart.EntryPath(productID)); err != nil {
		restore()
		logger.WithContext(ctx).Error().Err(err).Str("product_id", productID).Msg("Error removing from cart")
		return err
	}
	return nil
}

// EmptyCart replaces the cart with an empty set and clears the local view.
// Without a session it fails closed and leaves the view untouched.
func (uc *CartUsecase) EmptyCart(ctx context.Context, sess *domain.Session, view *domain.MembershipView) (domain.OrderOutcome, error) {
	if sess == nil {
		logger.WithContext(ctx).Warn().Msg("Empty cart attempted without a session")
		return domain.OrderOutcome{}, domain.ErrNotAuthenticated
	}

	var products []domain.Product
	restore := func() {}
	if view != nil {
		products = view.Snapshot().Products
		restore = view.Clear()
	}
	summary := Summarize(products)

	uid := sess.UserID()
	if err := uc.store.DeleteField(ctx, domain.CollectionCart, uid, domain.FieldPath{domain.KindCart.Field()}); err != nil {
		restore()
		logger.WithContext(ctx).Error().Err(err).Msg("Error clearing the cart")
		return domain.OrderOutcome{}, err
	}
	// The cart is already empty remotely; an absent field reads the same.
	if err := uc.store.UpsertMerge(ctx, domain.CollectionCart, uid, domain.KindCart.EmptyPatch()); err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("user_id", uid).Msg("Failed to re-seed empty cart")
	}

	order := domain.PlacedOrder{
		OrderID:  uuid.NewString(),
		UserID:   uid,
		Email:    sess.User.Email,
		Products: products,
		Summary:  summary,
		PlacedAt: time.Now(),
	}
	logger.WithContext(ctx).Info().Str("order_id", order.OrderID).Float64("total", summary.Total).Int("items", summary.Items).Msg("Order placed")
	if uc.notifier != nil {
		uc.notifier.OrderPlaced(ctx, order)
	}
	return domain.OrderOutcome{Placed: true, OrderID: order.OrderID, Summary: summary}, nil
}

// Summarize totals cart products. Unparsable prices count as zero.
// Delivery is free once the items price exceeds the threshold.
func Summarize(products []domain.Product) domain.OrderSummary {
	var items float64
	for _, p := range products {
		if v := p.PriceValue(); !math.IsNaN(v) {
			items += v
		}
	}
	delivery := domain.DeliveryFee
	if items > domain.FreeDeliveryThreshold {
		delivery = 0
	}
	return domain.OrderSummary{
		Items:         len(products),
		ItemsPrice:    items,
		DeliveryPrice: delivery,
		Total:         items + delivery,
	}
}
