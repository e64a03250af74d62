package usecase

import (
	"context"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"
)

type FavoritesUsecase struct {
	store   domain.DocumentStore
	catalog domain.ProductReader
}

func NewFavoritesUsecase(store domain.DocumentStore, catalog domain.ProductReader) *FavoritesUsecase {
	return &FavoritesUsecase{store: store, catalog: catalog}
}

// ToggleLike removes productID from favorites when currentlyLiked, otherwise
// inserts it. The local view follows optimistically and is restored on failure.
func (uc *FavoritesUsecase) ToggleLike(ctx context.Context, sess *domain.Session, view *domain.MembershipView, productID string, currentlyLiked bool) (domain.LikeOutcome, error) {
	if sess == nil {
		return domain.LikeOutcome{}, domain.ErrNotAuthenticated
	}
	if err := domain.ValidateKey("productId", productID); err != nil {
		return domain.LikeOutcome{}, err
	}
	log := logger.WithContext(ctx)
	uid := sess.UserID()

	if currentlyLiked {
		restore := func() {}
		if view != nil {
			restore, _ = view.Remove(productID)
		}
		if err := uc.store.DeleteField(ctx, domain.CollectionFavorites, uid, domain.KindFavorites.EntryPath(productID)); err != nil {
			restore()
			log.Error().Err(err).Str("product_id", productID).Msg("Error updating favorites")
			return domain.LikeOutcome{}, err
		}
		return domain.LikeOutcome{Kind: domain.LikeRemoved, ProductID: productID}, nil
	}

	restore := addLocal(ctx, uc.catalog, view, productID)
	if err := uc.store.UpsertMerge(ctx, domain.CollectionFavorites, uid, domain.KindFavorites.EntryPatch(productID)); err != nil {
		restore()
		log.Error().Err(err).Str("product_id", productID).Msg("Error updating favorites")
		return domain.LikeOutcome{}, err
	}
	return domain.LikeOutcome{Kind: domain.LikeAdded, ProductID: productID}, nil
}

// IsLiked reports whether productID is in the user's favorites. Any failure reads as false.
func (uc *FavoritesUsecase) IsLiked(ctx context.Context, sess *domain.Session, productID string) bool {
	if sess == nil {
		return false
	}
	return inSet(ctx, uc.store, domain.KindFavorites, sess.UserID(), productID)
}
