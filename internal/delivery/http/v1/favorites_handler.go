package v1

import (
	"net/http"

	"evalue-storefront/internal/domain"
	"evalue-storefront/internal/usecase"
	"evalue-storefront/pkg/utils"
)

type FavoritesHandler struct {
	favoritesUC  *usecase.FavoritesUsecase
	membershipUC *usecase.MembershipUsecase
}

func NewFavoritesHandler(favoritesUC *usecase.FavoritesUsecase, membershipUC *usecase.MembershipUsecase) *FavoritesHandler {
	return &FavoritesHandler{favoritesUC: favoritesUC, membershipUC: membershipUC}
}

func (h *FavoritesHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	sess := domain.SessionFromContext(r.Context())
	utils.WriteJSON(w, http.StatusOK, h.membershipUC.View(r.Context(), domain.KindFavorites, sess.UserID()).Snapshot())
}

func (h *FavoritesHandler) IsLiked(w http.ResponseWriter, r *http.Request) {
	sess := domain.SessionFromContext(r.Context())
	pid := r.PathValue("productId")
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"productId": pid,
		"isLiked":   h.favoritesUC.IsLiked(r.Context(), sess, pid),
	})
}

// ToggleLike flips membership based on the caller's current view of it.
func (h *FavoritesHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	sess := domain.SessionFromContext(r.Context())
	pid := r.PathValue("productId")
	view := h.membershipUC.View(r.Context(), domain.KindFavorites, sess.UserID())

	outcome, err := h.favoritesUC.ToggleLike(r.Context(), sess, view, pid, view.Contains(pid))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Message: domain.LikeMessages[outcome.Kind],
		Data:    outcome,
	})
}
