package v1

import (
	"net/http"

	"evalue-storefront/internal/domain"
	"evalue-storefront/internal/usecase"
	"evalue-storefront/pkg/utils"
)

type CartHandler struct {
	cartUC       *usecase.CartUsecase
	membershipUC *usecase.MembershipUsecase
}

func NewCartHandler(cartUC *usecase.CartUsecase, membershipUC *usecase.MembershipUsecase) *CartHandler {
	return &CartHandler{cartUC: cartUC, membershipUC: membershipUC}
}

type cartResponse struct {
	Products []domain.Product    `json:"products"`
	Loading  bool                `json:"loading"`
	Summary  domain.OrderSummary `json:"summary"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := domain.SessionFromContext(r.Context())
	state := h.membershipUC.View(r.Context(), domain.KindCart, sess.UserID()).Snapshot()
	utils.WriteJSON(w, http.StatusOK, cartResponse{
		Products: state.Products,
		Loading:  state.Loading,
		Summary:  usecase.Summarize(state.Products),
	})
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	sess := domain.SessionFromContext(r.Context())
	view := h.membershipUC.View(r.Context(), domain.KindCart, sess.UserID())
	if err := h.cartUC.AddToCart(r.Context(), sess, view, req.ProductID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Added to cart", Data: view.Snapshot().Products})
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	sess := domain.SessionFromContext(r.Context())
	view := h.membershipUC.View(r.Context(), domain.KindCart, sess.UserID())
	if err := h.cartUC.RemoveFromCart(r.Context(), sess, view, r.PathValue("productId")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Removed from cart", Data: view.Snapshot().Products})
}

// Checkout places the order by emptying the cart.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := domain.SessionFromContext(r.Context())
	view := h.membershipUC.View(r.Context(), domain.KindCart, sess.UserID())
	outcome, err := h.cartUC.EmptyCart(r.Context(), sess, view)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Order placed", Data: outcome})
}
