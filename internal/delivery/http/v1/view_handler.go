package v1

import (
	"net/http"

	"evalue-storefront/internal/domain"
	"evalue-storefront/internal/usecase"
	"evalue-storefront/pkg/utils"
)

// ViewHandler exposes stateful product views: a filter plus a growing
// visible window over the loaded catalog.
type ViewHandler struct {
	viewUC *usecase.ViewUsecase
}

func NewViewHandler(viewUC *usecase.ViewUsecase) *ViewHandler {
	return &ViewHandler{viewUC: viewUC}
}

func (h *ViewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params domain.FilterParams
	if err := utils.ReadJSON(r, &params); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	filter, err := params.Parse()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, h.viewUC.Create(r.Context(), filter))
}

func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.viewUC.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, info)
}

// Update applies a partial filter change. The visible window is kept.
func (h *ViewHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.FilterPatch
	if err := utils.ReadJSON(r, &patch); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	info, err := h.viewUC.Update(r.PathValue("id"), patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, info)
}

func (h *ViewHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	info, err := h.viewUC.LoadMore(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, info)
}

func (h *ViewHandler) Reload(w http.ResponseWriter, r *http.Request) {
	info, err := h.viewUC.Reload(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, info)
}

func (h *ViewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.viewUC.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}
