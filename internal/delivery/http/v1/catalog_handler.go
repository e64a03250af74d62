package v1

import (
	"net/http"
	"strconv"

	"evalue-storefront/internal/domain"
	"evalue-storefront/internal/usecase"
	"evalue-storefront/pkg/utils"
)

type CatalogHandler struct {
	catalogUC   *usecase.CatalogUsecase
	favoritesUC *usecase.FavoritesUsecase
}

func NewCatalogHandler(catalogUC *usecase.CatalogUsecase, favoritesUC *usecase.FavoritesUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC, favoritesUC: favoritesUC}
}

// ListProducts runs the listing pipeline for the query string filters.
//
//	GET /api/v1/products?category=men&subCategory=shoes&color=red&price=50-100&rating=4&q=run&sort=priceAsc&visible=12
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter, err := domain.FilterParams{
		Category:    query.Get("category"),
		SubCategory: query.Get("subCategory"),
		Color:       query.Get("color"),
		Price:       query.Get("price"),
		Rating:      query.Get("rating"),
		Search:      query.Get("q"),
		Sort:        query.Get("sort"),
	}.Parse()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	visible := domain.InitialVisibleCount
	if raw := query.Get("visible"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.WriteError(w, http.StatusBadRequest, "visible must be a non-negative integer")
			return
		}
		visible = n
	}

	utils.WriteJSON(w, http.StatusOK, h.catalogUC.List(r.Context(), filter, visible))
}

type productDetailResponse struct {
	Product domain.Product `json:"product"`
	Rating  string         `json:"rating"`
	Gallery []string       `json:"gallery"`
	IsLiked bool           `json:"isLiked"`
}

// GetProduct returns one product. isLiked is only ever true for a signed-in caller.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	product, err := h.catalogUC.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	sess := domain.SessionFromContext(r.Context())
	utils.WriteJSON(w, http.StatusOK, productDetailResponse{
		Product: *product,
		Rating:  product.RatingString(),
		Gallery: product.Gallery(),
		IsLiked: h.favoritesUC.IsLiked(r.Context(), sess, id),
	})
}

func (h *CatalogHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.catalogUC.Options())
}
