package v1

import (
	"errors"
	"net/http"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"
	"evalue-storefront/pkg/utils"
)

// writeDomainError maps usecase errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.WriteError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrNotAuthenticated),
		errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		utils.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRemoteUnavailable):
		utils.WriteError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		logger.WithContext(r.Context()).Error().Err(err).Msg("Unhandled error")
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
