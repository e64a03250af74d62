package v1

import (
	"context"
	"net/http"
	"time"

	"evalue-storefront/pkg/logger"
	"evalue-storefront/pkg/utils"
)

// HealthCheck probes one backing service.
type HealthCheck = func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := map[string]string{"status": "ok"}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.WithContext(r.Context()).Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			report[name] = "down"
			report["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "up"
	}
	utils.WriteJSON(w, status, report)
}
