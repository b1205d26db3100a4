package http

import (
	"context"
	"net/http"
	"time"
)

// Pinger — проверка живости одной внешней зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler опрашивает внешние зависимости сервиса.
type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Details map[string]string `json:"details"`
}

// check
//
//	@Summary	Проверка живости сервиса и его зависимостей
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Failure	503	{object}	healthResponse
//	@Router		/health [get]
func (h *HealthHandler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	details := make(map[string]string, len(h.checks))
	status := http.StatusOK
	overall := "ok"

	for name, pinger := range h.checks {
		if err := pinger.Ping(ctx); err != nil {
			details[name] = err.Error()
			status = http.StatusServiceUnavailable
			overall = "degraded"
			continue
		}
		details[name] = "ok"
	}

	WriteSuccess(w, status, healthResponse{
		Status:  overall,
		Details: details,
	})
}
