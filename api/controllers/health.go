package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/greenbasket/greenbasket-backend/api/responses"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
)

// Pinger covers the dependencies the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db    Pinger
	cache Pinger
	log   *logger.Logger
}

func NewHealthController(db, cache Pinger, log *logger.Logger) *HealthController {
	return &HealthController{db: db, cache: cache, log: log}
}

// Live reports process liveness only.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the database and cache with a short deadline.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"database": "ok", "cache": "ok"}
	healthy := true

	if err := c.db.Ping(ctx); err != nil {
		status["database"] = "unavailable"
		healthy = false
	}
	if err := c.cache.Ping(ctx); err != nil {
		status["cache"] = "unavailable"
		healthy = false
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	responses.WriteJSON(w, code, status)
}
