package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string `json:"status"`
	AuthService string `json:"authService"`
	Enhancement string `json:"enhancement"`
	Cache       string `json:"cache"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	cacheStatus := "disabled"
	if h.rateLimits != nil {
		cacheStatus = "ok"
		if err := h.rateLimits.Ping(ctx).Err(); err != nil {
			cacheStatus = "error"
			h.log.Error().Err(err).Msg("redis ping failed")
		}
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		AuthService: h.auth.State(),
		Enhancement: h.enhance.State(),
		Cache:       cacheStatus,
		Environment: h.cfg.Environment,
	})
}
