package handler

import (
	"net/http"
	"time"

	"puntoventa-be/internal/middleware"

	"github.com/gin-gonic/gin"
)

const defaultSummaryWindow = 30 * 24 * time.Hour

func (h *Handler) dashboardSummary(c *gin.Context) {
	merchantID, ok := middleware.MerchantID(c)
	if !ok {
		badRequest(c, "merchant not resolved")
		return
	}

	since := time.Now().Add(-defaultSummaryWindow)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "since must be RFC3339")
			return
		}
		since = parsed
	}

	summary, err := h.dashboard.Summarize(c.Request.Context(), merchantID, since)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
