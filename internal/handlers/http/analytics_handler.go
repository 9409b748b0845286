package http

import (
	"net/http"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Report)
	rg.GET("/realtime", h.Realtime)
	rg.GET("/channels/:id", h.Channel)
	rg.GET("/export", h.Export)
}

func (h *AnalyticsHandler) Report(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      h.analytics.Report(c.Request.Context()),
		"timestamp": time.Now().UTC(),
	})
}

func (h *AnalyticsHandler) Realtime(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.analytics.Realtime(),
	})
}

func (h *AnalyticsHandler) Channel(c *gin.Context) {
	id, _ := parseID(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.analytics.Channel(c.Request.Context(), domain.ChannelID(id)),
	})
}

// Export serves the overview as CSV when format=csv, otherwise the full
// report as JSON.
func (h *AnalyticsHandler) Export(c *gin.Context) {
	if c.Query("format") == "csv" {
		c.Header("Content-Disposition", "attachment; filename=analytics.csv")
		c.Data(http.StatusOK, "text/csv", h.analytics.ExportCSV(c.Request.Context()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.analytics.Report(c.Request.Context()),
	})
}
