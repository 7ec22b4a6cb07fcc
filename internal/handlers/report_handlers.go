package handlers

import (
	"net/http"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves dashboard figures.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetDashboardSummary handles GET /dashboard/summary.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.reportService.DashboardSummary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "load dashboard summary")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", summary)
}
