// internal/handlers/report.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/tecnova-catalog/internal/services"
	"github.com/javajoker/tecnova-catalog/internal/utils"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GET /reports/dashboard
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	utils.SuccessResponse(c, h.reportService.Dashboard(utils.GetLangFromContext(c)))
}

// GET /reports/products.csv
func (h *ReportHandler) ExportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reportService.ExportCSV(&buf); err != nil {
		respondError(c, resourceProduct, err)
		return
	}

	filename := fmt.Sprintf("produtos-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
