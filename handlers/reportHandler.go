package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/zone_expense_backend/models/reports"
	"github.com/mmdatafocus/zone_expense_backend/utils"
)

func reportQuery(c *gin.Context) reports.Query {
	return reports.ParseQuery(c.Query("page"), c.Query("pageSize"), c.Query("search"), reports.DefaultReportSize)
}

func (h *Handler) userReport(c *gin.Context) {
	report, err := h.reporter.UserReport(c.Request.Context(), reportQuery(c))
	if err != nil {
		h.respondError(c, "userReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) categoryReport(c *gin.Context) {
	report, err := h.reporter.CategoryReport(c.Request.Context(), reportQuery(c))
	if err != nil {
		h.respondError(c, "categoryReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) zoneReport(c *gin.Context) {
	report, err := h.reporter.ZoneReport(c.Request.Context(), reportQuery(c))
	if err != nil {
		h.respondError(c, "zoneReport", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// exportReport streams the whole filtered report as an xlsx attachment.
func (h *Handler) exportReport(c *gin.Context) {
	kind := c.Param("kind")
	if !reports.ExportKinds[kind] {
		h.respondError(c, "exportReport", utils.NotFoundError("Unknown report"))
		return
	}
	var buf bytes.Buffer
	if err := h.reporter.ExportExcel(c.Request.Context(), kind, c.Query("search"), &buf); err != nil {
		h.respondError(c, "exportReport", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-report.xlsx"`, kind))
	c.Data(http.StatusOK, reports.ExcelContentType, buf.Bytes())
}
