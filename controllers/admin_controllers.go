package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
)

// AdminController serves the revenue reports.
type AdminController struct {
	Reports *services.ReportService
}

func NewAdminController(reports *services.ReportService) *AdminController {
	return &AdminController{Reports: reports}
}

func (ac *AdminController) GetRevenueReport(c *gin.Context) {
	summary, err := ac.Reports.Summary(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Revenue report", summary)
}

func (ac *AdminController) GetMostSoldItems(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.RespondError(c, http.StatusUnprocessableEntity, fmt.Errorf("limit must be a positive integer"))
			return
		}
		limit = n
	}
	items, err := ac.Reports.MostSoldItems(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Most sold items", items)
}

func (ac *AdminController) GetRevenueReportPDF(c *gin.Context) {
	summary, err := ac.Reports.Summary(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	doc, err := renderRevenuePDF(summary)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="revenue-%s-%s.pdf"`, summary.From, summary.To))
	c.Data(http.StatusOK, "application/pdf", doc)
}

func renderRevenuePDF(s *services.RevenueSummary) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Revenue %s to %s", s.From, s.To), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Riad al Hout - Revenue report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Period: %s to %s", s.From, s.To), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Orders: %d", s.Orders), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Total revenue: "+utils.FormatMoney(s.TotalRevenue.Decimal), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Average per order: "+utils.FormatMoney(s.AverageOrder.Decimal), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{60, 40, 60}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Date", "Orders", "Revenue"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, d := range s.Daily {
		pdf.CellFormat(widths[0], 7, d.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, strconv.Itoa(d.Orders), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, utils.FormatMoney(d.Total.Decimal), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if len(s.Daily) == 0 {
		pdf.CellFormat(widths[0]+widths[1]+widths[2], 7, "No revenue recorded in this period", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: render pdf: %v", services.ErrPersistence, err)
	}
	return buf.Bytes(), nil
}
