package api

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"FinScope/internal/domain/models"
	xhttp "FinScope/pkg/http"
	xlogger "FinScope/pkg/logger"

	"github.com/go-pdf/fpdf"
	"github.com/guregu/null/v6"
	"github.com/labstack/echo/v4"
)

const defaultPDFTitle = "FinScope Daily Report"

// LatestReport exposes the last published report.
type LatestReport interface {
	Latest() (*models.Report, time.Time, bool)
}

// PDFHandler renders the latest report as a PDF download.
type PDFHandler struct {
	logger *xlogger.Logger
	latest LatestReport
}

func NewPDFHandler(logger *xlogger.Logger, latest LatestReport) *PDFHandler {
	return &PDFHandler{logger: logger, latest: latest}
}

func (h *PDFHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/report/pdf", h.Download)
	e.POST("/api/report", h.Download)
}

type pdfRequest struct {
	Title string `json:"title" query:"title" validate:"max=120"`
}

func (h *PDFHandler) Download(c echo.Context) error {
	req := &pdfRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	report, _, ok := h.latest.Latest()
	if !ok {
		return xhttp.ErrorResponse(c, http.StatusNotFound, "No report available yet", nil)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultPDFTitle
	}
	body, err := RenderReportPDF(report, title)
	if err != nil {
		h.logger.Error("pdf render failed", xlogger.String("run_id", report.RunID), xlogger.Error(err))
		return xhttp.ErrorResponse(c, http.StatusInternalServerError, "Failed to generate report", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="finscope-report.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", body)
}

// RenderReportPDF lays out title, timestamp, asset overview, macro snapshot
// and the explanations on Letter pages.
func RenderReportPDF(r *models.Report, title string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(85, 85, 85)
	pdf.CellFormat(0, 6, "Generated: "+r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Symbols: "+strings.Join(r.InputSymbols, ", ")), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	section(pdf, "Asset overview")
	widths := []float64{40, 40, 40, 40}
	pdf.SetFont("Helvetica", "B", 10)
	for i, hdr := range []string{"Symbol", "Last", "Prev", "Change %"} {
		pdf.CellFormat(widths[i], 7, hdr, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	symbols := make([]string, 0, len(r.AssetOverview))
	for s := range r.AssetOverview {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	for _, s := range symbols {
		o := r.AssetOverview[s]
		pdf.CellFormat(widths[0], 7, tr(s), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%.2f", o.Last), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.2f", o.Prev), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, pct(o.ChangePct), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	section(pdf, "Macro")
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range [][2]string{
		{"10Y Treasury yield", pct(r.Macro.TenYearYieldPct)},
		{"CPI YoY", pct(r.Macro.CPIYoYPct)},
		{"Unemployment rate", pct(r.Macro.UnemploymentRatePct)},
		{"VIX", num(r.Macro.VIXLast)},
	} {
		pdf.CellFormat(60, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if r.Invest != nil && r.Invest.Signal != "" {
		section(pdf, "Signal")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s (confidence %.0f%%). %s", r.Invest.Signal, r.Invest.Confidence*100, r.Invest.Rationale)), "", "L", false)
		pdf.Ln(2)
	}

	for _, block := range [][2]string{{"Summary", r.Explanation}, {"In plain words", r.ExplanationSimple}} {
		if strings.TrimSpace(block[1]) == "" {
			continue
		}
		section(pdf, block[0])
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(51, 51, 51)
		pdf.MultiCell(0, 6, tr(block[1]), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *fpdf.Fpdf, name string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, name, "", 1, "L", false, 0, "")
}

func pct(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v.Float64)
}

func num(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}
