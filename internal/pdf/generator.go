package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/buildops-leveling/internal/model"
	"github.com/nurpe/buildops-leveling/internal/money"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a snapshot as a leveling sheet: header block, then
// one stats table row per trade followed by its frozen bids.
func (g *Generator) Generate(view model.SnapshotView) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Bid Leveling Snapshot", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Project: %s", view.ProjectName), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Snapshot \"%s\" captured %s", view.Snapshot.Title, formatDate(view.Snapshot.CreatedAt)), "", 1, "C", false, 0, "")
	if strings.TrimSpace(view.Snapshot.Notes) != "" {
		pdf.CellFormat(0, 6, view.Snapshot.Notes, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Trade summary", "", 1, "L", false, 0, "")

	headers := []string{"Trade", "Bids", "Low", "High", "Average", "Spread", "Spread %"}
	colWidths := []float64{80, 20, 32, 32, 32, 32, 24}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)
	for _, line := range view.Trades {
		row := []string{
			line.TradeName,
			fmt.Sprintf("%d", line.Stats.CoverageCount),
			money.FormatCurrency(line.Stats.Low),
			money.FormatCurrency(line.Stats.High),
			money.FormatCurrency(line.Stats.Average),
			money.FormatCurrency(line.Stats.SpreadAmount),
			money.FormatPercent(line.Stats.SpreadPercent),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	for _, line := range view.Trades {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, line.TradeName, "", 1, "L", false, 0, "")

		bidHeaders := []string{"Subcontractor", "Status", "Base bid", "Notes"}
		bidWidths := []float64{80, 30, 36, 106}
		drawTableRow(pdf, g.fontName, bidHeaders, bidWidths, true)
		for _, item := range line.Items {
			row := []string{
				item.SubName,
				string(item.Status),
				money.FormatCurrency(item.BaseBidAmount),
				item.Notes,
			}
			drawTableRow(pdf, g.fontName, row, bidWidths, false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.Format("2006-01-02")
}
