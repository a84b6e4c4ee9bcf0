package excel

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/buildops-leveling/internal/model"
	"github.com/nurpe/buildops-leveling/internal/money"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders a snapshot as a workbook: a summary sheet with the
// per-trade leveling stats and one detail sheet per trade with the
// frozen bids and their alternates.
func (g *Generator) Generate(view model.SnapshotView) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, view); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, line := range view.Trades {
		sheetName := buildSheetName(line.TradeName, line.TradeID, usedNames)
		usedNames[sheetName] = struct{}{}

		file.NewSheet(sheetName)
		if err := g.writeTrade(file, sheetName, line); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, view model.SnapshotView) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Project")
	set("B1", view.ProjectName)
	set("A2", "Snapshot")
	set("B2", view.Snapshot.Title)
	set("A3", "Captured")
	set("B3", view.Snapshot.CreatedAt.Format("2006-01-02 15:04"))
	set("A4", "Trades")
	set("B4", len(view.Trades))

	tableRow := 6
	headers := []string{"Trade", "Bids", "Low", "High", "Average", "Spread", "Spread %"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, line := range view.Trades {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), line.TradeName)
		set(fmt.Sprintf("B%d", row), line.Stats.CoverageCount)
		set(fmt.Sprintf("C%d", row), money.FormatCurrency(line.Stats.Low))
		set(fmt.Sprintf("D%d", row), money.FormatCurrency(line.Stats.High))
		set(fmt.Sprintf("E%d", row), money.FormatCurrency(line.Stats.Average))
		set(fmt.Sprintf("F%d", row), money.FormatCurrency(line.Stats.SpreadAmount))
		set(fmt.Sprintf("G%d", row), money.FormatPercent(line.Stats.SpreadPercent))
	}

	_ = file.SetColWidth(sheet, "A", "A", 36)
	_ = file.SetColWidth(sheet, "B", "G", 14)
	return nil
}

func (g *Generator) writeTrade(file *excelize.File, sheet string, line model.SnapshotTradeLine) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Trade")
	set("B1", line.TradeName)
	set("A2", "Submitted bids")
	set("B2", line.Stats.CoverageCount)
	set("A3", "Low")
	set("B3", money.FormatCurrency(line.Stats.Low))
	set("A4", "High")
	set("B4", money.FormatCurrency(line.Stats.High))

	tableRow := 6
	headers := []string{"Subcontractor", "Status", "Base bid", "Notes", "Alternates"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, item := range line.Items {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), item.SubName)
		set(fmt.Sprintf("B%d", row), string(item.Status))
		set(fmt.Sprintf("C%d", row), money.FormatCurrency(item.BaseBidAmount))
		set(fmt.Sprintf("D%d", row), item.Notes)
		set(fmt.Sprintf("E%d", row), describeLineItems(item))
	}

	_ = file.SetColWidth(sheet, "A", "A", 36)
	_ = file.SetColWidth(sheet, "B", "C", 14)
	_ = file.SetColWidth(sheet, "D", "E", 40)
	return nil
}

func describeLineItems(item model.SnapshotItem) string {
	payload, err := item.ParseLineItems()
	if err != nil || len(payload.Alternates) == 0 {
		return ""
	}
	parts := make([]string, 0, len(payload.Alternates))
	for _, alt := range payload.Alternates {
		marker := ""
		if alt.Accepted {
			marker = " (accepted)"
		}
		parts = append(parts, fmt.Sprintf("%s: %s%s", alt.Title, money.FormatCurrency(alt.Amount), marker))
	}
	return strings.Join(parts, "; ")
}

func buildSheetName(name string, id uuid.UUID, used map[string]struct{}) string {
	base := strings.TrimSpace(name)
	if base == "" {
		base = id.String()
	}
	base = sanitizeSheetName(base)

	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = strings.TrimSpace(replacer.Replace(value))
	if value == "" {
		return "Trade"
	}
	return value
}
