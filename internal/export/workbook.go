// Package export renders finished reports as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/jonathan/winlab-analyzer/internal/types"
	"github.com/jonathan/winlab-analyzer/internal/visualization"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetSummary       = "Summary"
	SheetSections      = "Sections"
	SheetOpportunities = "Opportunities"
	SheetRoadmap       = "Roadmap"
	SheetROI           = "ROI"
	SheetSolutions     = "Solutions"
)

// ContentType is the MIME type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxCellLength is the longest string a worksheet cell accepts.
const maxCellLength = 32767

// WriteReport writes report to w as an .xlsx workbook.
func WriteReport(w io.Writer, report *types.Report) error {
	if report == nil {
		return fmt.Errorf("report is required")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	b := &workbook{f: f}
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	b.header = header

	b.summary(report)
	b.sections(report.Sections)
	b.opportunities(report.Visualizations.OpportunityRadar)
	b.roadmap(report.Visualizations.ImplementationTimeline)
	b.roi(report.Visualizations.ROIProjection)
	b.solutions(report.Visualizations.SolutionComparison)
	if b.err != nil {
		return b.err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// workbook accumulates the first error so each sheet writer stays linear.
type workbook struct {
	f      *excelize.File
	header int
	err    error
}

func (b *workbook) sheet(name string) {
	if b.err != nil || name == SheetSummary {
		return
	}
	if _, err := b.f.NewSheet(name); err != nil {
		b.err = fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
}

func (b *workbook) row(sheet string, rowNum int, values ...any) {
	if b.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		b.err = err
		return
	}
	if err := b.f.SetSheetRow(sheet, cell, &values); err != nil {
		b.err = fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
	}
}

func (b *workbook) headerRow(sheet string, values ...string) {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	b.row(sheet, 1, cells...)
	if b.err != nil || len(values) == 0 {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(values), 1)
	if err != nil {
		b.err = err
		return
	}
	if err := b.f.SetCellStyle(sheet, "A1", last, b.header); err != nil {
		b.err = fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
}

func (b *workbook) widths(sheet string, widths ...float64) {
	for i, width := range widths {
		if b.err != nil {
			return
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			b.err = err
			return
		}
		if err := b.f.SetColWidth(sheet, col, col, width); err != nil {
			b.err = err
		}
	}
}

func (b *workbook) summary(report *types.Report) {
	b.headerRow(SheetSummary, "Field", "Value")
	b.row(SheetSummary, 2, "Business Name", report.BusinessName)
	b.row(SheetSummary, 3, "Industry", report.Industry)
	b.row(SheetSummary, 4, "Generated At", report.GeneratedAt.UTC().Format(time.RFC3339))
	b.row(SheetSummary, 5, "Sections", len(report.Sections))
	b.widths(SheetSummary, 18, 48)
}

func (b *workbook) sections(sections types.Sections) {
	b.sheet(SheetSections)
	b.headerRow(SheetSections, "Key", "Title", "Content")
	for i, sec := range sections {
		b.row(SheetSections, i+2, sec.Key, sec.Title, truncateCell(sec.Content))
	}
	b.widths(SheetSections, 24, 32, 100)
}

func (b *workbook) opportunities(radar types.ChartData) {
	b.sheet(SheetOpportunities)
	b.headerRow(SheetOpportunities, "Opportunity", visualization.ImpactDatasetLabel, visualization.ComplexityDatasetLabel)

	impact, _ := radar.Dataset(visualization.ImpactDatasetLabel)
	complexity, _ := radar.Dataset(visualization.ComplexityDatasetLabel)
	for i, label := range radar.Labels {
		b.row(SheetOpportunities, i+2, label, valueAt(impact.Data, i), valueAt(complexity.Data, i))
	}
	b.widths(SheetOpportunities, 32, 16, 16)
}

func (b *workbook) roadmap(timeline types.Timeline) {
	b.sheet(SheetRoadmap)
	b.headerRow(SheetRoadmap, "Phase", "Timeline", "Item")

	rowNum := 2
	for _, phase := range timeline.Phases {
		if len(phase.Items) == 0 {
			b.row(SheetRoadmap, rowNum, phase.Name, phase.Timeline, "")
			rowNum++
			continue
		}
		for _, item := range phase.Items {
			b.row(SheetRoadmap, rowNum, phase.Name, phase.Timeline, truncateCell(item))
			rowNum++
		}
	}
	b.widths(SheetRoadmap, 20, 16, 80)
}

func (b *workbook) roi(chart types.ChartData) {
	b.sheet(SheetROI)
	headers := []string{"Period"}
	for _, ds := range chart.Datasets {
		headers = append(headers, ds.Label)
	}
	b.headerRow(SheetROI, headers...)

	for i, label := range chart.Labels {
		values := []any{label}
		for _, ds := range chart.Datasets {
			values = append(values, valueAt(ds.Data, i))
		}
		b.row(SheetROI, i+2, values...)
	}
	b.widths(SheetROI, 16, 16, 16, 16)
}

func (b *workbook) solutions(table types.ComparisonTable) {
	b.sheet(SheetSolutions)
	b.headerRow(SheetSolutions, table.Headers...)
	for i, row := range table.Rows {
		values := make([]any, len(row))
		for j, cell := range row {
			values[j] = cell
		}
		b.row(SheetSolutions, i+2, values...)
	}
	b.widths(SheetSolutions, 24, 32, 14, 16, 16, 14)
}

func valueAt(data []int, i int) any {
	if i < len(data) {
		return data[i]
	}
	return ""
}

func truncateCell(s string) string {
	if utf8.RuneCountInString(s) <= maxCellLength {
		return s
	}
	return string([]rune(s)[:maxCellLength])
}
