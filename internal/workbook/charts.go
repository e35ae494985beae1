package workbook

import (
	"fmt"

	"finance-export-service/internal/collector"
	"finance-export-service/pkg/errors"
	"finance-export-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// chartSpec maps a chart section to its sheet names and chart type
type chartSpec struct {
	Section   string
	Title     string
	DataSheet string
	Sheet     string
	Type      excelize.ChartType
}

// chartPlans declares the known chart sections. Operations and net worth
// trend over time as lines, spending distributions are pies, and the
// comparison charts are clustered columns.
var chartPlans = []chartSpec{
	{Section: collector.ChartOperations, Title: "Operations", DataSheet: "Operations Data", Sheet: "Operations Chart", Type: excelize.Line},
	{Section: collector.ChartNetWorth, Title: "Net Worth", DataSheet: "Net Worth Data", Sheet: "Net Worth Chart", Type: excelize.Line},
	{Section: collector.ChartIncomeExpense, Title: "Income vs Expenses by Month", DataSheet: "Income vs Expenses Data", Sheet: "Income vs Expenses Chart", Type: excelize.Col},
	{Section: collector.ChartBudgets, Title: "Budget Spending", DataSheet: "Budget Spending Data", Sheet: "Budget Spending Chart", Type: excelize.Pie},
	{Section: collector.ChartCategories, Title: "Category Spending", DataSheet: "Category Spending Data", Sheet: "Category Spending Chart", Type: excelize.Pie},
	{Section: collector.ChartTags, Title: "Tag Spending", DataSheet: "Tag Spending Data", Sheet: "Tag Spending Chart", Type: excelize.Pie},
	{Section: collector.ChartDouble, Title: "Asset vs Expense", DataSheet: "Asset vs Expense Data", Sheet: "Asset vs Expense Chart", Type: excelize.Col},
}

// ChartEngine embeds chart sheets into an already laid-out workbook.
// Charts are strictly best-effort: invalid data is silently skipped and a
// failure building one chart only omits that chart.
type ChartEngine struct {
	logger logger.Logger
}

// NewChartEngine creates a chart engine
func NewChartEngine() *ChartEngine {
	return &ChartEngine{
		logger: logger.GetGlobalLogger().WithComponent("charts"),
	}
}

// EmbedCharts adds one backing data sheet and one chart sheet per valid
// chart section in the report data
func (ce *ChartEngine) EmbedCharts(data *collector.ReportData, f *excelize.File) error {
	for _, spec := range chartPlans {
		section := data.Section(spec.Section)
		if section == nil || section.Kind != collector.SectionChart {
			continue
		}

		labels, datasets := normalizeChart(section.Chart)
		if !isValidChartData(labels, datasets) {
			ce.logger.WithField("chart", spec.Section).Debug("Chart data invalid or empty; skipping")
			continue
		}

		if err := ce.buildChart(f, spec, labels, datasets); err != nil {
			// One failing chart never aborts siblings or the export
			chartErr := errors.ChartError(spec.Section, err).
				WithContext("report_type", data.Type.String()).
				WithContext("period", data.Period.Label())
			ce.logger.WithError(chartErr).Warn("Chart build failed; omitting chart sheet")
			continue
		}
	}

	return nil
}

// isValidChartData is the chart validity precondition: there must be
// labels and at least one dataset of matching length
func isValidChartData(labels []string, datasets []collector.Dataset) bool {
	if len(labels) == 0 || len(datasets) == 0 {
		return false
	}
	for _, ds := range datasets {
		if len(ds.Values) != len(labels) {
			return false
		}
	}
	return true
}

// normalizeChart materializes both accepted chart shapes into the labeled
// dataset form: labeled multi-series data passes through, simple key/value
// data becomes a single series
func normalizeChart(chart *collector.ChartData) ([]string, []collector.Dataset) {
	if chart == nil {
		return nil, nil
	}

	if len(chart.Labels) > 0 || len(chart.Datasets) > 0 {
		return chart.Labels, chart.Datasets
	}

	keys := chart.Keys()
	if len(keys) == 0 {
		return nil, nil
	}

	ds := collector.Dataset{Label: chart.Title}
	for _, key := range keys {
		ds.Values = append(ds.Values, chart.Values[key])
	}
	return keys, []collector.Dataset{ds}
}

// buildChart materializes the data sheet and anchors the chart object to
// its ranges on a dedicated sheet
func (ce *ChartEngine) buildChart(f *excelize.File, spec chartSpec, labels []string, datasets []collector.Dataset) error {
	if _, err := f.NewSheet(spec.DataSheet); err != nil {
		return err
	}

	// Label column plus one column per dataset, headers in row 1
	for i, ds := range datasets {
		cell, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(spec.DataSheet, cell, ds.Label); err != nil {
			return err
		}
	}

	for row, label := range labels {
		cell, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(spec.DataSheet, cell, label); err != nil {
			return err
		}

		for col, ds := range datasets {
			cell, err := excelize.CoordinatesToCellName(col+2, row+2)
			if err != nil {
				return err
			}
			value, _ := ds.Values[row].Float64()
			if err := f.SetCellValue(spec.DataSheet, cell, value); err != nil {
				return err
			}
		}
	}

	firstLabel, _ := excelize.CoordinatesToCellName(1, 2)
	lastLabel, _ := excelize.CoordinatesToCellName(1, len(labels)+1)
	categories := fmt.Sprintf("'%s'!%s:%s", spec.DataSheet, firstLabel, lastLabel)

	var series []excelize.ChartSeries
	for i := range datasets {
		nameCell, _ := excelize.CoordinatesToCellName(i+2, 1)
		firstValue, _ := excelize.CoordinatesToCellName(i+2, 2)
		lastValue, _ := excelize.CoordinatesToCellName(i+2, len(labels)+1)

		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!%s", spec.DataSheet, nameCell),
			Categories: categories,
			Values:     fmt.Sprintf("'%s'!%s:%s", spec.DataSheet, firstValue, lastValue),
		})
	}

	// Pie charts hold exactly one series
	if spec.Type == excelize.Pie && len(series) > 1 {
		series = series[:1]
	}

	if _, err := f.NewSheet(spec.Sheet); err != nil {
		return err
	}

	chart := &excelize.Chart{
		Type:   spec.Type,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: spec.Title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{
			Width:  720,
			Height: 420,
		},
		PlotArea: excelize.ChartPlotArea{
			ShowCatName: false,
			ShowPercent: spec.Type == excelize.Pie,
			ShowVal:     false,
		},
	}

	// Fixed anchor on the dedicated chart sheet
	if err := f.AddChart(spec.Sheet, "A1", chart); err != nil {
		return err
	}

	ce.logger.WithFields(logger.Fields{
		"chart":  spec.Section,
		"sheet":  spec.Sheet,
		"series": len(series),
		"points": len(labels),
	}).Debug("Chart embedded")

	return nil
}
