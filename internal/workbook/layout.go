// Package workbook turns a collected report data tree into a styled xlsx
// workbook with live formulas and embedded charts.
//
// The layout engine emits a Summary sheet first, then one data sheet per
// populated section, selected by a declarative per-report-type plan. Totals
// rows carry live SUM-range formulas over each currency's contiguous data
// rows, never precomputed literals, so the opened spreadsheet stays correct
// if a user edits the data cells. Sections that arrive as opaque markup or
// as error payloads degrade to placeholder or diagnostic rows; the export
// as a whole always produces a valid workbook.
package workbook

import (
	"fmt"
	"sort"

	"finance-export-service/internal/collector"
	"finance-export-service/internal/models"
	"finance-export-service/pkg/errors"
	"finance-export-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// Placeholder texts for degraded sections
const (
	rawPlaceholder  = "Data available in HTML format - see original report"
	rawValueNote    = "see web report"
	failedRowPrefix = "Section unavailable: "
)

// Engine lays report data out into workbooks
type Engine struct {
	config *StyleConfig
	logger logger.Logger
}

// NewEngine creates a layout engine. A nil config uses the default palette.
func NewEngine(config *StyleConfig) (*Engine, error) {
	if config == nil {
		config = DefaultStyleConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid style config: %w", err)
	}

	return &Engine{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("layout"),
	}, nil
}

// sheetSpec is one entry of a report type's sheet plan
type sheetSpec struct {
	Sheet   string
	Section string
	Build   func(e *Engine, w *sheetWriter, section *collector.Section) error
}

// sheetPlans declares, per report type, which sheets are emitted and from
// which sections, in order. The Summary sheet is always emitted first and
// is not part of the plan.
var sheetPlans = map[models.ReportType][]sheetSpec{
	models.ReportTypeDefault: {
		{Sheet: "Account Balances", Section: collector.SectionNameAccounts, Build: buildNeutralBucketSheet},
		{Sheet: "Income", Section: collector.SectionNameIncome, Build: buildIncomeSheet},
		{Sheet: "Expenses", Section: collector.SectionNameExpenses, Build: buildExpenseSheet},
		{Sheet: "Income vs Expenses", Section: collector.SectionNameBalance, Build: buildBalanceSheet},
		{Sheet: "Categories", Section: collector.SectionNameMonthly, Build: buildCategoriesSheet},
	},
	models.ReportTypeBudget: {
		{Sheet: "Budget Performance", Section: collector.SectionNameBudgets, Build: buildNeutralBucketSheet},
	},
	models.ReportTypeCategory: {
		{Sheet: "Category Analysis", Section: collector.SectionNameCategories, Build: buildNeutralBucketSheet},
	},
	models.ReportTypeTag: {
		{Sheet: "Tag Analysis", Section: collector.SectionNameTags, Build: buildNeutralBucketSheet},
	},
	models.ReportTypeDouble: {
		{Sheet: "Asset vs Expense", Section: collector.SectionNameDouble, Build: buildExpenseSheet},
	},
	models.ReportTypeAudit: {
		{Sheet: "Transaction Audit", Section: collector.SectionNameAudit, Build: buildAuditSheet},
	},
}

// Layout turns the report data tree into a workbook
func (e *Engine) Layout(data *collector.ReportData) (*excelize.File, error) {
	f := excelize.NewFile()

	styles, err := buildStyles(f, e.config)
	if err != nil {
		return nil, errors.WorkbookError(errors.CodeLayoutFailed, "style registration", err)
	}

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, errors.WorkbookError(errors.CodeLayoutFailed, "summary sheet", err)
	}

	summary := e.newWriter(f, "Summary", styles)
	if err := e.buildSummary(summary, data); err != nil {
		return nil, errors.WorkbookError(errors.CodeLayoutFailed, "summary sheet", err)
	}

	for _, spec := range sheetPlans[data.Type] {
		if _, err := f.NewSheet(spec.Sheet); err != nil {
			return nil, errors.WorkbookError(errors.CodeLayoutFailed, spec.Sheet, err)
		}

		w := e.newWriter(f, spec.Sheet, styles)
		section := data.Section(spec.Section)
		if section == nil {
			section = collector.StructuredSection(nil)
		}

		if err := spec.Build(e, w, section); err != nil {
			return nil, errors.WorkbookError(errors.CodeLayoutFailed, spec.Sheet, err).
				WithContext("section", spec.Section)
		}
	}

	e.logger.WithFields(logger.Fields{
		"report_type": data.Type.String(),
		"sheets":      len(sheetPlans[data.Type]) + 1,
	}).Debug("Workbook layout completed")

	return f, nil
}

// newWriter creates a sheet writer positioned at the first row
func (e *Engine) newWriter(f *excelize.File, sheet string, styles *styleSet) *sheetWriter {
	return &sheetWriter{
		file:   f,
		sheet:  sheet,
		styles: styles,
		config: e.config,
		row:    1,
	}
}

// buildSummary emits the branding header, period, generation timestamp and
// the per-currency income/expense/total blocks. The total of each block is
// a live formula referencing the two rows above it.
func (e *Engine) buildSummary(w *sheetWriter, data *collector.ReportData) error {
	if err := w.writeTitle(fmt.Sprintf("%s - %s Report", e.config.Branding, data.Type.Title())); err != nil {
		return err
	}
	if err := w.writeLabelValue("Period", data.Period.Label()); err != nil {
		return err
	}
	if err := w.writeLabelValue("Generated", data.GeneratedAt.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	w.blankRow()

	section := data.Section(collector.SectionNameBalance)
	switch {
	case section == nil || section.Kind == collector.SectionFailed:
		message := "balance data unavailable"
		if section != nil {
			message = section.Message
		}
		return w.writeData(Text(failedRowPrefix + message))
	case section.Kind == collector.SectionRaw:
		return w.writeData(Text(rawPlaceholder))
	case section.Kind != collector.SectionBalance:
		return fmt.Errorf("summary expects a balance section, got %s", section.Kind)
	}

	if err := w.writeHeader("", "Amount"); err != nil {
		return err
	}

	for _, total := range section.Totals {
		incomeRow := w.row
		if err := w.writeData(Text(fmt.Sprintf("Income (%s)", total.Currency.Code)),
			MoneyCell(total.In, FlavorIncome)); err != nil {
			return err
		}
		if err := w.writeData(Text(fmt.Sprintf("Expenses (%s)", total.Currency.Code)),
			MoneyCell(total.Out, FlavorExpense)); err != nil {
			return err
		}

		first, _ := excelize.CoordinatesToCellName(2, incomeRow)
		second, _ := excelize.CoordinatesToCellName(2, incomeRow+1)
		if err := w.writeTotal(Text(fmt.Sprintf("Total (%s)", total.Currency.Code)),
			FormulaCell(fmt.Sprintf("%s+%s", first, second), FlavorNone)); err != nil {
			return err
		}
		w.blankRow()
	}

	return w.setWidths(2)
}

// Bucket sheet builders per flavor

func buildNeutralBucketSheet(e *Engine, w *sheetWriter, section *collector.Section) error {
	return e.buildBucketSheet(w, section, FlavorNone)
}

func buildIncomeSheet(e *Engine, w *sheetWriter, section *collector.Section) error {
	return e.buildBucketSheet(w, section, FlavorIncome)
}

func buildExpenseSheet(e *Engine, w *sheetWriter, section *collector.Section) error {
	return e.buildBucketSheet(w, section, FlavorExpense)
}

// buildBucketSheet emits a flat label/currency/amount sheet from aggregate
// buckets. Rows are grouped by currency so each currency's SUM range stays
// contiguous; the totals rule appends one total row per currency holding
// two or more data rows.
func (e *Engine) buildBucketSheet(w *sheetWriter, section *collector.Section, flavor Flavor) error {
	if err := w.writeHeader("Name", "Currency", "Amount"); err != nil {
		return err
	}

	switch section.Kind {
	case collector.SectionFailed:
		if err := w.writeData(Text(failedRowPrefix + section.Message)); err != nil {
			return err
		}
		return w.setWidths(3)
	case collector.SectionRaw:
		if err := e.writeScrapedRows(w, section.Markup); err != nil {
			return err
		}
		return w.setWidths(3)
	case collector.SectionStructured:
		// Continue below
	default:
		return fmt.Errorf("bucket sheet expects a structured section, got %s", section.Kind)
	}

	type currencyGroup struct {
		code      string
		buckets   []*models.AggregateBucket
		firstRow  int
		lastRow   int
	}

	var groups []*currencyGroup
	index := make(map[string]*currencyGroup)
	for _, bucket := range section.Buckets {
		group, ok := index[bucket.Currency.ID]
		if !ok {
			group = &currencyGroup{code: bucket.Currency.Code}
			index[bucket.Currency.ID] = group
			groups = append(groups, group)
		}
		group.buckets = append(group.buckets, bucket)
	}

	needTotals := false
	for _, group := range groups {
		group.firstRow = w.row
		for _, bucket := range group.buckets {
			if err := w.writeData(
				Text(bucket.DimensionName),
				Text(bucket.Currency.Code),
				MoneyCell(bucket.Sum, flavor),
			); err != nil {
				return err
			}
		}
		group.lastRow = w.row - 1
		if len(group.buckets) >= 2 {
			needTotals = true
		}
	}

	if needTotals {
		w.blankRow()
		for _, group := range groups {
			if len(group.buckets) < 2 {
				continue
			}
			first, _ := excelize.CoordinatesToCellName(3, group.firstRow)
			last, _ := excelize.CoordinatesToCellName(3, group.lastRow)
			if err := w.writeTotal(
				Text(fmt.Sprintf("Total (%s)", group.code)),
				Text(group.code),
				FormulaCell(fmt.Sprintf("SUM(%s:%s)", first, last), flavor),
			); err != nil {
				return err
			}
		}
	}

	return w.setWidths(3)
}

// buildBalanceSheet emits the per-currency income/expense/balance summary.
// The Sum column is a live formula over the In and Out cells of its row.
func buildBalanceSheet(e *Engine, w *sheetWriter, section *collector.Section) error {
	if err := w.writeHeader("Currency", "In", "Out", "Sum"); err != nil {
		return err
	}

	switch section.Kind {
	case collector.SectionFailed:
		if err := w.writeData(Text(failedRowPrefix + section.Message)); err != nil {
			return err
		}
		return w.setWidths(4)
	case collector.SectionRaw:
		if err := w.writeData(Text(rawPlaceholder)); err != nil {
			return err
		}
		return w.setWidths(4)
	case collector.SectionBalance:
		// Continue below
	default:
		return fmt.Errorf("balance sheet expects a balance section, got %s", section.Kind)
	}

	for _, total := range section.Totals {
		inCell, _ := excelize.CoordinatesToCellName(2, w.row)
		outCell, _ := excelize.CoordinatesToCellName(3, w.row)
		if err := w.writeData(
			Text(total.Currency.Code),
			MoneyCell(total.In, FlavorIncome),
			MoneyCell(total.Out, FlavorExpense),
			FormulaCell(fmt.Sprintf("%s+%s", inCell, outCell), FlavorNone),
		); err != nil {
			return err
		}
	}

	return w.setWidths(4)
}

// buildCategoriesSheet emits two stacked month-columned tables (income by
// category, expenses by category). Each row closes with a row-wise SUM
// "Total" column; each table closes with a column-wise SUM totals row.
func buildCategoriesSheet(e *Engine, w *sheetWriter, section *collector.Section) error {
	columns := 2
	switch section.Kind {
	case collector.SectionFailed:
		if err := w.writeHeader("Category"); err != nil {
			return err
		}
		if err := w.writeData(Text(failedRowPrefix + section.Message)); err != nil {
			return err
		}
		return w.setWidths(columns)
	case collector.SectionRaw:
		if err := w.writeHeader("Category"); err != nil {
			return err
		}
		if err := w.writeData(Text(rawPlaceholder)); err != nil {
			return err
		}
		return w.setWidths(columns)
	case collector.SectionMonthly:
		// Continue below
	default:
		return fmt.Errorf("categories sheet expects a monthly section, got %s", section.Kind)
	}

	series := section.Series
	columns = len(series.Months) + 2

	writeTable := func(title string, flavor Flavor, value func(collector.MonthCell) Cell) error {
		if err := w.writeTitle(title); err != nil {
			return err
		}

		header := append([]string{"Category"}, series.Months...)
		header = append(header, "Total")
		if err := w.writeHeader(header...); err != nil {
			return err
		}

		firstDataRow := w.row
		for _, category := range series.Categories {
			cells := []Cell{Text(category)}
			for _, month := range series.Months {
				cells = append(cells, value(series.Cell(category, month)))
			}

			// Row-wise total over the month columns
			first, _ := excelize.CoordinatesToCellName(2, w.row)
			last, _ := excelize.CoordinatesToCellName(len(series.Months)+1, w.row)
			cells = append(cells, FormulaCell(fmt.Sprintf("SUM(%s:%s)", first, last), flavor))

			if err := w.writeData(cells...); err != nil {
				return err
			}
		}
		lastDataRow := w.row - 1

		// Column-wise totals over the data rows
		if len(series.Categories) > 0 {
			cells := []Cell{Text("Total")}
			for col := 2; col <= len(series.Months)+2; col++ {
				first, _ := excelize.CoordinatesToCellName(col, firstDataRow)
				last, _ := excelize.CoordinatesToCellName(col, lastDataRow)
				cells = append(cells, FormulaCell(fmt.Sprintf("SUM(%s:%s)", first, last), flavor))
			}
			if err := w.writeTotal(cells...); err != nil {
				return err
			}
		}

		w.blankRow()
		return nil
	}

	if err := writeTable("Income by Category", FlavorIncome, func(cell collector.MonthCell) Cell {
		return MoneyCell(cell.Income, FlavorIncome)
	}); err != nil {
		return err
	}
	if err := writeTable("Expenses by Category", FlavorExpense, func(cell collector.MonthCell) Cell {
		return MoneyCell(cell.Expense, FlavorExpense)
	}); err != nil {
		return err
	}

	return w.setWidths(columns)
}

// buildAuditSheet lists the raw journal entries. Rows are ordered by
// currency first so the per-currency totals rule keeps contiguous SUM
// ranges, then chronologically.
func buildAuditSheet(e *Engine, w *sheetWriter, section *collector.Section) error {
	if err := w.writeHeader("Date", "Description", "Account", "Category", "Budget", "Currency", "Amount"); err != nil {
		return err
	}

	switch section.Kind {
	case collector.SectionFailed:
		if err := w.writeData(Text(failedRowPrefix + section.Message)); err != nil {
			return err
		}
		return w.setWidths(7)
	case collector.SectionRaw:
		if err := w.writeData(Text(rawPlaceholder)); err != nil {
			return err
		}
		return w.setWidths(7)
	case collector.SectionAudit:
		// Continue below
	default:
		return fmt.Errorf("audit sheet expects an audit section, got %s", section.Kind)
	}

	entries := make([]*models.JournalEntry, len(section.Entries))
	copy(entries, section.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Currency.Code != entries[j].Currency.Code {
			return entries[i].Currency.Code < entries[j].Currency.Code
		}
		return entries[i].Date.Before(entries[j].Date)
	})

	type currencyRange struct {
		code     string
		firstRow int
		lastRow  int
		count    int
	}
	var ranges []*currencyRange
	var current *currencyRange

	for _, entry := range entries {
		if current == nil || current.code != entry.Currency.Code {
			current = &currencyRange{code: entry.Currency.Code, firstRow: w.row}
			ranges = append(ranges, current)
		}

		if err := w.writeData(
			Text(entry.Date.Format("2006-01-02")),
			Text(entry.Description),
			Text(entry.AccountName),
			Text(entry.CategoryName),
			Text(entry.BudgetName),
			Text(entry.Currency.Code),
			MoneyCell(entry.Amount, FlavorNone),
		); err != nil {
			return err
		}
		current.lastRow = w.row - 1
		current.count++
	}

	needTotals := false
	for _, r := range ranges {
		if r.count >= 2 {
			needTotals = true
		}
	}

	if needTotals {
		w.blankRow()
		for _, r := range ranges {
			if r.count < 2 {
				continue
			}
			first, _ := excelize.CoordinatesToCellName(7, r.firstRow)
			last, _ := excelize.CoordinatesToCellName(7, r.lastRow)
			if err := w.writeTotal(
				Text(fmt.Sprintf("Total (%s)", r.code)),
				Text(""), Text(""), Text(""), Text(""),
				Text(r.code),
				FormulaCell(fmt.Sprintf("SUM(%s:%s)", first, last), FlavorNone),
			); err != nil {
				return err
			}
		}
	}

	return w.setWidths(7)
}

// writeScrapedRows performs the weak best-effort markup scrape for
// accounts/income/expenses sheets: label cells are recovered from markup
// rows, numeric columns degrade to a pointer at the web report. A markup
// payload with no recoverable rows falls back to the placeholder row.
func (e *Engine) writeScrapedRows(w *sheetWriter, markup string) error {
	labels := scrapeRowLabels(markup)
	if len(labels) == 0 {
		e.logger.WithField("sheet", w.sheet).Debug("No rows recovered from markup; emitting placeholder")
		return w.writeData(Text(rawPlaceholder))
	}

	for _, label := range labels {
		if err := w.writeData(Text(label), Text(""), Text(rawValueNote)); err != nil {
			return err
		}
	}
	return nil
}
