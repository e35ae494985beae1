// Package collector builds the unified report data tree for one export.
//
// The collector orchestrates the aggregator and the per-dimension reporters
// to produce named sections: account balance deltas, income and expense
// aggregates, the per-currency balance summary, chart series, and the
// dimension sections the requested report type asks for. Each section's
// collection is isolated; a failing section is replaced with an inline
// error payload and logged, so a partial report is always producible.
//
// All inputs for one collection run arrive in a single immutable request
// (report type, period, selectors); the collector holds no per-request
// state between runs and may serve concurrent exports.
package collector

import (
	"context"

	"finance-export-service/internal/aggregator"
	"finance-export-service/internal/journal"
	"finance-export-service/internal/models"
	"finance-export-service/pkg/errors"
	"finance-export-service/pkg/logger"
)

// Section names used in the report data tree
const (
	SectionNameAccounts   = "accounts"
	SectionNameIncome     = "income"
	SectionNameExpenses   = "expenses"
	SectionNameBalance    = "balance"
	SectionNameBudgets    = "budgets"
	SectionNameCategories = "categories"
	SectionNameTags       = "tags"
	SectionNameDouble     = "double"
	SectionNameAudit      = "audit"
	SectionNameMonthly    = "monthly_categories"

	ChartOperations    = "operations_chart"
	ChartNetWorth      = "net_worth_chart"
	ChartIncomeExpense = "income_expense_chart"
	ChartBudgets       = "budget_chart"
	ChartCategories    = "category_chart"
	ChartTags          = "tag_chart"
	ChartDouble        = "double_chart"
)

// Dimension names a conditional report section
type Dimension string

const (
	DimensionBudget   Dimension = "budget"
	DimensionCategory Dimension = "category"
	DimensionTag      Dimension = "tag"
	DimensionDouble   Dimension = "double"
)

// SectionPayload is what a dimension reporter returns: either structured
// buckets, or opaque rendered markup when the underlying source only
// exposes a view
type SectionPayload struct {
	Buckets []*models.AggregateBucket
	Markup  string
}

// DimensionReporter produces the conditional report sections. The default
// implementation aggregates from the journal store; legacy sources may
// return markup instead of structured data, which the layout engine
// degrades gracefully.
type DimensionReporter interface {
	Report(ctx context.Context, dim Dimension, period models.Period,
		selectors models.SelectorSet, entries []*models.JournalEntry) (*SectionPayload, error)
}

// Collector builds report data trees from a journal store and a dimension
// reporter
type Collector struct {
	store    journal.Store
	reporter DimensionReporter
	logger   logger.Logger
}

// NewCollector creates a Collector. A nil reporter defaults to the
// store-backed aggregating reporter.
func NewCollector(store journal.Store, reporter DimensionReporter) (*Collector, error) {
	if store == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "journal_store", nil)
	}

	if reporter == nil {
		reporter = NewAggregatingReporter(store)
	}

	return &Collector{
		store:    store,
		reporter: reporter,
		logger:   logger.GetGlobalLogger().WithComponent("collector"),
	}, nil
}

// Collect builds the report data tree for one export request. Only context
// cancellation returns an error; section failures degrade to inline error
// payloads.
func (c *Collector) Collect(ctx context.Context, reportType models.ReportType,
	period models.Period, selectors models.SelectorSet) (*ReportData, error) {

	log := c.logger.WithFields(logger.Fields{
		"report_type": reportType.String(),
		"period":      period.Label(),
	})
	log.Info("Collecting report data")

	data := NewReportData(reportType, period)

	entries, queryErr := c.store.QueryJournals(ctx, period, selectors.Accounts)
	if queryErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WithError(queryErr).Error("Journal query failed; base sections degrade to error payloads")
	}

	// Always-collected sections
	c.collectBase(data, entries, queryErr, log)
	c.collectCharts(data, reportType, period, entries, queryErr, log)

	// Conditional dimension sections
	switch reportType {
	case models.ReportTypeBudget:
		c.collectDimension(ctx, data, SectionNameBudgets, DimensionBudget, period, selectors, selectors.Budgets, entries, log)
		c.collectDistributionChart(data, ChartBudgets, SectionNameBudgets, "Budget Spending")
	case models.ReportTypeCategory:
		c.collectDimension(ctx, data, SectionNameCategories, DimensionCategory, period, selectors, selectors.Categories, entries, log)
		c.collectDistributionChart(data, ChartCategories, SectionNameCategories, "Category Spending")
	case models.ReportTypeTag:
		c.collectDimension(ctx, data, SectionNameTags, DimensionTag, period, selectors, selectors.Tags, entries, log)
		c.collectDistributionChart(data, ChartTags, SectionNameTags, "Tag Spending")
	case models.ReportTypeDouble:
		c.collectDimension(ctx, data, SectionNameDouble, DimensionDouble, period, selectors, selectors.ExpenseAccounts, entries, log)
		c.collectDistributionChart(data, ChartDouble, SectionNameDouble, "Asset vs Expense")
	case models.ReportTypeAudit:
		if queryErr != nil {
			data.SetSection(SectionNameAudit, FailedSection(queryErr))
		} else {
			data.SetSection(SectionNameAudit, AuditSection(entries))
		}
	case models.ReportTypeDefault:
		// The Categories sheet trend tables need the month-bucketed series
		if queryErr != nil {
			data.SetSection(SectionNameMonthly, FailedSection(queryErr))
		} else {
			data.SetSection(SectionNameMonthly, MonthlySection(BucketByMonth(period, entries)))
		}
	}

	log.WithField("sections", len(data.SectionNames())).Info("Report data collected")
	return data, ctx.Err()
}

// collectBase fills the sections every report type carries
func (c *Collector) collectBase(data *ReportData, entries []*models.JournalEntry, queryErr error, log logger.Logger) {
	if queryErr != nil {
		for _, name := range []string{SectionNameAccounts, SectionNameIncome, SectionNameExpenses, SectionNameBalance} {
			data.SetSection(name, FailedSection(queryErr))
			c.logSectionFailure(log, name, queryErr)
		}
		return
	}

	byAccount := aggregator.Aggregate(entries, aggregator.ByAccount)
	data.SetSection(SectionNameAccounts, StructuredSection(byAccount.Buckets()))

	income := aggregator.Aggregate(
		aggregator.Filter(entries, aggregator.Deposits), aggregator.ByCategory)
	data.SetSection(SectionNameIncome, StructuredSection(income.Buckets()))

	expenses := aggregator.Aggregate(
		aggregator.Filter(entries, aggregator.Withdrawals), aggregator.ByCategory)
	data.SetSection(SectionNameExpenses, StructuredSection(expenses.Buckets()))

	// One row per currency: in, out, and sum = in + out, all from the same
	// aggregation pass so the identity holds exactly
	data.SetSection(SectionNameBalance, BalanceSection(byAccount.CurrencyTotals()))
}

// collectCharts fills the base chart sections (time-bucketed operations and
// net worth) plus the default report's monthly income-vs-expense bars
func (c *Collector) collectCharts(data *ReportData, reportType models.ReportType,
	period models.Period, entries []*models.JournalEntry, queryErr error, log logger.Logger) {

	if queryErr != nil {
		data.SetSection(ChartOperations, FailedSection(queryErr))
		data.SetSection(ChartNetWorth, FailedSection(queryErr))
		return
	}

	series := BucketByMonth(period, entries)

	operations := NewChartData("Operations", series.Months,
		Dataset{Label: "Income"}, Dataset{Label: "Expenses"})
	for _, month := range series.Months {
		total := series.MonthTotal(month)
		operations.Datasets[0].Values = append(operations.Datasets[0].Values, total.Income)
		operations.Datasets[1].Values = append(operations.Datasets[1].Values, total.Expense.Abs())
	}
	data.SetSection(ChartOperations, ChartSection(operations))

	data.SetSection(ChartNetWorth, ChartSection(c.netWorthChart(period, entries)))

	if reportType == models.ReportTypeDefault {
		bars := NewChartData("Income vs Expenses by Month", operations.Labels, operations.Datasets...)
		data.SetSection(ChartIncomeExpense, ChartSection(bars))
	}
}

// netWorthChart builds the cumulative month-end balance series, one dataset
// per currency
func (c *Collector) netWorthChart(period models.Period, entries []*models.JournalEntry) *ChartData {
	months := period.Months()
	labels := make([]string, 0, len(months))
	for _, month := range months {
		labels = append(labels, month.MonthLabel())
	}

	chart := NewChartData("Net Worth", labels)

	running := make(map[string]*Dataset)
	var order []string

	for _, month := range months {
		monthEntries := aggregator.Filter(entries, func(e *models.JournalEntry) bool {
			return month.Contains(e.Date)
		})
		byAccount := aggregator.Aggregate(monthEntries, aggregator.ByAccount)

		for _, total := range byAccount.CurrencyTotals() {
			if _, ok := running[total.Currency.ID]; !ok {
				running[total.Currency.ID] = &Dataset{Label: total.Currency.Code}
				order = append(order, total.Currency.ID)
			}
		}
	}

	for _, month := range months {
		monthEntries := aggregator.Filter(entries, func(e *models.JournalEntry) bool {
			return month.Contains(e.Date)
		})
		byAccount := aggregator.Aggregate(monthEntries, aggregator.ByAccount)

		for _, id := range order {
			ds := running[id]
			previous := decimalOrZero(ds.Values)
			delta := decimalZero()
			if total := byAccount.CurrencyTotal(id); total != nil {
				delta = total.Sum
			}
			ds.Values = append(ds.Values, previous.Add(delta))
		}
	}

	for _, id := range order {
		chart.Datasets = append(chart.Datasets, *running[id])
	}
	return chart
}

// collectDimension runs one conditional section through the reporter. An
// empty selector skips the work entirely and records an empty structured
// section so the sheet downstream still renders with its header.
func (c *Collector) collectDimension(ctx context.Context, data *ReportData, name string,
	dim Dimension, period models.Period, selectors models.SelectorSet,
	selector models.Selector, entries []*models.JournalEntry, log logger.Logger) {

	if selector.IsEmpty() {
		log.WithField("section", name).Debug("Selector empty; skipping section collection")
		data.SetSection(name, StructuredSection(nil))
		return
	}

	payload, err := c.reporter.Report(ctx, dim, period, selectors, entries)
	if err != nil {
		data.SetSection(name, FailedSection(err))
		c.logSectionFailure(log, name, err)
		return
	}

	if payload.Markup != "" {
		data.SetSection(name, RawSection(payload.Markup))
		return
	}
	data.SetSection(name, StructuredSection(payload.Buckets))
}

// collectDistributionChart derives a spending-distribution key/value chart
// from an already-collected structured dimension section
func (c *Collector) collectDistributionChart(data *ReportData, chartName, sectionName, title string) {
	section := data.Section(sectionName)
	if section == nil || section.Kind != SectionStructured {
		return
	}

	chart := NewKeyValueChart(title)
	for _, bucket := range section.Buckets {
		if bucket.Sum.IsNegative() {
			chart.Set(bucket.DimensionName, bucket.Sum.Abs())
		}
	}
	data.SetSection(chartName, ChartSection(chart))
}

func (c *Collector) logSectionFailure(log logger.Logger, section string, err error) {
	log.WithError(err).WithField("section", section).
		Warn("Section collection failed; continuing with error payload")
}
