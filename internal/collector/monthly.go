package collector

import (
	"finance-export-service/internal/aggregator"
	"finance-export-service/internal/models"

	"github.com/shopspring/decimal"
)

// MonthCell holds one category's income and expense for one month. Income
// is clamped to >= 0 and expense to <= 0, matching how category flows are
// split upstream.
type MonthCell struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// MonthlySeries is a rectangular month-by-category grid: every category has
// a cell for every month, zero-filled where no journal contributed. Months
// are strictly chronological; categories keep first-seen order across the
// month walk.
type MonthlySeries struct {
	Months     []string
	Categories []string
	cells      map[string]map[string]MonthCell
}

// Cell returns the cell for a category and month label. Unknown pairs
// return a zero cell.
func (s *MonthlySeries) Cell(category, month string) MonthCell {
	if row, ok := s.cells[category]; ok {
		if cell, ok := row[month]; ok {
			return cell
		}
	}
	return MonthCell{Income: decimal.Zero, Expense: decimal.Zero}
}

// CategoryTotal returns the summed income and expense for one category
// across all months
func (s *MonthlySeries) CategoryTotal(category string) MonthCell {
	total := MonthCell{Income: decimal.Zero, Expense: decimal.Zero}
	for _, month := range s.Months {
		cell := s.Cell(category, month)
		total.Income = total.Income.Add(cell.Income)
		total.Expense = total.Expense.Add(cell.Expense)
	}
	return total
}

// MonthTotal returns the summed income and expense for one month across
// all categories
func (s *MonthlySeries) MonthTotal(month string) MonthCell {
	total := MonthCell{Income: decimal.Zero, Expense: decimal.Zero}
	for _, category := range s.Categories {
		cell := s.Cell(category, month)
		total.Income = total.Income.Add(cell.Income)
		total.Expense = total.Expense.Add(cell.Expense)
	}
	return total
}

// BucketByMonth splits the period into calendar-month buckets and replays
// category aggregation per bucket, producing the month-indexed series the
// Categories sheet and trend charts are built from. The first and last
// buckets are clipped to the period bounds.
func BucketByMonth(period models.Period, entries []*models.JournalEntry) *MonthlySeries {
	series := &MonthlySeries{
		cells: make(map[string]map[string]MonthCell),
	}

	seen := make(map[string]bool)

	for _, month := range period.Months() {
		label := month.MonthLabel()
		series.Months = append(series.Months, label)

		var monthEntries []*models.JournalEntry
		for _, entry := range entries {
			if month.Contains(entry.Date) {
				monthEntries = append(monthEntries, entry)
			}
		}

		earned := aggregator.Aggregate(
			aggregator.Filter(monthEntries, aggregator.Deposits), aggregator.ByCategory)
		spent := aggregator.Aggregate(
			aggregator.Filter(monthEntries, aggregator.Withdrawals), aggregator.ByCategory)

		for _, bucket := range earned.Buckets() {
			series.record(seen, bucket.DimensionName, label, func(cell *MonthCell) {
				// earned may carry mixed signs upstream; clamp to income
				if bucket.Sum.IsPositive() {
					cell.Income = cell.Income.Add(bucket.Sum)
				}
			})
		}
		for _, bucket := range spent.Buckets() {
			series.record(seen, bucket.DimensionName, label, func(cell *MonthCell) {
				if bucket.Sum.IsNegative() {
					cell.Expense = cell.Expense.Add(bucket.Sum)
				}
			})
		}
	}

	series.fill()
	return series
}

func (s *MonthlySeries) record(seen map[string]bool, category, month string, update func(*MonthCell)) {
	if !seen[category] {
		seen[category] = true
		s.Categories = append(s.Categories, category)
	}

	row, ok := s.cells[category]
	if !ok {
		row = make(map[string]MonthCell)
		s.cells[category] = row
	}

	cell, ok := row[month]
	if !ok {
		cell = MonthCell{Income: decimal.Zero, Expense: decimal.Zero}
	}
	update(&cell)
	row[month] = cell
}

// fill materializes zero cells so the grid is rectangular: every category
// present in any month gets an entry for every month
func (s *MonthlySeries) fill() {
	for _, category := range s.Categories {
		row, ok := s.cells[category]
		if !ok {
			row = make(map[string]MonthCell)
			s.cells[category] = row
		}
		for _, month := range s.Months {
			if _, ok := row[month]; !ok {
				row[month] = MonthCell{Income: decimal.Zero, Expense: decimal.Zero}
			}
		}
	}
}
