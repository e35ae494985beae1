package collector

import (
	"context"
	"fmt"

	"finance-export-service/internal/aggregator"
	"finance-export-service/internal/journal"
	"finance-export-service/internal/models"

	"github.com/shopspring/decimal"
)

// AggregatingReporter is the default DimensionReporter: it builds structured
// section payloads by aggregating journal entries per dimension. Legacy
// view-only sources can substitute their own reporter and return markup.
type AggregatingReporter struct {
	store journal.Store
}

// NewAggregatingReporter creates a store-backed dimension reporter
func NewAggregatingReporter(store journal.Store) *AggregatingReporter {
	return &AggregatingReporter{store: store}
}

// Report aggregates the section for one dimension. The incoming entries are
// already scoped to the request period and account selection; the dimension
// selector narrows them further.
func (r *AggregatingReporter) Report(ctx context.Context, dim Dimension,
	period models.Period, selectors models.SelectorSet,
	entries []*models.JournalEntry) (*SectionPayload, error) {

	switch dim {
	case DimensionBudget:
		scoped := aggregator.Filter(entries, func(e *models.JournalEntry) bool {
			return selectors.Budgets.Contains(e.BudgetID)
		})
		result := aggregator.Aggregate(scoped, aggregator.ByBudget)
		return &SectionPayload{Buckets: result.Buckets()}, nil

	case DimensionCategory:
		scoped := aggregator.Filter(entries, func(e *models.JournalEntry) bool {
			return selectors.Categories.Contains(e.CategoryID)
		})
		result := aggregator.Aggregate(scoped, aggregator.ByCategory)
		return &SectionPayload{Buckets: result.Buckets()}, nil

	case DimensionTag:
		scoped := aggregator.Filter(entries, func(e *models.JournalEntry) bool {
			for _, tag := range e.TagIDs {
				if selectors.Tags.Contains(tag) {
					return true
				}
			}
			return false
		})
		// An entry contributes to each of its selected tags only
		result := aggregator.Aggregate(scoped, func(e *models.JournalEntry) []aggregator.GroupKey {
			var keys []aggregator.GroupKey
			for _, key := range aggregator.ByTag(e) {
				if selectors.Tags.Contains(key.ID) {
					keys = append(keys, key)
				}
			}
			return keys
		})
		return &SectionPayload{Buckets: result.Buckets()}, nil

	case DimensionDouble:
		// Asset vs expense: a second query scoped to the expense accounts,
		// aggregated per account for the comparison sheet
		expenseEntries, err := r.store.QueryJournals(ctx, period, selectors.ExpenseAccounts)
		if err != nil {
			return nil, err
		}
		result := aggregator.Aggregate(expenseEntries, aggregator.ByAccount)
		return &SectionPayload{Buckets: result.Buckets()}, nil

	default:
		return nil, fmt.Errorf("unknown report dimension '%s'", dim)
	}
}

func decimalZero() decimal.Decimal {
	return decimal.Zero
}

func decimalOrZero(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return values[len(values)-1]
}
