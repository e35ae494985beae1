// Package aggregator sums journal amounts into per-currency, per-dimension
// totals using exact decimal arithmetic.
//
// The aggregator is the leaf of the report pipeline: it receives journal
// entries already filtered by period and dimension selector, resolves each
// entry's grouping key (account, budget, category, or tag), and accumulates
// signed amounts into buckets keyed by (dimension id, currency id). Amounts
// in different currencies never mix; a per-currency cross-dimension total is
// produced as a side output for the totals rows downstream.
//
// Entries with no resolvable dimension map to a sentinel "(none)" bucket.
// Zero-amount entries still create their bucket so later formula ranges
// include them. Malformed entries are an upstream precondition violation and
// are not handled here.
package aggregator

import (
	"sort"

	"finance-export-service/internal/models"

	"github.com/shopspring/decimal"
)

// NoneDimensionID identifies the sentinel bucket for entries with no
// resolvable dimension (e.g. an uncategorized withdrawal)
const NoneDimensionID = "0"

// NoneDimensionName is the display label of the sentinel bucket
const NoneDimensionName = "(none)"

// GroupFunc resolves the grouping keys for one journal entry. Most
// dimensions yield exactly one key; tags yield one key per tag.
type GroupFunc func(entry *models.JournalEntry) []GroupKey

// GroupKey is one resolved dimension identity for an entry
type GroupKey struct {
	ID   string
	Name string
}

// ByAccount groups entries by their source account
func ByAccount(entry *models.JournalEntry) []GroupKey {
	return []GroupKey{{ID: entry.AccountID, Name: entry.AccountName}}
}

// ByBudget groups entries by budget, falling back to the "(none)" sentinel
func ByBudget(entry *models.JournalEntry) []GroupKey {
	if entry.BudgetID == "" {
		return []GroupKey{{ID: NoneDimensionID, Name: NoneDimensionName}}
	}
	return []GroupKey{{ID: entry.BudgetID, Name: entry.BudgetName}}
}

// ByCategory groups entries by category, falling back to the "(none)" sentinel
func ByCategory(entry *models.JournalEntry) []GroupKey {
	if entry.CategoryID == "" {
		return []GroupKey{{ID: NoneDimensionID, Name: NoneDimensionName}}
	}
	return []GroupKey{{ID: entry.CategoryID, Name: entry.CategoryName}}
}

// ByTag groups entries by tag; an entry with several tags contributes its
// full amount to each tag's bucket
func ByTag(entry *models.JournalEntry) []GroupKey {
	if len(entry.TagIDs) == 0 {
		return []GroupKey{{ID: NoneDimensionID, Name: NoneDimensionName}}
	}

	keys := make([]GroupKey, 0, len(entry.TagIDs))
	for i, id := range entry.TagIDs {
		name := id
		if i < len(entry.TagNames) {
			name = entry.TagNames[i]
		}
		keys = append(keys, GroupKey{ID: id, Name: name})
	}
	return keys
}

// CurrencyTotal is the cross-dimension sum for one currency. In accumulates
// positive amounts, Out negative ones, so Sum = In + Out holds exactly.
type CurrencyTotal struct {
	Currency models.Currency `json:"currency"`
	In       decimal.Decimal `json:"in"`
	Out      decimal.Decimal `json:"out"`
	Sum      decimal.Decimal `json:"sum"`
}

// Result holds the outcome of one aggregation pass. Buckets preserve
// first-contribution order for deterministic downstream layout.
type Result struct {
	buckets     map[models.BucketKey]*models.AggregateBucket
	bucketOrder []models.BucketKey
	totals      map[string]*CurrencyTotal
}

// Aggregate sums the given journal entries into buckets keyed by
// (dimension id, currency id), using groupFn to resolve each entry's
// dimension. Input ordering does not affect the resulting sums.
func Aggregate(entries []*models.JournalEntry, groupFn GroupFunc) *Result {
	result := &Result{
		buckets: make(map[models.BucketKey]*models.AggregateBucket),
		totals:  make(map[string]*CurrencyTotal),
	}

	for _, entry := range entries {
		for _, key := range groupFn(entry) {
			result.add(key, entry)
		}
		result.addTotal(entry)
	}

	return result
}

func (r *Result) add(key GroupKey, entry *models.JournalEntry) {
	bucketKey := models.BucketKey{DimensionID: key.ID, CurrencyID: entry.Currency.ID}

	bucket, ok := r.buckets[bucketKey]
	if !ok {
		bucket = &models.AggregateBucket{
			DimensionID:   key.ID,
			DimensionName: key.Name,
			Currency:      entry.Currency,
			Sum:           decimal.Zero,
		}
		r.buckets[bucketKey] = bucket
		r.bucketOrder = append(r.bucketOrder, bucketKey)
	}

	bucket.Sum = bucket.Sum.Add(entry.Amount)
	bucket.Count++
}

func (r *Result) addTotal(entry *models.JournalEntry) {
	total, ok := r.totals[entry.Currency.ID]
	if !ok {
		total = &CurrencyTotal{
			Currency: entry.Currency,
			In:       decimal.Zero,
			Out:      decimal.Zero,
			Sum:      decimal.Zero,
		}
		r.totals[entry.Currency.ID] = total
	}

	if entry.Amount.IsPositive() {
		total.In = total.In.Add(entry.Amount)
	} else {
		total.Out = total.Out.Add(entry.Amount)
	}
	total.Sum = total.Sum.Add(entry.Amount)
}

// Bucket returns the bucket for the given dimension and currency, or nil
func (r *Result) Bucket(dimensionID, currencyID string) *models.AggregateBucket {
	return r.buckets[models.BucketKey{DimensionID: dimensionID, CurrencyID: currencyID}]
}

// Buckets returns all buckets in first-contribution order
func (r *Result) Buckets() []*models.AggregateBucket {
	out := make([]*models.AggregateBucket, 0, len(r.bucketOrder))
	for _, key := range r.bucketOrder {
		out = append(out, r.buckets[key])
	}
	return out
}

// CurrencyTotal returns the cross-dimension total for a currency, or nil
func (r *Result) CurrencyTotal(currencyID string) *CurrencyTotal {
	return r.totals[currencyID]
}

// CurrencyTotals returns all per-currency totals ordered by currency code
func (r *Result) CurrencyTotals() []*CurrencyTotal {
	out := make([]*CurrencyTotal, 0, len(r.totals))
	for _, total := range r.totals {
		out = append(out, total)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Currency.Code < out[j].Currency.Code
	})
	return out
}

// IsEmpty reports whether the aggregation produced no buckets
func (r *Result) IsEmpty() bool {
	return len(r.buckets) == 0
}

// Filter returns a slice of entries whose amount sign matches the predicate.
// Used to split one journal query into income and expense passes without
// re-querying the store.
func Filter(entries []*models.JournalEntry, keep func(*models.JournalEntry) bool) []*models.JournalEntry {
	var out []*models.JournalEntry
	for _, entry := range entries {
		if keep(entry) {
			out = append(out, entry)
		}
	}
	return out
}

// Deposits keeps entries with positive amounts
func Deposits(entry *models.JournalEntry) bool {
	return entry.IsDeposit()
}

// Withdrawals keeps entries with negative amounts
func Withdrawals(entry *models.JournalEntry) bool {
	return entry.IsWithdrawal()
}
