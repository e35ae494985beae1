package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReportType represents the kind of report being exported
type ReportType string

const (
	ReportTypeDefault  ReportType = "default"
	ReportTypeAudit    ReportType = "audit"
	ReportTypeBudget   ReportType = "budget"
	ReportTypeCategory ReportType = "category"
	ReportTypeTag      ReportType = "tag"
	ReportTypeDouble   ReportType = "double"
)

// String returns the string representation of ReportType
func (r ReportType) String() string {
	return string(r)
}

// IsValid checks if the report type is supported
func (r ReportType) IsValid() bool {
	switch r {
	case ReportTypeDefault, ReportTypeAudit, ReportTypeBudget,
		ReportTypeCategory, ReportTypeTag, ReportTypeDouble:
		return true
	default:
		return false
	}
}

// Title returns a human-readable name used in sheet headers and filenames
func (r ReportType) Title() string {
	switch r {
	case ReportTypeDefault:
		return "Default"
	case ReportTypeAudit:
		return "Audit"
	case ReportTypeBudget:
		return "Budget"
	case ReportTypeCategory:
		return "Category"
	case ReportTypeTag:
		return "Tag"
	case ReportTypeDouble:
		return "Double"
	default:
		return string(r)
	}
}

// ParseReportType parses and validates a report type from string
func ParseReportType(s string) (ReportType, error) {
	r := ReportType(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid report type '%s': must be one of default, audit, budget, category, tag, double", s)
	}
	return r, nil
}

// Currency describes the unit a Money amount is denominated in
type Currency struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	DecimalPlaces int    `json:"decimal_places"`
}

// Validate performs basic validation on the Currency
func (c Currency) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("currency id cannot be empty")
	}
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("currency code cannot be empty")
	}
	if c.DecimalPlaces < 0 {
		return fmt.Errorf("currency decimal places cannot be negative")
	}
	return nil
}

// Money is an exact decimal amount bound to a currency. Arithmetic between
// Money values of differing currencies is forbidden.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMoney creates a Money value
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

// ZeroMoney creates a zero amount in the given currency
func ZeroMoney(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add returns the sum of two Money values, rejecting currency mismatches
func (m Money) Add(other Money) (Money, error) {
	if m.Currency.ID != other.Currency.ID {
		return Money{}, fmt.Errorf("cannot add %s to %s: currency mismatch",
			other.Currency.Code, m.Currency.Code)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// IsNegative returns true if the amount is less than zero
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// String returns a display representation like "$ 1234.50"
func (m Money) String() string {
	symbol := m.Currency.Symbol
	if symbol == "" {
		symbol = m.Currency.Code
	}
	return fmt.Sprintf("%s %s", symbol, m.Amount.StringFixed(int32(m.Currency.DecimalPlaces)))
}

// Period is an inclusive start/end date pair
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod creates a Period from two dates
func NewPeriod(start, end time.Time) Period {
	return Period{Start: start, End: end}
}

// Validate checks that the period is non-degenerate (start <= end)
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("period start and end dates are required")
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("period end %s is before start %s",
			p.End.Format("2006-01-02"), p.Start.Format("2006-01-02"))
	}
	return nil
}

// Contains reports whether the given date falls inside the period (inclusive)
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Label returns a display label like "2024-01-01 to 2024-03-31"
func (p Period) Label() string {
	return fmt.Sprintf("%s to %s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}

// MonthLabel returns the display label for the month containing the period
// start, e.g. "Mar 2024"
func (p Period) MonthLabel() string {
	return p.Start.Format("Jan 2006")
}

// Months subdivides the period into calendar-month sub-periods. The first and
// last sub-periods are clipped to the original start and end bounds; month
// order is strictly chronological.
func (p Period) Months() []Period {
	if p.Validate() != nil {
		return nil
	}

	var months []Period
	cursor := time.Date(p.Start.Year(), p.Start.Month(), 1, 0, 0, 0, 0, p.Start.Location())

	for !cursor.After(p.End) {
		monthStart := cursor
		monthEnd := cursor.AddDate(0, 1, -1)

		if monthStart.Before(p.Start) {
			monthStart = p.Start
		}
		if monthEnd.After(p.End) {
			monthEnd = p.End
		}

		months = append(months, Period{Start: monthStart, End: monthEnd})
		cursor = cursor.AddDate(0, 1, 0)
	}

	return months
}

// Selector is an ordered, deduplicated collection of entity identifiers
// scoping which journals participate in aggregation
type Selector struct {
	ids   []string
	index map[string]bool
}

// NewSelector creates a Selector, preserving first-seen order and dropping
// duplicates and blank ids
func NewSelector(ids ...string) Selector {
	s := Selector{index: make(map[string]bool)}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || s.index[id] {
			continue
		}
		s.index[id] = true
		s.ids = append(s.ids, id)
	}
	return s
}

// IsEmpty returns true if no ids are selected
func (s Selector) IsEmpty() bool {
	return len(s.ids) == 0
}

// Len returns the number of selected ids
func (s Selector) Len() int {
	return len(s.ids)
}

// Contains reports whether the id is part of the selection
func (s Selector) Contains(id string) bool {
	return s.index[id]
}

// IDs returns the selected ids in insertion order
func (s Selector) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// SelectorSet groups the per-dimension selectors for one export request
type SelectorSet struct {
	Accounts        Selector
	Budgets         Selector
	Categories      Selector
	Tags            Selector
	ExpenseAccounts Selector
}

// JournalEntry is one leg of a ledger transaction. It is read by this
// subsystem and never mutated.
type JournalEntry struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	AccountID    string          `json:"account_id"`
	AccountName  string          `json:"account_name"`
	Currency     Currency        `json:"currency"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	BudgetID     string          `json:"budget_id,omitempty"`
	BudgetName   string          `json:"budget_name,omitempty"`
	CategoryID   string          `json:"category_id,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	TagIDs       []string        `json:"tag_ids,omitempty"`
	TagNames     []string        `json:"tag_names,omitempty"`
}

// IsWithdrawal returns true for negative (outgoing) amounts
func (j *JournalEntry) IsWithdrawal() bool {
	return j.Amount.IsNegative()
}

// IsDeposit returns true for positive (incoming) amounts
func (j *JournalEntry) IsDeposit() bool {
	return j.Amount.IsPositive()
}

// String returns a string representation of the JournalEntry
func (j *JournalEntry) String() string {
	return fmt.Sprintf("JournalEntry{ID: %s, Account: %s, Amount: %s %s, Date: %s}",
		j.ID, j.AccountID, j.Amount.String(), j.Currency.Code, j.Date.Format("2006-01-02"))
}

// BucketKey identifies one aggregate bucket: a dimension entity in a currency
type BucketKey struct {
	DimensionID string
	CurrencyID  string
}

// AggregateBucket holds a running currency-scoped sum for one dimension
// entity. Buckets are created on first contribution and are not mutated
// after the aggregation pass completes.
type AggregateBucket struct {
	DimensionID   string          `json:"dimension_id"`
	DimensionName string          `json:"dimension_name"`
	Currency      Currency        `json:"currency"`
	Sum           decimal.Decimal `json:"sum"`
	Count         int             `json:"count"`
}

// Key returns the bucket's map key
func (b *AggregateBucket) Key() BucketKey {
	return BucketKey{DimensionID: b.DimensionID, CurrencyID: b.Currency.ID}
}

// Money returns the bucket sum as a Money value
func (b *AggregateBucket) Money() Money {
	return Money{Amount: b.Sum, Currency: b.Currency}
}
