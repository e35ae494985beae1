package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var (
	usd = Currency{ID: "1", Code: "USD", Symbol: "$", Name: "US Dollar", DecimalPlaces: 2}
	eur = Currency{ID: "2", Code: "EUR", Symbol: "€", Name: "Euro", DecimalPlaces: 2}
)

func TestParseReportType(t *testing.T) {
	tests := []struct {
		input    string
		expected ReportType
		wantErr  bool
	}{
		{"default", ReportTypeDefault, false},
		{"audit", ReportTypeAudit, false},
		{"budget", ReportTypeBudget, false},
		{"category", ReportTypeCategory, false},
		{"tag", ReportTypeTag, false},
		{"double", ReportTypeDouble, false},
		{"  Default  ", ReportTypeDefault, false},
		{"AUDIT", ReportTypeAudit, false},
		{"invalid", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseReportType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for input '%s'", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestMoneyAdd(t *testing.T) {
	a := NewMoney(decimal.NewFromFloat(100.50), usd)
	b := NewMoney(decimal.NewFromFloat(49.50), usd)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !sum.Amount.Equal(decimal.NewFromFloat(150.00)) {
		t.Errorf("Expected 150.00, got %s", sum.Amount)
	}
	if sum.Currency.Code != "USD" {
		t.Errorf("Expected USD, got %s", sum.Currency.Code)
	}
}

func TestMoneyAddCurrencyMismatch(t *testing.T) {
	a := NewMoney(decimal.NewFromFloat(100), usd)
	b := NewMoney(decimal.NewFromFloat(100), eur)

	if _, err := a.Add(b); err == nil {
		t.Error("Expected error adding EUR to USD")
	}
}

func TestPeriodValidate(t *testing.T) {
	tests := []struct {
		name    string
		period  Period
		wantErr bool
	}{
		{
			name: "valid period",
			period: NewPeriod(
				time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)),
			wantErr: false,
		},
		{
			name: "single day",
			period: NewPeriod(
				time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			wantErr: false,
		},
		{
			name: "end before start",
			period: NewPeriod(
				time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			wantErr: true,
		},
		{
			name:    "zero dates",
			period:  Period{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.period.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestPeriodContains(t *testing.T) {
	period := NewPeriod(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	if !period.Contains(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected start bound to be inclusive")
	}
	if !period.Contains(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected end bound to be inclusive")
	}
	if period.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected date after the end to be excluded")
	}
}

func TestPeriodMonths(t *testing.T) {
	// Mid-month start and end: first and last sub-periods must be clipped
	period := NewPeriod(
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	months := period.Months()
	if len(months) != 3 {
		t.Fatalf("Expected 3 months, got %d", len(months))
	}

	if !months[0].Start.Equal(period.Start) {
		t.Errorf("Expected first month clipped to %s, got %s", period.Start, months[0].Start)
	}
	if !months[0].End.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected first month to end Jan 31, got %s", months[0].End)
	}
	if !months[1].Start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected second month to start Feb 1, got %s", months[1].Start)
	}
	if !months[2].End.Equal(period.End) {
		t.Errorf("Expected last month clipped to %s, got %s", period.End, months[2].End)
	}

	labels := []string{"Jan 2024", "Feb 2024", "Mar 2024"}
	for i, month := range months {
		if month.MonthLabel() != labels[i] {
			t.Errorf("Expected label %s, got %s", labels[i], month.MonthLabel())
		}
	}
}

func TestPeriodMonthsInvalidPeriod(t *testing.T) {
	period := NewPeriod(
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	if months := period.Months(); months != nil {
		t.Errorf("Expected nil months for invalid period, got %d", len(months))
	}
}

func TestNewSelector(t *testing.T) {
	s := NewSelector("3", "1", "3", " ", "", "2", "1")

	if s.Len() != 3 {
		t.Fatalf("Expected 3 ids after dedup, got %d", s.Len())
	}

	// First-seen order is preserved
	ids := s.IDs()
	expected := []string{"3", "1", "2"}
	for i, id := range expected {
		if ids[i] != id {
			t.Errorf("Expected id %s at position %d, got %s", id, i, ids[i])
		}
	}

	if !s.Contains("1") || !s.Contains("2") || !s.Contains("3") {
		t.Error("Expected all selected ids to be contained")
	}
	if s.Contains("4") {
		t.Error("Expected unselected id to be absent")
	}
}

func TestEmptySelector(t *testing.T) {
	s := NewSelector()
	if !s.IsEmpty() {
		t.Error("Expected empty selector")
	}
	if s.Contains("1") {
		t.Error("Expected empty selector to contain nothing")
	}
}

func TestJournalEntryDirection(t *testing.T) {
	withdrawal := &JournalEntry{Amount: decimal.NewFromFloat(-50.00)}
	deposit := &JournalEntry{Amount: decimal.NewFromFloat(1000.00)}
	zero := &JournalEntry{Amount: decimal.Zero}

	if !withdrawal.IsWithdrawal() || withdrawal.IsDeposit() {
		t.Error("Expected negative amount to be a withdrawal")
	}
	if !deposit.IsDeposit() || deposit.IsWithdrawal() {
		t.Error("Expected positive amount to be a deposit")
	}
	if zero.IsDeposit() || zero.IsWithdrawal() {
		t.Error("Expected zero amount to be neither")
	}
}
