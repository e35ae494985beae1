package journal

import (
	"fmt"
	"strings"
	"time"

	"finance-export-service/internal/models"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses an exact decimal amount from a string, tolerating
// currency symbols and thousand separators
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// ParseDate attempts to parse a date from string using the formats commonly
// found in ledger exports. Time components are dropped so period bounds
// compare on whole days.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	formats := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"01/02/2006",
		"02-01-2006",
		"2006/01/02",
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// knownCurrencies holds display metadata for the currencies that appear in
// ledger exports. Codes outside this table still work; they just render
// with the code as the symbol and two decimal places.
var knownCurrencies = map[string]models.Currency{
	"USD": {ID: "USD", Code: "USD", Symbol: "$", Name: "US Dollar", DecimalPlaces: 2},
	"EUR": {ID: "EUR", Code: "EUR", Symbol: "€", Name: "Euro", DecimalPlaces: 2},
	"GBP": {ID: "GBP", Code: "GBP", Symbol: "£", Name: "British Pound", DecimalPlaces: 2},
	"CHF": {ID: "CHF", Code: "CHF", Symbol: "CHF", Name: "Swiss Franc", DecimalPlaces: 2},
	"JPY": {ID: "JPY", Code: "JPY", Symbol: "¥", Name: "Japanese Yen", DecimalPlaces: 0},
	"IDR": {ID: "IDR", Code: "IDR", Symbol: "Rp", Name: "Indonesian Rupiah", DecimalPlaces: 2},
}

// LookupCurrency resolves a currency code to its display metadata
func LookupCurrency(code string) models.Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	if cur, ok := knownCurrencies[code]; ok {
		return cur
	}
	return models.Currency{ID: code, Code: code, Symbol: code, Name: code, DecimalPlaces: 2}
}
