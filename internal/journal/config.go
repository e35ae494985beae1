package journal

import (
	"fmt"
	"strings"
)

// StoreConfig describes the shape of a journal CSV file: which columns hold
// which fields, plus aliases for the header names different exporters use.
type StoreConfig struct {
	IDColumn          string            `json:"id_column"`
	DescriptionColumn string            `json:"description_column"`
	AccountIDColumn   string            `json:"account_id_column"`
	AccountNameColumn string            `json:"account_name_column"`
	CurrencyColumn    string            `json:"currency_column"`
	AmountColumn      string            `json:"amount_column"`
	DateColumn        string            `json:"date_column"`
	BudgetColumn      string            `json:"budget_column"`
	CategoryColumn    string            `json:"category_column"`
	TagsColumn        string            `json:"tags_column"`
	TagDelimiter      string            `json:"tag_delimiter"`
	HasHeader         bool              `json:"has_header"`
	Delimiter         rune              `json:"delimiter"`
	ColumnAliases     map[string]string `json:"column_aliases,omitempty"`
}

// DefaultStoreConfig returns a configuration for the standard journal export
// format
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		IDColumn:          "journal_id",
		DescriptionColumn: "description",
		AccountIDColumn:   "account_id",
		AccountNameColumn: "account_name",
		CurrencyColumn:    "currency_code",
		AmountColumn:      "amount",
		DateColumn:        "date",
		BudgetColumn:      "budget",
		CategoryColumn:    "category",
		TagsColumn:        "tags",
		TagDelimiter:      "|",
		HasHeader:         true,
		Delimiter:         ',',
		ColumnAliases: map[string]string{
			// Common aliases seen in ledger exports
			"id":             "journal_id",
			"transaction_id": "journal_id",
			"trx_id":         "journal_id",
			"memo":           "description",
			"narration":      "description",
			"account":        "account_id",
			"source_account": "account_id",
			"currency":       "currency_code",
			"ccy":            "currency_code",
			"amt":            "amount",
			"value":          "amount",
			"transaction_date": "date",
			"posted_date":      "date",
			"booking_date":     "date",
			"budget_name":      "budget",
			"category_name":    "category",
			"labels":           "tags",
		},
	}
}

// Validate checks the configuration for required values
func (c *StoreConfig) Validate() error {
	required := map[string]string{
		"id_column":         c.IDColumn,
		"account_id_column": c.AccountIDColumn,
		"currency_column":   c.CurrencyColumn,
		"amount_column":     c.AmountColumn,
		"date_column":       c.DateColumn,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
	}

	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be empty")
	}
	if c.TagsColumn != "" && c.TagDelimiter == "" {
		return fmt.Errorf("tag_delimiter is required when a tags column is configured")
	}

	return nil
}

// resolveColumn maps a raw header name to its canonical column name
func (c *StoreConfig) resolveColumn(header string) string {
	normalized := strings.ToLower(strings.TrimSpace(header))
	if canonical, ok := c.ColumnAliases[normalized]; ok {
		return canonical
	}
	return normalized
}
