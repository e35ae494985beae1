package config

import (
	"fmt"

	"finance-export-service/internal/journal"
	"finance-export-service/internal/workbook"

	"github.com/spf13/viper"
)

// CreateJournalStoreConfig creates the journal CSV store configuration,
// applying any overrides loaded through viper
func CreateJournalStoreConfig() *journal.StoreConfig {
	config := journal.DefaultStoreConfig()

	if v := viper.GetString("journal.tag_delimiter"); v != "" {
		config.TagDelimiter = v
	}
	if v := viper.GetString("journal.delimiter"); v != "" {
		config.Delimiter = rune(v[0])
	}
	if viper.IsSet("journal.has_header") {
		config.HasHeader = viper.GetBool("journal.has_header")
	}

	return config
}

// CreateStyleConfig creates the workbook styling configuration, applying
// any overrides loaded through viper
func CreateStyleConfig() *workbook.StyleConfig {
	config := workbook.DefaultStyleConfig()

	if v := viper.GetString("style.branding"); v != "" {
		config.Branding = v
	}
	if v := viper.GetString("style.header_fill"); v != "" {
		config.HeaderFill = v
	}
	if v := viper.GetString("style.total_fill"); v != "" {
		config.TotalFill = v
	}
	if v := viper.GetFloat64("style.label_column_width"); v > 0 {
		config.LabelColumnWidth = v
	}
	if v := viper.GetFloat64("style.money_column_width"); v > 0 {
		config.MoneyColumnWidth = v
	}

	return config
}

// ValidateConfig validates that all required configurations are valid
func ValidateConfig(storeConfig *journal.StoreConfig, styleConfig *workbook.StyleConfig) error {
	if err := storeConfig.Validate(); err != nil {
		return fmt.Errorf("invalid journal config: %w", err)
	}
	if err := styleConfig.Validate(); err != nil {
		return fmt.Errorf("invalid style config: %w", err)
	}
	return nil
}
