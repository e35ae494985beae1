package cmd

import (
	"context"
	"fmt"
	"time"

	"finance-export-service/cmd/exporter/config"
	"finance-export-service/internal/collector"
	"finance-export-service/internal/export"
	"finance-export-service/internal/journal"
	"finance-export-service/internal/models"
	"finance-export-service/internal/workbook"
	"finance-export-service/pkg/errors"

	"github.com/spf13/cobra"
)

// Flags for the export command
var (
	journalFile     string
	reportTypeFlag  string
	accountIDs      []string
	budgetIDs       []string
	categoryIDs     []string
	tagIDs          []string
	expenseAccounts []string
	startDate       string
	endDate         string
	outputDir       string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate a spreadsheet report from a journal file",
	Long: `Export aggregates the journal entries of the selected accounts over a
date range and writes a styled spreadsheet workbook with live formulas and
embedded charts.

This command requires:
- A journal file (CSV format)
- At least one account id
- A start and end date

Examples:
  # Default report over the first quarter
  exporter export --journal-file journals.csv --accounts 1,2 \
    --start-date 2024-01-01 --end-date 2024-03-31

  # Budget performance report
  exporter export --journal-file journals.csv --report-type budget \
    --accounts 1 --budgets groceries,rent \
    --start-date 2024-01-01 --end-date 2024-12-31

  # Transaction audit into a custom directory
  exporter export --journal-file journals.csv --report-type audit \
    --accounts 1 --start-date 2024-01-01 --end-date 2024-01-31 \
    --output-dir /tmp/exports`,

	// The error handler prints its own diagnostics, so cobra stays quiet.
	SilenceUsage:  true,
	SilenceErrors: true,

	PreRunE: validateExportFlags,
	RunE:    runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	// Required flags
	exportCmd.Flags().StringVarP(&journalFile, "journal-file", "j", "", "path to journal CSV file (required)")
	exportCmd.Flags().StringSliceVarP(&accountIDs, "accounts", "a", []string{}, "comma-separated account ids (required)")
	exportCmd.Flags().StringVar(&startDate, "start-date", "", "report start date, YYYY-MM-DD (required)")
	exportCmd.Flags().StringVar(&endDate, "end-date", "", "report end date, YYYY-MM-DD (required)")

	// Report selection flags
	exportCmd.Flags().StringVarP(&reportTypeFlag, "report-type", "t", "default", "report type: default, audit, budget, category, tag, double")
	exportCmd.Flags().StringSliceVar(&budgetIDs, "budgets", []string{}, "comma-separated budget ids (budget report)")
	exportCmd.Flags().StringSliceVar(&categoryIDs, "categories", []string{}, "comma-separated category ids (category report)")
	exportCmd.Flags().StringSliceVar(&tagIDs, "tags", []string{}, "comma-separated tag ids (tag report)")
	exportCmd.Flags().StringSliceVar(&expenseAccounts, "expense-accounts", []string{}, "comma-separated expense account ids (double report)")

	// Output flags
	exportCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "exports", "directory for the generated workbook")

	exportCmd.MarkFlagRequired("journal-file")
	exportCmd.MarkFlagRequired("accounts")
	exportCmd.MarkFlagRequired("start-date")
	exportCmd.MarkFlagRequired("end-date")
}

// validateExportFlags checks flag values before any pipeline work
func validateExportFlags(cmd *cobra.Command, args []string) error {
	if _, err := models.ParseReportType(reportTypeFlag); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01-02", startDate); err != nil {
		return fmt.Errorf("invalid start date '%s': use YYYY-MM-DD", startDate)
	}
	if _, err := time.Parse("2006-01-02", endDate); err != nil {
		return fmt.Errorf("invalid end date '%s': use YYYY-MM-DD", endDate)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	result, path, err := executeExport(cmd.Context())
	if err != nil {
		exitCode := handler.HandleError(err)
		return &ExitError{Code: exitCode, Err: err}
	}

	fmt.Printf("Export written to %s (%d bytes)\n", path, len(result.Bytes))
	return nil
}

func executeExport(ctx context.Context) (*export.Result, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	reportType, err := models.ParseReportType(reportTypeFlag)
	if err != nil {
		return nil, "", errors.ValidationError(errors.CodeInvalidReportType, "report_type", reportTypeFlag)
	}

	start, _ := time.Parse("2006-01-02", startDate)
	end, _ := time.Parse("2006-01-02", endDate)

	request := &export.Request{
		ReportType: reportType,
		Period:     models.NewPeriod(start, end),
		Selectors: models.SelectorSet{
			Accounts:        models.NewSelector(accountIDs...),
			Budgets:         models.NewSelector(budgetIDs...),
			Categories:      models.NewSelector(categoryIDs...),
			Tags:            models.NewSelector(tagIDs...),
			ExpenseAccounts: models.NewSelector(expenseAccounts...),
		},
	}

	storeConfig := config.CreateJournalStoreConfig()
	styleConfig := config.CreateStyleConfig()
	if err := config.ValidateConfig(storeConfig, styleConfig); err != nil {
		return nil, "", err
	}

	store, err := journal.NewCSVStore(journalFile, storeConfig)
	if err != nil {
		return nil, "", err
	}

	coll, err := collector.NewCollector(store, nil)
	if err != nil {
		return nil, "", err
	}

	layout, err := workbook.NewEngine(styleConfig)
	if err != nil {
		return nil, "", err
	}

	service, err := export.NewService(coll, layout)
	if err != nil {
		return nil, "", err
	}

	result, err := service.GenerateExport(ctx, request)
	if err != nil {
		return nil, "", err
	}

	path, err := service.SaveTo(result, outputDir)
	if err != nil {
		return nil, "", err
	}

	return result, path, nil
}
