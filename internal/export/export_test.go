package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finance-export-service/internal/collector"
	"finance-export-service/internal/models"
	"finance-export-service/internal/workbook"

	"github.com/shopspring/decimal"
)

// stubStore serves a fixed entry set filtered by account selection
type stubStore struct {
	entries []*models.JournalEntry
}

func (s *stubStore) QueryJournals(ctx context.Context, period models.Period, accounts models.Selector) ([]*models.JournalEntry, error) {
	var out []*models.JournalEntry
	for _, entry := range s.entries {
		if period.Contains(entry.Date) && accounts.Contains(entry.AccountID) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func testService(t *testing.T) *Service {
	t.Helper()

	usd := models.Currency{ID: "USD", Code: "USD", Symbol: "$", DecimalPlaces: 2}
	store := &stubStore{entries: []*models.JournalEntry{
		{
			ID: "J1", AccountID: "1", AccountName: "Checking", Currency: usd,
			Amount: decimal.NewFromFloat(1000.00),
			Date:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			CategoryID: "Salary", CategoryName: "Salary",
		},
		{
			ID: "J2", AccountID: "1", AccountName: "Checking", Currency: usd,
			Amount: decimal.NewFromFloat(-75.00),
			Date:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			CategoryID: "Groceries", CategoryName: "Groceries",
		},
	}}

	c, err := collector.NewCollector(store, nil)
	if err != nil {
		t.Fatalf("Failed to create collector: %v", err)
	}
	layout, err := workbook.NewEngine(nil)
	if err != nil {
		t.Fatalf("Failed to create layout engine: %v", err)
	}
	service, err := NewService(c, layout)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	return service
}

func validRequest() *Request {
	return &Request{
		ReportType: models.ReportTypeDefault,
		Period: models.NewPeriod(
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)),
		Selectors: models.SelectorSet{Accounts: models.NewSelector("1")},
	}
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr bool
	}{
		{"valid", func(r *Request) {}, false},
		{"invalid report type", func(r *Request) { r.ReportType = "bogus" }, true},
		{"end before start", func(r *Request) {
			r.Period.Start, r.Period.End = r.Period.End, r.Period.Start
		}, true},
		{"no accounts", func(r *Request) { r.Selectors.Accounts = models.NewSelector() }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := validRequest()
			tt.mutate(request)
			err := request.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestGenerateExport(t *testing.T) {
	service := testService(t)

	result, err := service.GenerateExport(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("GenerateExport failed: %v", err)
	}

	if len(result.Bytes) == 0 {
		t.Fatal("Expected non-empty workbook bytes")
	}
	// xlsx files are zip archives
	if !bytes.HasPrefix(result.Bytes, []byte("PK")) {
		t.Error("Expected zip container signature")
	}
	if result.ContentType != ContentType {
		t.Errorf("Expected spreadsheet MIME type, got %s", result.ContentType)
	}

	if !strings.HasPrefix(result.Filename, "FinanceReport_Default_2024-01-01_to_2024-03-31_") {
		t.Errorf("Unexpected filename: %s", result.Filename)
	}
	if !strings.HasSuffix(result.Filename, ".xlsx") {
		t.Errorf("Expected .xlsx suffix: %s", result.Filename)
	}
}

func TestGenerateExportFilenameUnique(t *testing.T) {
	service := testService(t)

	first, err := service.GenerateExport(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("First export failed: %v", err)
	}
	second, err := service.GenerateExport(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Second export failed: %v", err)
	}

	if first.Filename == second.Filename {
		t.Errorf("Expected unique filenames, both were %s", first.Filename)
	}
}

func TestGenerateExportRejectsInvalidRequest(t *testing.T) {
	service := testService(t)
	dir := t.TempDir()

	request := validRequest()
	request.Period = models.NewPeriod(
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	if _, err := service.GenerateExport(context.Background(), request); err == nil {
		t.Fatal("Expected validation rejection")
	}

	// Rejection happens before any pipeline work; nothing was written
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no files created, found %d", len(entries))
	}
}

func TestGenerateExportAllReportTypes(t *testing.T) {
	service := testService(t)

	for _, reportType := range []models.ReportType{
		models.ReportTypeDefault, models.ReportTypeAudit, models.ReportTypeBudget,
		models.ReportTypeCategory, models.ReportTypeTag, models.ReportTypeDouble,
	} {
		t.Run(reportType.String(), func(t *testing.T) {
			request := validRequest()
			request.ReportType = reportType

			result, err := service.GenerateExport(context.Background(), request)
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			if len(result.Bytes) == 0 {
				t.Error("Expected non-empty workbook")
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	service := testService(t)
	dir := filepath.Join(t.TempDir(), "exports")

	result, err := service.GenerateExport(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("GenerateExport failed: %v", err)
	}

	path, err := service.SaveTo(result, dir)
	if err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected saved file: %v", err)
	}
	if info.Size() != int64(len(result.Bytes)) {
		t.Errorf("Expected %d bytes on disk, got %d", len(result.Bytes), info.Size())
	}

	// Saving again reuses the existing directory
	if _, err := service.SaveTo(result, dir); err != nil {
		t.Errorf("Expected idempotent directory creation, got %v", err)
	}
}

func TestContentDisposition(t *testing.T) {
	result := &Result{Filename: `report "Q1".xlsx`}

	got := result.ContentDisposition()
	expected := `attachment; filename="report \"Q1\".xlsx"`
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestNewServiceValidation(t *testing.T) {
	layout, err := workbook.NewEngine(nil)
	if err != nil {
		t.Fatalf("Failed to create layout engine: %v", err)
	}

	if _, err := NewService(nil, layout); err == nil {
		t.Error("Expected error for nil collector")
	}

	c, err := collector.NewCollector(&stubStore{}, nil)
	if err != nil {
		t.Fatalf("Failed to create collector: %v", err)
	}
	if _, err := NewService(c, nil); err == nil {
		t.Error("Expected error for nil layout engine")
	}
}
