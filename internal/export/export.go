// Package export orchestrates the report export pipeline.
//
// One export request drives collection, workbook layout, chart embedding
// and serialization, synchronously and without shared state: concurrent
// requests each build their own workbook and their own uniquely named
// output file. Request validation happens before any pipeline work; a
// validation failure produces no file and touches no data source.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finance-export-service/internal/collector"
	"finance-export-service/internal/models"
	"finance-export-service/internal/workbook"
	"finance-export-service/pkg/errors"
	"finance-export-service/pkg/logger"
)

// ContentType is the spreadsheet MIME type for the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Request is the immutable description of one export: report type, period
// and dimension selectors, constructed once and passed through the pipeline
type Request struct {
	ReportType models.ReportType
	Period     models.Period
	Selectors  models.SelectorSet
}

// Validate performs the precondition checks that run before any pipeline
// work. Violations are user-facing validation errors, not internal faults.
func (r *Request) Validate() error {
	if !r.ReportType.IsValid() {
		return errors.ValidationError(errors.CodeInvalidReportType, "report_type", r.ReportType.String())
	}
	if err := r.Period.Validate(); err != nil {
		return errors.ValidationError(errors.CodeInvalidPeriod, "period", r.Period.Label()).
			WithContext("cause", err.Error())
	}
	if r.Selectors.Accounts.IsEmpty() {
		return errors.ValidationError(errors.CodeNoAccounts, "accounts", nil)
	}
	return nil
}

// Result is the generated workbook ready to stream: the bytes, the
// suggested filename and the spreadsheet MIME type
type Result struct {
	Filename    string
	ContentType string
	Bytes       []byte
}

// ContentDisposition returns the attachment header value with the filename
// quoted and escaped for header safety
func (r *Result) ContentDisposition() string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(r.Filename)
	return fmt.Sprintf(`attachment; filename="%s"`, escaped)
}

// Service drives the export pipeline
type Service struct {
	collector *collector.Collector
	layout    *workbook.Engine
	charts    *workbook.ChartEngine
	logger    logger.Logger
}

// NewService creates an export service from its pipeline components
func NewService(c *collector.Collector, layout *workbook.Engine) (*Service, error) {
	if c == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "collector", nil)
	}
	if layout == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "layout_engine", nil)
	}

	return &Service{
		collector: c,
		layout:    layout,
		charts:    workbook.NewChartEngine(),
		logger:    logger.GetGlobalLogger().WithComponent("export"),
	}, nil
}

// GenerateExport runs the full pipeline for one request and returns the
// serialized workbook. The workbook is serialized to memory; no temp file
// is created.
func (s *Service) GenerateExport(ctx context.Context, request *Request) (*Result, error) {
	log := s.logger.WithFields(logger.Fields{
		"report_type": request.ReportType.String(),
		"period":      request.Period.Label(),
	})

	if err := request.Validate(); err != nil {
		log.WithError(err).Warn("Export request rejected")
		return nil, err
	}

	steps := logger.NewStepTracker(log, "export", 4)

	steps.Step("collect")
	data, err := s.collector.Collect(ctx, request.ReportType, request.Period, request.Selectors)
	if err != nil {
		steps.CompleteWithError(err)
		return nil, errors.WrapIfNeeded(err, errors.CategoryInternal, errors.CodeUnexpectedError, "report data collection failed")
	}

	steps.Step("layout")
	file, err := s.layout.Layout(data)
	if err != nil {
		steps.CompleteWithError(err)
		return nil, errors.WrapIfNeeded(err, errors.CategoryWorkbook, errors.CodeLayoutFailed, "workbook layout failed")
	}
	defer file.Close()

	steps.Step("charts")
	if err := s.charts.EmbedCharts(data, file); err != nil {
		// Chart embedding absorbs per-chart failures internally; an error
		// here means the workbook itself is unusable
		steps.CompleteWithError(err)
		return nil, errors.WrapIfNeeded(err, errors.CategoryWorkbook, errors.CodeLayoutFailed, "chart embedding failed")
	}

	steps.Step("serialize")
	buffer, err := file.WriteToBuffer()
	if err != nil {
		steps.CompleteWithError(err)
		return nil, errors.WorkbookError(errors.CodeSerializeFailed, "workbook serialization", err).
			WithContext("report_type", request.ReportType.String()).
			WithContext("period", request.Period.Label())
	}

	result := &Result{
		Filename:    buildFilename(request),
		ContentType: ContentType,
		Bytes:       buffer.Bytes(),
	}

	steps.Complete()
	log.WithFields(logger.Fields{
		"filename": result.Filename,
		"bytes":    len(result.Bytes),
	}).Info("Export generated")

	return result, nil
}

// SaveTo writes the result into the export directory, creating it on
// demand, and verifies the written file before returning its path
func (s *Service) SaveTo(result *Result, dir string) (string, error) {
	// Concurrent exports may race on directory creation; MkdirAll is
	// idempotent so both callers succeed
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.FileError(errors.CodeDirectoryError, dir, err)
	}

	path := filepath.Join(dir, result.Filename)
	if err := os.WriteFile(path, result.Bytes, 0644); err != nil {
		return "", errors.FileError(errors.CodeFileWrite, path, err)
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", errors.FileError(errors.CodeFileIntegrity, path, err)
	}

	s.logger.WithFields(logger.Fields{
		"path":  path,
		"bytes": info.Size(),
	}).Info("Export saved")

	return path, nil
}

// buildFilename produces a collision-free report filename: report type,
// period bounds and a nanosecond timestamp
func buildFilename(request *Request) string {
	return fmt.Sprintf("FinanceReport_%s_%s_to_%s_%d.xlsx",
		request.ReportType.Title(),
		request.Period.Start.Format("2006-01-02"),
		request.Period.End.Format("2006-01-02"),
		time.Now().UnixNano())
}
