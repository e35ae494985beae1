// Package journal provides read-only access to transaction journals.
//
// The report pipeline consumes journals through the Store interface; the
// CSV-backed implementation here parses ledger export files with
// configurable column mappings and filters rows by period and account
// selection before handing them to the aggregator. Journal entries are
// never mutated by this subsystem.
package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"finance-export-service/internal/models"
	"finance-export-service/pkg/errors"
	"finance-export-service/pkg/logger"
)

// Store is the read-only journal query capability the collector depends on.
// Implementations return entries already filtered by period and account
// selection; an empty selector matches no accounts.
type Store interface {
	QueryJournals(ctx context.Context, period models.Period, accounts models.Selector) ([]*models.JournalEntry, error)
}

// CSVStore reads journal entries from a ledger CSV export. The file is
// parsed once per query; the store itself holds no mutable state, so one
// store may serve concurrent export requests.
type CSVStore struct {
	path   string
	config *StoreConfig
	logger logger.Logger
}

// NewCSVStore creates a store for the given journal file
func NewCSVStore(path string, config *StoreConfig) (*CSVStore, error) {
	if config == nil {
		config = DefaultStoreConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid journal store config: %w", err)
	}

	log := logger.GetGlobalLogger().WithComponent("journal_store")
	log.WithFields(logger.Fields{
		"file_path":  path,
		"has_header": config.HasHeader,
	}).Debug("Created CSV journal store")

	return &CSVStore{
		path:   path,
		config: config,
		logger: log,
	}, nil
}

// QueryJournals parses the backing file and returns the entries that fall
// inside the period and belong to a selected account
func (s *CSVStore) QueryJournals(ctx context.Context, period models.Period, accounts models.Selector) ([]*models.JournalEntry, error) {
	s.logger.WithFields(logger.Fields{
		"file_path": s.path,
		"period":    period.Label(),
		"accounts":  accounts.Len(),
	}).Debug("Querying journals")

	file, err := os.Open(s.path)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileNotFound, s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = s.config.Delimiter
	reader.TrimLeadingSpace = true

	columns, err := s.readHeader(reader)
	if err != nil {
		return nil, err
	}

	var entries []*models.JournalEntry
	line := 1

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			s.logger.WithError(err).WithField("line", line).Warn("Skipping unreadable journal row")
			continue
		}

		entry, err := s.parseEntry(record, columns)
		if err != nil {
			s.logger.WithError(err).WithField("line", line).Warn("Skipping invalid journal row")
			continue
		}

		if !period.Contains(entry.Date) {
			continue
		}
		if !accounts.Contains(entry.AccountID) {
			continue
		}

		entries = append(entries, entry)
	}

	s.logger.WithFields(logger.Fields{
		"file_path": s.path,
		"entries":   len(entries),
	}).Debug("Journal query completed")

	return entries, nil
}

// readHeader builds the column-name -> index mapping. Files without a
// header row use the configured column order implied by DefaultStoreConfig.
func (s *CSVStore) readHeader(reader *csv.Reader) (map[string]int, error) {
	columns := make(map[string]int)

	if !s.config.HasHeader {
		for i, name := range []string{
			s.config.IDColumn,
			s.config.DescriptionColumn,
			s.config.AccountIDColumn,
			s.config.AccountNameColumn,
			s.config.CurrencyColumn,
			s.config.AmountColumn,
			s.config.DateColumn,
			s.config.BudgetColumn,
			s.config.CategoryColumn,
			s.config.TagsColumn,
		} {
			if name != "" {
				columns[name] = i
			}
		}
		return columns, nil
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal header: %w", err)
	}

	for i, raw := range header {
		columns[s.config.resolveColumn(raw)] = i
	}

	for _, required := range []string{
		s.config.IDColumn,
		s.config.AccountIDColumn,
		s.config.CurrencyColumn,
		s.config.AmountColumn,
		s.config.DateColumn,
	} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("journal file is missing required column '%s'", required)
		}
	}

	return columns, nil
}

func (s *CSVStore) parseEntry(record []string, columns map[string]int) (*models.JournalEntry, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	amount, err := ParseDecimal(field(s.config.AmountColumn))
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	date, err := ParseDate(field(s.config.DateColumn))
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	id := field(s.config.IDColumn)
	if id == "" {
		return nil, fmt.Errorf("journal id cannot be empty")
	}

	accountID := field(s.config.AccountIDColumn)
	if accountID == "" {
		return nil, fmt.Errorf("account id cannot be empty")
	}

	code := field(s.config.CurrencyColumn)
	if code == "" {
		return nil, fmt.Errorf("currency code cannot be empty")
	}

	accountName := field(s.config.AccountNameColumn)
	if accountName == "" {
		accountName = accountID
	}

	entry := &models.JournalEntry{
		ID:          id,
		Description: field(s.config.DescriptionColumn),
		AccountID:   accountID,
		AccountName: accountName,
		Currency:    LookupCurrency(code),
		Amount:      amount,
		Date:        date,
	}

	if budget := field(s.config.BudgetColumn); budget != "" {
		entry.BudgetID = budget
		entry.BudgetName = budget
	}
	if category := field(s.config.CategoryColumn); category != "" {
		entry.CategoryID = category
		entry.CategoryName = category
	}
	if tags := field(s.config.TagsColumn); tags != "" {
		for _, tag := range strings.Split(tags, s.config.TagDelimiter) {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			entry.TagIDs = append(entry.TagIDs, tag)
			entry.TagNames = append(entry.TagNames, tag)
		}
	}

	return entry, nil
}
