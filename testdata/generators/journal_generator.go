package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// JournalGenerator generates journal CSV files in the exporter's default
// store format
type JournalGenerator struct {
	Count     int
	Accounts  int
	StartDate time.Time
	EndDate   time.Time
	Seed      int64
}

// JournalTemplate represents one journal row
type JournalTemplate struct {
	ID          string
	Description string
	AccountID   string
	AccountName string
	Currency    string
	Amount      decimal.Decimal
	Date        time.Time
	Budget      string
	Category    string
	Tags        []string
}

var categories = []struct {
	Name   string
	Budget string
	Tags   []string
	Min    float64
	Max    float64
}{
	{"Groceries", "Household", []string{"food"}, 5, 250},
	{"Rent", "Household", []string{"fixed"}, 800, 1500},
	{"Utilities", "Household", []string{"fixed", "energy"}, 30, 200},
	{"Dining", "Fun", []string{"food", "going-out"}, 10, 120},
	{"Transport", "Commute", []string{"travel"}, 2, 80},
	{"Entertainment", "Fun", []string{"going-out"}, 5, 60},
}

var currencies = []string{"USD", "EUR"}

func main() {
	var (
		output    = flag.String("output", "generated_journals.csv", "Output CSV file path")
		count     = flag.Int("count", 500, "Number of journal entries to generate")
		accounts  = flag.Int("accounts", 2, "Number of asset accounts")
		startDate = flag.String("start-date", "2024-01-01", "Start date (YYYY-MM-DD)")
		endDate   = flag.String("end-date", "2024-12-31", "End date (YYYY-MM-DD)")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
		pattern   = flag.String("pattern", "household", "Generation pattern: household, random, multi-currency")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}

	end, err := time.Parse("2006-01-02", *endDate)
	if err != nil {
		log.Fatalf("Invalid end date: %v", err)
	}

	generator := &JournalGenerator{
		Count:     *count,
		Accounts:  *accounts,
		StartDate: start,
		EndDate:   end,
		Seed:      *seed,
	}

	var entries []JournalTemplate
	switch *pattern {
	case "random":
		entries = generator.GenerateRandom()
	case "multi-currency":
		entries = generator.GenerateMultiCurrency()
	default:
		entries = generator.GenerateHousehold()
	}

	if err := generator.WriteToCSV(*output, entries); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}

	fmt.Printf("Generated %d journal entries in %s\n", len(entries), *output)
	fmt.Printf("Date range: %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("Seed used: %d\n", *seed)
}

// GenerateHousehold creates a realistic household ledger: one salary deposit
// per account per month plus randomized categorized expenses
func (jg *JournalGenerator) GenerateHousehold() []JournalTemplate {
	rng := rand.New(rand.NewSource(jg.Seed))
	var entries []JournalTemplate

	// Salary deposits on the first business day of each month
	for month := jg.StartDate; month.Before(jg.EndDate); month = month.AddDate(0, 1, 0) {
		payday := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
		for payday.Weekday() == time.Saturday || payday.Weekday() == time.Sunday {
			payday = payday.AddDate(0, 0, 1)
		}
		for acct := 1; acct <= jg.Accounts; acct++ {
			salary := decimal.NewFromFloat(2500 + rng.Float64()*1500).Round(2)
			entries = append(entries, JournalTemplate{
				ID:          fmt.Sprintf("JRN%06d", len(entries)+1),
				Description: fmt.Sprintf("Salary %s", payday.Format("January 2006")),
				AccountID:   fmt.Sprintf("%d", acct),
				AccountName: fmt.Sprintf("Checking %d", acct),
				Currency:    "USD",
				Amount:      salary,
				Date:        payday,
				Category:    "Salary",
				Tags:        []string{"income"},
			})
		}
	}

	// Expenses fill the remaining count
	duration := jg.EndDate.Sub(jg.StartDate)
	for len(entries) < jg.Count {
		cat := categories[rng.Intn(len(categories))]
		date := jg.StartDate.Add(time.Duration(rng.Int63n(int64(duration))))
		amount := decimal.NewFromFloat(cat.Min + rng.Float64()*(cat.Max-cat.Min)).Round(2).Neg()
		acct := 1 + rng.Intn(jg.Accounts)

		entries = append(entries, JournalTemplate{
			ID:          fmt.Sprintf("JRN%06d", len(entries)+1),
			Description: fmt.Sprintf("%s purchase", cat.Name),
			AccountID:   fmt.Sprintf("%d", acct),
			AccountName: fmt.Sprintf("Checking %d", acct),
			Currency:    "USD",
			Amount:      amount,
			Date:        date,
			Budget:      cat.Budget,
			Category:    cat.Name,
			Tags:        cat.Tags,
		})
	}

	return entries
}

// GenerateRandom creates entries with uniformly random amounts, dates and
// categories
func (jg *JournalGenerator) GenerateRandom() []JournalTemplate {
	rng := rand.New(rand.NewSource(jg.Seed))
	entries := make([]JournalTemplate, jg.Count)

	duration := jg.EndDate.Sub(jg.StartDate)
	for i := 0; i < jg.Count; i++ {
		cat := categories[rng.Intn(len(categories))]
		amount := decimal.NewFromFloat(rng.Float64() * 1000).Round(2)
		if rng.Float64() < 0.6 {
			amount = amount.Neg()
		}
		acct := 1 + rng.Intn(jg.Accounts)

		entries[i] = JournalTemplate{
			ID:          fmt.Sprintf("JRN%06d", i+1),
			Description: fmt.Sprintf("Transaction %d", i+1),
			AccountID:   fmt.Sprintf("%d", acct),
			AccountName: fmt.Sprintf("Checking %d", acct),
			Currency:    "USD",
			Amount:      amount,
			Date:        jg.StartDate.Add(time.Duration(rng.Int63n(int64(duration)))),
			Budget:      cat.Budget,
			Category:    cat.Name,
			Tags:        cat.Tags,
		}
	}

	return entries
}

// GenerateMultiCurrency spreads the household pattern across currencies so
// per-currency segregation can be exercised
func (jg *JournalGenerator) GenerateMultiCurrency() []JournalTemplate {
	rng := rand.New(rand.NewSource(jg.Seed))
	entries := jg.GenerateHousehold()

	for i := range entries {
		entries[i].Currency = currencies[rng.Intn(len(currencies))]
	}

	return entries
}

// WriteToCSV writes journal entries in the exporter's default column layout
func (jg *JournalGenerator) WriteToCSV(filename string, entries []JournalTemplate) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"journal_id", "description", "account_id", "account_name",
		"currency_code", "amount", "date", "budget", "category", "tags",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, entry := range entries {
		tags := ""
		for i, tag := range entry.Tags {
			if i > 0 {
				tags += "|"
			}
			tags += tag
		}
		record := []string{
			entry.ID,
			entry.Description,
			entry.AccountID,
			entry.AccountName,
			entry.Currency,
			entry.Amount.String(),
			entry.Date.Format("2006-01-02"),
			entry.Budget,
			entry.Category,
			tags,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}
