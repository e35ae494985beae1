package aggregator

import (
	"math/rand"
	"testing"
	"time"

	"finance-export-service/internal/models"

	"github.com/shopspring/decimal"
)

var (
	usd = models.Currency{ID: "1", Code: "USD", Symbol: "$", DecimalPlaces: 2}
	eur = models.Currency{ID: "2", Code: "EUR", Symbol: "€", DecimalPlaces: 2}
)

func entry(id, account string, currency models.Currency, amount float64) *models.JournalEntry {
	return &models.JournalEntry{
		ID:          id,
		AccountID:   account,
		AccountName: "Account " + account,
		Currency:    currency,
		Amount:      decimal.NewFromFloat(amount),
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestAggregateByAccount(t *testing.T) {
	entries := []*models.JournalEntry{
		entry("J1", "1", usd, 100.50),
		entry("J2", "1", usd, -25.25),
		entry("J3", "2", usd, 10.00),
	}

	result := Aggregate(entries, ByAccount)

	bucket := result.Bucket("1", usd.ID)
	if bucket == nil {
		t.Fatal("Expected bucket for account 1 in USD")
	}
	if !bucket.Sum.Equal(decimal.NewFromFloat(75.25)) {
		t.Errorf("Expected sum 75.25, got %s", bucket.Sum)
	}
	if bucket.Count != 2 {
		t.Errorf("Expected 2 contributions, got %d", bucket.Count)
	}

	if result.Bucket("2", usd.ID) == nil {
		t.Error("Expected bucket for account 2")
	}
	if result.Bucket("3", usd.ID) != nil {
		t.Error("Expected no bucket for unseen account")
	}
}

func TestAggregateCurrencySegregation(t *testing.T) {
	// Same account, two currencies: amounts must never mix
	entries := []*models.JournalEntry{
		entry("J1", "1", usd, 100.00),
		entry("J2", "1", eur, 200.00),
		entry("J3", "1", usd, 50.00),
	}

	result := Aggregate(entries, ByAccount)

	usdBucket := result.Bucket("1", usd.ID)
	eurBucket := result.Bucket("1", eur.ID)
	if usdBucket == nil || eurBucket == nil {
		t.Fatal("Expected one bucket per currency")
	}
	if !usdBucket.Sum.Equal(decimal.NewFromFloat(150.00)) {
		t.Errorf("Expected USD sum 150.00, got %s", usdBucket.Sum)
	}
	if !eurBucket.Sum.Equal(decimal.NewFromFloat(200.00)) {
		t.Errorf("Expected EUR sum 200.00, got %s", eurBucket.Sum)
	}
}

func TestAggregateOrderIndependence(t *testing.T) {
	entries := []*models.JournalEntry{
		entry("J1", "1", usd, 0.1),
		entry("J2", "1", usd, 0.2),
		entry("J3", "1", usd, -0.3),
		entry("J4", "1", usd, 1234.56),
		entry("J5", "1", usd, -0.01),
	}

	baseline := Aggregate(entries, ByAccount).Bucket("1", usd.ID).Sum

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]*models.JournalEntry, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		sum := Aggregate(shuffled, ByAccount).Bucket("1", usd.ID).Sum
		if !sum.Equal(baseline) {
			t.Fatalf("Reordering changed the sum: %s vs %s", sum, baseline)
		}
	}
}

func TestAggregateZeroAmountCreatesBucket(t *testing.T) {
	entries := []*models.JournalEntry{
		entry("J1", "1", usd, 0),
	}

	result := Aggregate(entries, ByAccount)

	bucket := result.Bucket("1", usd.ID)
	if bucket == nil {
		t.Fatal("Expected a bucket for the zero-amount entry")
	}
	if !bucket.Sum.IsZero() {
		t.Errorf("Expected zero sum, got %s", bucket.Sum)
	}
	if bucket.Count != 1 {
		t.Errorf("Expected count 1, got %d", bucket.Count)
	}
}

func TestAggregateNoneSentinel(t *testing.T) {
	uncategorized := entry("J1", "1", usd, -30.00)
	categorized := entry("J2", "1", usd, -70.00)
	categorized.CategoryID = "5"
	categorized.CategoryName = "Groceries"

	result := Aggregate([]*models.JournalEntry{uncategorized, categorized}, ByCategory)

	none := result.Bucket(NoneDimensionID, usd.ID)
	if none == nil {
		t.Fatal("Expected sentinel bucket for uncategorized entry")
	}
	if none.DimensionName != NoneDimensionName {
		t.Errorf("Expected sentinel name %s, got %s", NoneDimensionName, none.DimensionName)
	}
	if !none.Sum.Equal(decimal.NewFromFloat(-30.00)) {
		t.Errorf("Expected sentinel sum -30.00, got %s", none.Sum)
	}

	groceries := result.Bucket("5", usd.ID)
	if groceries == nil || !groceries.Sum.Equal(decimal.NewFromFloat(-70.00)) {
		t.Error("Expected Groceries bucket with sum -70.00")
	}
}

func TestAggregateByTagMultiContribution(t *testing.T) {
	tagged := entry("J1", "1", usd, -40.00)
	tagged.TagIDs = []string{"food", "going-out"}
	tagged.TagNames = []string{"Food", "Going Out"}

	result := Aggregate([]*models.JournalEntry{tagged}, ByTag)

	// The full amount lands in each tag's bucket
	for _, tag := range []string{"food", "going-out"} {
		bucket := result.Bucket(tag, usd.ID)
		if bucket == nil {
			t.Fatalf("Expected bucket for tag %s", tag)
		}
		if !bucket.Sum.Equal(decimal.NewFromFloat(-40.00)) {
			t.Errorf("Expected tag %s sum -40.00, got %s", tag, bucket.Sum)
		}
	}

	// The cross-dimension total counts the entry once
	total := result.CurrencyTotal(usd.ID)
	if !total.Sum.Equal(decimal.NewFromFloat(-40.00)) {
		t.Errorf("Expected currency total -40.00, got %s", total.Sum)
	}
}

func TestCurrencyTotalIdentity(t *testing.T) {
	entries := []*models.JournalEntry{
		entry("J1", "1", usd, 1000.00),
		entry("J2", "1", usd, -50.00),
		entry("J3", "1", usd, -25.00),
		entry("J4", "2", eur, 300.00),
		entry("J5", "2", eur, -120.50),
	}

	result := Aggregate(entries, ByAccount)

	for _, total := range result.CurrencyTotals() {
		if !total.Sum.Equal(total.In.Add(total.Out)) {
			t.Errorf("Currency %s: sum %s != in %s + out %s",
				total.Currency.Code, total.Sum, total.In, total.Out)
		}
	}

	usdTotal := result.CurrencyTotal(usd.ID)
	if !usdTotal.In.Equal(decimal.NewFromFloat(1000.00)) {
		t.Errorf("Expected USD in 1000.00, got %s", usdTotal.In)
	}
	if !usdTotal.Out.Equal(decimal.NewFromFloat(-75.00)) {
		t.Errorf("Expected USD out -75.00, got %s", usdTotal.Out)
	}
	if !usdTotal.Sum.Equal(decimal.NewFromFloat(925.00)) {
		t.Errorf("Expected USD sum 925.00, got %s", usdTotal.Sum)
	}
}

func TestCurrencyTotalsOrderedByCode(t *testing.T) {
	entries := []*models.JournalEntry{
		entry("J1", "1", usd, 10),
		entry("J2", "1", eur, 10),
	}

	totals := Aggregate(entries, ByAccount).CurrencyTotals()
	if len(totals) != 2 {
		t.Fatalf("Expected 2 totals, got %d", len(totals))
	}
	if totals[0].Currency.Code != "EUR" || totals[1].Currency.Code != "USD" {
		t.Errorf("Expected EUR before USD, got %s then %s",
			totals[0].Currency.Code, totals[1].Currency.Code)
	}
}

func TestBucketsFirstContributionOrder(t *testing.T) {
	entries := []*models.JournalEntry{
		entry("J1", "2", usd, 10),
		entry("J2", "1", usd, 10),
		entry("J3", "2", usd, 10),
	}

	buckets := Aggregate(entries, ByAccount).Buckets()
	if len(buckets) != 2 {
		t.Fatalf("Expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].DimensionID != "2" || buckets[1].DimensionID != "1" {
		t.Errorf("Expected first-contribution order 2,1 got %s,%s",
			buckets[0].DimensionID, buckets[1].DimensionID)
	}
}

func TestFilterDepositsWithdrawals(t *testing.T) {
	entries := []*models.JournalEntry{
		entry("J1", "1", usd, 1000.00),
		entry("J2", "1", usd, -50.00),
		entry("J3", "1", usd, 0),
	}

	deposits := Filter(entries, Deposits)
	if len(deposits) != 1 || deposits[0].ID != "J1" {
		t.Errorf("Expected 1 deposit J1, got %d", len(deposits))
	}

	withdrawals := Filter(entries, Withdrawals)
	if len(withdrawals) != 1 || withdrawals[0].ID != "J2" {
		t.Errorf("Expected 1 withdrawal J2, got %d", len(withdrawals))
	}
}

func TestAggregateEmpty(t *testing.T) {
	result := Aggregate(nil, ByAccount)
	if !result.IsEmpty() {
		t.Error("Expected empty result")
	}
	if len(result.CurrencyTotals()) != 0 {
		t.Error("Expected no currency totals")
	}
}
