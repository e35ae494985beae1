package collector

import (
	"fmt"
	"time"

	"finance-export-service/internal/aggregator"
	"finance-export-service/internal/models"

	"github.com/shopspring/decimal"
)

// SectionKind tags the variant held by a Section
type SectionKind int

const (
	// SectionStructured holds aggregate buckets
	SectionStructured SectionKind = iota
	// SectionBalance holds per-currency in/out/sum totals
	SectionBalance
	// SectionMonthly holds a month-by-category series
	SectionMonthly
	// SectionChart holds chart-shaped data
	SectionChart
	// SectionRaw holds opaque rendered markup from a legacy view
	SectionRaw
	// SectionFailed holds the error message of a failed collection
	SectionFailed
	// SectionAudit holds the raw journal entries
	SectionAudit
)

// String returns the name of the section kind
func (k SectionKind) String() string {
	switch k {
	case SectionStructured:
		return "structured"
	case SectionBalance:
		return "balance"
	case SectionMonthly:
		return "monthly"
	case SectionChart:
		return "chart"
	case SectionRaw:
		return "raw"
	case SectionFailed:
		return "failed"
	case SectionAudit:
		return "audit"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Section is one named part of the report data tree. Exactly one of the
// payload fields is populated, selected by Kind; consumers switch on Kind
// exhaustively instead of probing fields.
type Section struct {
	Kind SectionKind

	Buckets []*models.AggregateBucket
	Totals  []*aggregator.CurrencyTotal
	Series  *MonthlySeries
	Chart   *ChartData
	Markup  string
	Message string
	Entries []*models.JournalEntry
}

// StructuredSection wraps aggregate buckets
func StructuredSection(buckets []*models.AggregateBucket) *Section {
	return &Section{Kind: SectionStructured, Buckets: buckets}
}

// BalanceSection wraps per-currency totals
func BalanceSection(totals []*aggregator.CurrencyTotal) *Section {
	return &Section{Kind: SectionBalance, Totals: totals}
}

// MonthlySection wraps a monthly series
func MonthlySection(series *MonthlySeries) *Section {
	return &Section{Kind: SectionMonthly, Series: series}
}

// ChartSection wraps chart data
func ChartSection(chart *ChartData) *Section {
	return &Section{Kind: SectionChart, Chart: chart}
}

// RawSection wraps opaque markup from a source that only exposes a
// rendered view
func RawSection(markup string) *Section {
	return &Section{Kind: SectionRaw, Markup: markup}
}

// FailedSection records a section whose collection failed
func FailedSection(err error) *Section {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	return &Section{Kind: SectionFailed, Message: message}
}

// AuditSection wraps the raw journal entries
func AuditSection(entries []*models.JournalEntry) *Section {
	return &Section{Kind: SectionAudit, Entries: entries}
}

// IsEmpty reports whether the section carries no data rows
func (s *Section) IsEmpty() bool {
	switch s.Kind {
	case SectionStructured:
		return len(s.Buckets) == 0
	case SectionBalance:
		return len(s.Totals) == 0
	case SectionMonthly:
		return s.Series == nil || len(s.Series.Categories) == 0
	case SectionChart:
		return s.Chart == nil || s.Chart.IsEmpty()
	case SectionRaw:
		return s.Markup == ""
	case SectionAudit:
		return len(s.Entries) == 0
	default:
		return false
	}
}

// ChartData is the normalized chart payload: either labeled multi-series
// datasets, or a simple key/value mapping (single series). The chart engine
// materializes both shapes into a backing data sheet before anchoring a
// chart object.
type ChartData struct {
	Title    string
	Labels   []string
	Datasets []Dataset

	// Simple key/value form; keys preserves insertion order
	Values map[string]decimal.Decimal
	keys   []string
}

// Dataset is one named series of values aligned with the chart labels
type Dataset struct {
	Label  string
	Values []decimal.Decimal
}

// NewChartData creates labeled-dataset chart data
func NewChartData(title string, labels []string, datasets ...Dataset) *ChartData {
	return &ChartData{Title: title, Labels: labels, Datasets: datasets}
}

// NewKeyValueChart creates simple key/value chart data, preserving key order
func NewKeyValueChart(title string) *ChartData {
	return &ChartData{Title: title, Values: make(map[string]decimal.Decimal)}
}

// Set adds or replaces one key/value pair, preserving first-set order
func (c *ChartData) Set(key string, value decimal.Decimal) {
	if c.Values == nil {
		c.Values = make(map[string]decimal.Decimal)
	}
	if _, ok := c.Values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.Values[key] = value
}

// Keys returns the key/value keys in insertion order
func (c *ChartData) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// IsEmpty reports whether the chart has neither labels nor datasets nor
// key/value pairs. Empty charts are silently skipped by the chart engine.
func (c *ChartData) IsEmpty() bool {
	return len(c.Labels) == 0 && len(c.Datasets) == 0 && len(c.Values) == 0
}

// ReportData is the unified, read-only result of collecting all sections
// for one export. Sections preserve collection order for deterministic
// sheet layout.
type ReportData struct {
	Type        models.ReportType
	Period      models.Period
	GeneratedAt time.Time

	sections map[string]*Section
	order    []string
}

// NewReportData creates an empty report data tree
func NewReportData(reportType models.ReportType, period models.Period) *ReportData {
	return &ReportData{
		Type:        reportType,
		Period:      period,
		GeneratedAt: time.Now(),
		sections:    make(map[string]*Section),
	}
}

// SetSection stores a named section, preserving first-set order
func (d *ReportData) SetSection(name string, section *Section) {
	if _, ok := d.sections[name]; !ok {
		d.order = append(d.order, name)
	}
	d.sections[name] = section
}

// Section returns the named section, or nil if absent
func (d *ReportData) Section(name string) *Section {
	return d.sections[name]
}

// SectionNames returns all section names in collection order
func (d *ReportData) SectionNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// HasSection reports whether a section with the given name was collected
func (d *ReportData) HasSection(name string) bool {
	_, ok := d.sections[name]
	return ok
}
