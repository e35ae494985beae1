package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// StyleConfig holds the workbook styling policy: fills, borders, zebra
// shading, and the conditional currency font colors
type StyleConfig struct {
	Branding string `json:"branding"`

	HeaderFill string `json:"header_fill"`
	HeaderFont string `json:"header_font"`
	EvenFill   string `json:"even_fill"`
	OddFill    string `json:"odd_fill"`
	TotalFill  string `json:"total_fill"`

	PositiveFont string `json:"positive_font"`
	NegativeFont string `json:"negative_font"`
	ZeroFont     string `json:"zero_font"`

	LabelColumnWidth float64 `json:"label_column_width"`
	MoneyColumnWidth float64 `json:"money_column_width"`
}

// DefaultStyleConfig returns the standard report palette
func DefaultStyleConfig() *StyleConfig {
	return &StyleConfig{
		Branding:         "Finance Report",
		HeaderFill:       "4472C4",
		HeaderFont:       "FFFFFF",
		EvenFill:         "FFFFFF",
		OddFill:          "F2F2F2",
		TotalFill:        "D9E1F2",
		PositiveFont:     "008000",
		NegativeFont:     "C00000",
		ZeroFont:         "808080",
		LabelColumnWidth: 28,
		MoneyColumnWidth: 14,
	}
}

// Validate checks the style configuration for required values
func (c *StyleConfig) Validate() error {
	if c.LabelColumnWidth <= 0 || c.MoneyColumnWidth <= 0 {
		return fmt.Errorf("column widths must be positive")
	}
	for name, color := range map[string]string{
		"header_fill": c.HeaderFill,
		"even_fill":   c.EvenFill,
		"odd_fill":    c.OddFill,
		"total_fill":  c.TotalFill,
	} {
		if len(color) != 6 {
			return fmt.Errorf("%s must be a 6-digit hex color, got '%s'", name, color)
		}
	}
	return nil
}

// moneyFormat is the built-in "#,##0.00" number format
const moneyFormat = 4

// styleSet holds the excelize style ids materialized from one StyleConfig.
// Data-row money styles are keyed by (alternating shade, font color).
type styleSet struct {
	title  int
	header int
	total  int

	// plain text data cells, by zebra shade
	text [2]int
	// money cells, by zebra shade x sign color (0 pos, 1 neg, 2 zero)
	money [2][3]int
	// money cells on total rows, by sign color
	totalMoney [3]int
}

func thinBorders() []excelize.Border {
	border := func(kind string) excelize.Border {
		return excelize.Border{Type: kind, Color: "B0B0B0", Style: 1}
	}
	return []excelize.Border{border("left"), border("right"), border("top"), border("bottom")}
}

// buildStyles registers all style combinations on the file once per workbook
func buildStyles(f *excelize.File, config *StyleConfig) (*styleSet, error) {
	set := &styleSet{}
	var err error

	set.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, err
	}

	set.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: config.HeaderFont},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{config.HeaderFill}},
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	// Total rows carry a distinct fill with medium top and bottom borders
	totalBorders := []excelize.Border{
		{Type: "top", Color: "404040", Style: 2},
		{Type: "bottom", Color: "404040", Style: 2},
	}
	set.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{config.TotalFill}},
		Border: totalBorders,
	})
	if err != nil {
		return nil, err
	}

	fills := [2]string{config.EvenFill, config.OddFill}
	fonts := [3]string{config.PositiveFont, config.NegativeFont, config.ZeroFont}

	for shade := 0; shade < 2; shade++ {
		set.text[shade], err = f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fills[shade]}},
			Border: thinBorders(),
		})
		if err != nil {
			return nil, err
		}

		for sign := 0; sign < 3; sign++ {
			set.money[shade][sign], err = f.NewStyle(&excelize.Style{
				Font:   &excelize.Font{Color: fonts[sign]},
				Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fills[shade]}},
				Border: thinBorders(),
				NumFmt: moneyFormat,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	for sign := 0; sign < 3; sign++ {
		set.totalMoney[sign], err = f.NewStyle(&excelize.Style{
			Font:   &excelize.Font{Bold: true, Color: fonts[sign]},
			Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{config.TotalFill}},
			Border: totalBorders,
			NumFmt: moneyFormat,
		})
		if err != nil {
			return nil, err
		}
	}

	return set, nil
}

// moneyStyle picks the conditional style for a money cell: expense-flavored
// values are red regardless of sign, income-flavored positive values green,
// zero values gray, everything else colors by sign
func (s *styleSet) moneyStyle(cell Cell, shade int) int {
	sign := cell.moneySign()

	colorIdx := 2 // zero / neutral gray
	switch {
	case cell.Flavor == FlavorExpense:
		colorIdx = 1
	case cell.Flavor == FlavorIncome && sign >= 0:
		colorIdx = 0
	case sign > 0:
		colorIdx = 0
	case sign < 0:
		colorIdx = 1
	}

	// Formula cells have no literal sign; income formulas stay green,
	// expense formulas red, untagged neutral
	if cell.Kind == CellFormula && cell.Flavor == FlavorNone {
		colorIdx = 2
	}

	return s.money[shade][colorIdx]
}

// totalMoneyStyle picks the conditional style for a total-row money cell
func (s *styleSet) totalMoneyStyle(cell Cell) int {
	switch cell.Flavor {
	case FlavorIncome:
		return s.totalMoney[0]
	case FlavorExpense:
		return s.totalMoney[1]
	default:
		return s.totalMoney[2]
	}
}
