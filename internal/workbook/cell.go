package workbook

import (
	"github.com/shopspring/decimal"
)

// CellKind tags the variant held by a Cell
type CellKind int

const (
	// CellLiteral holds a plain value
	CellLiteral CellKind = iota
	// CellFormula holds a live formula evaluated by the spreadsheet reader,
	// never by this subsystem
	CellFormula
)

// Flavor drives the conditional font color of currency cells: income-
// flavored values render green when positive, expense-flavored values
// render red regardless of sign, and untagged values color by sign.
type Flavor int

const (
	FlavorNone Flavor = iota
	FlavorIncome
	FlavorExpense
)

// Cell is one spreadsheet cell before materialization: either a literal
// value or a formula string, with optional money formatting and flavor.
type Cell struct {
	Kind    CellKind
	Value   interface{}
	Formula string
	Flavor  Flavor
	IsMoney bool
}

// Text creates a literal string cell
func Text(value string) Cell {
	return Cell{Kind: CellLiteral, Value: value}
}

// Number creates a literal numeric cell without money formatting
func Number(value interface{}) Cell {
	return Cell{Kind: CellLiteral, Value: value}
}

// MoneyCell creates a literal currency cell with the given flavor
func MoneyCell(amount decimal.Decimal, flavor Flavor) Cell {
	value, _ := amount.Float64()
	return Cell{Kind: CellLiteral, Value: value, Flavor: flavor, IsMoney: true}
}

// FormulaCell creates a formula cell with currency formatting
func FormulaCell(formula string, flavor Flavor) Cell {
	return Cell{Kind: CellFormula, Formula: formula, Flavor: flavor, IsMoney: true}
}

// moneySign classifies a money cell's value for conditional coloring.
// Formula cells cannot be classified and fall back to neutral.
func (c Cell) moneySign() int {
	if c.Kind == CellFormula {
		return 0
	}
	value, ok := c.Value.(float64)
	if !ok {
		return 0
	}
	switch {
	case value > 0:
		return 1
	case value < 0:
		return -1
	default:
		return 0
	}
}
