package workbook

import (
	"html"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheetWriter appends styled rows to one sheet top to bottom. The zebra
// shade of a data row is keyed by its offset from the first data row
// written after the most recent header.
type sheetWriter struct {
	file   *excelize.File
	sheet  string
	styles *styleSet
	config *StyleConfig

	row          int
	firstDataRow int
	maxColumns   int
}

// writeTitle writes a single large bold cell
func (w *sheetWriter) writeTitle(text string) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetCellValue(w.sheet, cell, text); err != nil {
		return err
	}
	if err := w.file.SetCellStyle(w.sheet, cell, cell, w.styles.title); err != nil {
		return err
	}
	w.row++
	return nil
}

// writeLabelValue writes an unstyled "Label: value" pair row
func (w *sheetWriter) writeLabelValue(label, value string) error {
	labelCell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	valueCell, err := excelize.CoordinatesToCellName(2, w.row)
	if err != nil {
		return err
	}
	if err := w.file.SetCellValue(w.sheet, labelCell, label+":"); err != nil {
		return err
	}
	if err := w.file.SetCellValue(w.sheet, valueCell, value); err != nil {
		return err
	}
	w.row++
	return nil
}

// writeHeader writes a styled header row and resets the zebra base
func (w *sheetWriter) writeHeader(labels ...string) error {
	for col, label := range labels {
		cell, err := excelize.CoordinatesToCellName(col+1, w.row)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, label); err != nil {
			return err
		}
		if err := w.file.SetCellStyle(w.sheet, cell, cell, w.styles.header); err != nil {
			return err
		}
	}
	w.trackColumns(len(labels))
	w.row++
	w.firstDataRow = w.row
	return nil
}

// writeData writes one data row with alternating background shading
func (w *sheetWriter) writeData(cells ...Cell) error {
	shade := (w.row - w.firstDataRow) % 2
	if shade < 0 {
		shade = 0
	}

	for col, cell := range cells {
		styleID := w.styles.text[shade]
		if cell.IsMoney {
			styleID = w.styles.moneyStyle(cell, shade)
		}
		if err := w.setCell(col+1, cell, styleID); err != nil {
			return err
		}
	}
	w.trackColumns(len(cells))
	w.row++
	return nil
}

// writeTotal writes one total row with the distinct totals styling
func (w *sheetWriter) writeTotal(cells ...Cell) error {
	for col, cell := range cells {
		styleID := w.styles.total
		if cell.IsMoney {
			styleID = w.styles.totalMoneyStyle(cell)
		}
		if err := w.setCell(col+1, cell, styleID); err != nil {
			return err
		}
	}
	w.trackColumns(len(cells))
	w.row++
	return nil
}

// blankRow advances past one empty separator row
func (w *sheetWriter) blankRow() {
	w.row++
}

func (w *sheetWriter) setCell(col int, cell Cell, styleID int) error {
	name, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		return err
	}

	switch cell.Kind {
	case CellFormula:
		if err := w.file.SetCellFormula(w.sheet, name, cell.Formula); err != nil {
			return err
		}
	default:
		if err := w.file.SetCellValue(w.sheet, name, cell.Value); err != nil {
			return err
		}
	}

	return w.file.SetCellStyle(w.sheet, name, name, styleID)
}

func (w *sheetWriter) trackColumns(n int) {
	if n > w.maxColumns {
		w.maxColumns = n
	}
}

// setWidths applies the fixed column widths: a wide label column first,
// narrower money/value columns after
func (w *sheetWriter) setWidths(columns int) error {
	if columns < w.maxColumns {
		columns = w.maxColumns
	}
	if columns == 0 {
		return nil
	}

	if err := w.file.SetColWidth(w.sheet, "A", "A", w.config.LabelColumnWidth); err != nil {
		return err
	}
	if columns < 2 {
		return nil
	}

	last, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	return w.file.SetColWidth(w.sheet, "B", last, w.config.MoneyColumnWidth)
}

// Markup scraping for the lossy fallback path

var (
	markupRowPattern  = regexp.MustCompile(`(?is)<tr[^>]*>(.*?)</tr>`)
	markupCellPattern = regexp.MustCompile(`(?is)<t[dh][^>]*>(.*?)</t[dh]>`)
	markupTagPattern  = regexp.MustCompile(`(?s)<[^>]*>`)
)

// scrapeRowLabels recovers the first-cell label of each markup row. This
// is deliberately lossy: numeric columns are not parsed, only the label
// column survives.
func scrapeRowLabels(markup string) []string {
	var labels []string

	for _, row := range markupRowPattern.FindAllStringSubmatch(markup, -1) {
		cells := markupCellPattern.FindAllStringSubmatch(row[1], -1)
		if len(cells) == 0 {
			continue
		}

		label := markupTagPattern.ReplaceAllString(cells[0][1], "")
		label = strings.TrimSpace(html.UnescapeString(label))
		if label == "" {
			continue
		}
		labels = append(labels, label)
	}

	return labels
}
