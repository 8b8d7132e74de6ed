package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	// SheetName is the worksheet holding the report.
	SheetName = "balance sheet report"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsxDateFormat  = "dd-mm-yyyy"
)

var xlsxHeaders = []string{"id", "date", "change", "currency", "comment"}

// XLSX returns the spreadsheet format.
func XLSX() Format {
	return Format{
		Extension:   "xlsx",
		ContentType: xlsxContentType,
		Render:      renderXLSX,
	}
}

func renderXLSX(doc *Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	dateFmt := xlsxDateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return nil, fmt.Errorf("date style: %w", err)
	}

	for i, h := range xlsxHeaders {
		if err := f.SetCellValue(SheetName, fmt.Sprintf("%c1", 'A'+i), h); err != nil {
			return nil, err
		}
	}

	header := map[string]any{
		"F1": "debtor name:",
		"G1": doc.DebtorName,
		"F2": "balance:",
		"G2": doc.Balance.InexactFloat64(),
	}
	for cell, v := range header {
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return nil, err
		}
	}

	for idx, r := range doc.Rows {
		row := idx + 2

		values := []any{r.ID, r.Date, r.Change, r.Currency, r.Comment}
		for col, v := range values {
			if err := f.SetCellValue(SheetName, fmt.Sprintf("%c%d", 'A'+col, row), v); err != nil {
				return nil, err
			}
		}

		dateCell := fmt.Sprintf("B%d", row)
		if err := f.SetCellStyle(SheetName, dateCell, dateCell, dateStyle); err != nil {
			return nil, err
		}
	}

	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 6},
		{"B", "B", 10},
		{"C", "G", 15},
	}
	for _, w := range widths {
		if err := f.SetColWidth(SheetName, w.from, w.to, w.width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
