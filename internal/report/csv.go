package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gocarina/gocsv"
)

const csvDateLayout = "02-01-2006"

type csvDate time.Time

// MarshalCSV implements gocsv.TypeMarshaller.
func (d csvDate) MarshalCSV() (string, error) {
	return time.Time(d).Format(csvDateLayout), nil
}

type csvRow struct {
	ID       int64   `csv:"id"`
	Date     csvDate `csv:"date"`
	Change   string  `csv:"change"`
	Currency string  `csv:"currency"`
	Comment  string  `csv:"comment"`
}

// CSV returns the comma separated format.
func CSV() Format {
	return Format{
		Extension:   "csv",
		ContentType: "text/csv",
		Render:      renderCSV,
	}
}

func renderCSV(doc *Document) ([]byte, error) {
	var buf bytes.Buffer

	preamble := csv.NewWriter(&buf)
	if err := preamble.WriteAll([][]string{
		{"debtor name:", doc.DebtorName},
		{"balance:", doc.Balance.String()},
	}); err != nil {
		return nil, fmt.Errorf("write preamble: %w", err)
	}
	buf.WriteString("\n")

	rows := make([]*csvRow, 0, len(doc.Rows))
	for _, r := range doc.Rows {
		rows = append(rows, &csvRow{
			ID:       r.ID,
			Date:     csvDate(r.Date),
			Change:   r.Change,
			Currency: r.Currency,
			Comment:  r.Comment,
		})
	}

	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, fmt.Errorf("write rows: %w", err)
	}

	return buf.Bytes(), nil
}
