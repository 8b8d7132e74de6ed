package report

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iho/debtledger/internal/domain"
)

func sampleDocument() *Document {
	txs := []*domain.Transaction{
		{ID: 2, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Sum: decimal.NewFromInt(4), Comment: "lunch"},
		{ID: 1, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Sum: decimal.NewFromInt(-3)},
	}
	return NewDocument("test1", "dollars", txs)
}

func TestNewDocument(t *testing.T) {
	doc := sampleDocument()

	assert.Equal(t, "test1", doc.DebtorName)
	assert.True(t, doc.Balance.Equal(decimal.NewFromInt(1)), "balance = %s", doc.Balance)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, "gave a loan of 4", doc.Rows[0].Change)
	assert.Equal(t, "borrowed 3", doc.Rows[1].Change)
	assert.Equal(t, "dollars", doc.Rows[1].Currency)
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"csv", "xlsx"}, r.Extensions())

	f, err := r.Lookup("xlsx")
	require.NoError(t, err)
	assert.Equal(t, xlsxContentType, f.ContentType)

	_, err = r.Lookup("pdf")
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), "pdf")
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	r.Register(Format{
		Extension:   "txt",
		ContentType: "text/plain",
		Render: func(doc *Document) ([]byte, error) {
			return []byte(doc.DebtorName), nil
		},
	})

	f, err := r.Lookup("txt")
	require.NoError(t, err)

	out, err := f.Render(sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, "test1", string(out))
}

func TestRenderXLSX(t *testing.T) {
	out, err := XLSX().Render(sampleDocument())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	cell := func(axis string) string {
		v, err := f.GetCellValue(SheetName, axis)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "id", cell("A1"))
	assert.Equal(t, "date", cell("B1"))
	assert.Equal(t, "change", cell("C1"))
	assert.Equal(t, "currency", cell("D1"))
	assert.Equal(t, "comment", cell("E1"))
	assert.Equal(t, "debtor name:", cell("F1"))
	assert.Equal(t, "test1", cell("G1"))
	assert.Equal(t, "balance:", cell("F2"))
	assert.Equal(t, "1", cell("G2"))

	assert.Equal(t, "2", cell("A2"))
	assert.Equal(t, "gave a loan of 4", cell("C2"))
	assert.Equal(t, "dollars", cell("D2"))
	assert.Equal(t, "lunch", cell("E2"))
	assert.Equal(t, "borrowed 3", cell("C3"))

	// The date is stored as a serial number, not as text.
	raw, err := f.GetCellValue(SheetName, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	serial, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err)
	date, err := excelize.ExcelDateToTime(serial, false)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", date.Format("2006-01-02"))
}

func TestRenderCSV(t *testing.T) {
	out, err := CSV().Render(sampleDocument())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "debtor name:,test1", lines[0])
	assert.Equal(t, "balance:,1", lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "id,date,change,currency,comment", lines[3])
	assert.Equal(t, "2,05-03-2024,gave a loan of 4,dollars,lunch", lines[4])
	assert.Equal(t, "1,01-03-2024,borrowed 3,dollars,", lines[5])
}
