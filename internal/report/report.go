// Package report turns a debtor's transaction history into downloadable documents.
package report

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
)

// Row is one exported transaction.
type Row struct {
	ID       int64
	Date     time.Time
	Change   string
	Currency string
	Comment  string
}

// Document is the format independent report content.
type Document struct {
	DebtorName string
	// Balance is the sum over the exported rows.
	Balance decimal.Decimal
	Rows    []Row
}

// NewDocument builds a document from transactions in the order given.
func NewDocument(debtorName, currency string, transactions []*domain.Transaction) *Document {
	doc := &Document{
		DebtorName: debtorName,
		Balance:    decimal.Zero,
		Rows:       make([]Row, 0, len(transactions)),
	}

	for _, t := range transactions {
		doc.Balance = doc.Balance.Add(t.Sum)
		doc.Rows = append(doc.Rows, Row{
			ID:       t.ID,
			Date:     t.Date,
			Change:   t.Describe(),
			Currency: currency,
			Comment:  t.Comment,
		})
	}

	return doc
}

// Format renders a document into one file type.
type Format struct {
	Extension   string
	ContentType string
	Render      func(doc *Document) ([]byte, error)
}

// Registry maps file extensions to formats.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Format
}

// NewRegistry creates a registry holding formats.
func NewRegistry(formats ...Format) *Registry {
	r := &Registry{formats: make(map[string]Format)}
	for _, f := range formats {
		r.Register(f)
	}
	return r
}

// DefaultRegistry returns a registry with every built-in format.
func DefaultRegistry() *Registry {
	return NewRegistry(XLSX(), CSV())
}

// Register adds or replaces a format.
func (r *Registry) Register(f Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats[f.Extension] = f
}

// Lookup returns the format registered for ext.
func (r *Registry) Lookup(ext string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formats[ext]
	if !ok {
		return Format{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// Extensions lists registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.formats))
	for ext := range r.formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
