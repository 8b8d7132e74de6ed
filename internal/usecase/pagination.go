package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
)

// PageRequest is a 1-indexed offset page.
type PageRequest struct {
	Page int
	Size int
}

// Normalize fills the default size and caps it. Page is left as given.
func (p PageRequest) Normalize() PageRequest {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the row offset of the first item on the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}

// Check rejects pages outside [1, last]. An empty set still has a first page.
func (p PageRequest) Check(count int) error {
	if p.Page < 1 {
		return domain.ErrInvalidPage
	}
	if p.Page > lastPage(count, p.Size) {
		return domain.ErrInvalidPage
	}
	return nil
}

func lastPage(count, size int) int {
	if count == 0 {
		return 1
	}
	return (count + size - 1) / size
}

// Page is one page of a filtered collection plus its aggregate metadata.
type Page[T any] struct {
	Items        []T
	Count        int
	Number       int
	Size         int
	TotalBalance decimal.NullDecimal
	Currency     string
}

// HasNext reports whether a following page exists.
func (p *Page[T]) HasNext() bool {
	return p.Number < lastPage(p.Count, p.Size)
}

// HasPrevious reports whether a preceding page exists.
func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

// TransactionPage is a transaction page with the parent debtor summary attached.
type TransactionPage struct {
	Page[*domain.Transaction]
	DebtorProps domain.DebtorProps
}
