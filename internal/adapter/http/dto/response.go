package dto

import (
	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// DetailResponse is the body of most error responses.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// DebtorResponse represents a debtor in API responses.
type DebtorResponse struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Balance NullAmount `json:"balance"`
}

// DebtorFromDomain converts a domain debtor to a response.
func DebtorFromDomain(d *domain.DebtorWithBalance) *DebtorResponse {
	return &DebtorResponse{
		ID:      d.ID,
		Name:    d.Name,
		Balance: NullAmount(d.Balance),
	}
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID      int64  `json:"id"`
	Date    Date   `json:"date"`
	Sum     Amount `json:"sum"`
	Comment string `json:"comment"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:      t.ID,
		Date:    Date(t.Date),
		Sum:     Amount(t.Sum),
		Comment: t.Comment,
	}
}

// DebtorPropsResponse summarizes the debtor a transaction page belongs to.
type DebtorPropsResponse struct {
	Name string `json:"name"`
}

// PageResponse is a paginated listing with portfolio totals.
type PageResponse[T any] struct {
	Next         *string              `json:"next"`
	Previous     *string              `json:"previous"`
	Count        int                  `json:"count"`
	TotalBalance NullAmount           `json:"total_balance"`
	Currency     string               `json:"currency"`
	DebtorProps  *DebtorPropsResponse `json:"debtor_props,omitempty"`
	Results      []T                  `json:"results"`
}

// DebtorPageFromUseCase converts a debtor page. Links are filled by the handler.
func DebtorPageFromUseCase(p *usecase.Page[*domain.DebtorWithBalance]) *PageResponse[*DebtorResponse] {
	results := make([]*DebtorResponse, len(p.Items))
	for i, d := range p.Items {
		results[i] = DebtorFromDomain(d)
	}
	return &PageResponse[*DebtorResponse]{
		Count:        p.Count,
		TotalBalance: NullAmount(p.TotalBalance),
		Currency:     p.Currency,
		Results:      results,
	}
}

// TransactionPageFromUseCase converts a transaction page. Links are filled by the handler.
func TransactionPageFromUseCase(p *usecase.TransactionPage) *PageResponse[*TransactionResponse] {
	results := make([]*TransactionResponse, len(p.Items))
	for i, t := range p.Items {
		results[i] = TransactionFromDomain(t)
	}
	return &PageResponse[*TransactionResponse]{
		Count:        p.Count,
		TotalBalance: NullAmount(p.TotalBalance),
		Currency:     p.Currency,
		DebtorProps:  &DebtorPropsResponse{Name: p.DebtorProps.Name},
		Results:      results,
	}
}

// UserResponse echoes a registration back without secrets.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Currency  string `json:"currency,omitempty"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// TokenResponse is the answer to a successful password grant.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
