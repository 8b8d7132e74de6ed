package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

// DebtorRequest is the body of debtor create and update calls.
type DebtorRequest struct {
	Name *string `json:"name"`
}

// Validate reports missing fields. Partial updates may omit everything.
func (r *DebtorRequest) Validate(partial bool) error {
	if r.Name == nil && !partial {
		return domain.NewValidationError("name", "This field is required.")
	}
	return nil
}

// TransactionRequest is the body of transaction create and update calls.
type TransactionRequest struct {
	Date    *Date            `json:"date"`
	Sum     *decimal.Decimal `json:"sum"`
	Comment *string          `json:"comment"`
}

// Validate reports missing fields. Partial updates may omit everything.
func (r *TransactionRequest) Validate(partial bool) error {
	if r.Sum == nil && !partial {
		return domain.NewValidationError("sum", "This field is required.")
	}
	return nil
}

// ToCreateInput converts to use case input.
func (r *TransactionRequest) ToCreateInput() usecase.CreateTransactionInput {
	input := usecase.CreateTransactionInput{Date: r.date()}
	if r.Sum != nil {
		input.Sum = *r.Sum
	}
	if r.Comment != nil {
		input.Comment = *r.Comment
	}
	return input
}

// ToUpdateInput converts to use case input.
func (r *TransactionRequest) ToUpdateInput() usecase.UpdateTransactionInput {
	return usecase.UpdateTransactionInput{
		Date:    r.date(),
		Sum:     r.Sum,
		Comment: r.Comment,
	}
}

func (r *TransactionRequest) date() *time.Time {
	if r.Date == nil {
		return nil
	}
	t := r.Date.Time()
	return &t
}

// RegisterRequest is the body of a registration call.
type RegisterRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
	Currency  string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password1: r.Password1,
		Password2: r.Password2,
		Currency:  r.Currency,
	}
}

// TokenRequest is the body of a password grant.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *TokenRequest) ToUseCaseInput() usecase.AuthenticateInput {
	return usecase.AuthenticateInput{Username: r.Username, Password: r.Password}
}

// RecaptchaRequest carries the client token to score.
type RecaptchaRequest struct {
	Response string `json:"response"`
}
