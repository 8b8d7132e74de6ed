package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxDebtorNameLength   = 255
	MaxCurrencyNameLength = 255
	MaxUsernameLength     = 150
	MinPasswordLength     = 8
	MaxPasswordLength     = 128

	// Transaction sums are stored as NUMERIC(20, 2).
	SumDecimalPlaces = 2
	SumMaxDigits     = 20
)

var sumIntegerLimit = decimal.New(1, SumMaxDigits-SumDecimalPlaces)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var numericRegex = regexp.MustCompile(`^[0-9]+$`)

// A short list of the passwords seen most often in leaked dumps.
var commonPasswords = map[string]bool{
	"123": true, "1234": true, "12345": true, "123456": true, "1234567": true,
	"12345678": true, "123456789": true, "1234567890": true, "111111": true,
	"000000": true, "123123": true, "654321": true, "password": true,
	"password1": true, "password123": true, "qwerty": true, "qwerty123": true,
	"qwertyuiop": true, "abc123": true, "iloveyou": true, "admin": true,
	"letmein": true, "welcome": true, "monkey": true, "dragon": true,
	"football": true, "baseball": true, "sunshine": true, "princess": true,
	"master": true, "shadow": true, "superman": true, "trustno1": true,
	"passw0rd": true, "zaq12wsx": true, "1q2w3e4r": true, "1qaz2wsx": true,
}

// ValidateSum rejects zero amounts and amounts the sum column cannot hold
// exactly: sub-cent fractions and more than 18 integer digits.
func ValidateSum(sum decimal.Decimal) error {
	if sum.IsZero() {
		return NewValidationError("sum", ErrZeroAmount.Error())
	}

	v := &ValidationError{}
	if !sum.Equal(sum.Truncate(SumDecimalPlaces)) {
		v.Add("sum", fmt.Sprintf("Ensure that there are no more than %d decimal places.", SumDecimalPlaces))
	}
	if sum.Abs().GreaterThanOrEqual(sumIntegerLimit) {
		v.Add("sum", fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.",
			SumMaxDigits-SumDecimalPlaces))
	}
	return v.Err()
}

// NormalizeDebtorName trims name and checks its length.
func NormalizeDebtorName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", NewValidationError("name", "This field may not be blank.")
	}
	if len([]rune(name)) > MaxDebtorNameLength {
		return "", NewValidationError("name",
			fmt.Sprintf("Ensure this field has no more than %d characters.", MaxDebtorNameLength))
	}
	return name, nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// PasswordProblems lists every strength check the password fails, in a fixed order.
func PasswordProblems(password string) []string {
	var problems []string

	if len([]rune(password)) < MinPasswordLength {
		problems = append(problems,
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if len([]rune(password)) > MaxPasswordLength {
		problems = append(problems,
			fmt.Sprintf("This password is too long. It must contain at most %d characters.", MaxPasswordLength))
	}
	if commonPasswords[strings.ToLower(password)] {
		problems = append(problems, "This password is too common.")
	}
	if numericRegex.MatchString(password) {
		problems = append(problems, "This password is entirely numeric.")
	}

	return problems
}

// PasswordError formats password problems the way the registration endpoint reports them.
func PasswordError(problems []string) string {
	quoted := make([]string, len(problems))
	for i, p := range problems {
		quoted[i] = "'" + p + "'"
	}
	return "Unsuccessful attempt to register: [" + strings.Join(quoted, ", ") + "]"
}
