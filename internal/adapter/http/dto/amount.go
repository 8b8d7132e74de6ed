package dto

import "github.com/shopspring/decimal"

var jsonNull = []byte("null")

// Amount is a money value encoded as a bare JSON number.
type Amount decimal.Decimal

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = Amount(d)
	return nil
}

// Decimal returns the underlying value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}

// NullAmount is an Amount that encodes as null when absent.
type NullAmount decimal.NullDecimal

func (a NullAmount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return jsonNull, nil
	}
	return Amount(a.Decimal).MarshalJSON()
}

func (a *NullAmount) UnmarshalJSON(b []byte) error {
	var d decimal.NullDecimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = NullAmount(d)
	return nil
}
