package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ErrDateFormat is returned for dates that are not YYYY-MM-DD.
var ErrDateFormat = errors.New("date has wrong format, use YYYY-MM-DD")

// Date is a calendar date encoded as "YYYY-MM-DD".
type Date time.Time

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrDateFormat, err)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return ErrDateFormat
	}
	*d = Date(t)
	return nil
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time {
	return time.Time(d)
}
