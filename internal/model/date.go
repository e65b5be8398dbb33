package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date that marshals as YYYY-MM-DD.
type Date time.Time

// ParseDate parses a YYYY-MM-DD string in UTC.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date(t), nil
}

func (d Date) String() string {
	return time.Time(d).Format(DateLayout)
}

// Storage converts the date to its column representation.
func (d Date) Storage() datatypes.Date {
	t := time.Time(d)
	return datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
