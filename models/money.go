package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in minor units (cents). It marshals to JSON as a
// decimal number with two places so portals keep receiving 125.50.
type Money int64

func NewMoney(amount float64) Money {
	return Money(math.Round(amount * 100))
}

func (m Money) Float() float64 {
	return float64(m) / 100
}

func (m Money) String() string {
	return strconv.FormatFloat(m.Float(), 'f', 2, 64)
}

// Percent scales by pct percent, rounding half away from zero.
func (m Money) Percent(pct float64) Money {
	return Money(math.Round(float64(m) * pct / 100))
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var s string
		if err2 := json.Unmarshal(data, &s); err2 != nil {
			return fmt.Errorf("money: %w", err)
		}
		parsed, err3 := strconv.ParseFloat(s, 64)
		if err3 != nil {
			return fmt.Errorf("money: %w", err3)
		}
		f = parsed
	}
	*m = NewMoney(f)
	return nil
}
