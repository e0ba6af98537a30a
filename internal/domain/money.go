package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a fixed-point amount with a scale of 2 (cents), matching the
// spec's requirement that monetary amounts never be carried as raw floats.
// All EDI monetary elements (BPR02, CLM02, SV102, CLP03/04, CAS amounts...)
// are parsed directly into Money at the extractor boundary.
type Money int64

// ParseMoney parses an X12 monetary element (e.g. "1000.00", "1000", "-50.5")
// into Money, rounding half-up to 2 decimal places.
func ParseMoney(raw string) (Money, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty monetary element")
	}

	neg := false
	if strings.HasPrefix(raw, "-") {
		neg = true
		raw = raw[1:]
	}

	whole, frac, hasFrac := strings.Cut(raw, ".")
	if whole == "" {
		whole = "0"
	}
	wholeVal, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid monetary element %q: %w", raw, err)
	}

	cents := int64(0)
	if hasFrac {
		// round half-up to 2 decimals regardless of how many fractional digits arrived
		for len(frac) < 3 {
			frac += "0"
		}
		fracVal, err := strconv.ParseInt(frac[:3], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid monetary fraction %q: %w", raw, err)
		}
		cents = (fracVal + 5) / 10
		if cents == 100 {
			wholeVal++
			cents = 0
		}
	}

	total := wholeVal*100 + cents
	if neg {
		total = -total
	}
	return Money(total), nil
}

// MustParseMoney is ParseMoney but panics on error; used for literal test fixtures.
func MustParseMoney(raw string) Money {
	m, err := ParseMoney(raw)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromFloat converts a float64 boundary value (e.g. from a JSON
// request body) into Money, rounding half-up to 2 decimals. Any float
// encountered in this system is assumed to be a conversion boundary, never
// storage representation.
func NewMoneyFromFloat(f float64) Money {
	return Money(math.Round(f * 100))
}

// Float64 converts Money to a float64 for serialization/display only.
func (m Money) Float64() float64 {
	return float64(m) / 100
}

// String renders Money as a fixed 2-decimal string, e.g. "1000.00".
func (m Money) String() string {
	neg := m < 0
	v := int64(m)
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d.%02d", v/100, v%100)
	if neg {
		s = "-" + s
	}
	return s
}

// MarshalJSON renders Money as a JSON number with 2 decimals preserved.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money { return m + other }

// Sub returns m - other.
func (m Money) Sub(other Money) Money { return m - other }

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// WithinTolerance reports whether |m - other| <= toleranceCents.
func (m Money) WithinTolerance(other Money, toleranceCents Money) bool {
	return m.Sub(other).Abs() <= toleranceCents
}

// CentTolerance is the standard ±0.01 tolerance used across invariant checks.
const CentTolerance Money = 1

// SumMoney sums a slice of Money values.
func SumMoney(values []Money) Money {
	var total Money
	for _, v := range values {
		total += v
	}
	return total
}
