package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Round2 rounds v half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ParseNumber reads a grid cell as a number. Blank, nil and non-numeric
// values report ok=false.
func ParseNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(val, ",", ""))
		if s == "" {
			return 0, false
		}
		f, err := cast.ToFloat64E(s)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumberOrZero is ParseNumber with non-numeric cells degraded to zero.
func NumberOrZero(v any) float64 {
	f, _ := ParseNumber(v)
	return f
}
