package valueobject

import (
	"github.com/shopspring/decimal"
)

const (
	// MoneyPlaces is the number of decimal places shown to people
	MoneyPlaces int32 = 2
	// InputPlaces is the most decimal places accepted for hours, rates and tax
	InputPlaces int32 = 2
	// StoragePlaces is the scale amounts are stored at
	StoragePlaces int32 = 4
)

var hundred = decimal.NewFromInt(100)

// Percentage returns base * percent / 100 without rounding
func Percentage(base, percent decimal.Decimal) decimal.Decimal {
	return base.Mul(percent).Div(hundred)
}

// WithPercentage returns base + base*percent/100
func WithPercentage(base, percent decimal.Decimal) decimal.Decimal {
	return base.Add(Percentage(base, percent))
}

// InRange reports whether lo <= v <= hi
func InRange(v, lo, hi decimal.Decimal) bool {
	return v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi)
}

// Sum adds up values
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// RoundToStorage rounds half away from zero to StoragePlaces
func RoundToStorage(v decimal.Decimal) decimal.Decimal {
	return v.Round(StoragePlaces)
}

// HasAtMostPlaces reports whether v needs no more than places decimals
func HasAtMostPlaces(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Truncate(places))
}

// FormatMoney renders v with exactly MoneyPlaces decimals
func FormatMoney(v decimal.Decimal) string {
	return v.StringFixed(MoneyPlaces)
}
