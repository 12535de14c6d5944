package number

import (
	"github.com/shopspring/decimal"
)

// Scaled interprets a store-resident integer scaled by 10^scale.
func Scaled(value int64, scale int32) decimal.Decimal {
	return decimal.New(value, -scale)
}

// RoundInt64 rounds to the nearest integer, ties away from zero.
func RoundInt64(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// FloorInt64 truncates toward negative infinity.
func FloorInt64(d decimal.Decimal) int64 {
	return d.Floor().IntPart()
}

// Pow10 integer power of ten for fixed-point scaling.
func Pow10(n int32) int64 {
	r := int64(1)
	for ; n > 0; n-- {
		r *= 10
	}

	return r
}
