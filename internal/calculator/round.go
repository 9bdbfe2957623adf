package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds half-to-even at the given number of decimal places.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).RoundBank(places).Float64()
	return f
}

// RoundPtr rounds the pointed-to value; nil stays nil.
func RoundPtr(v *float64, places int32) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v, places)
	return &r
}
