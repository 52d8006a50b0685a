package utils

import "math"

// MinInt returns the smaller of two integers.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// PositionSize returns the number of units to buy so that a stop-out loses
// exactly riskAmount. Returns 0 when entry and stop coincide.
func PositionSize(riskAmount, entryPrice, stopPrice float64) float64 {
	perUnitRisk := math.Abs(entryPrice - stopPrice)
	if perUnitRisk == 0 {
		return 0
	}
	return RoundFloat(riskAmount/perUnitRisk, 2)
}
