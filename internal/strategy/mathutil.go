package strategy

import (
	"math"

	"okx-trading-core/pkg/types"
)

// truncateF64 truncates v toward zero to the given number of decimal
// digits.
func truncateF64(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Trunc(v*scale) / scale
}

// roundF64 rounds v half-away-from-zero to the given number of decimal
// digits.
func roundF64(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}

// sideSizeFromRaw splits a signed raw size into a side and magnitude: a
// positive raw size is a buy of that size, negative is a sell of |size|.
func sideSizeFromRaw(raw float64) (types.Side, float64) {
	if raw >= 0 {
		return types.Buy, raw
	}
	return types.Sell, -raw
}
