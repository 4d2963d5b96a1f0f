package aggregate

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds x to two decimals, half away from zero, on the shortest
// decimal form of x. 1.005 becomes 1.01 and 2.675 becomes 2.68.
// NaN and infinities are returned unchanged.
func Round2(x float64) float64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return x
	}
	f, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return f
}
