package helpers

import (
	"math"
	"strconv"
)

// FormatAmount renders an amount the way it appears in notification texts: ₹2000, ₹1250.5
func FormatAmount(amount float64) string {
	return "₹" + strconv.FormatFloat(amount, 'f', -1, 64)
}

// IsPositiveAmount rejects zero, negatives, NaN and infinities.
func IsPositiveAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount > 0
}
