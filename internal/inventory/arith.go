package inventory

import (
	"fmt"
	"math/bits"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
)

// PercentOf returns floor(value * percent / 100) using a 128-bit
// intermediate, so it is exact whenever the result fits in uint64.
func PercentOf(value, percent uint64) (uint64, error) {
	hi, lo := bits.Mul64(value, percent)
	if hi >= 100 {
		return 0, fmt.Errorf("%d%% of %d overflows: %w", percent, value, domain.ErrInvalidData)
	}
	quo, _ := bits.Div64(hi, lo, 100)
	return quo, nil
}

// CheckedAdd returns a + b, or ErrInvalidData when the sum wraps
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%d + %d overflows: %w", a, b, domain.ErrInvalidData)
	}
	return sum, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, fmt.Errorf("%d * %d overflows: %w", a, b, domain.ErrInvalidData)
	}
	return lo, nil
}

// greaterShare reports whether gap*100 > total*percent, compared exactly
func greaterShare(gap, total, percent uint64) bool {
	gHi, gLo := bits.Mul64(gap, 100)
	tHi, tLo := bits.Mul64(total, percent)
	return gHi > tHi || (gHi == tHi && gLo > tLo)
}
