package pricing

import (
	"fmt"
	"math"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// minorPerMajor is the number of minor units in one major currency unit.
const minorPerMajor = 100

// RoundHalfUp converts a major-unit float product (size multiplier, per-km
// rate) into minor units, rounding half-up to the nearest cent.
func RoundHalfUp(x float64) Money {
	return Money(math.Floor(x + 0.5))
}

// BlendHalves prices a line split between two products: the arithmetic mean
// of both part prices rounded up to the next half major unit. The rounding is
// one-directional on purpose; a fair split must never round below the mean.
func BlendHalves(p1, p2 Money) Money {
	sum := p1 + p2
	if sum < 0 {
		sum = 0
	}
	half := minorPerMajor / 2
	steps := sum / minorPerMajor
	if sum%minorPerMajor != 0 {
		steps++
	}
	return steps * Money(half)
}

// FormatMajor renders minor units as a major-unit decimal string ("12.50").
func FormatMajor(m Money) string {
	neg := ""
	if m < 0 {
		neg = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", neg, m/minorPerMajor, m%minorPerMajor)
}
