package tracker

import (
	"github.com/cjeanneret/HelioGo/internal/config"
)

// The target resolver maps one axis ratio to a desired absolute angle.
// Purely proportional: each iteration's target depends only on the current
// ratio, never on previous targets or positions.

// HorizontalTarget returns the desired pan angle for the given ratio.
// Positive ratio means more light on the left pairing, which commands a
// decrease in angle from center unless the axis is inverted.
func HorizontalTarget(axis config.AxisConfig, ratio float64) float64 {
	return axis.Clamp(axis.Center() - axisSign(axis)*ratioToOffset(axis, ratio))
}

// VerticalTarget returns the desired tilt angle for the given ratio.
// Positive ratio means more light on top, which commands an increase in
// angle from center (tilt up) unless the axis is inverted.
func VerticalTarget(axis config.AxisConfig, ratio float64) float64 {
	return axis.Clamp(axis.Center() + axisSign(axis)*ratioToOffset(axis, ratio))
}

// ratioToOffset converts a ratio to an angular offset from center. The
// ratio is clamped into [-1, 1] so no gain can ever push the offset past
// the half range times gain.
func ratioToOffset(axis config.AxisConfig, ratio float64) float64 {
	if ratio > 1 {
		ratio = 1
	}
	if ratio < -1 {
		ratio = -1
	}
	return ratio * axis.Gain * axis.HalfRange()
}

// axisSign folds the mounting inversion flag into a multiplier so the
// direction formulas above stay untouched by wiring concerns.
func axisSign(axis config.AxisConfig) float64 {
	if axis.Invert {
		return -1
	}
	return 1
}
