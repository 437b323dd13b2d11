package tracker

import (
	"math"

	"github.com/cjeanneret/HelioGo/internal/config"
	"github.com/cjeanneret/HelioGo/internal/logic/sensing"
)

// Ratios holds the two normalized differential light-balance signals for
// one iteration, each in [-1, 1]. Zero means balanced illumination on that
// axis.
type Ratios struct {
	Horizontal float64 // positive: more light on the left pairing
	Vertical   float64 // positive: more light on the top pairing
}

// Normalize converts the four corrected readings into the two axis ratios.
// The deadzone is expressed on the raw sensor scale: a ratio whose
// magnitude times the sensor full scale falls below it is forced to
// exactly 0 to keep noise from driving micro-oscillation near balance.
func Normalize(r sensing.Readings, deadzone float64) Ratios {
	leftSum := r.TopLeft + r.BottomLeft
	rightSum := r.TopRight + r.BottomRight
	topSum := r.TopLeft + r.TopRight
	bottomSum := r.BottomLeft + r.BottomRight

	return Ratios{
		Horizontal: applyDeadzone(ratio(leftSum, rightSum), deadzone),
		Vertical:   applyDeadzone(ratio(topSum, bottomSum), deadzone),
	}
}

// ratio returns (a-b)/(a+b), or 0 when the denominator is 0 (total
// darkness on both pairings). Always finite.
func ratio(a, b int) float64 {
	sum := a + b
	if sum == 0 {
		return 0
	}
	return float64(a-b) / float64(sum)
}

func applyDeadzone(r, deadzone float64) float64 {
	if math.Abs(r)*config.SensorFullScale < deadzone {
		return 0
	}
	return r
}
