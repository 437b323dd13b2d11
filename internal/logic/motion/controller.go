package motion

import (
	"math"

	"github.com/cjeanneret/HelioGo/internal/config"
	"github.com/cjeanneret/HelioGo/internal/debug"
	"github.com/cjeanneret/HelioGo/internal/hw/servo"
)

// idleThreshold is the dead band around the target below which an axis
// holds still and issues no servo command. Avoids redundant writes and
// jitter when already on target.
const idleThreshold = 0.5

// State carries the believed servo positions across loop iterations: the
// only state the control loop keeps between passes. With open-loop servos
// this bookkeeping is authoritative as far as the software can know.
type State struct {
	Pan  int
	Tilt int
}

// Centered returns the start-of-process state with both axes at their
// configured center.
func Centered(pan, tilt config.AxisConfig) State {
	return State{
		Pan:  int(pan.Center()),
		Tilt: int(tilt.Center()),
	}
}

// Controller moves both axes toward their targets under a slew limit and
// commands the servos. It is an intermediate layer between the tracking
// logic (ratios, targets) and the PWM hardware.
type Controller struct {
	pan  servo.Servo
	tilt servo.Servo

	panAxis  config.AxisConfig
	tiltAxis config.AxisConfig
	maxStep  int
}

// NewController creates a motion controller for the two servos.
func NewController(pan, tilt servo.Servo, panAxis, tiltAxis config.AxisConfig, maxStep int) *Controller {
	return &Controller{
		pan:      pan,
		tilt:     tilt,
		panAxis:  panAxis,
		tiltAxis: tiltAxis,
		maxStep:  maxStep,
	}
}

// Apply advances both axes one iteration toward their targets and returns
// the new state. An axis whose position already matches its target (within
// the idle threshold) is left alone: no servo command is issued for it.
// Commands are fire-and-forget; there is no feedback channel, so a stalled
// servo silently desynchronizes from the believed position.
func (c *Controller) Apply(st State, panTarget, tiltTarget float64) (State, error) {
	next := st

	if pos, moved := stepToward(st.Pan, panTarget, c.maxStep, c.panAxis); moved {
		debug.Move("pan", st.Pan, pos)
		next.Pan = pos
		if err := c.pan.SetAngle(pos); err != nil {
			return next, err
		}
	}

	if pos, moved := stepToward(st.Tilt, tiltTarget, c.maxStep, c.tiltAxis); moved {
		debug.Move("tilt", st.Tilt, pos)
		next.Tilt = pos
		if err := c.tilt.SetAngle(pos); err != nil {
			return next, err
		}
	}

	return next, nil
}

// stepToward moves position toward target by at most maxStep whole
// degrees, guaranteeing at least one degree of progress per non-idle
// iteration, and clamps the result into the axis range.
func stepToward(position int, target float64, maxStep int, axis config.AxisConfig) (int, bool) {
	diff := target - float64(position)
	if math.Abs(diff) < idleThreshold {
		return position, false
	}

	step := int(math.Ceil(math.Abs(diff)))
	if step > maxStep {
		step = maxStep
	}

	if diff > 0 {
		position += step
	} else {
		position -= step
	}
	return axis.ClampInt(position), true
}
