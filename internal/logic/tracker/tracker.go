package tracker

import (
	"context"
	"time"

	"github.com/cjeanneret/HelioGo/internal/config"
	"github.com/cjeanneret/HelioGo/internal/debug"
	"github.com/cjeanneret/HelioGo/internal/hw/display"
	"github.com/cjeanneret/HelioGo/internal/logic/motion"
	"github.com/cjeanneret/HelioGo/internal/logic/sensing"
)

// Snapshot is an immutable copy of one iteration's values, taken between
// iterations. Telemetry consumers (web status, tests) only ever see these;
// the live state is touched by the control goroutine alone.
type Snapshot struct {
	Time     time.Time        `json:"time"`
	Readings sensing.Readings `json:"readings"`
	RatioH   float64          `json:"ratio_h"`
	RatioV   float64          `json:"ratio_v"`
	TargetH  float64          `json:"target_h"`
	TargetV  float64          `json:"target_v"`
	Pan      int              `json:"pan"`
	Tilt     int              `json:"tilt"`
}

// Tracker runs the closed control loop: acquisition, normalization, target
// resolution, slew-limited motion, status surface and diagnostics. One
// iteration runs to completion before the next begins; the only state
// carried across iterations is the believed servo position.
type Tracker struct {
	cfg     *config.Config
	reader  *sensing.Reader
	motion  *motion.Controller
	display display.Display

	state   motion.State
	publish func(Snapshot)
	sleep   func(time.Duration) // injectable for tests
}

// New creates a tracker starting with both axes at their configured
// center.
func New(cfg *config.Config, reader *sensing.Reader, motionCtrl *motion.Controller, disp display.Display) *Tracker {
	return &Tracker{
		cfg:     cfg,
		reader:  reader,
		motion:  motionCtrl,
		display: disp,
		state:   motion.Centered(cfg.Pan, cfg.Tilt),
		sleep:   time.Sleep,
	}
}

// SetPublisher registers a callback receiving the snapshot of every
// completed iteration. The callback runs on the control goroutine and must
// not block; hand the snapshot off and return.
func (t *Tracker) SetPublisher(fn func(Snapshot)) {
	t.publish = fn
}

// State returns the current believed positions.
func (t *Tracker) State() motion.State {
	return t.state
}

// Iterate runs one full pass of the control loop and returns its snapshot.
func (t *Tracker) Iterate() (Snapshot, error) {
	readings := t.reader.Acquire()
	ratios := Normalize(readings, t.cfg.Sensors.Deadzone)

	targetH := HorizontalTarget(t.cfg.Pan, ratios.Horizontal)
	targetV := VerticalTarget(t.cfg.Tilt, ratios.Vertical)

	state, err := t.motion.Apply(t.state, targetH, targetV)
	t.state = state
	if err != nil {
		return Snapshot{}, err
	}

	if derr := t.display.ShowReadings(readings.TopLeft, readings.TopRight, readings.BottomLeft, readings.BottomRight); derr != nil {
		debug.Error(derr)
	}

	debug.Live("tl=%4d tr=%4d bl=%4d br=%4d | ratioH=%.3f ratioV=%.3f | targetH=%.1f targetV=%.1f | pan=%d tilt=%d",
		readings.TopLeft, readings.TopRight, readings.BottomLeft, readings.BottomRight,
		ratios.Horizontal, ratios.Vertical, targetH, targetV, state.Pan, state.Tilt)

	snap := Snapshot{
		Time:     time.Now(),
		Readings: readings,
		RatioH:   ratios.Horizontal,
		RatioV:   ratios.Vertical,
		TargetH:  targetH,
		TargetV:  targetV,
		Pan:      state.Pan,
		Tilt:     state.Tilt,
	}
	if t.publish != nil {
		t.publish(snap)
	}
	return snap, nil
}

// Run iterates until the context is cancelled, pausing for the configured
// loop delay between iterations.
func (t *Tracker) Run(ctx context.Context) error {
	t.banner()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := t.Iterate(); err != nil {
			return err
		}

		if delay := t.cfg.LoopDelay(); delay > 0 {
			t.sleep(delay)
		}
	}
}

// banner announces the configured angle ranges once at startup.
func (t *Tracker) banner() {
	debug.Summary("Light tracker starting")
	debug.Value("Pan range", debug.Fmt("[%d, %d] deg", t.cfg.Pan.MinAngle, t.cfg.Pan.MaxAngle))
	debug.Value("Tilt range", debug.Fmt("[%d, %d] deg", t.cfg.Tilt.MinAngle, t.cfg.Tilt.MaxAngle))
}
