package sensing

import (
	"time"

	"github.com/cjeanneret/HelioGo/internal/config"
	"github.com/cjeanneret/HelioGo/internal/debug"
	"github.com/cjeanneret/HelioGo/internal/hw/adc"
)

// Readings holds the four averaged raw light intensities for one loop
// iteration, already corrected for sensor wiring. Ephemeral: recomputed
// from scratch every iteration.
type Readings struct {
	TopLeft     int
	TopRight    int
	BottomLeft  int
	BottomRight int
}

// Reader acquires averaged readings from the four photoresistor channels.
// Each channel is sampled Samples times with a fixed pause between reads,
// so one full acquisition blocks for roughly 4 * Samples * SampleDelay.
type Reader struct {
	adc adc.Reader
	cfg config.SensorsConfig

	delay time.Duration
	sleep func(time.Duration) // injectable for tests
}

// NewReader creates a Reader over the given ADC.
func NewReader(a adc.Reader, cfg config.SensorsConfig, sampleDelay time.Duration) *Reader {
	return &Reader{
		adc:   a,
		cfg:   cfg,
		delay: sampleDelay,
		sleep: time.Sleep,
	}
}

// Acquire reads all four channels and applies the top-sensor swap
// correction. The swap happens here, before any downstream stage can
// observe the readings, and exactly once.
func (r *Reader) Acquire() Readings {
	readings := Readings{
		TopLeft:     r.readAveraged(r.cfg.TopLeftChannel),
		TopRight:    r.readAveraged(r.cfg.TopRightChannel),
		BottomLeft:  r.readAveraged(r.cfg.BottomLeftChannel),
		BottomRight: r.readAveraged(r.cfg.BottomRightChannel),
	}

	if r.cfg.SwapTop {
		readings.TopLeft, readings.TopRight = readings.TopRight, readings.TopLeft
	}
	return readings
}

// readAveraged samples one channel cfg.Samples times and returns the
// truncated integer mean. A failed read contributes whatever the ADC layer
// returned; there is no separate fault path, only statistical smoothing.
func (r *Reader) readAveraged(channel int) int {
	sum := 0
	for i := 0; i < r.cfg.Samples; i++ {
		v, err := r.adc.Read(channel)
		if err != nil {
			debug.Error(err)
		}
		sum += v
		if i < r.cfg.Samples-1 && r.delay > 0 {
			r.sleep(r.delay)
		}
	}
	return sum / r.cfg.Samples
}
