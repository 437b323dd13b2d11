package sensing

import (
	"errors"
	"testing"
	"time"

	"github.com/cjeanneret/HelioGo/internal/config"
)

// sequenceADC returns scripted values per channel, in order, repeating the
// last value once the script runs out.
type sequenceADC struct {
	values map[int][]int
	index  map[int]int
	reads  int
	err    error
}

func newSequenceADC() *sequenceADC {
	return &sequenceADC{
		values: make(map[int][]int),
		index:  make(map[int]int),
	}
}

func (s *sequenceADC) Read(channel int) (int, error) {
	s.reads++
	if s.err != nil {
		return 0, s.err
	}
	script := s.values[channel]
	if len(script) == 0 {
		return 0, nil
	}
	i := s.index[channel]
	if i >= len(script) {
		i = len(script) - 1
	} else {
		s.index[channel]++
	}
	return script[i], nil
}

func (s *sequenceADC) Close() error { return nil }

func sensorsConfig(samples int, swap bool) config.SensorsConfig {
	return config.SensorsConfig{
		TopLeftChannel:     0,
		TopRightChannel:    1,
		BottomLeftChannel:  2,
		BottomRightChannel: 3,
		Samples:            samples,
		SwapTop:            swap,
	}
}

func TestReader_AveragesTruncated(t *testing.T) {
	a := newSequenceADC()
	a.values[0] = []int{100, 101, 103} // mean 101.33 -> 101

	r := NewReader(a, sensorsConfig(3, false), 0)
	got := r.Acquire()

	if got.TopLeft != 101 {
		t.Errorf("TopLeft = %d, want truncated mean 101", got.TopLeft)
	}
}

func TestReader_ReadsEveryChannelSamplesTimes(t *testing.T) {
	a := newSequenceADC()
	r := NewReader(a, sensorsConfig(5, false), 0)
	r.Acquire()

	if a.reads != 4*5 {
		t.Errorf("ADC reads = %d, want %d", a.reads, 4*5)
	}
}

func TestReader_SwapExchangesTopPair(t *testing.T) {
	a := newSequenceADC()
	a.values[0] = []int{200}  // top-left channel
	a.values[1] = []int{1000} // top-right channel
	a.values[2] = []int{300}
	a.values[3] = []int{400}

	r := NewReader(a, sensorsConfig(1, true), 0)
	got := r.Acquire()

	if got.TopLeft != 1000 || got.TopRight != 200 {
		t.Errorf("swap not applied: TopLeft=%d TopRight=%d, want 1000/200", got.TopLeft, got.TopRight)
	}
	if got.BottomLeft != 300 || got.BottomRight != 400 {
		t.Errorf("swap touched bottom pair: BottomLeft=%d BottomRight=%d", got.BottomLeft, got.BottomRight)
	}
}

func TestReader_NoSwapLeavesOrder(t *testing.T) {
	a := newSequenceADC()
	a.values[0] = []int{200}
	a.values[1] = []int{1000}

	r := NewReader(a, sensorsConfig(1, false), 0)
	got := r.Acquire()

	if got.TopLeft != 200 || got.TopRight != 1000 {
		t.Errorf("TopLeft=%d TopRight=%d, want 200/1000", got.TopLeft, got.TopRight)
	}
}

func TestReader_SleepsBetweenSamples(t *testing.T) {
	a := newSequenceADC()
	r := NewReader(a, sensorsConfig(4, false), 2*time.Millisecond)

	var slept []time.Duration
	r.sleep = func(d time.Duration) { slept = append(slept, d) }

	r.Acquire()

	// 3 pauses per channel (between samples, not after the last), 4 channels.
	if len(slept) != 4*3 {
		t.Errorf("sleep calls = %d, want %d", len(slept), 4*3)
	}
	for _, d := range slept {
		if d != 2*time.Millisecond {
			t.Errorf("sleep duration = %v, want 2ms", d)
		}
	}
}

func TestReader_ZeroDelaySkipsSleep(t *testing.T) {
	a := newSequenceADC()
	r := NewReader(a, sensorsConfig(5, false), 0)

	called := false
	r.sleep = func(time.Duration) { called = true }

	r.Acquire()
	if called {
		t.Error("sleep should not be called with zero delay")
	}
}

func TestReader_ADCErrorsFlowAsZeros(t *testing.T) {
	a := newSequenceADC()
	a.err = errors.New("adc offline")

	r := NewReader(a, sensorsConfig(3, false), 0)
	got := r.Acquire()

	if got.TopLeft != 0 || got.BottomRight != 0 {
		t.Errorf("errored reads should average to 0, got %+v", got)
	}
}
