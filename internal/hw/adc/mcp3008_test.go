package adc

import (
	"testing"

	"github.com/cjeanneret/HelioGo/internal/hw/gpio"
)

// chipDriver emulates the MCP3008 side of the bit-banged protocol.
// It records writes and serves a preset conversion result on MISO:
// one null bit followed by ten data bits, MSB first.
type chipDriver struct {
	cfg    Config
	result int

	mosiBits  []bool
	misoIndex int
	csLow     bool
	csEvents  []gpio.Level
}

func (d *chipDriver) SetupPin(pin int, mode gpio.PinMode) error { return nil }

func (d *chipDriver) WritePin(pin int, level gpio.Level) error {
	switch pin {
	case d.cfg.CSPin:
		d.csLow = level == gpio.Low
		d.csEvents = append(d.csEvents, level)
		if d.csLow {
			d.misoIndex = 0
		}
	case d.cfg.MosiPin:
		if d.csLow {
			d.mosiBits = append(d.mosiBits, level == gpio.High)
		}
	}
	return nil
}

func (d *chipDriver) ReadPin(pin int) (gpio.Level, error) {
	if pin != d.cfg.MisoPin || !d.csLow {
		return gpio.Low, nil
	}
	// Bit 0 is the null bit, bits 1-10 are the result MSB first.
	idx := d.misoIndex
	d.misoIndex++
	if idx == 0 || idx > 10 {
		return gpio.Low, nil
	}
	shift := 10 - idx
	return gpio.Level(d.result&(1<<shift) != 0), nil
}

func (d *chipDriver) Close() error { return nil }

func newChip(t *testing.T, result int) (*MCP3008, *chipDriver) {
	t.Helper()
	cfg := Config{ClockPin: 11, MosiPin: 10, MisoPin: 9, CSPin: 8}
	drv := &chipDriver{cfg: cfg, result: result}
	m, err := NewMCP3008(drv, cfg)
	if err != nil {
		t.Fatalf("NewMCP3008: %v", err)
	}
	return m, drv
}

func TestMCP3008_ReadDecodesResult(t *testing.T) {
	cases := []int{0, 1, 512, 800, 1023}
	for _, want := range cases {
		m, _ := newChip(t, want)
		got, err := m.Read(0)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if got != want {
			t.Errorf("Read = %d, want %d", got, want)
		}
	}
}

func TestMCP3008_CommandBits(t *testing.T) {
	cases := []struct {
		channel int
		want    []bool // start, single-ended, D2, D1, D0
	}{
		{0, []bool{true, true, false, false, false}},
		{3, []bool{true, true, false, true, true}},
		{5, []bool{true, true, true, false, true}},
		{7, []bool{true, true, true, true, true}},
	}
	for _, tc := range cases {
		m, drv := newChip(t, 600)
		if _, err := m.Read(tc.channel); err != nil {
			t.Fatalf("Read(%d): %v", tc.channel, err)
		}
		if len(drv.mosiBits) != 5 {
			t.Fatalf("channel %d: expected 5 command bits, got %d", tc.channel, len(drv.mosiBits))
		}
		for i, want := range tc.want {
			if drv.mosiBits[i] != want {
				t.Errorf("channel %d: command bit %d = %v, want %v", tc.channel, i, drv.mosiBits[i], want)
			}
		}
	}
}

func TestMCP3008_ChipSelectFraming(t *testing.T) {
	m, drv := newChip(t, 100)
	drv.csEvents = nil

	if _, err := m.Read(2); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(drv.csEvents) != 2 {
		t.Fatalf("expected CS low then high, got %d events", len(drv.csEvents))
	}
	if drv.csEvents[0] != gpio.Low || drv.csEvents[1] != gpio.High {
		t.Errorf("CS sequence = %v, want [Low High]", drv.csEvents)
	}
}

func TestMCP3008_InvalidChannel(t *testing.T) {
	m, _ := newChip(t, 0)
	for _, ch := range []int{-1, 8, 100} {
		if _, err := m.Read(ch); err == nil {
			t.Errorf("Read(%d) should fail", ch)
		}
	}
}

func TestMCP3008_ResultNeverExceedsFullScale(t *testing.T) {
	m, _ := newChip(t, FullScale)
	got, err := m.Read(1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got < 0 || got > FullScale {
		t.Errorf("Read = %d, outside [0, %d]", got, FullScale)
	}
}

func TestMockReader_Defaults(t *testing.T) {
	m := NewMockReader()
	v, err := m.Read(4)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != FullScale/2 {
		t.Errorf("default value = %d, want %d", v, FullScale/2)
	}

	m.SetChannel(4, 900)
	v, _ = m.Read(4)
	if v != 900 {
		t.Errorf("after SetChannel, value = %d, want 900", v)
	}
}

func TestMockReader_InvalidChannel(t *testing.T) {
	m := NewMockReader()
	if _, err := m.Read(8); err == nil {
		t.Error("Read(8) should fail")
	}
}
