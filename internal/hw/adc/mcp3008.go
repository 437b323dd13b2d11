package adc

import (
	"fmt"

	"github.com/cjeanneret/HelioGo/internal/debug"
	"github.com/cjeanneret/HelioGo/internal/hw/gpio"
)

// Config holds the GPIO pins (BCM) wired to the MCP3008.
type Config struct {
	ClockPin int // CLK
	MosiPin  int // DIN
	MisoPin  int // DOUT
	CSPin    int // CS/SHDN, active LOW
}

// MCP3008 reads a 10-bit MCP3008 converter by bit-banging its SPI-like
// protocol over four GPIO lines. Conversion sequence per the datasheet:
// pull CS low, clock out a start bit, the single-ended mode bit and three
// channel-select bits, then clock in a null bit followed by the ten result
// bits, MSB first.
type MCP3008 struct {
	gpio gpio.Driver
	cfg  Config
}

// NewMCP3008 creates an MCP3008 reader on the given GPIO driver.
// The chip is left deselected (CS high, clock low) between conversions.
func NewMCP3008(g gpio.Driver, cfg Config) (*MCP3008, error) {
	for _, p := range []int{cfg.ClockPin, cfg.MosiPin, cfg.CSPin} {
		if err := g.SetupPin(p, gpio.Output); err != nil {
			return nil, fmt.Errorf("setup output pin %d: %w", p, err)
		}
	}
	if err := g.SetupPin(cfg.MisoPin, gpio.Input); err != nil {
		return nil, fmt.Errorf("setup input pin %d: %w", cfg.MisoPin, err)
	}

	m := &MCP3008{gpio: g, cfg: cfg}
	if err := m.idle(); err != nil {
		return nil, err
	}
	return m, nil
}

// Read performs one conversion on the given channel (0-7).
func (m *MCP3008) Read(channel int) (int, error) {
	if channel < 0 || channel > 7 {
		return 0, fmt.Errorf("channel must be 0-7, got %d", channel)
	}

	if err := m.gpio.WritePin(m.cfg.CSPin, gpio.Low); err != nil {
		return 0, err
	}

	// Command word, MSB first: start bit, single-ended mode, channel (3 bits).
	command := 0x18 | channel
	for i := 4; i >= 0; i-- {
		bit := gpio.Level(command&(1<<i) != 0)
		if err := m.gpio.WritePin(m.cfg.MosiPin, bit); err != nil {
			return 0, err
		}
		if err := m.clockPulse(); err != nil {
			return 0, err
		}
	}

	// One null bit, then ten data bits, shifted out on falling clock edges.
	value := 0
	for i := 0; i < 11; i++ {
		if err := m.clockPulse(); err != nil {
			return 0, err
		}
		level, err := m.gpio.ReadPin(m.cfg.MisoPin)
		if err != nil {
			return 0, err
		}
		value <<= 1
		if level == gpio.High {
			value |= 1
		}
	}

	if err := m.idle(); err != nil {
		return 0, err
	}

	value &= FullScale
	debug.Trace("MCP3008 channel %d = %d", channel, value)
	return value, nil
}

// Close deselects the chip. The GPIO driver itself is shared and closed by
// its owner.
func (m *MCP3008) Close() error {
	return m.idle()
}

func (m *MCP3008) idle() error {
	if err := m.gpio.WritePin(m.cfg.CSPin, gpio.High); err != nil {
		return err
	}
	return m.gpio.WritePin(m.cfg.ClockPin, gpio.Low)
}

func (m *MCP3008) clockPulse() error {
	if err := m.gpio.WritePin(m.cfg.ClockPin, gpio.High); err != nil {
		return err
	}
	return m.gpio.WritePin(m.cfg.ClockPin, gpio.Low)
}
