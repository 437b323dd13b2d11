package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SensorFullScale is the maximum raw value the ADC can return (10-bit MCP3008).
const SensorFullScale = 1023

// AxisConfig describes one rotational axis (pan/azimuth or tilt/elevation).
// Immutable for the process lifetime once loaded.
type AxisConfig struct {
	MinAngle int     `yaml:"min_angle"` // lowest commandable angle (degrees)
	MaxAngle int     `yaml:"max_angle"` // highest commandable angle (degrees)
	Invert   bool    `yaml:"invert"`    // flip direction for arbitrary mounting
	Gain     float64 `yaml:"gain"`      // proportional gain applied to the light ratio
}

// Center returns the midpoint of the axis range in degrees.
func (a AxisConfig) Center() float64 {
	return float64(a.MinAngle+a.MaxAngle) / 2.0
}

// HalfRange returns half the angular span of the axis.
func (a AxisConfig) HalfRange() float64 {
	return float64(a.MaxAngle-a.MinAngle) / 2.0
}

// Clamp forces an angle into [MinAngle, MaxAngle].
func (a AxisConfig) Clamp(angle float64) float64 {
	return math.Min(math.Max(angle, float64(a.MinAngle)), float64(a.MaxAngle))
}

// ClampInt forces an integer angle into [MinAngle, MaxAngle].
func (a AxisConfig) ClampInt(angle int) int {
	if angle < a.MinAngle {
		return a.MinAngle
	}
	if angle > a.MaxAngle {
		return a.MaxAngle
	}
	return angle
}

// SensorsConfig describes the four photoresistor channels on the ADC and the
// acquisition parameters shared by all of them.
type SensorsConfig struct {
	TopLeftChannel     int  `yaml:"top_left_channel"`
	TopRightChannel    int  `yaml:"top_right_channel"`
	BottomLeftChannel  int  `yaml:"bottom_left_channel"`
	BottomRightChannel int  `yaml:"bottom_right_channel"`
	Samples            int  `yaml:"samples"`          // reads averaged per channel
	SampleDelayMs      int  `yaml:"sample_delay_ms"`  // pause between reads (ms)
	SwapTop            bool `yaml:"swap_top_sensors"` // exchange TL/TR after acquisition (wiring correction)

	// Deadzone is expressed on the raw sensor scale: a ratio whose magnitude
	// times SensorFullScale falls below it is treated as balanced (exactly 0).
	Deadzone float64 `yaml:"deadzone"`
}

// ADCConfig holds the GPIO pins (BCM) used to bit-bang the MCP3008.
type ADCConfig struct {
	ClockPin int `yaml:"clock_pin"`
	MosiPin  int `yaml:"mosi_pin"`
	MisoPin  int `yaml:"miso_pin"`
	CSPin    int `yaml:"cs_pin"`
}

// ServoConfig describes one hobby servo on a hardware PWM channel.
// Channel 0 maps to BCM pin 18 (PWM0), channel 1 to BCM pin 13 (PWM1).
type ServoConfig struct {
	Pin        int `yaml:"pin"`          // BCM pin carrying the PWM signal
	Channel    int `yaml:"channel"`      // hardware PWM channel (0 or 1)
	MinPulseUs int `yaml:"min_pulse_us"` // pulse width at 0 degrees
	MaxPulseUs int `yaml:"max_pulse_us"` // pulse width at TravelDeg degrees
	TravelDeg  int `yaml:"travel_deg"`   // mechanical travel from min to max pulse
}

// DisplayConfig selects the status surface implementation.
type DisplayConfig struct {
	Type   string `yaml:"type"`   // "console", "framebuffer" or "none"
	Device string `yaml:"device"` // framebuffer device, e.g. /dev/fb0
}

// DefaultsConfig contains generic loop parameters.
type DefaultsConfig struct {
	LoopDelayMs  int  `yaml:"loop_delay_ms"` // pause at the end of each iteration
	MaxStepDeg   int  `yaml:"max_step_deg"`  // slew limit: max degrees moved per iteration
	DebugLevel   int  `yaml:"debug_level"`   // 0=off, 1=info, 2=live, 3=verbose, 4=trace
	MockHardware bool `yaml:"mock_hardware"` // use mock GPIO/ADC/servos (dev on PC)
}

// Config aggregates all application configuration.
type Config struct {
	Pan       AxisConfig     `yaml:"pan"`  // horizontal / azimuth axis
	Tilt      AxisConfig     `yaml:"tilt"` // vertical / elevation axis
	Sensors   SensorsConfig  `yaml:"sensors"`
	ADC       ADCConfig      `yaml:"adc"`
	PanServo  ServoConfig    `yaml:"pan_servo"`
	TiltServo ServoConfig    `yaml:"tilt_servo"`
	Display   DisplayConfig  `yaml:"display"`
	Defaults  DefaultsConfig `yaml:"defaults"`
}

// Default returns the built-in reference configuration: pan over the full
// 0-180 range, tilt restricted to 30-150 to protect the mount, ten samples
// per channel and an 8 degree per iteration slew limit.
func Default() *Config {
	return &Config{
		Pan:  AxisConfig{MinAngle: 0, MaxAngle: 180, Gain: 1.0},
		Tilt: AxisConfig{MinAngle: 30, MaxAngle: 150, Gain: 1.0},
		Sensors: SensorsConfig{
			TopLeftChannel:     0,
			TopRightChannel:    1,
			BottomLeftChannel:  2,
			BottomRightChannel: 3,
			Samples:            10,
			SampleDelayMs:      2,
			Deadzone:           20,
		},
		ADC: ADCConfig{ClockPin: 11, MosiPin: 10, MisoPin: 9, CSPin: 8},
		PanServo: ServoConfig{
			Pin: 18, Channel: 0,
			MinPulseUs: 500, MaxPulseUs: 2500, TravelDeg: 180,
		},
		TiltServo: ServoConfig{
			Pin: 13, Channel: 1,
			MinPulseUs: 500, MaxPulseUs: 2500, TravelDeg: 180,
		},
		Display: DisplayConfig{Type: "console", Device: "/dev/fb0"},
		Defaults: DefaultsConfig{
			LoopDelayMs: 50,
			MaxStepDeg:  8,
			DebugLevel:  1,
		},
	}
}

// Load reads a YAML file and returns the configuration.
// Fields absent from the file keep the Default() values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints. It is called by Load and again by
// main for configurations assembled in code.
func (c *Config) Validate() error {
	if err := validateAxis("pan", c.Pan); err != nil {
		return err
	}
	if err := validateAxis("tilt", c.Tilt); err != nil {
		return err
	}

	channels := []struct {
		name string
		ch   int
	}{
		{"top_left_channel", c.Sensors.TopLeftChannel},
		{"top_right_channel", c.Sensors.TopRightChannel},
		{"bottom_left_channel", c.Sensors.BottomLeftChannel},
		{"bottom_right_channel", c.Sensors.BottomRightChannel},
	}
	seen := make(map[int]string)
	for _, entry := range channels {
		if entry.ch < 0 || entry.ch > 7 {
			return fmt.Errorf("sensors.%s must be an MCP3008 channel (0-7), got %d", entry.name, entry.ch)
		}
		if other, dup := seen[entry.ch]; dup {
			return fmt.Errorf("sensors.%s and sensors.%s share channel %d", entry.name, other, entry.ch)
		}
		seen[entry.ch] = entry.name
	}
	if c.Sensors.Samples < 1 {
		return fmt.Errorf("sensors.samples must be >= 1, got %d", c.Sensors.Samples)
	}
	if c.Sensors.SampleDelayMs < 0 {
		return fmt.Errorf("sensors.sample_delay_ms must be >= 0, got %d", c.Sensors.SampleDelayMs)
	}
	if c.Sensors.Deadzone < 0 {
		return fmt.Errorf("sensors.deadzone must be >= 0, got %g", c.Sensors.Deadzone)
	}

	if err := validateServo("pan_servo", c.PanServo); err != nil {
		return err
	}
	if err := validateServo("tilt_servo", c.TiltServo); err != nil {
		return err
	}
	if c.PanServo.Channel == c.TiltServo.Channel {
		return fmt.Errorf("pan_servo and tilt_servo share PWM channel %d", c.PanServo.Channel)
	}

	switch c.Display.Type {
	case "console", "framebuffer", "none":
	default:
		return fmt.Errorf("display.type must be console, framebuffer or none, got %q", c.Display.Type)
	}

	if c.Defaults.LoopDelayMs < 0 {
		return fmt.Errorf("defaults.loop_delay_ms must be >= 0, got %d", c.Defaults.LoopDelayMs)
	}
	if c.Defaults.MaxStepDeg < 1 {
		return fmt.Errorf("defaults.max_step_deg must be >= 1, got %d", c.Defaults.MaxStepDeg)
	}
	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("defaults.debug_level must be 0-4, got %d", c.Defaults.DebugLevel)
	}
	return nil
}

func validateAxis(name string, a AxisConfig) error {
	if a.MinAngle >= a.MaxAngle {
		return fmt.Errorf("%s.min_angle must be < %s.max_angle, got [%d, %d]", name, name, a.MinAngle, a.MaxAngle)
	}
	if a.Gain <= 0 || math.IsNaN(a.Gain) || math.IsInf(a.Gain, 0) {
		return fmt.Errorf("%s.gain must be a positive number, got %g", name, a.Gain)
	}
	return nil
}

func validateServo(name string, s ServoConfig) error {
	if s.Channel != 0 && s.Channel != 1 {
		return fmt.Errorf("%s.channel must be 0 or 1, got %d", name, s.Channel)
	}
	if s.MinPulseUs <= 0 || s.MaxPulseUs <= s.MinPulseUs {
		return fmt.Errorf("%s pulse range invalid: [%d, %d] us", name, s.MinPulseUs, s.MaxPulseUs)
	}
	if s.TravelDeg <= 0 {
		return fmt.Errorf("%s.travel_deg must be > 0, got %d", name, s.TravelDeg)
	}
	return nil
}

// SampleDelay returns the pause between two ADC reads of the same channel.
func (c *Config) SampleDelay() time.Duration {
	return time.Duration(c.Sensors.SampleDelayMs) * time.Millisecond
}

// LoopDelay returns the pause at the end of each control loop iteration.
func (c *Config) LoopDelay() time.Duration {
	return time.Duration(c.Defaults.LoopDelayMs) * time.Millisecond
}
