package servo

import (
	"fmt"

	"github.com/hjkoskel/govattu"

	"github.com/cjeanneret/HelioGo/internal/debug"
)

// pwmRange and pwmClockDivisor give a 50Hz period with one count per
// microsecond (19.2MHz / 19 / 20000 ≈ 50Hz), so Pwm0Set/Pwm1Set take the
// pulse width directly in microseconds.
const (
	pwmClockDivisor = 19
	pwmRange        = 20000
)

// Config describes one servo on a hardware PWM channel.
type Config struct {
	Pin        int // BCM pin: 18 or 19 for PWM0 (ALT5), 12 or 13 for PWM1/PWM0 (ALT0)
	Channel    int // 0 = PWM0, 1 = PWM1
	MinPulseUs int // pulse width at 0 degrees
	MaxPulseUs int // pulse width at TravelDeg degrees
	TravelDeg  int // mechanical travel covered by the pulse range
}

// Bank owns the Raspberry Pi hardware PWM peripheral. Both servo channels
// share one clock and one mark-space configuration, so they are opened
// together and handed out from here.
type Bank struct {
	hw govattu.Vattu
}

// OpenBank maps the PWM peripheral and configures both channels for 50Hz
// mark-space operation. Requires root or gpio group membership.
func OpenBank() (*Bank, error) {
	hw, err := govattu.Open()
	if err != nil {
		return nil, fmt.Errorf("open hardware PWM: %w (are you running on a Raspberry Pi?)", err)
	}

	hw.PwmSetMode(true, true, true, true) // enable + mark-space on both channels
	hw.PwmSetClock(pwmClockDivisor)
	hw.Pwm0SetRange(pwmRange)
	hw.Pwm1SetRange(pwmRange)

	debug.Info("Hardware PWM configured: 50Hz, %d us range", pwmRange)
	return &Bank{hw: hw}, nil
}

// Servo binds a PWM channel of the bank to a servo and centers nothing:
// the first commanded angle comes from the motion controller.
func (b *Bank) Servo(cfg Config) (*PWMServo, error) {
	switch cfg.Pin {
	case 18, 19:
		b.hw.PinMode(uint8(cfg.Pin), govattu.ALT5)
	case 12, 13:
		b.hw.PinMode(uint8(cfg.Pin), govattu.ALT0)
	default:
		return nil, fmt.Errorf("pin %d has no hardware PWM function", cfg.Pin)
	}

	return &PWMServo{bank: b, cfg: cfg}, nil
}

// Close releases the PWM peripheral.
func (b *Bank) Close() error {
	b.hw.Close()
	return nil
}

// PWMServo drives one hobby servo through a hardware PWM channel.
type PWMServo struct {
	bank *Bank
	cfg  Config
}

// SetAngle commands the servo to an absolute angle. Angles outside the
// mechanical travel are clamped to it.
func (s *PWMServo) SetAngle(deg int) error {
	pulse := pulseForAngle(s.cfg, deg)
	debug.Trace("Servo pin %d: %d deg -> %d us", s.cfg.Pin, deg, pulse)

	switch s.cfg.Channel {
	case 0:
		s.bank.hw.Pwm0Set(uint32(pulse))
	case 1:
		s.bank.hw.Pwm1Set(uint32(pulse))
	default:
		return fmt.Errorf("invalid PWM channel %d", s.cfg.Channel)
	}
	return nil
}

// pulseForAngle maps an angle linearly onto the configured pulse range.
func pulseForAngle(cfg Config, deg int) int {
	if deg < 0 {
		deg = 0
	}
	if deg > cfg.TravelDeg {
		deg = cfg.TravelDeg
	}
	return cfg.MinPulseUs + deg*(cfg.MaxPulseUs-cfg.MinPulseUs)/cfg.TravelDeg
}
