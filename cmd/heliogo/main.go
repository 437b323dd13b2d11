package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/cjeanneret/HelioGo/internal/config"
	"github.com/cjeanneret/HelioGo/internal/debug"
	"github.com/cjeanneret/HelioGo/internal/hw/adc"
	"github.com/cjeanneret/HelioGo/internal/hw/display"
	"github.com/cjeanneret/HelioGo/internal/hw/gpio"
	"github.com/cjeanneret/HelioGo/internal/hw/servo"
	"github.com/cjeanneret/HelioGo/internal/logic/motion"
	"github.com/cjeanneret/HelioGo/internal/logic/sensing"
	"github.com/cjeanneret/HelioGo/internal/logic/tracker"
	"github.com/cjeanneret/HelioGo/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start status web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	mock := flag.Bool("mock", false, "force mock hardware (dev on PC)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if *mock {
		cfg.Defaults.MockHardware = true
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.PrintStruct("Config", cfg)

	// Initialize GPIO driver
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockHardware)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Initialize ADC
	debug.Step(2, "Initializing ADC")
	adcReader, err := newADC(gpioDriver, cfg)
	if err != nil {
		log.Fatalf("init ADC failed: %v", err)
	}
	defer adcReader.Close()

	// Initialize servos
	debug.Step(3, "Initializing servos")
	panServo, tiltServo, closeServos, err := newServos(cfg)
	if err != nil {
		log.Fatalf("init servos failed: %v", err)
	}
	defer closeServos()

	// Initialize status display
	debug.Step(4, "Initializing display")
	disp, err := newDisplay(cfg)
	if err != nil {
		log.Fatalf("init display failed: %v", err)
	}
	defer func() {
		if err := disp.Close(); err != nil {
			log.Printf("closing display failed: %v", err)
		}
	}()

	// Assemble the control loop
	reader := sensing.NewReader(adcReader, cfg.Sensors, cfg.SampleDelay())
	motionCtrl := motion.NewController(panServo, tiltServo, cfg.Pan, cfg.Tilt, cfg.Defaults.MaxStepDeg)
	trk := tracker.New(cfg, reader, motionCtrl, disp)

	if port := webPort.port(); port > 0 {
		broadcaster := web.NewStatusBroadcaster()
		snapshots := &web.SnapshotHolder{}
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))
		trk.SetPublisher(snapshots.Store)

		srv := web.NewServer(fmt.Sprintf(":%d", port), broadcaster, snapshots, cfg)
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("web server: %v", err)
			}
		}()
	}

	if err := trk.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("tracker stopped: %v", err)
	}
}

// loadConfig reads the config file; when the default path does not exist
// the built-in reference configuration is used instead.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		if verr := cfg.Validate(); verr != nil {
			return nil, verr
		}
		return cfg, nil
	}
	return cfg, err
}

// newADC selects the MCP3008 or the mock depending on configuration.
func newADC(g gpio.Driver, cfg *config.Config) (adc.Reader, error) {
	if cfg.Defaults.MockHardware {
		return adc.NewMockReader(), nil
	}
	return adc.NewMCP3008(g, adc.Config{
		ClockPin: cfg.ADC.ClockPin,
		MosiPin:  cfg.ADC.MosiPin,
		MisoPin:  cfg.ADC.MisoPin,
		CSPin:    cfg.ADC.CSPin,
	})
}

// newServos builds both axis servos plus a cleanup function.
func newServos(cfg *config.Config) (servo.Servo, servo.Servo, func(), error) {
	if cfg.Defaults.MockHardware {
		return servo.NewRecorder("pan"), servo.NewRecorder("tilt"), func() {}, nil
	}

	bank, err := servo.OpenBank()
	if err != nil {
		return nil, nil, nil, err
	}
	pan, err := bank.Servo(servoConfig(cfg.PanServo))
	if err != nil {
		bank.Close()
		return nil, nil, nil, err
	}
	tilt, err := bank.Servo(servoConfig(cfg.TiltServo))
	if err != nil {
		bank.Close()
		return nil, nil, nil, err
	}
	return pan, tilt, func() { bank.Close() }, nil
}

func servoConfig(s config.ServoConfig) servo.Config {
	return servo.Config{
		Pin:        s.Pin,
		Channel:    s.Channel,
		MinPulseUs: s.MinPulseUs,
		MaxPulseUs: s.MaxPulseUs,
		TravelDeg:  s.TravelDeg,
	}
}

// newDisplay selects the status surface implementation. Mock hardware
// forces the console variant so dev runs never touch /dev/fb0.
func newDisplay(cfg *config.Config) (display.Display, error) {
	if cfg.Defaults.MockHardware && cfg.Display.Type == "framebuffer" {
		return display.NewConsole(os.Stdout), nil
	}
	switch cfg.Display.Type {
	case "console":
		return display.NewConsole(os.Stdout), nil
	case "framebuffer":
		return display.NewFramebuffer(cfg.Display.Device)
	case "none":
		return display.Null{}, nil
	default:
		return nil, fmt.Errorf("unsupported display type: %s", cfg.Display.Type)
	}
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
