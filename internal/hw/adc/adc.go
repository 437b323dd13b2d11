package adc

import (
	"fmt"
	"sync"

	"github.com/cjeanneret/HelioGo/internal/debug"
)

// FullScale is the highest value a 10-bit conversion can return.
const FullScale = 1023

// Reader is the abstract interface for a multi-channel analog-to-digital
// converter. A single Read returns one raw sample; averaging and timing
// live in the acquisition layer, not here.
type Reader interface {
	// Read performs one conversion on the given channel (0-7) and returns
	// the raw value in [0, FullScale].
	Read(channel int) (int, error)
	Close() error
}

// MockReader is a Reader for development and tests. Each channel returns a
// fixed value, mid-scale unless overridden with SetChannel.
type MockReader struct {
	mu     sync.Mutex
	values map[int]int
}

// NewMockReader creates a mock ADC with every channel at mid-scale.
func NewMockReader() *MockReader {
	debug.Info("Using MOCK ADC (development mode)")
	return &MockReader{values: make(map[int]int)}
}

// SetChannel fixes the value returned for one channel.
func (m *MockReader) SetChannel(channel, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[channel] = value
}

func (m *MockReader) Read(channel int) (int, error) {
	if channel < 0 || channel > 7 {
		return 0, fmt.Errorf("channel must be 0-7, got %d", channel)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[channel]; ok {
		return v, nil
	}
	return FullScale / 2, nil
}

func (m *MockReader) Close() error {
	debug.Trace("ADC Close (mock)")
	return nil
}
