package display

import (
	"fmt"
	"io"
)

// Display is the status surface refreshed once per control loop iteration.
// It shows the four most recent raw light readings in a two-row, two-column
// layout matching the physical sensor arrangement. Purely observational.
type Display interface {
	ShowReadings(topLeft, topRight, bottomLeft, bottomRight int) error
	Close() error
}

// FormatRows renders the four readings as two text rows of 4-character
// right-aligned fields, top row first.
func FormatRows(topLeft, topRight, bottomLeft, bottomRight int) (string, string) {
	return fmt.Sprintf("%4d %4d", topLeft, topRight),
		fmt.Sprintf("%4d %4d", bottomLeft, bottomRight)
}

// Console writes the reading grid to a text stream, one refresh per
// iteration. Used on headless setups and in mock mode.
type Console struct {
	w io.Writer
}

// NewConsole creates a console display writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) ShowReadings(topLeft, topRight, bottomLeft, bottomRight int) error {
	top, bottom := FormatRows(topLeft, topRight, bottomLeft, bottomRight)
	_, err := fmt.Fprintf(c.w, "%s\n%s\n", top, bottom)
	return err
}

func (c *Console) Close() error {
	return nil
}

// Null discards all updates (display.type = "none").
type Null struct{}

func (Null) ShowReadings(topLeft, topRight, bottomLeft, bottomRight int) error { return nil }

func (Null) Close() error { return nil }
