package display

import (
	"encoding/binary"
	"fmt"
	"image"
	"os"

	"github.com/d21d3q/framebuffer"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/cjeanneret/HelioGo/internal/debug"
)

// Framebuffer renders the reading grid to a Linux framebuffer device
// (RGB565 assumed, the common Raspberry Pi TFT format). Drawing happens in
// a 32-bit RGBA image via gg, then gets blitted to the device memory.
type Framebuffer struct {
	pixels []byte
	back   []byte
	width  int
	height int
	stride int

	img *image.RGBA
	dc  *gg.Context
}

// NewFramebuffer opens the given framebuffer device (e.g. /dev/fb0).
// The mapping stays open for the process lifetime.
func NewFramebuffer(device string) (*Framebuffer, error) {
	fb, err := framebuffer.OpenFrameBuffer(device, os.O_RDWR)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", device, err)
	}

	varInfo, err := fb.VarScreenInfo()
	if err != nil {
		return nil, fmt.Errorf("framebuffer var screen info: %w", err)
	}
	fixedInfo, err := fb.FixScreenInfo()
	if err != nil {
		return nil, fmt.Errorf("framebuffer fixed screen info: %w", err)
	}
	pixels, err := fb.Pixels()
	if err != nil {
		return nil, fmt.Errorf("framebuffer pixels: %w", err)
	}

	if varInfo.BitsPerPixel != 16 {
		return nil, fmt.Errorf("framebuffer is %d bpp, only 16 bpp (RGB565) is supported", varInfo.BitsPerPixel)
	}

	width := int(varInfo.XRes)
	height := int(varInfo.YRes)
	stride := int(fixedInfo.LineLength)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(basicfont.Face7x13)

	debug.Info("Framebuffer %s opened: %dx%d, stride %d bytes", device, width, height, stride)

	return &Framebuffer{
		pixels: pixels,
		back:   make([]byte, height*stride),
		width:  width,
		height: height,
		stride: stride,
		img:    img,
		dc:     dc,
	}, nil
}

func (f *Framebuffer) ShowReadings(topLeft, topRight, bottomLeft, bottomRight int) error {
	top, bottom := FormatRows(topLeft, topRight, bottomLeft, bottomRight)

	f.dc.SetRGB(0, 0, 0)
	f.dc.DrawRectangle(0, 0, float64(f.width), float64(f.height))
	f.dc.Fill()

	f.dc.SetRGB(1, 1, 1)
	cx := float64(f.width) / 2
	cy := float64(f.height) / 2
	f.dc.DrawStringAnchored(top, cx, cy-10, 0.5, 0.5)
	f.dc.DrawStringAnchored(bottom, cx, cy+10, 0.5, 0.5)

	f.blit()
	return nil
}

// Close blanks the surface. The device mapping itself stays open for the
// process lifetime.
func (f *Framebuffer) Close() error {
	for i := range f.pixels {
		f.pixels[i] = 0
	}
	return nil
}

// blit converts the 32-bit RGBA image to RGB565 in the back buffer, then
// copies it to the device in one pass to avoid tearing.
func (f *Framebuffer) blit() {
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			r, g, b, _ := f.img.At(x, y).RGBA() // 0-65535 per component

			r5 := uint16(r >> (16 - 5))
			g6 := uint16(g >> (16 - 6))
			b5 := uint16(b >> (16 - 5))
			pixel := (r5 << 11) | (g6 << 5) | b5

			idx := y*f.stride + x*2
			if idx+1 < len(f.back) {
				binary.LittleEndian.PutUint16(f.back[idx:], pixel)
			}
		}
	}
	copy(f.pixels, f.back)
}
