//go:build rp2040 || rp2350

package display

import (
	"image/color"
	"machine"

	"ledremote-go/types"

	"tinygo.org/x/drivers/ssd1306"
)

const (
	oledWidth  = 128
	oledHeight = 64
	oledAddr   = 0x3C

	barHeight = 12
	barGap    = 8
)

// OLEDScreen renders the selection as segment bars on an SSD1306: one segment
// per catalog entry with the active effect filled, and a brightness bar below.
// No font dependency; the effect name goes to the serial console instead.
type OLEDScreen struct {
	dev ssd1306.Device
	ok  bool
}

// NewOLEDScreen configures the panel on i2c. A missing panel is tolerated:
// Render becomes a no-op and the remote stays fully functional.
func NewOLEDScreen(i2c *machine.I2C) *OLEDScreen {
	dev := ssd1306.NewI2C(i2c)
	dev.Configure(ssd1306.Config{Width: oledWidth, Height: oledHeight, Address: oledAddr})
	dev.ClearDisplay()
	return &OLEDScreen{dev: dev, ok: true}
}

func (s *OLEDScreen) Render(state types.RemoteState) {
	if !s.ok || state.CatalogLen == 0 {
		return
	}
	on := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	off := color.RGBA{A: 255}

	s.dev.ClearBuffer()

	// Effect segments.
	segW := oledWidth / int16(state.CatalogLen)
	for seg := int16(0); seg < int16(state.CatalogLen); seg++ {
		fill := seg == int16(state.EffectIndex)
		for x := seg*segW + 1; x < (seg+1)*segW-1; x++ {
			for y := int16(0); y < barHeight; y++ {
				edge := y == 0 || y == barHeight-1 || x == seg*segW+1 || x == (seg+1)*segW-2
				if fill || edge {
					s.dev.SetPixel(x, y, on)
				} else {
					s.dev.SetPixel(x, y, off)
				}
			}
		}
	}

	// Brightness bar.
	bw := int16((int(state.Brightness) * oledWidth) / 255)
	for x := int16(0); x < oledWidth; x++ {
		for y := int16(barHeight + barGap); y < barHeight+barGap+barHeight; y++ {
			if x < bw {
				s.dev.SetPixel(x, y, on)
			} else {
				s.dev.SetPixel(x, y, off)
			}
		}
	}

	_ = s.dev.Display()

	println("[display]", state.EffectName, "(", state.EffectIndex+1, "/", state.CatalogLen, ")")
}
