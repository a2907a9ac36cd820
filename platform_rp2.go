//go:build rp2040 || rp2350

package main

import (
	"io"
	"machine"
	"time"

	"ledremote-go/link"
	"ledremote-go/link/uartdrv"
	"ledremote-go/services/button"
	"ledremote-go/services/display"
	"ledremote-go/types"
)

// Board wiring: button on GP15 against ground, ESP-NOW co-processor on UART1
// (GP8/GP9), optional SSD1306 on I2C0 (GP4/GP5).
const (
	pinButton = machine.GP15
	pinUartTX = machine.GP8
	pinUartRX = machine.GP9
)

type platform struct {
	driver     link.Driver
	button     button.Pin
	screen     display.Screen
	consoleIn  io.Reader
	consoleOut io.Writer
}

func newPlatform(cfg types.RemoteConfig) platform {
	pinButton.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	var screen display.Screen = display.ConsoleScreen{}
	if cfg.Display {
		i2c := machine.I2C0
		if err := i2c.Configure(machine.I2CConfig{SDA: machine.GP4, SCL: machine.GP5}); err == nil {
			screen = display.NewOLEDScreen(i2c)
		} else {
			println("[main] i2c configure failed, console display only")
		}
	}

	return platform{
		driver:     uartdrv.New(uartdrv.Config{TX: pinUartTX, RX: pinUartRX}),
		button:     pinButton,
		screen:     screen,
		consoleIn:  serialIn{},
		consoleOut: machine.Serial,
	}
}

// serialIn adapts the byte-at-a-time USB serial to io.Reader. Read blocks
// until at least one byte is available, as bufio.Scanner requires.
type serialIn struct{}

func (serialIn) Read(p []byte) (int, error) {
	for machine.Serial.Buffered() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	n := 0
	for n < len(p) && machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}
