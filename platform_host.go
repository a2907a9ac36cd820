//go:build !rp2040 && !rp2350

package main

import (
	"io"
	"os"

	"ledremote-go/link"
	"ledremote-go/link/stubdrv"
	"ledremote-go/services/button"
	"ledremote-go/services/display"
	"ledremote-go/types"
)

// Host build: no radio, no GPIO. The stub driver acknowledges every frame so
// the whole pipeline can be exercised from the console on a dev machine.
type platform struct {
	driver     link.Driver
	button     button.Pin
	screen     display.Screen
	consoleIn  io.Reader
	consoleOut io.Writer
}

type hostPin struct{}

func (hostPin) Get() bool { return true } // pull-up idle, never pressed

func newPlatform(cfg types.RemoteConfig) platform {
	drv := stubdrv.New()
	drv.AutoStatus = true
	drv.AutoStatusOK = true
	return platform{
		driver:     drv,
		button:     hostPin{},
		screen:     display.ConsoleScreen{},
		consoleIn:  os.Stdin,
		consoleOut: os.Stdout,
	}
}
