package main

import (
	"context"
	"time"

	"ledremote-go/bus"
	"ledremote-go/effects"
	"ledremote-go/link"
	"ledremote-go/services/button"
	"ledremote-go/services/config"
	"ledremote-go/services/console"
	"ledremote-go/services/display"
	"ledremote-go/services/heartbeat"
	"ledremote-go/services/remote"
	"ledremote-go/types"
)

const deviceID = "remote-pico"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, deviceID)
	b := bus.NewBus(8)

	config.NewConfigService().Start(ctx, b.NewConnection("config"))
	cfg := waitRemoteConfig(b)

	p := newPlatform(cfg)

	sender := link.NewSender(p.driver, b.NewConnection("link"))

	rsvc := remote.New(b.NewConnection("remote"), sender, effects.Default(), cfg)
	if err := rsvc.Start(ctx); err != nil {
		// Inert but alive: the console still answers, a power cycle retries.
		println("[main] remote start failed:", err.Error())
	}

	btn := button.New(b.NewConnection("button"), button.Config{
		Pin:      p.button,
		Invert:   true, // pull-up wiring, pressed reads low
		Poll:     time.Duration(cfg.PollMs) * time.Millisecond,
		Debounce: time.Duration(cfg.DebounceMs) * time.Millisecond,
	})
	btn.Start(ctx)

	if cfg.Display {
		display.New(b.NewConnection("display"), p.screen).Start(ctx)
	}

	console.New(b.NewConnection("console"), p.consoleIn, p.consoleOut).Start(ctx)

	hb := &heartbeat.Service{Stats: sender.Stats}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	select {}
}

// waitRemoteConfig blocks briefly for the retained config message, then falls
// back to compiled-in defaults so a broken config cannot brick the remote.
func waitRemoteConfig(b *bus.Bus) types.RemoteConfig {
	conn := b.NewConnection("main")
	defer conn.Disconnect()
	sub := conn.Subscribe(bus.T("config", "remote"))

	select {
	case msg := <-sub.Channel():
		cfg, err := config.DecodeRemote(msg.Payload)
		if err == nil {
			return applyDefaults(cfg)
		}
		println("[main] bad remote config:", err.Error())
	case <-time.After(time.Second):
		println("[main] no remote config, using defaults")
	}
	return applyDefaults(types.RemoteConfig{ReceiverMAC: "broadcast", Channel: 1})
}

func applyDefaults(cfg types.RemoteConfig) types.RemoteConfig {
	if cfg.ReceiverMAC == "" {
		cfg.ReceiverMAC = "broadcast"
	}
	if cfg.PollMs <= 0 {
		cfg.PollMs = 10
	}
	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = 20
	}
	return cfg
}
