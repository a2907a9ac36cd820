// cmd/remote-demo/main.go
//
// Host-side walkthrough of the remote pipeline against the stub driver:
// simulated button presses cycle through the catalog, each transmitted frame
// is printed, and a couple of direct requests exercise the request/reply path.
package main

import (
	"context"
	"fmt"
	"time"

	"ledremote-go/bus"
	"ledremote-go/effects"
	"ledremote-go/link"
	"ledremote-go/link/stubdrv"
	"ledremote-go/services/display"
	"ledremote-go/services/remote"
	"ledremote-go/types"
	"ledremote-go/x/conv"
)

const (
	pressCount = 9 // enough to wrap the 7-entry catalog
	pressDelay = 150 * time.Millisecond
)

func main() {
	ctx := context.Background()

	b := bus.NewBus(8)

	drv := stubdrv.New()
	drv.AutoStatus = true
	drv.AutoStatusOK = true
	sender := link.NewSender(drv, b.NewConnection("link"))

	// Print every frame the sender hands to the driver.
	mon := b.NewConnection("monitor")
	statusSub := mon.Subscribe(link.TopicSendStatus)
	go func() {
		for m := range statusSub.Channel() {
			st, ok := m.Payload.(types.SendStatus)
			if !ok {
				continue
			}
			var hex []byte
			if _, frame, ok := drv.LastFrame(); ok {
				for _, by := range frame {
					hex = conv.ByteHex(hex, by)
					hex = append(hex, ' ')
				}
			}
			fmt.Printf("[wire] %s ok=%v payload=%s\n", st.Peer, st.OK, hex)
		}
	}()

	cfg := types.RemoteConfig{ReceiverMAC: "broadcast", Channel: 1, Display: true}
	svc := remote.New(b.NewConnection("remote"), sender, effects.Default(), cfg)
	if err := svc.Start(ctx); err != nil {
		fmt.Println("remote start failed:", err)
		return
	}

	display.New(b.NewConnection("display"), display.ConsoleScreen{}).Start(ctx)

	// Simulated presses, the way the button service would publish them.
	ui := b.NewConnection("ui")
	for i := 0; i < pressCount; i++ {
		time.Sleep(pressDelay)
		ui.Publish(ui.NewMessage(remote.TopicButtonEvent, types.ButtonEvent{
			Pressed: true,
			TSms:    time.Now().UnixMilli(),
		}, false))
	}
	time.Sleep(pressDelay)

	// Direct requests, as the console would issue them.
	if reply, err := ui.RequestWait(ctx, ui.NewMessage(remote.TopicEffectSet, types.EffectRequest{Index: 3}, false)); err != nil {
		fmt.Println("effect request failed:", err)
	} else {
		fmt.Printf("effect reply: %+v\n", reply.Payload)
	}
	if reply, err := ui.RequestWait(ctx, ui.NewMessage(remote.TopicBrightSet, types.BrightnessRequest{Level: 128}, false)); err != nil {
		fmt.Println("bright request failed:", err)
	} else {
		fmt.Printf("bright reply: %+v\n", reply.Payload)
	}

	reply, err := ui.RequestWait(ctx, ui.NewMessage(remote.TopicStatusGet, nil, false))
	if err != nil {
		fmt.Println("status request failed:", err)
		return
	}
	st := reply.Payload.(types.StatusReply)
	fmt.Printf("final: effect %d/%d %q bright %d, link accepted=%d delivered=%d failed=%d\n",
		st.State.EffectIndex+1, st.State.CatalogLen, st.State.EffectName, st.State.Brightness,
		st.Stats.Accepted, st.Stats.Delivered, st.Stats.Failed)
}
