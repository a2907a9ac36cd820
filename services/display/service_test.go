package display

import (
	"context"
	"sync"
	"testing"
	"time"

	"ledremote-go/bus"
	"ledremote-go/services/remote"
	"ledremote-go/types"
)

type fakeScreen struct {
	mu     sync.Mutex
	states []types.RemoteState
}

func (f *fakeScreen) Render(state types.RemoteState) {
	f.mu.Lock()
	f.states = append(f.states, state)
	f.mu.Unlock()
}

func (f *fakeScreen) wait(t *testing.T, n int) []types.RemoteState {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		if len(f.states) >= n {
			out := append([]types.RemoteState(nil), f.states...)
			f.mu.Unlock()
			return out
		}
		f.mu.Unlock()
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %d renders", n)
	return nil
}

func TestRendersRetainedStateOnStart(t *testing.T) {
	b := bus.NewBus(8)
	pub := b.NewConnection("remote")

	// State published before the display comes up.
	pub.Publish(pub.NewMessage(remote.TopicState, types.RemoteState{
		EffectIndex: 2, EffectName: "Solid Amber", CatalogLen: 7,
	}, true))

	screen := &fakeScreen{}
	svc := New(b.NewConnection("display"), screen)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	states := screen.wait(t, 1)
	if states[0].EffectName != "Solid Amber" || states[0].EffectIndex != 2 {
		t.Fatalf("rendered state = %+v", states[0])
	}
}

func TestRendersUpdates(t *testing.T) {
	b := bus.NewBus(8)
	screen := &fakeScreen{}
	svc := New(b.NewConnection("display"), screen)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	pub := b.NewConnection("remote")
	// Give the subscription a moment to attach.
	time.Sleep(10 * time.Millisecond)
	pub.Publish(pub.NewMessage(remote.TopicState, types.RemoteState{
		EffectIndex: 0, EffectName: "Solid White", CatalogLen: 7,
	}, true))
	pub.Publish(pub.NewMessage(remote.TopicState, types.RemoteState{
		EffectIndex: 1, EffectName: "Solid Red", CatalogLen: 7,
	}, true))

	states := screen.wait(t, 2)
	if states[0].EffectName != "Solid White" || states[1].EffectName != "Solid Red" {
		t.Fatalf("states = %+v", states)
	}
}
