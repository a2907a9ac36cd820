package config

import (
	"context"
	"testing"
	"time"

	"ledremote-go/bus"
)

func TestConfig_PublishEmbedded_RetainedPerKey(t *testing.T) {
	// Override lookup for this test.
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "remote-pico" {
			return nil, false
		}
		return []byte(`{
			"remote": {"receiver_mac": "broadcast", "channel": 3},
			"heartbeat": {"interval": 5}
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "remote-pico")
	svc.Start(ctx, conn)

	// Subscribe; retained messages should arrive even if publish won the race.
	sub := conn.Subscribe(bus.T(configPrefix, "#"))

	wantCount := 2 // remote, heartbeat
	got := map[string]any{}

	deadline := time.Now().Add(600 * time.Millisecond)
	for len(got) < wantCount && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			if len(m.Topic) < 2 {
				t.Fatalf("unexpected topic length: %#v", m.Topic)
			}
			key, ok := m.Topic[1].(string)
			if !ok {
				t.Fatalf("topic[1] type %T, want string", m.Topic[1])
			}
			got[key] = m.Payload
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(got) != wantCount {
		t.Fatalf("expected %d retained messages, got %d (%v)", wantCount, len(got), got)
	}

	rm, ok := got["remote"].(map[string]any)
	if !ok {
		t.Fatalf("remote payload type = %T, want map[string]any", got["remote"])
	}
	if mac, ok := rm["receiver_mac"].(string); !ok || mac != "broadcast" {
		t.Fatalf("receiver_mac = %#v, want \"broadcast\"", rm["receiver_mac"])
	}
	if _, ok := got["heartbeat"].(map[string]any); !ok {
		t.Fatalf("heartbeat payload type = %T, want map[string]any", got["heartbeat"])
	}
}

func TestConfig_PublishConfig_MissingDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-missing-device")
	svc := NewConfigService()

	// No device ID in context
	if err := svc.publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error for missing device ID, got nil")
	}
}

func TestConfig_PublishConfig_NoConfigFound(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) { return nil, false }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(4)
	conn := b.NewConnection("test-no-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "unknown-device")
	if err := svc.publishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for missing embedded config, got nil")
	}
}

func TestDecodeRemote(t *testing.T) {
	cfg, err := DecodeRemote(map[string]any{
		"receiver_mac": "aa:bb:cc:dd:ee:ff",
		"channel":      float64(6),
		"poll_ms":      float64(25),
		"debounce_ms":  float64(40),
		"display":      true,
	})
	if err != nil {
		t.Fatalf("DecodeRemote: %v", err)
	}
	if cfg.ReceiverMAC != "aa:bb:cc:dd:ee:ff" || cfg.Channel != 6 ||
		cfg.PollMs != 25 || cfg.DebounceMs != 40 || !cfg.Display {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestDecodeRemote_ClampsAndRejects(t *testing.T) {
	if _, err := DecodeRemote("not an object"); err == nil {
		t.Fatal("expected error for non-object payload")
	}
	cfg, err := DecodeRemote(map[string]any{"channel": float64(99), "poll_ms": float64(0)})
	if err != nil {
		t.Fatalf("DecodeRemote: %v", err)
	}
	if cfg.Channel != 14 {
		t.Fatalf("channel = %d, want clamped 14", cfg.Channel)
	}
	if cfg.PollMs != 1 {
		t.Fatalf("poll_ms = %d, want clamped 1", cfg.PollMs)
	}
}
