package config

import (
	"context"
	"errors"

	"github.com/andreyvit/tinyjson"

	"ledremote-go/bus"
	"ledremote-go/types"
	"ledremote-go/x/mathx"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key used for device ID
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig reads the device config from embedded data and publishes each
// top-level key as a retained message under {"config", key}.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}

	r := tinyjson.Raw(raw)
	val := r.Value() // should be a map[string]any
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return errors.New("embedded config is not a JSON object")
	}

	for k, v := range m {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}

	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("Error: config:", err.Error())
		}
	}()
}

// DecodeRemote converts the payload of {"config", "remote"} into a typed
// RemoteConfig. Absent fields keep their zero values; the caller applies
// defaults. Out-of-range numbers are clamped rather than rejected so a typo in
// an embedded config degrades instead of bricking the remote.
func DecodeRemote(v any) (types.RemoteConfig, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return types.RemoteConfig{}, errors.New("remote config is not a JSON object")
	}
	var cfg types.RemoteConfig
	if mac, ok := m["receiver_mac"].(string); ok {
		cfg.ReceiverMAC = mac
	}
	if ch, ok := asInt(m["channel"]); ok {
		cfg.Channel = uint8(mathx.Clamp(ch, 0, 14))
	}
	if enc, ok := m["encrypt"].(bool); ok {
		cfg.Encrypt = enc
	}
	if poll, ok := asInt(m["poll_ms"]); ok {
		cfg.PollMs = mathx.Clamp(poll, 1, 1000)
	}
	if deb, ok := asInt(m["debounce_ms"]); ok {
		cfg.DebounceMs = mathx.Clamp(deb, 0, 1000)
	}
	if disp, ok := m["display"].(bool); ok {
		cfg.Display = disp
	}
	return cfg, nil
}

// asInt accepts either numeric representation the JSON parser may produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
