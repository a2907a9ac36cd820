package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgRemote = `{
  "remote": {
      "receiver_mac": "broadcast",
      "channel": 1,
      "poll_ms": 10,
      "debounce_ms": 20,
      "display": true
  },
  "heartbeat": {
      "interval": 10
  }
}`

var embeddedConfigs = map[string][]byte{
	"remote-pico": []byte(cfgRemote),
}
