package types

// Remote configuration supplied on topic "config/remote".
// Addressing is deployment-time configuration: the receiver is either a fixed
// unicast MAC or the broadcast address, never discovered at runtime.

type RemoteConfig struct {
	ReceiverMAC string `json:"receiver_mac"` // "aa:bb:cc:dd:ee:ff" or "broadcast"
	Channel     uint8  `json:"channel"`
	Encrypt     bool   `json:"encrypt,omitempty"`
	PollMs      int    `json:"poll_ms,omitempty"`     // controller tick, default 10
	DebounceMs  int    `json:"debounce_ms,omitempty"` // button debounce window
	Display     bool   `json:"display,omitempty"`
}
