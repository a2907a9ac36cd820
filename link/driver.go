package link

import "ledremote-go/espnow"

// Driver wraps the connectionless ESP-NOW send primitive.
//
// The status callback registered with OnSendStatus runs on the driver's own
// execution context (on hardware, effectively interrupt context). It reports
// the link layer's transmission-attempt outcome for the most recent send to
// that peer; it is not an application-level acknowledgment.
type Driver interface {
	// InitStation brings the radio up in station mode without joining a network.
	InitStation() error
	// Init initialises the ESP-NOW protocol layer.
	Init() error
	// OnSendStatus registers the delivery-status callback. Registered once,
	// before any send.
	OnSendStatus(fn func(peer espnow.Addr, ok bool))
	// AddPeer declares addr (unicast or broadcast) as a legitimate send target.
	AddPeer(addr espnow.Addr, channel uint8, encrypt bool) error
	// Send queues payload for addr. A nil error means the link layer accepted
	// the message, not that it was delivered.
	Send(addr espnow.Addr, payload []byte) error
}
