package types

// Bus payload types shared by the remote's services.

// ---- Button ----

// ButtonEvent is published on "button/event" for each accepted edge.
// Pressed is true only for press transitions; releases carry false.
type ButtonEvent struct {
	Pressed bool  `json:"pressed"`
	TSms    int64 `json:"ts_ms"`
}

// ---- Remote state (retained on "remote/state") ----

type RemoteState struct {
	EffectIndex uint32 `json:"effect_index"`
	EffectName  string `json:"effect_name"`
	CatalogLen  int    `json:"catalog_len"`
	Brightness  uint8  `json:"brightness"`
	TSms        int64  `json:"ts_ms"`
}

// ---- Link ----

// SendStatus is published on "link/send/status" from the driver's delivery
// callback. It is a link-layer transmission-attempt outcome, not an
// application acknowledgment from the receiver.
type SendStatus struct {
	Peer string `json:"peer"` // formatted MAC
	OK   bool   `json:"ok"`
	TSms int64  `json:"ts_ms"`
}

// LinkStats is the sender's counter snapshot (heartbeat, console "status").
type LinkStats struct {
	Accepted  uint32 `json:"accepted"`
	Rejected  uint32 `json:"rejected"`
	Delivered uint32 `json:"delivered"`
	Failed    uint32 `json:"failed"`
}

// ---- Requests (console and other surrounding application surfaces) ----

// EffectRequest asks the controller for an absolute effect, or the next one
// when Next is set.
type EffectRequest struct {
	Index uint32 `json:"index"`
	Next  bool   `json:"next,omitempty"`
}

// BrightnessRequest asks the controller to send a brightness level.
type BrightnessRequest struct {
	Level uint8 `json:"level"`
}

// ---- Replies ----

// StatusReply answers "remote/status/get" requests.
type StatusReply struct {
	State RemoteState `json:"state"`
	Stats LinkStats   `json:"stats"`
}

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
