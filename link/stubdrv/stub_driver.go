// Package stubdrv implements a scriptable in-memory link.Driver for host
// builds and tests.
package stubdrv

import (
	"errors"
	"sync"

	"ledremote-go/espnow"
)

var errScripted = errors.New("stubdrv: scripted failure")

type sent struct {
	Addr    espnow.Addr
	Payload []byte
}

// Driver records every call so tests can assert ordering and counts.
// The Fail* fields script the corresponding stage to fail.
type Driver struct {
	mu sync.Mutex

	FailStation bool
	FailInit    bool
	FailAddPeer bool
	FailSend    bool

	// AutoStatus, when set, fires the status callback synchronously after each
	// accepted send with AutoStatusOK as the outcome.
	AutoStatus   bool
	AutoStatusOK bool

	stationCalls int
	initCalls    int
	peers        []espnow.Addr
	frames       []sent
	statusFn     func(espnow.Addr, bool)
}

func New() *Driver { return &Driver{} }

func (d *Driver) InitStation() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailStation {
		return errScripted
	}
	d.stationCalls++
	return nil
}

func (d *Driver) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailInit {
		return errScripted
	}
	d.initCalls++
	return nil
}

func (d *Driver) OnSendStatus(fn func(espnow.Addr, bool)) {
	d.mu.Lock()
	d.statusFn = fn
	d.mu.Unlock()
}

func (d *Driver) AddPeer(addr espnow.Addr, channel uint8, encrypt bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailAddPeer {
		return errScripted
	}
	d.peers = append(d.peers, addr)
	return nil
}

func (d *Driver) Send(addr espnow.Addr, payload []byte) error {
	d.mu.Lock()
	if d.FailSend {
		d.mu.Unlock()
		return errScripted
	}
	frame := make([]byte, len(payload))
	copy(frame, payload)
	d.frames = append(d.frames, sent{Addr: addr, Payload: frame})
	fn := d.statusFn
	auto, ok := d.AutoStatus, d.AutoStatusOK
	d.mu.Unlock()

	if auto && fn != nil {
		fn(addr, ok)
	}
	return nil
}

// ReportStatus fires the registered status callback, simulating the link
// layer's asynchronous delivery report.
func (d *Driver) ReportStatus(addr espnow.Addr, ok bool) {
	d.mu.Lock()
	fn := d.statusFn
	d.mu.Unlock()
	if fn != nil {
		fn(addr, ok)
	}
}

// ---- inspection helpers ----

func (d *Driver) StationCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stationCalls
}

func (d *Driver) InitCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initCalls
}

func (d *Driver) Peers() []espnow.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]espnow.Addr, len(d.peers))
	copy(out, d.peers)
	return out
}

// Frames returns copies of every payload accepted so far, oldest first.
func (d *Driver) Frames() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.frames))
	for i, f := range d.frames {
		cp := make([]byte, len(f.Payload))
		copy(cp, f.Payload)
		out[i] = cp
	}
	return out
}

// LastFrame returns the most recent payload and its target, or ok=false.
func (d *Driver) LastFrame() (espnow.Addr, []byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return espnow.Addr{}, nil, false
	}
	f := d.frames[len(d.frames)-1]
	cp := make([]byte, len(f.Payload))
	copy(cp, f.Payload)
	return f.Addr, cp, true
}
