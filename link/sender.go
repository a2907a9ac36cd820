package link

import (
	"sync/atomic"

	"ledremote-go/bus"
	"ledremote-go/errcode"
	"ledremote-go/espnow"
	"ledremote-go/types"
	"ledremote-go/x/timex"
)

// TopicSendStatus carries types.SendStatus for every delivery callback.
var TopicSendStatus = bus.Topic{"link", "send", "status"}

// Sender is the transport adapter between the controller and the ESP-NOW
// driver. One instance exists per process; a single send is implicitly in
// flight at a time and only the most recent send's delivery status is
// meaningfully correlated.
type Sender struct {
	drv   Driver
	conn  *bus.Connection // may be nil (tests, bare hosts)
	ready bool
	peers []espnow.Addr

	accepted  atomic.Uint32
	rejected  atomic.Uint32
	delivered atomic.Uint32
	failed    atomic.Uint32
}

// NewSender wraps drv. conn, when non-nil, receives SendStatus publications.
func NewSender(drv Driver, conn *bus.Connection) *Sender {
	return &Sender{drv: drv, conn: conn}
}

// Initialise brings the link up: station mode, protocol init, then status
// callback registration. The first failing stage aborts the rest and the
// sender stays unusable; no send is attempted before Initialise succeeds.
func (s *Sender) Initialise() error {
	if s.ready {
		return nil
	}
	if err := s.drv.InitStation(); err != nil {
		println("[link] station init failed:", err.Error())
		return &errcode.E{C: errcode.LinkInitFail, Op: "station", Err: err}
	}
	if err := s.drv.Init(); err != nil {
		println("[link] espnow init failed:", err.Error())
		return &errcode.E{C: errcode.LinkInitFail, Op: "espnow", Err: err}
	}
	s.drv.OnSendStatus(s.onSendStatus)
	s.ready = true
	return nil
}

// RegisterPeer declares addr as a send target. Initialise must have succeeded.
func (s *Sender) RegisterPeer(addr espnow.Addr, channel uint8, encrypt bool) error {
	if !s.ready {
		return errcode.LinkDown
	}
	if err := s.drv.AddPeer(addr, channel, encrypt); err != nil {
		println("[link] add peer failed:", addr.String())
		return &errcode.E{C: errcode.PeerRejected, Op: "add_peer", Err: err}
	}
	s.peers = append(s.peers, addr)
	return nil
}

// Send encodes m and hands it to the link layer. A nil return means the
// message was queued; delivery outcome arrives later via TopicSendStatus.
// There are no retries: a rejection is reported and the caller moves on.
func (s *Sender) Send(addr espnow.Addr, m espnow.Message) error {
	if !s.ready {
		return errcode.LinkDown
	}
	if !s.registered(addr) {
		return errcode.PeerUnknown
	}
	payload, err := espnow.EncodeMessage(m)
	if err != nil {
		return err
	}
	if err := s.drv.Send(addr, payload); err != nil {
		s.rejected.Add(1)
		println("[link] send rejected:", m.Command.String())
		return &errcode.E{C: errcode.TxRejected, Op: "send", Err: err}
	}
	s.accepted.Add(1)
	return nil
}

// Stats snapshots the send counters.
func (s *Sender) Stats() types.LinkStats {
	return types.LinkStats{
		Accepted:  s.accepted.Load(),
		Rejected:  s.rejected.Load(),
		Delivered: s.delivered.Load(),
		Failed:    s.failed.Load(),
	}
}

func (s *Sender) registered(addr espnow.Addr) bool {
	for _, p := range s.peers {
		if p == addr {
			return true
		}
	}
	return false
}

// onSendStatus runs on the driver's execution context. It only bumps counters
// and forwards a non-blocking bus publish; no other shared state is touched.
func (s *Sender) onSendStatus(peer espnow.Addr, ok bool) {
	if ok {
		s.delivered.Add(1)
	} else {
		s.failed.Add(1)
		println("[link] delivery failed:", peer.String())
	}
	if s.conn != nil {
		s.conn.Publish(s.conn.NewMessage(TopicSendStatus, types.SendStatus{
			Peer: peer.String(),
			OK:   ok,
			TSms: timex.NowMs(),
		}, false))
	}
}
