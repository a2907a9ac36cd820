// Package remote implements the controller: it owns the current effect index,
// reacts to button edges and console requests, and drives the link sender.
package remote

import (
	"context"

	"ledremote-go/bus"
	"ledremote-go/effects"
	"ledremote-go/errcode"
	"ledremote-go/espnow"
	"ledremote-go/link"
	"ledremote-go/types"
	"ledremote-go/x/timex"
)

// Bus topics.
var (
	TopicButtonEvent = bus.Topic{"button", "event"}
	TopicState       = bus.Topic{"remote", "state"} // retained
	TopicEffectSet   = bus.Topic{"remote", "effect", "set"}
	TopicBrightSet   = bus.Topic{"remote", "bright", "set"}
	TopicStatusGet   = bus.Topic{"remote", "status", "get"}
)

// Service is the remote controller. All state transitions happen on its
// single run goroutine; the only stimuli are button press edges and bus
// requests, exactly one send in flight at a time.
type Service struct {
	conn    *bus.Connection
	sender  *link.Sender
	catalog effects.Catalog
	cfg     types.RemoteConfig

	peer       espnow.Addr
	index      uint32
	brightness uint8
}

func New(conn *bus.Connection, sender *link.Sender, catalog effects.Catalog, cfg types.RemoteConfig) *Service {
	return &Service{
		conn:       conn,
		sender:     sender,
		catalog:    catalog,
		cfg:        cfg,
		brightness: 255,
	}
}

// Start initialises the link (short-circuiting on the first failure, leaving
// the service inert), announces effect 0 so receivers power on in a known
// state, then serves bus events until ctx ends.
func (s *Service) Start(ctx context.Context) error {
	if s.catalog.Len() == 0 {
		return errcode.InvalidParams
	}
	peer, err := espnow.ParseAddr(s.cfg.ReceiverMAC)
	if err != nil {
		println("[remote] bad receiver address:", s.cfg.ReceiverMAC)
		return err
	}
	s.peer = peer

	if err := s.sender.Initialise(); err != nil {
		return err
	}
	if err := s.sender.RegisterPeer(s.peer, s.cfg.Channel, s.cfg.Encrypt); err != nil {
		return err
	}

	// Power-on default; a rejection here is logged and life goes on, the next
	// press sends a fresh absolute index anyway.
	if err := s.setEffect(0); err != nil {
		println("[remote] startup send failed:", err.Error())
	}

	// Subscribe before returning so no early edge is lost.
	btnSub := s.conn.Subscribe(TopicButtonEvent)
	effSub := s.conn.Subscribe(TopicEffectSet)
	brSub := s.conn.Subscribe(TopicBrightSet)
	stSub := s.conn.Subscribe(TopicStatusGet)

	go s.run(ctx, btnSub, effSub, brSub, stSub)
	return nil
}

func (s *Service) run(ctx context.Context, btnSub, effSub, brSub, stSub *bus.Subscription) {
	defer s.conn.Unsubscribe(btnSub)
	defer s.conn.Unsubscribe(effSub)
	defer s.conn.Unsubscribe(brSub)
	defer s.conn.Unsubscribe(stSub)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-btnSub.Channel():
			ev, ok := msg.Payload.(types.ButtonEvent)
			if !ok || !ev.Pressed {
				continue // press transitions only, never hold/release
			}
			if err := s.nextEffect(); err != nil {
				println("[remote] effect send failed:", err.Error())
			}
		case msg := <-effSub.Channel():
			s.handleEffectSet(msg)
		case msg := <-brSub.Channel():
			s.handleBrightSet(msg)
		case msg := <-stSub.Channel():
			s.conn.Reply(msg, types.StatusReply{
				State: s.state(),
				Stats: s.sender.Stats(),
			}, false)
		}
	}
}

func (s *Service) handleEffectSet(msg *bus.Message) {
	req, ok := msg.Payload.(types.EffectRequest)
	if !ok {
		s.replyErr(msg, errcode.InvalidPayload)
		return
	}
	var err error
	if req.Next {
		err = s.nextEffect()
	} else {
		err = s.setEffect(req.Index)
	}
	if err != nil {
		println("[remote] effect request failed:", err.Error())
		s.replyErr(msg, errcode.Of(err))
		return
	}
	s.replyOK(msg)
}

func (s *Service) handleBrightSet(msg *bus.Message) {
	req, ok := msg.Payload.(types.BrightnessRequest)
	if !ok {
		s.replyErr(msg, errcode.InvalidPayload)
		return
	}
	if err := s.setBrightness(req.Level); err != nil {
		println("[remote] brightness request failed:", err.Error())
		s.replyErr(msg, errcode.Of(err))
		return
	}
	s.replyOK(msg)
}

// nextEffect wraps modulo catalog length so the last effect steps back to the
// first. The absolute set-effect form is always used: the receiver converges
// on our index even when individual messages are lost.
func (s *Service) nextEffect() error {
	return s.setEffect((s.index + 1) % uint32(s.catalog.Len()))
}

// setEffect validates, transmits and only then commits the new index and the
// display state. A rejected send leaves both untouched.
func (s *Service) setEffect(index uint32) error {
	if !s.catalog.Valid(index) {
		return errcode.InvalidEffect
	}
	m, err := espnow.NewMessage(espnow.CmdSetEffect, index)
	if err != nil {
		return err
	}
	if err := s.sender.Send(s.peer, m); err != nil {
		return err
	}
	s.index = index
	println("[remote] effect:", s.catalog.Name(index))
	s.publishState()
	return nil
}

func (s *Service) setBrightness(level uint8) error {
	m, err := espnow.NewMessage(espnow.CmdSetBrightness, uint32(level))
	if err != nil {
		return err
	}
	if err := s.sender.Send(s.peer, m); err != nil {
		return err
	}
	s.brightness = level
	s.publishState()
	return nil
}

func (s *Service) state() types.RemoteState {
	return types.RemoteState{
		EffectIndex: s.index,
		EffectName:  s.catalog.Name(s.index),
		CatalogLen:  s.catalog.Len(),
		Brightness:  s.brightness,
		TSms:        timex.NowMs(),
	}
}

func (s *Service) publishState() {
	s.conn.Publish(s.conn.NewMessage(TopicState, s.state(), true))
}

func (s *Service) replyOK(msg *bus.Message) {
	if msg.CanReply() {
		s.conn.Reply(msg, types.OKReply{OK: true}, false)
	}
}

func (s *Service) replyErr(msg *bus.Message, code errcode.Code) {
	if msg.CanReply() {
		s.conn.Reply(msg, types.ErrorReply{OK: false, Error: string(code)}, false)
	}
}
