// Package button polls a debounced GPIO and publishes edge events. Only
// stable transitions are reported; the controller acts on press edges alone.
package button

import (
	"context"
	"time"

	"ledremote-go/bus"
	"ledremote-go/types"
	"ledremote-go/x/timex"
)

// TopicEvent carries types.ButtonEvent for each accepted edge.
var TopicEvent = bus.Topic{"button", "event"}

// Pin is the one GPIO operation the poller needs.
type Pin interface {
	Get() bool
}

type Config struct {
	Pin      Pin
	Invert   bool          // pressed == low (pull-up wiring)
	Poll     time.Duration // default 10ms
	Debounce time.Duration // default 20ms
}

type Service struct {
	conn *bus.Connection
	cfg  Config

	stable    bool
	candidate bool
	since     time.Time
}

func New(conn *bus.Connection, cfg Config) *Service {
	if cfg.Poll <= 0 {
		cfg.Poll = 10 * time.Millisecond
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 20 * time.Millisecond
	}
	return &Service{conn: conn, cfg: cfg}
}

// Start begins polling; the initial level is taken as the stable state so a
// held button at boot does not produce a phantom press.
func (s *Service) Start(ctx context.Context) {
	s.stable = s.pressed()
	s.candidate = s.stable
	s.since = time.Now()
	go s.pollLoop(ctx)
}

func (s *Service) pollLoop(ctx context.Context) {
	tick := time.NewTicker(s.cfg.Poll)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.step(time.Now())
		}
	}
}

// step runs one debounce iteration: a level change restarts the settle
// window; a level stable past the window that differs from the committed
// state becomes an edge.
func (s *Service) step(now time.Time) {
	raw := s.pressed()
	if raw != s.candidate {
		s.candidate = raw
		s.since = now
		return
	}
	if s.candidate == s.stable {
		return
	}
	if now.Sub(s.since) < s.cfg.Debounce {
		return
	}
	s.stable = s.candidate
	s.conn.Publish(s.conn.NewMessage(TopicEvent, types.ButtonEvent{
		Pressed: s.stable,
		TSms:    timex.NowMs(),
	}, false))
}

func (s *Service) pressed() bool {
	level := s.cfg.Pin.Get()
	if s.cfg.Invert {
		return !level
	}
	return level
}
