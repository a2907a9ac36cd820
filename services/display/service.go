// Package display mirrors the controller's retained state onto an attached
// screen. Rendering is best effort; the remote works headless when no screen
// is fitted.
package display

import (
	"context"

	"ledremote-go/bus"
	"ledremote-go/services/remote"
	"ledremote-go/types"
)

// Screen renders one state snapshot. Implementations must not block the
// service loop for long; a slow screen only delays its own next frame.
type Screen interface {
	Render(state types.RemoteState)
}

type Service struct {
	conn   *bus.Connection
	screen Screen
}

func New(conn *bus.Connection, screen Screen) *Service {
	return &Service{conn: conn, screen: screen}
}

// Start subscribes to the retained remote state, so the screen shows the
// current effect immediately, then re-renders on every change.
func (s *Service) Start(ctx context.Context) {
	sub := s.conn.Subscribe(remote.TopicState)
	go func() {
		defer s.conn.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-sub.Channel():
				if state, ok := msg.Payload.(types.RemoteState); ok {
					s.screen.Render(state)
				}
			}
		}
	}()
}

// ConsoleScreen prints state transitions to the serial console. It doubles as
// the host screen and as a fallback when no OLED is fitted.
type ConsoleScreen struct{}

func (ConsoleScreen) Render(state types.RemoteState) {
	println("[display]", state.EffectName, "(", state.EffectIndex+1, "/", state.CatalogLen, ") bright", state.Brightness)
}
