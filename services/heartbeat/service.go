// Package heartbeat prints a periodic liveness line with uptime and the link
// counters, so a serial capture shows at a glance whether the radio path is
// still delivering.
package heartbeat

import (
	"context"
	"time"

	"ledremote-go/bus"
	"ledremote-go/types"
	"ledremote-go/x/timex"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

// Service logs at a fixed interval. Stats is polled on every beat; a nil
// Stats func logs uptime only.
type Service struct {
	Stats func() types.LinkStats
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	startMs := timex.NowMs()
	tick := time.NewTicker(10 * time.Second)
	defer tick.Stop()

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case <-tick.C:
			up := timex.SinceMs(startMs) / 1000
			if s.Stats == nil {
				println("Info: heartbeat up", up, "s")
				continue
			}
			st := s.Stats()
			println("Info: heartbeat up", up, "s link accepted", st.Accepted,
				"delivered", st.Delivered, "failed", st.Failed)
		case msg := <-cfgSub.Channel():
			// Change tick interval if needed
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"]; ok {
					if interval, ok := iv.(float64); ok && interval > 0 {
						tick.Reset(time.Duration(interval) * time.Second)
						println("Info: heartbeat interval set to", interval, "seconds")
					}
				}
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
