// Package console is a line-oriented debug shell on a serial stream. It
// drives the same bus requests the button path uses, so a bench setup can
// select effects and brightness without touching the hardware button.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/shlex"

	"ledremote-go/bus"
	"ledremote-go/services/remote"
	"ledremote-go/types"
	"ledremote-go/x/mathx"
)

const replyTimeout = 500 * time.Millisecond

type Service struct {
	conn *bus.Connection
	r    io.Reader
	w    io.Writer
}

func New(conn *bus.Connection, r io.Reader, w io.Writer) *Service {
	return &Service{conn: conn, r: r, w: w}
}

// Start consumes lines until the stream ends or ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go func() {
		scanner := bufio.NewScanner(s.r)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return
			}
			s.handleLine(ctx, scanner.Text())
		}
	}()
}

func (s *Service) handleLine(ctx context.Context, line string) {
	args, err := shlex.Split(line)
	if err != nil {
		fmt.Fprintf(s.w, "parse error: %v\n", err)
		return
	}
	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "help":
		fmt.Fprint(s.w, "commands: effect <n>|next, bright <0-255>, status, help\n")
	case "effect":
		s.cmdEffect(ctx, args[1:])
	case "bright":
		s.cmdBright(ctx, args[1:])
	case "status":
		s.cmdStatus(ctx)
	default:
		fmt.Fprintf(s.w, "unknown command %q (try help)\n", args[0])
	}
}

func (s *Service) cmdEffect(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprint(s.w, "usage: effect <n>|next\n")
		return
	}
	req := types.EffectRequest{}
	if args[0] == "next" {
		req.Next = true
	} else {
		n, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Fprintf(s.w, "bad index %q\n", args[0])
			return
		}
		req.Index = uint32(n)
	}
	s.request(ctx, remote.TopicEffectSet, req)
}

func (s *Service) cmdBright(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprint(s.w, "usage: bright <0-255>\n")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.w, "bad level %q\n", args[0])
		return
	}
	level := uint8(mathx.Clamp(n, 0, 255))
	s.request(ctx, remote.TopicBrightSet, types.BrightnessRequest{Level: level})
}

func (s *Service) cmdStatus(ctx context.Context) {
	rctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	reply, err := s.conn.RequestWait(rctx, s.conn.NewMessage(remote.TopicStatusGet, nil, false))
	if err != nil {
		fmt.Fprint(s.w, "no response from controller\n")
		return
	}
	st, ok := reply.Payload.(types.StatusReply)
	if !ok {
		fmt.Fprintf(s.w, "unexpected reply: %#v\n", reply.Payload)
		return
	}
	fmt.Fprintf(s.w, "effect %d/%d %q bright %d\n",
		st.State.EffectIndex+1, st.State.CatalogLen, st.State.EffectName, st.State.Brightness)
	fmt.Fprintf(s.w, "link accepted=%d rejected=%d delivered=%d failed=%d\n",
		st.Stats.Accepted, st.Stats.Rejected, st.Stats.Delivered, st.Stats.Failed)
}

func (s *Service) request(ctx context.Context, topic bus.Topic, payload any) {
	rctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()
	reply, err := s.conn.RequestWait(rctx, s.conn.NewMessage(topic, payload, false))
	if err != nil {
		fmt.Fprint(s.w, "no response from controller\n")
		return
	}
	switch p := reply.Payload.(type) {
	case types.OKReply:
		fmt.Fprint(s.w, "ok\n")
	case types.ErrorReply:
		fmt.Fprintf(s.w, "error: %s\n", p.Error)
	default:
		fmt.Fprintf(s.w, "unexpected reply: %#v\n", p)
	}
}
