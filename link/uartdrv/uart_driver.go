//go:build rp2040 || rp2350

// Package uartdrv implements link.Driver against an ESP-NOW radio
// co-processor attached over UART. The RP2 side owns the button, display and
// control logic; the co-processor owns WiFi/ESP-NOW and mirrors this framing.
package uartdrv

import (
	"context"
	"machine"
	"time"

	"ledremote-go/errcode"
	"ledremote-go/espnow"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// Wire framing, both directions:
//
//	SOF(0x7E) | Len(1) | Type(1) | Payload | XOR(1)
//
// Len counts Type+Payload. XOR covers Len..Payload.
const (
	sof = 0x7E

	typInitStation = 0x01
	typInitEspnow  = 0x02
	typAddPeer     = 0x03
	typSend        = 0x04
	typStatus      = 0x05 // coproc → host, async delivery report
	typAckBit      = 0x80 // acks echo the request type with this bit set

	ackOK  = 0x00
	ackErr = 0x01

	ackTimeout = 250 * time.Millisecond
	maxFrame   = 64
)

type Config struct {
	UART   *uartx.UART // defaults to uartx.UART1
	Baud   uint32
	TX, RX machine.Pin
}

type Driver struct {
	u        *uartx.UART
	statusFn func(espnow.Addr, bool)
	acks     chan byte // ack result bytes, keyed by in-order request/response
}

// New configures the UART and starts the reader. The reader goroutine is the
// only consumer of RX; acks flow to waiting requests, status frames to the
// registered callback.
func New(cfg Config) *Driver {
	u := cfg.UART
	if u == nil {
		u = uartx.UART1
	}
	baud := cfg.Baud
	if baud == 0 {
		baud = 115200
	}
	_ = u.Configure(uartx.UARTConfig{BaudRate: baud, TX: cfg.TX, RX: cfg.RX})
	d := &Driver{u: u, acks: make(chan byte, 1)}
	go d.readLoop()
	return d
}

func (d *Driver) InitStation() error { return d.request(typInitStation, nil) }
func (d *Driver) Init() error        { return d.request(typInitEspnow, nil) }

func (d *Driver) OnSendStatus(fn func(espnow.Addr, bool)) { d.statusFn = fn }

func (d *Driver) AddPeer(addr espnow.Addr, channel uint8, encrypt bool) error {
	payload := make([]byte, 0, espnow.AddrLen+2)
	payload = append(payload, addr[:]...)
	payload = append(payload, channel)
	if encrypt {
		payload = append(payload, 1)
	} else {
		payload = append(payload, 0)
	}
	return d.request(typAddPeer, payload)
}

func (d *Driver) Send(addr espnow.Addr, data []byte) error {
	payload := make([]byte, 0, espnow.AddrLen+len(data))
	payload = append(payload, addr[:]...)
	payload = append(payload, data...)
	return d.request(typSend, payload)
}

// request writes one frame and blocks for its ack. One request is in flight
// at a time; the controller's single-sender model guarantees that.
func (d *Driver) request(typ byte, payload []byte) error {
	d.writeFrame(typ, payload)
	ctx, cancel := context.WithTimeout(context.Background(), ackTimeout)
	defer cancel()
	select {
	case res := <-d.acks:
		if res != ackOK {
			return errcode.TxRejected
		}
		return nil
	case <-ctx.Done():
		return errcode.Timeout
	}
}

func (d *Driver) writeFrame(typ byte, payload []byte) {
	frame := make([]byte, 0, len(payload)+4)
	frame = append(frame, sof, byte(1+len(payload)), typ)
	frame = append(frame, payload...)
	var x byte
	for _, b := range frame[1:] {
		x ^= b
	}
	frame = append(frame, x)
	_, _ = d.u.Write(frame)
}

// readLoop reassembles frames from the co-processor.
func (d *Driver) readLoop() {
	buf := make([]byte, maxFrame)
	var frame []byte
	for {
		<-d.u.Readable()
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		n, _ := d.u.RecvSomeContext(ctx, buf)
		cancel()
		for i := 0; i < n; i++ {
			b := buf[i]
			if len(frame) == 0 {
				if b == sof {
					frame = append(frame, b)
				}
				continue
			}
			frame = append(frame, b)
			if len(frame) >= 2 {
				want := int(frame[1]) + 3 // SOF+Len+body+XOR
				if len(frame) == want {
					d.dispatch(frame)
					frame = frame[:0]
				} else if len(frame) > maxFrame {
					frame = frame[:0]
				}
			}
		}
	}
}

func (d *Driver) dispatch(frame []byte) {
	var x byte
	for _, b := range frame[1 : len(frame)-1] {
		x ^= b
	}
	if x != frame[len(frame)-1] {
		return // corrupt, drop
	}
	typ := frame[2]
	body := frame[3 : len(frame)-1]
	switch {
	case typ == typStatus:
		if len(body) == espnow.AddrLen+1 && d.statusFn != nil {
			var peer espnow.Addr
			copy(peer[:], body[:espnow.AddrLen])
			d.statusFn(peer, body[espnow.AddrLen] == ackOK)
		}
	case typ&typAckBit != 0:
		res := byte(ackErr)
		if len(body) == 1 {
			res = body[0]
		}
		select {
		case d.acks <- res:
		default:
		}
	}
}
