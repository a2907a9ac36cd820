// Package bus is the in-process message backbone connecting the remote's
// services. Topics are ordered token paths; subscriptions may use the MQTT-style
// wildcards "+" (exactly one token) and "#" (zero or more trailing tokens).
// Retained messages let late subscribers (display, heartbeat) pick up the last
// published state without coordination.
package bus

import (
	"context"
	"errors"
	"sync"
)

// Wildcard tokens.
const (
	TokPlus = "+"
	TokHash = "#"
)

// Topic is a sequence of comparable tokens (strings or ints).
type Topic []any

// T builds a Topic and validates its tokens. It panics on tokens that cannot
// be used as map keys, since those would corrupt the subscription trie.
func T(tokens ...any) Topic {
	for _, tok := range tokens {
		switch tok.(type) {
		case string, int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64, bool:
		default:
			panic("bus: topic token must be a comparable scalar")
		}
	}
	return Topic(tokens)
}

// Equal reports whether two topics are token-wise identical.
func (t Topic) Equal(o Topic) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// Message is the unit of exchange on the bus.
type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// CanReply reports whether the message carries a reply topic.
func (m *Message) CanReply() bool { return len(m.ReplyTo) > 0 }

// Subscription is a single topic (or pattern) subscription owned by a Connection.
type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// trie node; children are keyed by token (including wildcard tokens from
// subscription patterns).
type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

// Bus routes messages between connections.
type Bus struct {
	mu       sync.Mutex
	root     *node
	qLen     int
	replySeq int
}

// NewBus creates a bus; queueLen is the per-subscription channel depth.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

// NewMessage builds a message. Retained messages with a nil payload clear the
// retained slot at that topic.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish delivers msg to every matching subscription and updates retained state.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.deliver(b.root, msg.Topic, msg)

	if msg.Retained {
		n := b.root
		for _, tok := range msg.Topic {
			if n.children == nil {
				n.children = make(map[any]*node)
			}
			child, ok := n.children[tok]
			if !ok {
				child = &node{}
				n.children[tok] = child
			}
			n = child
		}
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
}

// deliver walks the trie matching remaining topic tokens against subscription
// paths, honouring "+" and "#" branches.
func (b *Bus) deliver(n *node, rest Topic, msg *Message) {
	if n == nil {
		return
	}
	// "#" at this level matches the whole remainder, including none of it.
	if n.children != nil {
		if hash, ok := n.children[any(TokHash)]; ok {
			fanout(hash.subs, msg)
		}
	}
	if len(rest) == 0 {
		fanout(n.subs, msg)
		return
	}
	if n.children == nil {
		return
	}
	if child, ok := n.children[rest[0]]; ok {
		b.deliver(child, rest[1:], msg)
	}
	if plus, ok := n.children[any(TokPlus)]; ok {
		b.deliver(plus, rest[1:], msg)
	}
}

func fanout(subs []*Subscription, msg *Message) {
	for _, sub := range subs {
		select {
		case sub.ch <- msg:
		default:
			// Queue full: drop the oldest so fresh state wins.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- msg:
			default:
			}
		}
	}
}

// addSubscription inserts sub and replays matching retained messages.
func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		if n.children == nil {
			n.children = make(map[any]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	replayRetained(b.root, sub.topic, sub)
}

// replayRetained walks the trie of retained messages against a subscription
// pattern and queues every match.
func replayRetained(n *node, pattern Topic, sub *Subscription) {
	if n == nil {
		return
	}
	if len(pattern) == 0 {
		if n.retained != nil {
			queue(sub, n.retained)
		}
		return
	}
	switch pattern[0] {
	case any(TokHash):
		replayAll(n, sub)
	case any(TokPlus):
		for tok, child := range n.children {
			if tok == any(TokPlus) || tok == any(TokHash) {
				continue
			}
			replayRetained(child, pattern[1:], sub)
		}
	default:
		if n.children == nil {
			return
		}
		if child, ok := n.children[pattern[0]]; ok {
			replayRetained(child, pattern[1:], sub)
		}
	}
}

func replayAll(n *node, sub *Subscription) {
	if n.retained != nil {
		queue(sub, n.retained)
	}
	for _, child := range n.children {
		replayAll(child, sub)
	}
}

func queue(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
	default:
	}
}

// unsubscribe removes sub and prunes empty trie nodes.
func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	stack := make([]*node, 0, len(sub.topic))
	for _, tok := range sub.topic {
		if n.children == nil {
			return
		}
		child, ok := n.children[tok]
		if !ok {
			return
		}
		stack = append(stack, n)
		n = child
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	for i := len(sub.topic) - 1; i >= 0; i-- {
		parent := stack[i]
		key := sub.topic[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

// nextReplyTopic allocates a process-unique reply topic.
func (b *Bus) nextReplyTopic(connID string) Topic {
	b.mu.Lock()
	b.replySeq++
	seq := b.replySeq
	b.mu.Unlock()
	return Topic{"$reply", connID, seq}
}

// Connection scopes subscriptions to one service.
type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

// NewConnection creates a connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.addSubscription(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions owned by this connection.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}

// Reply publishes a response to msg's reply topic.
func (c *Connection) Reply(msg *Message, payload any, retained bool) {
	if !msg.CanReply() {
		return
	}
	c.bus.Publish(&Message{Topic: msg.ReplyTo, Payload: payload, Retained: retained})
}

// Request publishes req with a fresh reply topic and returns the subscription
// on which replies arrive. The caller unsubscribes when done.
func (c *Connection) Request(req *Message) *Subscription {
	req.ReplyTo = c.bus.nextReplyTopic(c.id)
	sub := c.Subscribe(req.ReplyTo)
	c.bus.Publish(req)
	return sub
}

// ErrNoReply is returned by RequestWait when the context ends first.
var ErrNoReply = errors.New("bus: no reply")

// RequestWait publishes req and blocks for a single reply or ctx cancellation.
func (c *Connection) RequestWait(ctx context.Context, req *Message) (*Message, error) {
	sub := c.Request(req)
	defer c.Unsubscribe(sub)
	select {
	case msg := <-sub.Channel():
		return msg, nil
	case <-ctx.Done():
		return nil, ErrNoReply
	}
}
