package mqtt

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/myohand/internal/logic"
)

// offlineBufferSize holds roughly 50 seconds of readings at 20Hz.
const offlineBufferSize = 1000

// outboxSize bounds messages queued for the sender goroutine while the
// connection is up. Publish drops rather than waits when it is full.
const outboxSize = 256

// writeTimeout caps how long the sender waits on paho's outbound queue.
const writeTimeout = time.Second

// RealPublisher publishes to an actual MQTT broker. Publish and PublishSystem
// only queue: a single sender goroutine talks to the client, so a stalled
// link never reaches the control loop. While the connection is down messages
// go to a bounded buffer that is replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	now    func() time.Time

	mu        sync.Mutex
	pending   *ringBuffer
	connected bool // a connection has been established at least once

	outbox  chan pendingMsg
	replay  chan struct{}
	dropped atomic.Int64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewRealPublisher creates a publisher for the given broker. Connecting
// happens in the background, so this returns immediately even when the
// broker is unreachable.
func NewRealPublisher(broker string) *RealPublisher {
	p := newPublisher(time.Now)

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWriteTimeout(writeTimeout).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	go p.run()
	p.client.Connect()
	return p
}

func newPublisherWithClient(client paho.Client, now func() time.Time) *RealPublisher {
	p := newPublisher(now)
	p.client = client
	go p.run()
	return p
}

func newPublisher(now func() time.Time) *RealPublisher {
	return &RealPublisher{
		now:     now,
		pending: newRingBuffer(offlineBufferSize),
		outbox:  make(chan pendingMsg, outboxSize),
		replay:  make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Publish queues a pipeline decision, QoS 0, not retained.
func (p *RealPublisher) Publish(d logic.Decision) error {
	payload, err := FormatPayload(d)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	p.send(pendingMsg{topic: Topic, payload: payload})
	return nil
}

// PublishSystem queues a system lifecycle event, QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	p.send(pendingMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

func (p *RealPublisher) send(msg pendingMsg) {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.pending.push(msg)
		p.mu.Unlock()
		return
	}

	select {
	case p.outbox <- msg:
	default:
		if n := p.dropped.Add(1); n == 1 || n%1000 == 0 {
			log.Printf("mqtt: send queue full, dropped %d messages", n)
		}
	}
}

// run is the only goroutine that calls into the client. A pending replay
// goes before queued live messages.
func (p *RealPublisher) run() {
	defer close(p.done)
	for {
		select {
		case <-p.replay:
			p.replayPending()
			continue
		default:
		}

		select {
		case <-p.replay:
			p.replayPending()
		case msg := <-p.outbox:
			p.fire(msg)
		case <-p.stop:
			p.flush()
			return
		}
	}
}

// flush sends whatever is still queued so a final SHUTDOWN gets out.
func (p *RealPublisher) flush() {
	select {
	case <-p.replay:
		p.replayPending()
	default:
	}
	for {
		select {
		case msg := <-p.outbox:
			p.fire(msg)
		default:
			return
		}
	}
}

// fire hands msg to the client. QoS 1 failures are logged from a goroutine.
func (p *RealPublisher) fire(msg pendingMsg) {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if msg.qos == 0 {
		return
	}
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: publish to %s timed out", msg.topic)
			return
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: publish to %s: %v", msg.topic, err)
		}
	}()
}

func (p *RealPublisher) replayPending() {
	p.mu.Lock()
	msgs := p.pending.drain()
	first := !p.connected
	p.connected = true
	p.mu.Unlock()

	for _, msg := range msgs {
		p.fire(msg)
	}

	if first {
		log.Printf("mqtt: connected")
		return
	}

	log.Printf("mqtt: reconnected, replayed %d buffered messages", len(msgs))
	payload, _ := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
	p.fire(pendingMsg{topic: TopicSystem, payload: payload, qos: 1})
}

// onConnect runs on a paho goroutine; the replay itself happens in run.
func (p *RealPublisher) onConnect(paho.Client) {
	select {
	case p.replay <- struct{}{}:
	default:
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	log.Printf("mqtt: connection lost: %v", err)
}

// IsConnected reports whether the broker connection is currently open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns how many messages are waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.len()
}

// Dropped returns how many messages were discarded because the send queue
// was full.
func (p *RealPublisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close sends what is already queued, stops the sender and disconnects.
func (p *RealPublisher) Close() error {
	p.closeOnce.Do(func() {
		close(p.stop)
		<-p.done
		p.client.Disconnect(1000) // 1 second timeout
	})
	return nil
}
