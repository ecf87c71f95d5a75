package mqtt

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Subscriber receives EMG readings published by the hand.
type Subscriber struct {
	client paho.Client
}

// NewSubscriber connects to broker and calls handle for every reading on
// topic. Malformed messages are logged and skipped.
func NewSubscriber(broker, clientID, topic string, handle func(EMGPayload)) (*Subscriber, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	// Resubscribe on every (re)connect.
	opts.SetOnConnectHandler(func(c paho.Client) {
		c.Subscribe(topic, 0, messageHandler(handle))
	})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &Subscriber{client: client}, nil
}

func messageHandler(handle func(EMGPayload)) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		p, err := ParsePayload(msg.Payload())
		if err != nil {
			log.Printf("mqtt: %s: %v", msg.Topic(), err)
			return
		}
		handle(p)
	}
}

// Close disconnects from the broker.
func (s *Subscriber) Close() error {
	s.client.Disconnect(250)
	return nil
}
