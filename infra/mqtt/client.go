package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/liftdispatch/infra/logger"
)

// pahoClient is the subset of paho.Client used here.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Handler receives the topic and payload of an inbound message.
type Handler func(topic string, payload []byte)

type subscription struct {
	topic string
	qos   byte
	h     Handler
}

// Client wraps a Paho connection. Subscriptions are replayed on reconnect.
type Client struct {
	cli        pahoClient
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration

	mu   sync.Mutex
	subs []subscription
}

// NewClient connects to the MQTT broker.
func NewClient(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_client")
	c := &Client{
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	opts.OnConnect = func(pc paho.Client) {
		log.Infof("MQTT connected")
		c.mu.Lock()
		subs := append([]subscription(nil), c.subs...)
		c.mu.Unlock()
		for _, s := range subs {
			if token := pc.Subscribe(s.topic, s.qos, wrap(s.h)); token.Wait() && token.Error() != nil {
				log.Errorf("subscribe %s: %v", s.topic, token.Error())
			}
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	c.cli = cli
	return c, nil
}

func wrap(h Handler) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) { h(msg.Topic(), msg.Payload()) }
}

// Subscribe registers h for topic. The subscription survives reconnects.
func (c *Client) Subscribe(topic string, qos byte, h Handler) error {
	c.mu.Lock()
	c.subs = append(c.subs, subscription{topic: topic, qos: qos, h: h})
	c.mu.Unlock()
	token := c.cli.Subscribe(topic, qos, wrap(h))
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// Publish sends payload, retrying with exponential backoff.
func (c *Client) Publish(topic string, qos byte, payload []byte) error {
	var publishErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		token := c.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		c.logger.Errorf("publish %s attempt %d failed: %v", topic, attempt+1, publishErr)
		if attempt < c.maxRetries {
			time.Sleep(c.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (c *Client) Disconnect() {
	if c.cli != nil && c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}
