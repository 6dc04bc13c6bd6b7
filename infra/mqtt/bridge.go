package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/liftdispatch/core/model"
	"github.com/kilianp07/liftdispatch/infra/logger"
)

// Notifier receives host notifications decoded by the Bridge. The dispatch
// Engine implements it.
type Notifier interface {
	OnCarIdle(car model.CarID) error
	OnCarArrivedAtFloor(car model.CarID, floor int) error
	OnCarPassingFloor(car model.CarID, floor int, dir model.Direction) error
	OnCarButtonPressedInside(car model.CarID, floor int) error
	OnFloorButtonPressed(floor int, dir model.Direction) error
	OnFloorLightStateChanged(floor int, state model.LightState) error
}

// Publisher sends a payload on a topic. *Client implements it.
type Publisher interface {
	Publish(topic string, qos byte, payload []byte) error
}

// Subscriber registers a topic handler. *Client implements it.
type Subscriber interface {
	Subscribe(topic string, qos byte, h Handler) error
}

// ErrUnknownTopic is returned for topics the bridge does not handle.
var ErrUnknownTopic = errors.New("unknown topic")

// Bridge connects the host over MQTT to a Notifier. Inbound topics are
// decoded into notifications; committed queues of the Fleet are published
// on {prefix}/car/{id}/queue.
type Bridge struct {
	pub      Publisher
	fleet    *Fleet
	notifier Notifier
	prefix   string
	qosEvt   byte
	qosQueue byte
	log      logger.Logger
	now      func() time.Time
}

// NewBridge creates a bridge. The notifier may be set later with SetNotifier
// since the Engine is usually built from the Fleet.
func NewBridge(cfg Config, pub Publisher, fleet *Fleet) *Bridge {
	cfg.SetDefaults()
	return &Bridge{
		pub:      pub,
		fleet:    fleet,
		prefix:   cfg.TopicPrefix,
		qosEvt:   cfg.qos("events"),
		qosQueue: cfg.qos("queue"),
		log:      logger.New("mqtt_bridge"),
		now:      time.Now,
	}
}

// SetNotifier configures the receiver of decoded notifications.
func (b *Bridge) SetNotifier(n Notifier) { b.notifier = n }

// Start subscribes to the host topics and publishes committed queues until
// ctx is canceled.
func (b *Bridge) Start(ctx context.Context, sub Subscriber) error {
	if b.notifier == nil {
		return fmt.Errorf("mqtt bridge: no notifier")
	}
	h := func(topic string, payload []byte) {
		if err := b.HandleMessage(topic, payload); err != nil {
			b.log.Warnf("drop %s: %v", topic, err)
		}
	}
	for _, entity := range []string{EntityCar, EntityFloor} {
		if err := sub.Subscribe(fmt.Sprintf("%s/%s/+/+", b.prefix, entity), b.qosEvt, h); err != nil {
			return err
		}
	}
	go b.publishLoop(ctx)
	return nil
}

func (b *Bridge) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.fleet.notify:
			b.Flush()
		}
	}
}

// Flush publishes every queue committed since the previous flush.
func (b *Bridge) Flush() {
	pending := b.fleet.drain()
	ids := make([]model.CarID, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		q := pending[id]
		if q == nil {
			q = []int{}
		}
		cmd := QueueCommand{CommandID: uuid.NewString(), Car: id, Queue: q, Timestamp: b.now().UnixMilli()}
		payload, err := json.Marshal(cmd)
		if err != nil {
			b.log.Errorf("encode queue of car %d: %v", id, err)
			continue
		}
		topic := CarTopic(b.prefix, int(id), KindQueue)
		if err := b.pub.Publish(topic, b.qosQueue, payload); err != nil {
			b.log.Errorf("publish %s: %v", topic, err)
			continue
		}
		b.log.Debugf("sent queue %s %v to %s", cmd.CommandID, q, topic)
	}
}

// HandleMessage decodes one inbound message and forwards it to the notifier.
func (b *Bridge) HandleMessage(topic string, payload []byte) error {
	t, err := ParseTopic(b.prefix, topic)
	if err != nil {
		return err
	}
	if t.Entity == EntityFloor {
		return b.handleFloor(t, payload)
	}
	car := b.fleet.Car(model.CarID(t.ID))
	if car == nil {
		return fmt.Errorf("car %d: %w", t.ID, ErrUnknownTopic)
	}
	id := model.CarID(t.ID)
	switch t.Kind {
	case KindState:
		var m StateMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return err
		}
		car.applyState(m)
		return nil
	case KindIdle:
		return b.notifier.OnCarIdle(id)
	case KindArrived:
		var m FloorMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return err
		}
		car.arrive(m.Floor)
		return b.notifier.OnCarArrivedAtFloor(id, m.Floor)
	case KindPassing:
		var m PassingMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return err
		}
		car.setFloor(m.Floor)
		return b.notifier.OnCarPassingFloor(id, m.Floor, m.Direction)
	case KindButton:
		var m FloorMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return err
		}
		return b.notifier.OnCarButtonPressedInside(id, m.Floor)
	case KindQueue:
		// our own publications
		return nil
	}
	return fmt.Errorf("%s: %w", topic, ErrUnknownTopic)
}

func (b *Bridge) handleFloor(t Topic, payload []byte) error {
	switch t.Kind {
	case KindButton:
		var m HallButtonMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return err
		}
		return b.notifier.OnFloorButtonPressed(t.ID, m.Direction)
	case KindLights:
		var m model.LightState
		if err := json.Unmarshal(payload, &m); err != nil {
			return err
		}
		return b.notifier.OnFloorLightStateChanged(t.ID, m)
	}
	return fmt.Errorf("floor kind %s: %w", t.Kind, ErrUnknownTopic)
}
