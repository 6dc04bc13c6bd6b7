package mqtt

import "github.com/kilianp07/liftdispatch/core/model"

// StateMessage is the periodic car report published by the host.
type StateMessage struct {
	Floor       int             `json:"floor"`
	LoadFactor  float64         `json:"load_factor"`
	MaxCapacity int             `json:"max_capacity"`
	Direction   model.Direction `json:"direction"`
}

// FloorMessage carries the floor of arrival and inside-button events.
type FloorMessage struct {
	Floor int `json:"floor"`
}

// PassingMessage is sent when a car moves past a floor without stopping.
type PassingMessage struct {
	Floor     int             `json:"floor"`
	Direction model.Direction `json:"direction"`
}

// HallButtonMessage is a hall button press.
type HallButtonMessage struct {
	Direction model.Direction `json:"direction"`
}

// QueueCommand is the destination queue published to the host after every
// commit.
type QueueCommand struct {
	CommandID string      `json:"command_id"`
	Car       model.CarID `json:"car"`
	Queue     []int       `json:"queue"`
	Timestamp int64       `json:"timestamp"`
}
