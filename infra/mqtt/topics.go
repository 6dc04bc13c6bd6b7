package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

// Topic kinds.
const (
	KindState   = "state"
	KindIdle    = "idle"
	KindArrived = "arrived"
	KindPassing = "passing"
	KindButton  = "button"
	KindLights  = "lights"
	KindQueue   = "queue"
)

// Topic entities.
const (
	EntityCar   = "car"
	EntityFloor = "floor"
)

// Topic is a parsed bridge topic: {prefix}/{entity}/{id}/{kind}.
type Topic struct {
	Entity string
	ID     int
	Kind   string
}

// ParseTopic splits a topic under prefix.
func ParseTopic(prefix, topic string) (Topic, error) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return Topic{}, fmt.Errorf("topic %q outside prefix %q", topic, prefix)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return Topic{}, fmt.Errorf("malformed topic %q", topic)
	}
	if parts[0] != EntityCar && parts[0] != EntityFloor {
		return Topic{}, fmt.Errorf("unknown entity in topic %q", topic)
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil || id < 0 {
		return Topic{}, fmt.Errorf("bad id in topic %q", topic)
	}
	return Topic{Entity: parts[0], ID: id, Kind: parts[2]}, nil
}

// CarTopic builds {prefix}/car/{id}/{kind}.
func CarTopic(prefix string, id int, kind string) string {
	return fmt.Sprintf("%s/%s/%d/%s", prefix, EntityCar, id, kind)
}

// FloorTopic builds {prefix}/floor/{n}/{kind}.
func FloorTopic(prefix string, floor int, kind string) string {
	return fmt.Sprintf("%s/%s/%d/%s", prefix, EntityFloor, floor, kind)
}
