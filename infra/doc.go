// Package infra holds the adapters that connect the dispatch core to the
// outside world: the MQTT bridge to the car controllers, metrics exporters,
// logging and error tracking. Packages below infra depend only on the
// interfaces declared under core.
package infra
