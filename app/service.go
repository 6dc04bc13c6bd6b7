package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/liftdispatch/config"
	"github.com/kilianp07/liftdispatch/core/dispatch"
	"github.com/kilianp07/liftdispatch/core/dispatch/journal"
	coremetrics "github.com/kilianp07/liftdispatch/core/metrics"
	coremon "github.com/kilianp07/liftdispatch/core/monitoring"
	"github.com/kilianp07/liftdispatch/infra/logger"
	"github.com/kilianp07/liftdispatch/infra/metrics"
	"github.com/kilianp07/liftdispatch/infra/monitoring"
	"github.com/kilianp07/liftdispatch/infra/mqtt"
	"github.com/kilianp07/liftdispatch/internal/eventbus"
)

// Transport is the MQTT connection used by the service. *mqtt.Client
// implements it.
type Transport interface {
	mqtt.Publisher
	mqtt.Subscriber
	Disconnect()
}

// Service orchestrates the dispatch Engine and the MQTT host bridge.
type Service struct {
	Engine *dispatch.Engine

	cfg       *config.Config
	transport Transport
	bridge    *mqtt.Bridge
	collab    *collaborators
	log       logger.Logger
}

// New creates a Service from the configuration and connects to the broker.
func New(cfg *config.Config) (*Service, error) {
	if cfg.MQTT.Broker == "" {
		return nil, fmt.Errorf("mqtt: broker required to run the service")
	}
	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, err
	}
	client, err := mqtt.NewClient(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}
	svc, err := NewWithTransport(cfg, client)
	if err != nil {
		client.Disconnect()
		return nil, err
	}
	return svc, nil
}

// NewWithTransport builds a Service on an existing transport.
func NewWithTransport(cfg *config.Config, t Transport) (*Service, error) {
	log := logger.New("service")
	collab, err := newCollaborators(cfg)
	if err != nil {
		return nil, err
	}
	classes, err := cfg.Building.Classes()
	if err != nil {
		collab.close(log)
		return nil, err
	}
	fleet := mqtt.NewFleet(cfg.Building.Capacities())
	specs := make([]dispatch.CarSpec, fleet.Len())
	for i, h := range fleet.Hosts() {
		specs[i] = dispatch.CarSpec{Host: h, Class: classes[i]}
	}
	eng, err := dispatch.NewEngine(cfg.Dispatch, cfg.Building.Floors, specs, logger.New("dispatch"))
	if err != nil {
		collab.close(log)
		return nil, fmt.Errorf("dispatch engine: %w", err)
	}
	collab.attach(eng)

	bridge := mqtt.NewBridge(cfg.MQTT, t, fleet)
	bridge.SetNotifier(eng)
	return &Service{Engine: eng, cfg: cfg, transport: t, bridge: bridge, collab: collab, log: log}, nil
}

// Run starts the bridge, the metrics endpoint and the periodic assignment
// pass. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer coremon.Recover()
	s.collab.watch(ctx)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			defer coremon.Recover()
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if err := s.bridge.Start(ctx, s.transport); err != nil {
		return fmt.Errorf("mqtt bridge: %w", err)
	}
	s.log.Infof("dispatching %d cars over %d floors", len(s.cfg.Building.Cars), s.cfg.Building.Floors)

	ticker := time.NewTicker(s.cfg.Dispatch.Tick())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if res := s.Engine.RunAssignmentPass(); res.Assigned() {
				s.log.Debugf("tick pass %s assigned car %d", res.ID, res.Car)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.transport.Disconnect()
	return s.collab.close(s.log)
}

// collaborators are the observers shared by the service and the simulator.
type collaborators struct {
	sink    coremetrics.MetricsSink
	bus     *eventbus.Bus
	journal journal.Store
	monitor coremon.Monitor
}

func newCollaborators(cfg *config.Config) (*collaborators, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	c := &collaborators{sink: sink, bus: eventbus.New(), monitor: mon}
	if cfg.Journal.Enabled {
		j, err := openJournal(cfg.Journal)
		if err != nil {
			c.bus.Close()
			return nil, fmt.Errorf("journal: %w", err)
		}
		c.journal = j
	}
	return c, nil
}

func openJournal(cfg config.JournalConfig) (journal.Store, error) {
	if cfg.Backend == "sqlite" {
		return journal.NewSQLiteStore(cfg.Path)
	}
	if cfg.MaxSizeMB > 0 {
		return journal.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	return journal.NewJSONLStore(cfg.Path)
}

func (c *collaborators) attach(eng *dispatch.Engine) {
	eng.SetMetricsSink(c.sink)
	eng.SetBus(c.bus)
	if c.journal != nil {
		eng.SetJournal(c.journal)
	}
}

// watch starts the bus consumers: park metrics and violation reports.
func (c *collaborators) watch(ctx context.Context) {
	metrics.StartEventCollector(ctx, c.bus, c.sink)
	coremon.WatchViolations(ctx, c.bus, c.monitor)
}

func (c *collaborators) close(log logger.Logger) error {
	c.bus.Close()
	closeSink(c.sink)
	c.monitor.Flush(2 * time.Second)
	if c.journal != nil {
		if err := c.journal.Close(); err != nil {
			log.Errorf("journal close: %v", err)
			return err
		}
	}
	return nil
}

func closeSink(s coremetrics.MetricsSink) {
	switch v := s.(type) {
	case *coremetrics.MultiSink:
		for _, inner := range v.Sinks {
			closeSink(inner)
		}
	case interface{ Close() }:
		v.Close()
	}
}
