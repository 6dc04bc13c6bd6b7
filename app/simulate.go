package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/liftdispatch/config"
	"github.com/kilianp07/liftdispatch/infra/logger"
	"github.com/kilianp07/liftdispatch/simulator"
)

// Simulate runs the configured building in the simulator with the same
// metrics sinks and journal as the service.
func Simulate(ctx context.Context, cfg *config.Config) (simulator.Report, error) {
	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return simulator.Report{}, err
	}
	log := logger.New("simulate")
	classes, err := cfg.Building.Classes()
	if err != nil {
		return simulator.Report{}, err
	}
	cars := make([]simulator.CarConfig, len(cfg.Building.Cars))
	for i, c := range cfg.Building.Cars {
		cars[i] = simulator.CarConfig{Capacity: c.MaxCapacity, Class: classes[i]}
	}
	sim, err := simulator.New(cfg.Simulation, cfg.Building.Floors, cars, cfg.Dispatch, logger.New("dispatch"))
	if err != nil {
		return simulator.Report{}, fmt.Errorf("simulator: %w", err)
	}
	collab, err := newCollaborators(cfg)
	if err != nil {
		return simulator.Report{}, err
	}
	defer func() { _ = collab.close(log) }()
	collab.attach(sim.Engine())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	collab.watch(runCtx)

	rep, err := sim.Run(ctx)
	log.Infof("simulation finished after %d ticks: %d/%d delivered", rep.Ticks, rep.Delivered, rep.Spawned)
	return rep, err
}
