package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/liftdispatch/app"
	"github.com/kilianp07/liftdispatch/config"
	"github.com/kilianp07/liftdispatch/simulator"
)

var (
	simSeed  int64
	simTicks int
	simRate  float64
	simChart string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the configured building in the simulator and print the report",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "random seed (overrides simulation.seed)")
	simulateCmd.Flags().IntVar(&simTicks, "ticks", 0, "number of ticks (overrides simulation.ticks)")
	simulateCmd.Flags().Float64Var(&simRate, "spawn-rate", 0, "passengers per tick (overrides simulation.spawn_rate)")
	simulateCmd.Flags().StringVar(&simChart, "chart", "", "write an HTML wait time chart to this file")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("seed") {
		cfg.Simulation.Seed = simSeed
	}
	if cmd.Flags().Changed("ticks") {
		cfg.Simulation.Ticks = simTicks
		cfg.Simulation.QuietTicks = simTicks / 4
	}
	if cmd.Flags().Changed("spawn-rate") {
		cfg.Simulation.SpawnRate = simRate
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return err
	}

	rep, err := app.Simulate(ctx, cfg)
	if err != nil {
		return err
	}
	if simChart != "" {
		if err := writeChart(simChart, rep); err != nil {
			return err
		}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func writeChart(path string, rep simulator.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if err := simulator.RenderWaitChart(f, rep); err != nil {
		f.Close()
		return fmt.Errorf("chart: %w", err)
	}
	return f.Close()
}
