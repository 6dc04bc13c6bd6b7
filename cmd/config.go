package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/liftdispatch/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration related commands",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration file",
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	classes, err := cfg.Building.Classes()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: ok\n", cfgPath)
	fmt.Fprintf(out, "floors: %d\n", cfg.Building.Floors)
	for i, c := range cfg.Building.Cars {
		fmt.Fprintf(out, "car %d: capacity %d, %s\n", i, c.MaxCapacity, classes[i])
	}
	return nil
}
