package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evalloc/app"
	"github.com/kilianp07/evalloc/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "evalloc",
	Short: "Electric vehicle to charging post allocation simulator",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "simulation.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sim, err := app.New(cfg)
	if err != nil {
		return err
	}
	sim.Stdout = cmd.OutOrStdout()
	_, err = sim.Run()
	return err
}
