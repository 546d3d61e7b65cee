package commands

import (
	"fmt"

	"github.com/dyluth/whirlpool/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new whirlpool project",
	Long: `Initialize a new whirlpool project in the current directory.

Creates:
  • whirlpool.yml - Cave configuration with the Wikipedia and LOC thinkers
  • .env.example  - API key variables for the keyed providers

Use --force to overwrite an existing configuration.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite existing whirlpool.yml and .env.example")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := scaffold.Initialize(".", forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess()
	return nil
}
