package cmd

import (
	"fmt"

	"github.com/balancer/solver-scripts/internal/app"
	"github.com/balancer/solver-scripts/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the solver HTTP service",
	Long: `Starts the solver service, which will:
1. Listen for auctions on POST /solve
2. Resolve liquidity (embedded in the auction, or fetched externally)
3. Search bounded-hop routes and fill sizes for every order
4. Respond with clearing prices, interactions and fees

The service also exposes /metrics, /health and /ready.`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load config
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create logger
	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Run app
	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
