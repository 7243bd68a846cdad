package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/balancer/solver-scripts/internal/app"
	"github.com/balancer/solver-scripts/internal/auction"
	"github.com/balancer/solver-scripts/pkg/config"
	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var solveCmd = &cobra.Command{
	Use:   "solve <auction.json>",
	Short: "Solve a single auction from a file",
	Long: `Reads an auction instance from a JSON file, solves it offline and
prints the solution set to stdout.

Useful for replaying archived auctions and for debugging routing
behaviour without standing up the HTTP service.`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
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

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read auction file: %w", err)
	}

	var auc auction.Auction
	err = gojson.Unmarshal(data, &auc)
	if err != nil {
		return fmt.Errorf("decode auction: %w", err)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	resp, err := application.Solver().Solve(context.Background(), &auc)
	if err != nil {
		return fmt.Errorf("solve auction: %w", err)
	}

	out, err := gojson.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	fmt.Println(string(out))

	return application.Shutdown()
}
