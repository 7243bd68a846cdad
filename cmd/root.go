package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "solver",
	Short: "Batch auction solver",
	Long: `Batch auction solver that bids on order-routing auctions.

Each auction carries a set of user orders, token metadata and on-chain
liquidity. The solver searches bounded-hop routes through that liquidity,
tries a ladder of fill sizes for partially fillable orders, and returns
a solution with clearing prices, settlement interactions and a gas-based
fee for every order it managed to route.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	cobra.OnInitialize(loadDotEnv)
}

func loadDotEnv() {
	// A missing .env is fine; env vars may come from the environment.
	_ = godotenv.Load()
}
