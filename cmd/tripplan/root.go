package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPathFlag string

var rootCmd = &cobra.Command{
	Use:   "tripplan",
	Short: "tripplan - research a trip from the terminal",
	Long: `tripplan builds the same travel plan as the HTTP API and prints it.

Commands:
  plan        Research a destination and print the plan
  panels      List available panels in display order

Examples:
  tripplan panels
  tripplan plan -d Paris -n 5 -b Mid -c USD
  tripplan plan -d Tokyo -p weather,exchange,flight --flight NH106 -o json`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "YAML config file (default: $TRAVEL_CONFIG or config.yaml)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
