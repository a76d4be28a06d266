package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"travelplanner/config"
	"travelplanner/planner"

	"github.com/spf13/cobra"
)

var (
	destinationFlag string
	daysFlag        int
	budgetFlag      string
	currencyFlag    string
	panelsFlag      string
	flightFlag      string
	outputFlag      string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Research a destination and print the plan",
	Long: `Research a destination and print one section per enabled panel.

Panels run in their fixed display order regardless of the order given.
Without --panels every panel is enabled; the flight panel only when
--flight is set.

Examples:
  tripplan plan -d Paris -n 5
  tripplan plan -d Lisbon -p weather,places -o yaml`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&destinationFlag, "destination", "d", "", "Destination city or country")
	planCmd.Flags().IntVarP(&daysFlag, "days", "n", planner.DefaultNumDays, "Trip length in days (1-30)")
	planCmd.Flags().StringVarP(&budgetFlag, "budget", "b", "Mid", "Budget tier: Low, Mid or Luxury")
	planCmd.Flags().StringVarP(&currencyFlag, "currency", "c", "USD", "Your currency code")
	planCmd.Flags().StringVarP(&panelsFlag, "panels", "p", "", "Comma-separated panel keys, or 'all'")
	planCmd.Flags().StringVar(&flightFlag, "flight", "", "Flight IATA code to track (e.g. AI101)")
	planCmd.Flags().StringVarP(&outputFlag, "output", "o", "text", "Output format: text, json or yaml")
	_ = planCmd.MarkFlagRequired("destination")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(outputFlag)
	if err != nil {
		return err
	}

	req, err := planner.NewTripRequest(destinationFlag, daysFlag, budgetFlag, currencyFlag)
	if err != nil {
		return err
	}

	toggles, err := parsePanels(panelsFlag, flightFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPathFlag)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	plan, err := planner.NewFromConfig(cfg).BuildPlan(ctx, req, toggles)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), plan, format)
}

// parsePanels turns the --panels list into toggles. An empty list or "all"
// enables every panel; the flight panel follows --flight in that case.
func parsePanels(list, flight string) ([]planner.PanelToggle, error) {
	list = strings.TrimSpace(list)

	var keys []string
	if list == "" || strings.EqualFold(list, "all") {
		for _, k := range planner.PanelKeys() {
			if k == planner.PanelFlight && strings.TrimSpace(flight) == "" {
				continue
			}
			keys = append(keys, k)
		}
	} else {
		for _, k := range strings.Split(list, ",") {
			k = strings.ToLower(strings.TrimSpace(k))
			if k == "" {
				continue
			}
			if _, ok := planner.LookupPanel(k); !ok {
				return nil, fmt.Errorf("unknown panel %q (valid: %s)", k, strings.Join(planner.PanelKeys(), ", "))
			}
			keys = append(keys, k)
		}
	}

	toggles := make([]planner.PanelToggle, 0, len(keys))
	for _, k := range keys {
		t := planner.PanelToggle{Key: k, Enabled: true}
		if k == planner.PanelFlight {
			t.Input = flight
		}
		toggles = append(toggles, t)
	}
	return toggles, nil
}
