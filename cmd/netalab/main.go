package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"netalab-backend/internal/catalog"
	"netalab-backend/internal/classify"
	"netalab-backend/internal/sampler"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "netalab",
		Short: "Classify maintenance-test measurements against the reference library",
		Long: `Offline companion to the netalab backend. Validates the threshold
library, classifies single readings as Pass / Investigate / Fail, and
generates representative scenario series without running the HTTP service.`,
	}

	rootCmd.PersistentFlags().String("library", "", "path to a library document (default: embedded)")

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(libraryCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(simulateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadRegistry(cmd *cobra.Command) (*catalog.Registry, error) {
	path, _ := cmd.Flags().GetString("library")
	if path != "" {
		return catalog.LoadFile(path)
	}
	return catalog.Load()
}

// validateCmd loads the library and reports every partition or band issue.
func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate threshold partitions and scenario bands",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			fmt.Printf("library ok: %d tests, %d criteria\n", len(reg.Tests()), len(reg.CriterionIDs()))
			return nil
		},
	}
}

func libraryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "library",
		Short: "List tests and their criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			for _, test := range reg.Tests() {
				fmt.Printf("%s  %s [%s]\n", test.ID, test.Name, test.Category)
				for _, crit := range test.Criteria {
					fmt.Printf("    %-24s %s (%s)\n", crit.ID, crit.Label, crit.Evaluation)
				}
			}
			return nil
		},
	}
}

func classifyCmd() *cobra.Command {
	var (
		criterionID string
		value       float64
		baseline    float64
		hasBaseline bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a single measurement",
		Example: `  netalab classify --criterion ir_mv_cable --value 150
  netalab classify --criterion wr_pct_dev --value 108 --baseline 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			ref, ok := reg.Criterion(criterionID)
			if !ok {
				return fmt.Errorf("unknown criterion %q", criterionID)
			}
			var base *float64
			if hasBaseline {
				base = &baseline
			}
			result, err := classify.Classify(ref, value, base)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(result)
			}
			fmt.Printf("%s: %s\n", result.Status, result.Detail)
			if result.Implication != "" {
				fmt.Println(result.Implication)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&criterionID, "criterion", "", "criterion id (required)")
	cmd.Flags().Float64Var(&value, "value", 0, "measured value (required)")
	cmd.Flags().Float64Var(&baseline, "baseline", 0, "reference value for percent-change criteria")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the full result as JSON")
	_ = cmd.MarkFlagRequired("criterion")
	_ = cmd.MarkFlagRequired("value")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		hasBaseline = cmd.Flags().Changed("baseline")
	}
	return cmd
}

func simulateCmd() *cobra.Command {
	var (
		criterionID string
		scenario    string
		count       int
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a representative measurement series for a scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			label, ok := catalog.ParseScenario(scenario)
			if !ok {
				return fmt.Errorf("unknown scenario %q", scenario)
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			smp := sampler.New(reg, rand.New(rand.NewSource(seed)))
			series, err := smp.SimulateSeries(criterionID, label, count)
			if err != nil {
				return err
			}
			fmt.Println(classify.FormatSeries(series.Values))
			if series.Baseline != nil {
				fmt.Printf("assumed baseline: %.2f\n", *series.Baseline)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&criterionID, "criterion", "", "criterion id (required)")
	cmd.Flags().StringVar(&scenario, "scenario", "Drifting", "Healthy, Drifting, or Out of tolerance")
	cmd.Flags().IntVar(&count, "count", sampler.DefaultCount, "number of simulated measurements")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	_ = cmd.MarkFlagRequired("criterion")
	return cmd
}
