package main

import (
	"fmt"
	"os"

	"ecgdash/app"
	"ecgdash/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ecgdash-cli",
		Short: "ECG dataset metadata metrics preparation",
	}

	rootCmd.AddCommand(
		newPrepareCmd(),
		newDescribeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newPrepareCmd() *cobra.Command {
	var root string
	var outDir string
	var conditionFile string
	var topN int

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Scan WFDB headers and write the dashboard artifacts",
		Long: `Scan all WFDB headers under <root>/WFDBRecords, classify each record
by its SNOMED-CT codes and write the metrics, top-codes, category-split
and structure artifacts into the output directory.

Example: ecgdash-cli prepare --root data/ecg-arrhythmia/1.0.0 --topn 15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			service := app.NewMetricsService(topN)
			result, err := service.Run(root, conditionFile, outDir)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote artifacts for %d records to %s\n", result.TotalRecords, outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "dataset root directory (the one containing WFDBRecords)")
	cmd.Flags().StringVar(&outDir, "outdir", config.DefaultOutputDir, "artifact output directory")
	cmd.Flags().StringVar(&conditionFile, "conditions", "", "condition table path (default <root>/ConditionNames_SNOMED-CT.csv)")
	cmd.Flags().IntVar(&topN, "topn", config.DefaultTopN, "length bound of the top-codes table")
	cmd.MarkFlagRequired("root")

	return cmd
}

func newDescribeCmd() *cobra.Command {
	var root string
	var outDir string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Write only the dataset structure artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			service := app.NewMetricsService(config.DefaultTopN)
			tree, err := service.Describe(root, outDir)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote structure summary (%d shards) to %s\n", tree.ShardCount, outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "dataset root directory")
	cmd.Flags().StringVar(&outDir, "outdir", config.DefaultOutputDir, "artifact output directory")
	cmd.MarkFlagRequired("root")

	return cmd
}
