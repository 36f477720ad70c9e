package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moverset/datasets"
)

func newRootCommand() *cobra.Command {
	cfg := defaultConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:           "moverprep",
		Short:         "Build the mover image-sequence dataset and report its composition",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				// File values fill in anything the flags didn't set
				// explicitly: load into a fresh copy, then re-apply
				// whichever flags were changed on the command line.
				fileCfg := defaultConfig()
				if err := loadConfig(configPath, &fileCfg); err != nil {
					return err
				}
				overlayFlags(cmd, &fileCfg, cfg)
				cfg = fileCfg
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.CSVDir, "csv-dir", cfg.CSVDir, "Directory containing the two mover lookup CSVs")
	cmd.Flags().StringVar(&cfg.ImageDir, "image-dir", cfg.ImageDir, "Directory containing the detection cutout images")
	cmd.Flags().IntVar(&cfg.Width, "width", cfg.Width, "Expected cutout width in pixels")
	cmd.Flags().IntVar(&cfg.Height, "height", cfg.Height, "Expected cutout height in pixels")
	cmd.Flags().Float64Var(&cfg.TrainSplit, "train-split", cfg.TrainSplit, "Fraction of samples assigned to training")
	cmd.Flags().Float64Var(&cfg.ValSplit, "val-split", cfg.ValSplit, "Fraction of samples assigned to validation")
	cmd.Flags().IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Batch size of the training loader")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Seed for the split permutation (0 = time-based)")
	cmd.Flags().StringVar(&cfg.Plot, "plot", cfg.Plot, "Write a label-balance bar chart PNG to this path")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML configuration file path")

	return cmd
}

// overlayFlags copies every flag value that was set on the command line from
// flagCfg into dst, so explicit flags win over config-file values.
func overlayFlags(cmd *cobra.Command, dst *config, flagCfg config) {
	if cmd.Flags().Changed("csv-dir") {
		dst.CSVDir = flagCfg.CSVDir
	}
	if cmd.Flags().Changed("image-dir") {
		dst.ImageDir = flagCfg.ImageDir
	}
	if cmd.Flags().Changed("width") {
		dst.Width = flagCfg.Width
	}
	if cmd.Flags().Changed("height") {
		dst.Height = flagCfg.Height
	}
	if cmd.Flags().Changed("train-split") {
		dst.TrainSplit = flagCfg.TrainSplit
	}
	if cmd.Flags().Changed("val-split") {
		dst.ValSplit = flagCfg.ValSplit
	}
	if cmd.Flags().Changed("batch-size") {
		dst.BatchSize = flagCfg.BatchSize
	}
	if cmd.Flags().Changed("seed") {
		dst.Seed = flagCfg.Seed
	}
	if cmd.Flags().Changed("plot") {
		dst.Plot = flagCfg.Plot
	}
}

func run(cmd *cobra.Command, cfg config) error {
	groups, err := datasets.ReadMoverLookup(cfg.CSVDir)
	if err != nil {
		return err
	}

	shape := datasets.ImageShape{Height: cfg.Height, Width: cfg.Width}
	ds, moverIDs, err := datasets.BuildDataset(groups, cfg.ImageDir, shape)
	if err != nil {
		return err
	}

	splitCfg := datasets.SplitConfig{
		Train:     cfg.TrainSplit,
		Val:       cfg.ValSplit,
		BatchSize: cfg.BatchSize,
		Seed:      cfg.Seed,
	}
	train, val, err := datasets.Split(ds, splitCfg)
	if err != nil {
		return err
	}

	realCount := 0
	for i := range ds.Len() {
		_, label, err := ds.Get(i)
		if err != nil {
			return err
		}
		if label == datasets.LabelReal {
			realCount++
		}
	}
	bogusCount := ds.Len() - realCount

	rows := [][]string{
		{"Movers in lookup tables", fmt.Sprintf("%d", groups.Len())},
		{"Movers skipped", fmt.Sprintf("%d", groups.Len()-len(moverIDs))},
		{"Dataset samples", fmt.Sprintf("%d", ds.Len())},
		{"Labeled real", fmt.Sprintf("%d", realCount)},
		{"Labeled bogus", fmt.Sprintf("%d", bogusCount)},
		{"Training samples", fmt.Sprintf("%d", train.Len())},
		{"Validation samples", fmt.Sprintf("%d", val.Len())},
		{"Batches per epoch", fmt.Sprintf("%d", train.NumBatches())},
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Value"}, rows))

	if cfg.Plot != "" {
		if err := saveLabelPlot(cfg.Plot, realCount, bogusCount); err != nil {
			return fmt.Errorf("failed to write plot: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote label-balance plot to %s\n", cfg.Plot)
	}

	return nil
}
