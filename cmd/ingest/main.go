package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"smsingest/pkg/config"
	"smsingest/pkg/ingest"
	"smsingest/pkg/logging"
)

// options collects flag values; a flag only overrides the config file when set.
type options struct {
	configPath string
	source     string
	encoding   string
	dataDir    string
	logDir     string
	testSize   float64
	seed       int64
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch the SMS spam CSV and write train/test partitions",
		Long: `Runs the data ingestion pipeline once:
  1. Load: fetch the CSV from a URL or local path
  2. Preprocess: drop the Unnamed columns, rename v1/v2 to target/text
  3. Split: seeded train/test partition
  4. Save: write <data-dir>/raw/train_data.csv and test_data.csv

Logs go to the console and to logs/data_ingestion.log.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "ingest.yaml", "Path to YAML config (missing file uses defaults)")
	flags := root.Flags()
	flags.StringVar(&opts.source, "source", "", "CSV source URL or path")
	flags.StringVar(&opts.encoding, "encoding", "", "Source charset (utf-8, latin1, ...)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Base output directory")
	flags.StringVar(&opts.logDir, "log-dir", "", "Directory for the log file")
	flags.Float64Var(&opts.testSize, "test-size", 0, "Fraction of rows in the test partition")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed for the split")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Force debug logging")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the ingestion configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	})
	root.AddCommand(configCmd)

	return root
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source.URL = opts.source
	}
	if flags.Changed("encoding") {
		cfg.Source.Encoding = opts.encoding
	}
	if flags.Changed("data-dir") {
		cfg.Output.DataDir = opts.dataDir
	}
	if flags.Changed("log-dir") {
		cfg.Logging.Dir = opts.logDir
	}
	if flags.Changed("test-size") {
		cfg.Split.TestSize = opts.testSize
	}
	if flags.Changed("seed") {
		cfg.Split.Seed = opts.seed
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func runIngest(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger, cleanup, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer cleanup()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := ingest.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "train: %s (%d rows)\n", res.TrainPath, res.TrainRows)
	fmt.Fprintf(out, "test:  %s (%d rows)\n", res.TestPath, res.TestRows)
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
