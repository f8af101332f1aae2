// Package ingest runs the load, preprocess, split and save stages once.
package ingest

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smsingest/pkg/config"
	"smsingest/pkg/data"
	"smsingest/pkg/dataprep"
	"smsingest/pkg/errs"
	"smsingest/pkg/loader"
	"smsingest/pkg/pipeline"
)

// Result summarizes a completed run.
type Result struct {
	RunID     string
	Rows      int
	TrainRows int
	TestRows  int
	TrainPath string
	TestPath  string
}

// Run executes the ingestion described by cfg. Any stage failure aborts the
// run; it is logged and returned unchanged.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	res, err := run(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to complete the data ingestion: "+err.Error(), zap.Stringer("kind", errs.KindOf(err)))
		return nil, err
	}
	res.RunID = runID
	return res, nil
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errs.E(errs.KindInvalid, "config", err)
	}

	ld := data.NewLoader(log, data.LoaderOptions{
		Encoding:   cfg.Source.Encoding,
		Timeout:    cfg.GetSourceTimeout(),
		LazyQuotes: cfg.Source.LazyQuotes,
	})
	df, err := ld.Load(ctx, cfg.Source.URL)
	if err != nil {
		return nil, err
	}

	schema := pipeline.SchemaFromConfig(cfg.Schema)
	df, err = dataprep.NewPreprocessor(log, schema).Preprocess(df)
	if err != nil {
		return nil, err
	}

	train, test, err := loader.TrainTestSplit(df, cfg.Split.TestSize, cfg.Split.Seed)
	if err != nil {
		return nil, err
	}
	log.Debug("Data split into train and test sets",
		zap.Int("train_rows", train.Nrow()),
		zap.Int("test_rows", test.Nrow()),
		zap.Float64("test_size", cfg.Split.TestSize),
		zap.Int64("seed", cfg.Split.Seed))
	if len(schema.Columns) > 0 {
		logClassBalance(log, "train", train, schema.Columns[0])
		logClassBalance(log, "test", test, schema.Columns[0])
	}

	w := data.NewWriter(log, data.WriterOptions{
		RawDir:    cfg.Output.RawDir,
		TrainFile: cfg.Output.TrainFile,
		TestFile:  cfg.Output.TestFile,
	})
	if err := w.Save(train, test, cfg.Output.DataDir); err != nil {
		return nil, err
	}

	trainPath, testPath := w.Paths(cfg.Output.DataDir)
	return &Result{
		Rows:      df.Nrow(),
		TrainRows: train.Nrow(),
		TestRows:  test.Nrow(),
		TrainPath: trainPath,
		TestPath:  testPath,
	}, nil
}
