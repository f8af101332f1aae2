package data

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"

	"smsingest/pkg/errs"
)

const opSave = "save"

// WriterOptions names the output layout under the base path.
type WriterOptions struct {
	RawDir    string
	TrainFile string
	TestFile  string
}

// DefaultWriterOptions returns raw/train_data.csv and raw/test_data.csv.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{RawDir: "raw", TrainFile: "train_data.csv", TestFile: "test_data.csv"}
}

// Writer persists train/test partitions as CSV.
type Writer struct {
	log  *zap.Logger
	opts WriterOptions
}

func NewWriter(log *zap.Logger, opts WriterOptions) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultWriterOptions()
	if opts.RawDir == "" {
		opts.RawDir = def.RawDir
	}
	if opts.TrainFile == "" {
		opts.TrainFile = def.TrainFile
	}
	if opts.TestFile == "" {
		opts.TestFile = def.TestFile
	}
	return &Writer{log: log, opts: opts}
}

// Paths returns where Save writes the train and test files for basePath.
func (w *Writer) Paths(basePath string) (train, test string) {
	dir := filepath.Join(basePath, w.opts.RawDir)
	return filepath.Join(dir, w.opts.TrainFile), filepath.Join(dir, w.opts.TestFile)
}

// Save creates basePath/raw if needed and writes both partitions with a
// header row and no index column. Existing files are overwritten in place.
func (w *Writer) Save(train, test dataframe.DataFrame, basePath string) error {
	if err := w.save(train, test, basePath); err != nil {
		w.log.Error("Unexpected error while saving data", zap.String("path", basePath), zap.Error(err))
		return err
	}
	w.log.Debug("Train and test data saved to raw folder in " + basePath)
	return nil
}

func (w *Writer) save(train, test dataframe.DataFrame, basePath string) error {
	if err := os.MkdirAll(filepath.Join(basePath, w.opts.RawDir), 0755); err != nil {
		return errs.E(errs.KindIO, opSave, fmt.Errorf("create raw data directory: %w", err))
	}
	trainPath, testPath := w.Paths(basePath)
	if err := WriteCSV(trainPath, train); err != nil {
		return err
	}
	return WriteCSV(testPath, test)
}

// WriteCSV writes df to path as comma-separated UTF-8 with a header row.
func WriteCSV(path string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return errs.E(errs.KindUnknown, opSave, df.Err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.E(errs.KindIO, opSave, err)
	}

	bw := bufio.NewWriter(f)
	if err := df.WriteCSV(bw); err != nil {
		f.Close()
		return errs.E(errs.KindIO, opSave, fmt.Errorf("write %s: %w", path, err))
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return errs.E(errs.KindIO, opSave, fmt.Errorf("flush %s: %w", path, err))
	}
	if err := f.Close(); err != nil {
		return errs.E(errs.KindIO, opSave, fmt.Errorf("close %s: %w", path, err))
	}
	return nil
}
