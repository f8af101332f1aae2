package dataprep

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"

	"smsingest/pkg/errs"
	"smsingest/pkg/pipeline"
)

const opPreprocess = "preprocess"

// Preprocessor applies a column contract to a freshly loaded dataset.
type Preprocessor struct {
	log   *zap.Logger
	steps *pipeline.Pipeline
}

func NewPreprocessor(log *zap.Logger, schema pipeline.Schema) *Preprocessor {
	if log == nil {
		log = zap.NewNop()
	}
	steps := []pipeline.Transformer{DropColumns(schema.Drop...), RenameColumns(schema.Rename...)}
	if schema.Columns != nil {
		steps = append(steps, RequireColumns(schema.Columns...))
	}
	return &Preprocessor{log: log, steps: pipeline.NewPipeline(steps...)}
}

// Preprocess drops and renames columns per the schema. A referenced column
// that is absent is a schema error, never a no-op.
func (p *Preprocessor) Preprocess(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	out, err := p.steps.Transform(df)
	if err != nil {
		if errs.Is(err, errs.KindSchema) {
			var col string
			var e *errs.Error
			if errors.As(err, &e) {
				col = e.Column
			}
			p.log.Error("Missing or unexpected column in the dataframe", zap.String("column", col), zap.Error(err))
		} else {
			p.log.Error("Unknown error while preprocessing dataframe", zap.Error(err))
		}
		return dataframe.DataFrame{}, err
	}
	p.log.Debug("Data is preprocessed", zap.Strings("columns", out.Names()), zap.Int("rows", out.Nrow()))
	return out, nil
}

// DropColumns removes cols, failing if any of them is absent.
func DropColumns(cols ...string) pipeline.Transformer {
	return pipeline.TransformerFunc(func(df dataframe.DataFrame) (dataframe.DataFrame, error) {
		if len(cols) == 0 {
			return df, nil
		}
		if err := requirePresent(opPreprocess, df, cols...); err != nil {
			return df, err
		}
		out := df.Drop(cols)
		if out.Err != nil {
			return df, errs.E(errs.KindUnknown, opPreprocess, out.Err)
		}
		return out, nil
	})
}

// RenameColumns renames each From column to To, failing if From is absent.
func RenameColumns(renames ...pipeline.Rename) pipeline.Transformer {
	return pipeline.TransformerFunc(func(df dataframe.DataFrame) (dataframe.DataFrame, error) {
		for _, r := range renames {
			if err := requirePresent(opPreprocess, df, r.From); err != nil {
				return df, err
			}
			if r.To != r.From && slices.Contains(df.Names(), r.To) {
				return df, errs.Column(opPreprocess, r.To, errors.New("duplicate column"))
			}
			next := df.Rename(r.To, r.From)
			if next.Err != nil {
				return df, errs.E(errs.KindUnknown, opPreprocess, next.Err)
			}
			df = next
		}
		return df, nil
	})
}

// RequireColumns checks the dataset holds exactly cols, in order.
func RequireColumns(cols ...string) pipeline.Transformer {
	return pipeline.TransformerFunc(func(df dataframe.DataFrame) (dataframe.DataFrame, error) {
		if err := requirePresent(opPreprocess, df, cols...); err != nil {
			return df, err
		}
		names := df.Names()
		for _, name := range names {
			if !slices.Contains(cols, name) {
				return df, errs.Column(opPreprocess, name, fmt.Errorf("unexpected column, want exactly %v", cols))
			}
		}
		seen := make(map[string]bool, len(names))
		for _, name := range names {
			if seen[name] {
				return df, errs.Column(opPreprocess, name, errors.New("duplicate column"))
			}
			seen[name] = true
		}
		if slices.Equal(names, cols) {
			return df, nil
		}
		out := df.Select(cols)
		if out.Err != nil {
			return df, errs.E(errs.KindUnknown, opPreprocess, out.Err)
		}
		return out, nil
	})
}

func requirePresent(op string, df dataframe.DataFrame, cols ...string) error {
	names := df.Names()
	for _, col := range cols {
		if !slices.Contains(names, col) {
			return errs.Column(op, col, fmt.Errorf("not found in %v", names))
		}
	}
	return nil
}
