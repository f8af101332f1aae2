package pipeline

import (
	"github.com/go-gota/gota/dataframe"
)

// Transformer is a single dataset-to-dataset step.
type Transformer interface {
	Transform(df dataframe.DataFrame) (dataframe.DataFrame, error)
}

// TransformerFunc adapts a plain function to Transformer.
type TransformerFunc func(df dataframe.DataFrame) (dataframe.DataFrame, error)

func (f TransformerFunc) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	return f(df)
}

// Pipeline chains multiple transformers.
type Pipeline struct {
	steps []Transformer
}

func NewPipeline(steps ...Transformer) *Pipeline {
	return &Pipeline{steps: steps}
}

// Transform runs every step in order and stops at the first error.
func (p *Pipeline) Transform(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	for _, step := range p.steps {
		var err error
		df, err = step.Transform(df)
		if err != nil {
			return df, err
		}
	}
	return df, nil
}
