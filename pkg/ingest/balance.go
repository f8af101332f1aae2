package ingest

import (
	"github.com/go-gota/gota/dataframe"
	"go.uber.org/zap"

	"smsingest/pkg/dataprep"
)

func logClassBalance(log *zap.Logger, partition string, df dataframe.DataFrame, column string) {
	counts, err := dataprep.ClassCounts(df, column)
	if err != nil {
		log.Warn("Could not count classes", zap.String("partition", partition), zap.Error(err))
		return
	}
	log.Debug("Class balance",
		zap.String("partition", partition),
		zap.String("column", column),
		zap.String("counts", dataprep.FormatClassCounts(counts)))
}
