package dataprep

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"

	"smsingest/pkg/errs"
)

// ClassCount is the number of rows carrying one label.
type ClassCount struct {
	Label string
	Count int
}

// ClassCounts tallies the values of column, sorted by label.
func ClassCounts(df dataframe.DataFrame, column string) ([]ClassCount, error) {
	if err := requirePresent("class counts", df, column); err != nil {
		return nil, err
	}
	col := df.Col(column)
	if col.Err != nil {
		return nil, errs.E(errs.KindUnknown, "class counts", fmt.Errorf("column %q: %w", column, col.Err))
	}

	counts := map[string]int{}
	for _, v := range col.Records() {
		counts[v]++
	}
	out := make([]ClassCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, ClassCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// FormatClassCounts renders counts as "ham=8 spam=2".
func FormatClassCounts(counts []ClassCount) string {
	s := ""
	for i, c := range counts {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%d", c.Label, c.Count)
	}
	return s
}
