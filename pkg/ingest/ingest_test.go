package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"smsingest/pkg/config"
	"smsingest/pkg/errs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func syntheticCSV(n int) string {
	var b strings.Builder
	b.WriteString("v1,v2,Unnamed: 2,Unnamed: 3,Unnamed: 4\n")
	for i := 0; i < n; i++ {
		label := "ham"
		if i%5 == 0 {
			label = "spam"
		}
		fmt.Fprintf(&b, "%s,message number %d,,,\n", label, i)
	}
	return b.String()
}

func setup(t *testing.T, content string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "spam.csv")
	require.NoError(t, os.WriteFile(src, []byte(content), 0644))

	cfg := config.DefaultConfig()
	cfg.Source.URL = src
	cfg.Output.DataDir = filepath.Join(dir, "data")
	return cfg
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := setup(t, syntheticCSV(10))
	core, logs := observer.New(zap.DebugLevel)

	res, err := Run(context.Background(), cfg, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 10, res.Rows)
	assert.Equal(t, 8, res.TrainRows)
	assert.Equal(t, 2, res.TestRows)
	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.Output.DataDir, "raw", "train_data.csv"), res.TrainPath)
	assert.Equal(t, filepath.Join(cfg.Output.DataDir, "raw", "test_data.csv"), res.TestPath)

	train := readCSV(t, res.TrainPath)
	test := readCSV(t, res.TestPath)
	require.Len(t, train, 9)
	require.Len(t, test, 3)
	assert.Equal(t, []string{"target", "text"}, train[0])
	assert.Equal(t, []string{"target", "text"}, test[0])

	seen := map[string]bool{}
	for _, rec := range append(train[1:], test[1:]...) {
		require.Len(t, rec, 2)
		assert.False(t, seen[rec[1]], "duplicate row %q", rec[1])
		seen[rec[1]] = true
	}
	assert.Len(t, seen, 10)

	for _, msg := range []string{
		"Data loaded from " + cfg.Source.URL,
		"Data is preprocessed",
		"Data split into train and test sets",
		"Train and test data saved to raw folder in " + cfg.Output.DataDir,
	} {
		entries := logs.FilterMessage(msg).All()
		require.Len(t, entries, 1, msg)
		assert.Equal(t, res.RunID, entries[0].ContextMap()["run_id"])
	}
	assert.Equal(t, 2, logs.FilterMessage("Class balance").Len())
}

func TestRun_Reproducible(t *testing.T) {
	cfg := setup(t, syntheticCSV(25))

	first, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	trainA := readCSV(t, first.TrainPath)
	testA := readCSV(t, first.TestPath)

	second, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, trainA, readCSV(t, second.TrainPath))
	assert.Equal(t, testA, readCSV(t, second.TestPath))
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, 5, second.TestRows)
}

func TestRun_StageFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		mutate  func(*config.Config)
		kind    errs.Kind
	}{
		{
			name:    "malformed csv",
			content: "v1,v2,Unnamed: 2,Unnamed: 3,Unnamed: 4\nham,hello,,,\nspam,win,,,,now\n",
			kind:    errs.KindParse,
		},
		{
			name:    "missing droppable column",
			content: "v1,v2,Unnamed: 2,Unnamed: 3\nham,hello,,\nspam,win,,\n",
			kind:    errs.KindSchema,
		},
		{
			name:    "missing source",
			content: syntheticCSV(10),
			mutate:  func(c *config.Config) { c.Source.URL += ".gone" },
			kind:    errs.KindIO,
		},
		{
			name:    "too few rows to split",
			content: syntheticCSV(1),
			kind:    errs.KindInvalid,
		},
		{
			name:    "invalid config",
			content: syntheticCSV(10),
			mutate:  func(c *config.Config) { c.Split.TestSize = 0 },
			kind:    errs.KindInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := setup(t, tt.content)
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			core, logs := observer.New(zap.DebugLevel)

			res, err := Run(context.Background(), cfg, zap.New(core))
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.kind, errs.KindOf(err), "got %v", err)

			final := logs.FilterMessage("Failed to complete the data ingestion: " + err.Error()).All()
			require.Len(t, final, 1)
			assert.Equal(t, zap.ErrorLevel, final[0].Level)

			assert.NoFileExists(t, filepath.Join(cfg.Output.DataDir, "raw", "train_data.csv"))
		})
	}
}

func TestRun_MessagesRoundTripVerbatim(t *testing.T) {
	content := "v1,v2,Unnamed: 2,Unnamed: 3,Unnamed: 4\n" +
		"ham,NA,,,\n" +
		"ham,<nil>,,,\n" +
		"spam,NaN,,,\n" +
		"ham,Did you hear about the new \"Divorce Barbie\"?,,,\n" +
		"ham,\"quoted, with comma\",,,\n"
	cfg := setup(t, content)

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	var got []string
	for _, path := range []string{res.TrainPath, res.TestPath} {
		for _, rec := range readCSV(t, path)[1:] {
			got = append(got, rec[1])
		}
	}
	assert.ElementsMatch(t, []string{
		"NA",
		"<nil>",
		"NaN",
		`Did you hear about the new "Divorce Barbie"?`,
		"quoted, with comma",
	}, got)
}
