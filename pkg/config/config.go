package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSourceURL is the public SMS spam collection used when no source is configured.
const DefaultSourceURL = "https://raw.githubusercontent.com/vikashishere/Datasets/refs/heads/main/spam.csv"

// Config holds the ingestion settings.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Schema  SchemaConfig  `yaml:"schema"`
	Split   SplitConfig   `yaml:"split"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig configures where the raw CSV comes from.
type SourceConfig struct {
	URL        string `yaml:"url"`      // http(s) URL, file:// URL or local path
	Encoding   string `yaml:"encoding"` // utf-8, latin1, windows-1252, ...
	Timeout    string `yaml:"timeout"`  // empty or "0s" means no timeout
	LazyQuotes bool   `yaml:"lazy_quotes"`
}

// SchemaConfig is the column contract applied by the preprocessor.
type SchemaConfig struct {
	Drop    []string       `yaml:"drop"`
	Rename  []RenameConfig `yaml:"rename"`
	Columns []string       `yaml:"columns"` // exact column set after preprocessing
}

// RenameConfig renames a single column.
type RenameConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// SplitConfig configures the train/test partition.
type SplitConfig struct {
	TestSize float64 `yaml:"test_size"`
	Seed     int64   `yaml:"seed"`
}

// OutputConfig configures where partitions are written.
type OutputConfig struct {
	DataDir   string `yaml:"data_dir"`
	RawDir    string `yaml:"raw_dir"`
	TrainFile string `yaml:"train_file"`
	TestFile  string `yaml:"test_file"`
}

// LoggingConfig configures the console and file sinks.
type LoggingConfig struct {
	Name    string `yaml:"name"`
	Level   string `yaml:"level"` // debug, info, warn, error
	Dir     string `yaml:"dir"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:        DefaultSourceURL,
			Encoding:   "utf-8",
			LazyQuotes: true,
		},

		Schema: SchemaConfig{
			Drop: []string{"Unnamed: 2", "Unnamed: 3", "Unnamed: 4"},
			Rename: []RenameConfig{
				{From: "v1", To: "target"},
				{From: "v2", To: "text"},
			},
			Columns: []string{"target", "text"},
		},

		Split: SplitConfig{
			TestSize: 0.2,
			Seed:     2,
		},

		Output: OutputConfig{
			DataDir:   "./data",
			RawDir:    "raw",
			TrainFile: "train_data.csv",
			TestFile:  "test_data.csv",
		},

		Logging: LoggingConfig{
			Name:    "data_ingestion",
			Level:   "debug",
			Dir:     "logs",
			File:    "data_ingestion.log",
			Console: true,
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("INGEST_SOURCE_URL"); url != "" {
		c.Source.URL = url
	}
	if dir := os.Getenv("INGEST_DATA_DIR"); dir != "" {
		c.Output.DataDir = dir
	}
	if dir := os.Getenv("INGEST_LOG_DIR"); dir != "" {
		c.Logging.Dir = dir
	}
}

// GetSourceTimeout returns the fetch timeout, zero meaning none.
func (c *Config) GetSourceTimeout() time.Duration {
	if c.Source.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Source.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return fmt.Errorf("source url not configured (set source.url or INGEST_SOURCE_URL)")
	}
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return fmt.Errorf("split test_size must be in (0, 1), got %v", c.Split.TestSize)
	}
	if c.Output.DataDir == "" {
		return fmt.Errorf("output data_dir not configured")
	}
	if c.Output.TrainFile == "" || c.Output.TestFile == "" {
		return fmt.Errorf("output train_file and test_file are required")
	}
	if c.Output.TrainFile == c.Output.TestFile {
		return fmt.Errorf("output train_file and test_file must differ, both are %q", c.Output.TrainFile)
	}
	if c.Source.Timeout != "" {
		if _, err := time.ParseDuration(c.Source.Timeout); err != nil {
			return fmt.Errorf("invalid source timeout %q: %w", c.Source.Timeout, err)
		}
	}
	for _, r := range c.Schema.Rename {
		if r.From == "" || r.To == "" {
			return fmt.Errorf("schema rename entries need both from and to, got %+v", r)
		}
	}
	return nil
}
