package config

import (
	"os"
	"strconv"

	"ecgdash/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Paths  PathConfig   `yaml:"paths"`
	Output OutputConfig `yaml:"output"`
	Server ServerConfig `yaml:"server"`
}

// PathConfig holds dataset file system paths
type PathConfig struct {
	// DatasetRoot points at the versioned dataset directory, the one
	// containing WFDBRecords/ and ConditionNames_SNOMED-CT.csv.
	DatasetRoot string `yaml:"dataset_root"`
	// ConditionFile overrides the default condition table location.
	ConditionFile string `yaml:"condition_file"`
	// NotesFile is an optional markdown file rendered on the notes page.
	NotesFile string `yaml:"notes_file"`
}

// OutputConfig holds artifact output settings
type OutputConfig struct {
	Dir  string `yaml:"dir"`
	TopN int    `yaml:"top_n"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string `yaml:"port"`
}

// DefaultOutputDir is where the dashboard expects artifacts when nothing
// else is configured.
const DefaultOutputDir = "dashboard/data"

// DefaultTopN bounds the top-codes frequency table.
const DefaultTopN = 15

// Load reads configuration from an optional YAML file and the environment.
// Environment variables override file values.
func Load() (*Config, error) {
	config := &Config{
		Output: OutputConfig{Dir: DefaultOutputDir, TopN: DefaultTopN},
		Server: ServerConfig{Port: "8080"},
	}

	path := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		path = envPath
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}
	}

	envOverride(&config.Paths.DatasetRoot, "DATASET_ROOT")
	envOverride(&config.Paths.ConditionFile, "CONDITION_FILE")
	envOverride(&config.Paths.NotesFile, "NOTES_FILE")
	envOverride(&config.Output.Dir, "OUTPUT_DIR")
	envOverrideInt(&config.Output.TopN, "TOP_N")
	envOverride(&config.Server.Port, "PORT")

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Output.Dir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if config.Output.TopN <= 0 {
		return errors.ConfigInvalid("top N must be positive")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	return nil
}

func envOverride(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func envOverrideInt(target *int, key string) {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			*target = intValue
		}
	}
}
