package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/savegen/savegen/internal/compiler/analyzer"
)

// EnvPrefix prefixes every environment override, e.g. SAVEGEN_ANALYSIS_MAX_DEPTH
const EnvPrefix = "SAVEGEN"

// Supported output formats
const (
	FormatJSON       = "json"
	FormatYAML       = "yaml"
	FormatJSONSchema = "jsonschema"
)

// Config represents the savegen configuration
type Config struct {
	RootName  string         `mapstructure:"root_name"`
	Workers   int            `mapstructure:"workers"`
	CacheSize int            `mapstructure:"cache_size"`
	Analysis  AnalysisConfig `mapstructure:"analysis"`
	Output    OutputConfig   `mapstructure:"output"`
	Log       LogConfig      `mapstructure:"log"`
}

// AnalysisConfig holds inference bounds and heuristic constants
type AnalysisConfig struct {
	MaxDepth             int     `mapstructure:"max_depth"`
	MaxTypes             int     `mapstructure:"max_types"`
	DictionaryRatio      float64 `mapstructure:"dictionary_ratio"`
	MinDictionaryEntries int     `mapstructure:"min_dictionary_entries"`
	MaxFieldKey          int64   `mapstructure:"max_field_key"`
}

// OutputConfig represents schema output configuration
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// AnalyzerOptions converts the analysis section to analyzer options
func (c *Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		MaxDepth:             c.Analysis.MaxDepth,
		MaxTypes:             c.Analysis.MaxTypes,
		DictionaryRatio:      c.Analysis.DictionaryRatio,
		MinDictionaryEntries: c.Analysis.MinDictionaryEntries,
		MaxFieldKey:          c.Analysis.MaxFieldKey,
	}
}

// Load loads the configuration from savegen.yml or savegen.yaml in the
// working directory, or from file when it is not empty
func Load(file string) (*Config, error) {
	v := viper.New()

	// Set defaults
	defaults := analyzer.DefaultOptions()
	v.SetDefault("root_name", "")
	v.SetDefault("workers", 0)
	v.SetDefault("cache_size", 64)
	v.SetDefault("analysis.max_depth", defaults.MaxDepth)
	v.SetDefault("analysis.max_types", defaults.MaxTypes)
	v.SetDefault("analysis.dictionary_ratio", defaults.DictionaryRatio)
	v.SetDefault("analysis.min_dictionary_entries", defaults.MinDictionaryEntries)
	v.SetDefault("analysis.max_field_key", defaults.MaxFieldKey)
	v.SetDefault("output.format", FormatJSON)
	v.SetDefault("output.path", "")
	v.SetDefault("log.level", "warn")

	// Set config name and paths
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("savegen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	a := cfg.Analysis
	if a.MaxDepth <= 0 {
		return fmt.Errorf("analysis.max_depth must be positive, got: %d", a.MaxDepth)
	}
	if a.MaxTypes <= 0 {
		return fmt.Errorf("analysis.max_types must be positive, got: %d", a.MaxTypes)
	}
	if a.DictionaryRatio <= 0 || a.DictionaryRatio > 1 {
		return fmt.Errorf("analysis.dictionary_ratio must be in (0, 1], got: %g", a.DictionaryRatio)
	}
	if a.MinDictionaryEntries <= 0 {
		return fmt.Errorf("analysis.min_dictionary_entries must be positive, got: %d", a.MinDictionaryEntries)
	}
	if a.MaxFieldKey <= 0 {
		return fmt.Errorf("analysis.max_field_key must be positive, got: %d", a.MaxFieldKey)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got: %d", cfg.Workers)
	}
	if cfg.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got: %d", cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Output.Format) {
	case FormatJSON, FormatYAML, FormatJSONSchema:
		cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	default:
		return fmt.Errorf("output.format must be json, yaml or jsonschema, got: %s", cfg.Output.Format)
	}
	return nil
}
