package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"datadigest/adapters/datareadiness/coercer"
	"datadigest/adapters/excel"
	"datadigest/internal/analysis"
	"datadigest/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Analysis  AnalysisConfig
	Upload    UploadConfig
	Profiling ProfilingConfig
	LogLevel  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// AnalysisConfig holds type inference thresholds and summary caps
type AnalysisConfig struct {
	InferenceThreshold  float64
	InferenceSampleSize int
	TopValuesLimit      int
	ScatterPointCap     int
	MaxAggregations     int
	ContextRowCap       int
	TopCorrelations     int
	SummaryCharBudget   int
}

// UploadConfig holds dataset upload limits
type UploadConfig struct {
	MaxMB int
	Sheet string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Analysis:  *loadAnalysisConfig(),
		Upload:    *loadUploadConfig(),
		Profiling: *loadProfilingConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Default returns the configuration Load produces when no variables are set
func Default() *Config {
	inference := coercer.DefaultConfig()
	caps := analysis.DefaultOptions()
	return &Config{
		Server: ServerConfig{Port: "8080", GinMode: "debug", ShutdownTimeout: 10 * time.Second},
		Analysis: AnalysisConfig{
			InferenceThreshold:  inference.Threshold,
			InferenceSampleSize: inference.SampleSize,
			TopValuesLimit:      caps.TopValuesLimit,
			ScatterPointCap:     caps.ScatterPointCap,
			MaxAggregations:     caps.MaxAggregations,
			ContextRowCap:       caps.ContextRowCap,
			TopCorrelations:     caps.TopCorrelations,
			SummaryCharBudget:   caps.SummaryCharBudget,
		},
		Upload:    UploadConfig{MaxMB: 32},
		Profiling: ProfilingConfig{Port: "6060"},
		LogLevel:  "INFO",
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "debug"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	inference := coercer.DefaultConfig()
	caps := analysis.DefaultOptions()
	return &AnalysisConfig{
		InferenceThreshold:  getEnvFloatOrDefault("INFERENCE_THRESHOLD", inference.Threshold),
		InferenceSampleSize: getEnvIntOrDefault("INFERENCE_SAMPLE_SIZE", inference.SampleSize),
		TopValuesLimit:      getEnvIntOrDefault("TOP_VALUES_LIMIT", caps.TopValuesLimit),
		ScatterPointCap:     getEnvIntOrDefault("SCATTER_POINT_CAP", caps.ScatterPointCap),
		MaxAggregations:     getEnvIntOrDefault("MAX_AGGREGATIONS", caps.MaxAggregations),
		ContextRowCap:       getEnvIntOrDefault("CONTEXT_ROW_CAP", caps.ContextRowCap),
		TopCorrelations:     getEnvIntOrDefault("TOP_CORRELATIONS", caps.TopCorrelations),
		SummaryCharBudget:   getEnvIntOrDefault("SUMMARY_CHAR_BUDGET", caps.SummaryCharBudget),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 32),
		Sheet: getEnvOrDefault("XLSX_SHEET", ""),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("GIN_MODE must be debug, release or test, got %q", config.Server.GinMode))
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}

	a := config.Analysis
	if a.InferenceThreshold <= 0 || a.InferenceThreshold > 1 {
		return errors.ConfigInvalid(fmt.Sprintf("INFERENCE_THRESHOLD must be in (0, 1], got %g", a.InferenceThreshold))
	}
	positive := []struct {
		name  string
		value int
	}{
		{"INFERENCE_SAMPLE_SIZE", a.InferenceSampleSize},
		{"TOP_VALUES_LIMIT", a.TopValuesLimit},
		{"SCATTER_POINT_CAP", a.ScatterPointCap},
		{"MAX_AGGREGATIONS", a.MaxAggregations},
		{"CONTEXT_ROW_CAP", a.ContextRowCap},
		{"TOP_CORRELATIONS", a.TopCorrelations},
		{"SUMMARY_CHAR_BUDGET", a.SummaryCharBudget},
		{"MAX_UPLOAD_MB", config.Upload.MaxMB},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return errors.ConfigInvalid(fmt.Sprintf("%s must be positive, got %d", p.name, p.value))
		}
	}
	return nil
}

// AnalysisOptions maps the analysis settings onto summary caps
func (c *Config) AnalysisOptions() analysis.Options {
	return analysis.Options{
		TopValuesLimit:    c.Analysis.TopValuesLimit,
		ScatterPointCap:   c.Analysis.ScatterPointCap,
		MaxAggregations:   c.Analysis.MaxAggregations,
		ContextRowCap:     c.Analysis.ContextRowCap,
		TopCorrelations:   c.Analysis.TopCorrelations,
		SummaryCharBudget: c.Analysis.SummaryCharBudget,
	}
}

// CoercerConfig maps the analysis settings onto type inference
func (c *Config) CoercerConfig() coercer.Config {
	return coercer.Config{
		Threshold:  c.Analysis.InferenceThreshold,
		SampleSize: c.Analysis.InferenceSampleSize,
	}
}

// ReaderConfig maps the upload settings onto the file reader
func (c *Config) ReaderConfig() excel.ReaderConfig {
	return excel.ReaderConfig{
		MaxBytes: c.MaxUploadBytes(),
		Sheet:    c.Upload.Sheet,
	}
}

// MaxUploadBytes is the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxMB) << 20
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
