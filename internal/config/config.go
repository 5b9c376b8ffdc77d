// =============================================================================
// ColorMe to Yayoi Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration and
// the static conversion tables.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults
//   2. Main config file (config.yaml)
//   3. .env file in the working directory (loaded into the environment)
//   4. CONVERTER_* environment variables
//
// TABLES:
//   Bundle definitions, product name overrides and prefecture shipping
//   codes are loaded once from tables.yaml when present, otherwise the
//   built-in tables in tables.go are used.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix of environment overrides, e.g. CONVERTER_OUTPUT_DIR.
const envPrefix = "CONVERTER"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// OutputDir receives the generated TXT files and the review workbook.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`

	// InputArchiveDir receives order exports after a successful conversion.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" envconfig:"INPUT_ARCHIVE_DIR"`

	// ArchiveInput moves the order export into InputArchiveDir once the
	// sales file is written.
	ArchiveInput bool `yaml:"archive_input" envconfig:"ARCHIVE_INPUT"`

	// ArchiveByDate files archived exports under YYYY/MM/DD subdirectories.
	ArchiveByDate bool `yaml:"archive_by_date" envconfig:"ARCHIVE_BY_DATE"`

	// TablesFile is an optional YAML file overriding the built-in tables.
	TablesFile string `yaml:"tables_file" envconfig:"TABLES_FILE"`

	// =========================================================================
	// SOURCE ENCODINGS
	// =========================================================================

	// OrderEncoding is the encoding of the ColorMe export ("utf-8" or
	// "shift_jis"). Default: "utf-8"
	OrderEncoding string `yaml:"order_encoding" envconfig:"ORDER_ENCODING"`

	// LedgerEncoding is the encoding of the Yayoi customer list.
	// Default: "utf-8"
	LedgerEncoding string `yaml:"ledger_encoding" envconfig:"LEDGER_ENCODING"`

	// =========================================================================
	// OUTPUT NAMING
	// =========================================================================
	// Placeholders: {date}, {timestamp}, {uuid}

	SalesFileFormat     string `yaml:"sales_file_format" envconfig:"SALES_FILE_FORMAT"`
	CustomersFileFormat string `yaml:"customers_file_format" envconfig:"CUSTOMERS_FILE_FORMAT"`
	ReviewFileFormat    string `yaml:"review_file_format" envconfig:"REVIEW_FILE_FORMAT"`

	// =========================================================================
	// SALES SLIP DEFAULTS
	// =========================================================================

	// OperatorCode is the 担当者コード written on every sales row.
	// Default: "11"
	OperatorCode string `yaml:"operator_code" envconfig:"OPERATOR_CODE"`

	// DefaultBuyerName is written when an order has no buyer name.
	DefaultBuyerName string `yaml:"default_buyer_name" envconfig:"DEFAULT_BUYER_NAME"`

	// =========================================================================
	// LOGGING
	// =========================================================================

	// LogLevel is one of debug, info, warn, error. Default: "info"
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	// LogFormat is "pretty" (console) or "json". Default: "pretty"
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`

	// Storage configures where the customer ledger snapshot is kept.
	Storage StorageConfig `yaml:"storage" envconfig:"STORAGE"`
}

// StorageConfig selects the ledger snapshot backend.
type StorageConfig struct {
	// Backend is "file" or "redis". Default: "file"
	Backend string `yaml:"backend" envconfig:"BACKEND"`

	// Path is the snapshot file for the file backend.
	// Default: "./data/yayoi_customers.json"
	Path string `yaml:"path" envconfig:"SNAPSHOT_PATH"`

	// RedisAddr is the Redis address for the redis backend.
	// Default: "127.0.0.1:6379"
	RedisAddr string `yaml:"redis_addr" envconfig:"REDIS_ADDR"`

	// Key is the Redis key holding the snapshot.
	// Default: "yayoiCustomersData"
	Key string `yaml:"key" envconfig:"REDIS_KEY"`
}

// Storage backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// =============================================================================
// LOADING
// =============================================================================

// LoadMainConfig reads the main configuration file and applies defaults and
// environment overrides. A missing file is not an error: the defaults are
// used.
//
// PARAMETERS:
//   - configPath: The path to config.yaml.
//
// RETURNS:
//   - The loaded configuration.
//   - An error if the file cannot be parsed or the result is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// A missing .env file is fine.
	_ = godotenv.Load()

	if err := envconfig.Process(envPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults fills in every unset field.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OrderEncoding == "" {
		config.OrderEncoding = "utf-8"
	}
	if config.LedgerEncoding == "" {
		config.LedgerEncoding = "utf-8"
	}
	if config.SalesFileFormat == "" {
		config.SalesFileFormat = "ya_sales_{date}.txt"
	}
	if config.CustomersFileFormat == "" {
		config.CustomersFileFormat = "ya_n_cstmers_{date}.txt"
	}
	if config.ReviewFileFormat == "" {
		config.ReviewFileFormat = "review_{timestamp}.xlsx"
	}
	if config.OperatorCode == "" {
		config.OperatorCode = "11"
	}
	if config.DefaultBuyerName == "" {
		config.DefaultBuyerName = "テネモスショップ"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "pretty"
	}
	if config.Storage.Backend == "" {
		config.Storage.Backend = BackendFile
	}
	if config.Storage.Path == "" {
		config.Storage.Path = "./data/yayoi_customers.json"
	}
	if config.Storage.RedisAddr == "" {
		config.Storage.RedisAddr = "127.0.0.1:6379"
	}
	if config.Storage.Key == "" {
		config.Storage.Key = "yayoiCustomersData"
	}
}

// validateMainConfig checks values that have a fixed set of choices.
func validateMainConfig(config *MainConfig) error {
	switch config.Storage.Backend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}

	switch config.LogFormat {
	case "pretty", "json":
	default:
		return fmt.Errorf("unknown log format %q", config.LogFormat)
	}

	return nil
}
