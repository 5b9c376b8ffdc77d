// =============================================================================
// ColorMe to Yayoi Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI and the setup shared
// by every subcommand: configuration loading, logging and the ledger store.
//
// COBRA CLI STRUCTURE:
//   rootCmd (yayoi-converter)
//   ├── matchCmd     (match orders against the ledger, write review files)
//   ├── registerCmd  (add customers marked in the review workbook)
//   ├── processCmd   (write the Yayoi sales TXT)
//   ├── ledgerCmd    (import / show / export / clear the stored ledger)
//   └── versionCmd
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/config"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/converter"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/storage"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// mainConfig is loaded once before any subcommand runs.
var mainConfig *config.MainConfig

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "yayoi-converter",
	Short: "ColorMe Shop orders to Yayoi sales slips",
	Long: `yayoi-converter turns a ColorMe Shop order export into Yayoi Sales
(弥生販売) import files.

Workflow:
  1. yayoi-converter ledger import customers.csv   # once, from Yayoi
  2. yayoi-converter match --orders sales_all.csv  # review workbook + new customers TXT
  3. import the new customers TXT into Yayoi, mark them 済 in the workbook
  4. yayoi-converter register --review output/review_....xlsx
  5. yayoi-converter process --orders sales_all.csv --doc-start 120

Configuration is read from config.yaml, a .env file and CONVERTER_*
environment variables.`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadMainConfig(cfgFile)
		if err != nil {
			return err
		}
		mainConfig = cfg
		setupLogging(cfg)
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		zlog.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// setupLogging configures the global zerolog logger.
func setupLogging(cfg *config.MainConfig) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		zlog.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// openStore opens the ledger store selected by the configuration.
func openStore(ctx context.Context) (*storage.Store, error) {
	store, err := storage.Open(ctx, mainConfig.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %w", err)
	}
	return store, nil
}

// newConverter builds a converter on top of store.
func newConverter(store *storage.Store) (*converter.Converter, error) {
	tables, err := config.LoadTables(mainConfig.TablesFile)
	if err != nil {
		return nil, err
	}
	return converter.New(mainConfig, tables, store, zlog.Logger), nil
}
