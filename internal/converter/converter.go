// =============================================================================
// ColorMe to Yayoi Converter - Converter Module
// =============================================================================
//
// This module orchestrates a conversion run. The parsing, matching and
// encoding packages are pure transformations; the converter feeds them from
// files and the ledger store and writes their results.
//
// RUNS:
//   Match    - parse orders, match against the ledger, write the review
//              workbook and the new-customer registration TXT
//   Register - read the registration marks from the review workbook and
//              add the registered customers to the stored ledger
//   Process  - parse and match again, enforce the registration gate,
//              write the sales TXT, archive the order export
//
// LEDGER:
//   The ledger comes from the snapshot store. A Yayoi customer CSV passed
//   with a run replaces the stored snapshot first.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/config"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/csvparser"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/encoder"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/matcher"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/storage"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/textwriter"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/validation"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/xlsxreport"
	"github.com/ginjaninja78/colorme-yayoi-converter/pkg/utils"
)

// ErrNothingRegistered is returned by Register when no candidate in the
// review workbook is marked as registered.
var ErrNothingRegistered = errors.New("no candidate is marked as registered")

// =============================================================================
// OPTIONS AND RESULTS
// =============================================================================

// Options are the per-run inputs.
type Options struct {
	// OrdersPath is the ColorMe order export.
	OrdersPath string

	// LedgerPath is an optional Yayoi customer CSV. When set it replaces
	// the stored ledger before matching.
	LedgerPath string

	// DocumentNumberStart is the first 伝票番号 (Process only).
	DocumentNumberStart string

	// OperatorCode overrides the configured 担当者コード.
	OperatorCode string

	// SelectSalesIDs limits the sales TXT to these orders. Empty means all.
	SelectSalesIDs []string

	// AllowUnregistered lets Process run while candidates are unregistered.
	AllowUnregistered bool

	// DryRun performs every step but writes no files and saves no ledger.
	DryRun bool

	// Date is the document date. Zero means today.
	Date time.Time
}

// MatchResult is the outcome of Match.
type MatchResult struct {
	RunID            string
	Match            matcher.Result
	LedgerSize       int
	ReviewPath       string
	RegistrationPath string
}

// ProcessResult is the outcome of Process.
type ProcessResult struct {
	RunID            string
	Match            matcher.Result
	SelectedOrders   int
	SalesRows        int
	SalesPath        string
	RegistrationPath string
	SummaryPath      string
	ArchivePath      string
	Warnings         []string
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs conversions for one configuration.
type Converter struct {
	cfg     *config.MainConfig
	store   *storage.Store
	files   *utils.FileManager
	encoder *encoder.SalesEncoder
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a Converter.
//
// PARAMETERS:
//   - cfg: The main configuration.
//   - tables: The conversion tables.
//   - store: The ledger snapshot store.
//   - logger: The run logger.
//
// RETURNS:
//   - A new Converter instance.
func New(cfg *config.MainConfig, tables config.Tables, store *storage.Store, logger zerolog.Logger) *Converter {
	files := utils.NewFileManager(cfg.OutputDir, cfg.InputArchiveDir, cfg.ArchiveInput)
	files.UseTimestampSubdirs = cfg.ArchiveByDate

	return &Converter{
		cfg:     cfg,
		store:   store,
		files:   files,
		encoder: encoder.NewSalesEncoder(tables),
		logger:  logger,
		now:     time.Now,
	}
}

// =============================================================================
// MATCH
// =============================================================================

// Match parses the orders, matches them against the ledger and writes the
// review workbook and the registration TXT for new customers.
func (c *Converter) Match(ctx context.Context, opts Options) (*MatchResult, error) {
	runID := uuid.New().String()
	started := c.now()
	log := c.logger.With().Str("run_id", runID).Str("command", "match").Logger()

	orders, ledger, err := c.load(ctx, opts, log)
	if err != nil {
		return nil, err
	}

	result := matcher.Match(orders, ledger)
	log.Info().
		Int("orders", len(result.Orders)).
		Int("existing", result.ExistingCount).
		Int("new", result.NewCount).
		Int("candidates", len(result.Candidates)).
		Str("next_code", matcher.FormatCode(result.NextCode)).
		Msg("matching complete")

	out := &MatchResult{RunID: runID, Match: result, LedgerSize: len(ledger)}
	if opts.DryRun {
		return out, nil
	}

	if err := c.files.EnsureDirectories(); err != nil {
		return nil, err
	}

	out.ReviewPath = c.files.OutputPath(utils.GenerateOutputFileName(c.cfg.ReviewFileFormat, started, map[string]string{"run": runID}))
	report := xlsxreport.Report{
		Summary: xlsxreport.Summary{
			RunID:         runID,
			GeneratedAt:   started,
			OrdersFile:    opts.OrdersPath,
			OrderCount:    len(result.Orders),
			ExistingCount: result.ExistingCount,
			NewCount:      result.NewCount,
			LedgerSize:    len(ledger),
			MaxCode:       result.MaxCode,
			NextCode:      matcher.FormatCode(result.NextCode),
		},
		Orders:     result.Orders,
		Candidates: result.Candidates,
	}
	if err := xlsxreport.Write(out.ReviewPath, report); err != nil {
		return nil, err
	}
	log.Info().Str("path", out.ReviewPath).Msg("wrote review workbook")

	if len(result.Candidates) > 0 {
		path, err := c.writeRegistrations(result.Candidates, started)
		if err != nil {
			return nil, err
		}
		out.RegistrationPath = path
		log.Info().Str("path", path).Int("customers", len(result.Candidates)).Msg("wrote registration file")
	}

	return out, nil
}

// =============================================================================
// REGISTER
// =============================================================================

// Register adds the candidates marked in the review workbook to the stored
// ledger and returns how many were added.
func (c *Converter) Register(ctx context.Context, reviewPath string, dryRun bool) (int, error) {
	log := c.logger.With().Str("command", "register").Logger()

	candidates, err := xlsxreport.ReadCandidates(reviewPath)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, candidate := range candidates {
		if candidate.Registered {
			marked++
		}
	}
	if marked == 0 {
		return 0, ErrNothingRegistered
	}

	ledger, err := c.store.Customers(ctx)
	if err != nil {
		return 0, err
	}

	updated, added := matcher.RegisterCandidates(ledger, candidates)
	log.Info().
		Int("marked", marked).
		Int("added", added).
		Int("ledger_size", len(updated)).
		Msg("registering customers")

	if dryRun || added == 0 {
		return added, nil
	}

	if _, err := c.store.Save(ctx, updated); err != nil {
		return 0, err
	}
	return added, nil
}

// =============================================================================
// PROCESS
// =============================================================================

// Process produces the sales TXT.
//
// PROCESSING STEPS:
//  1. Validate the run settings
//  2. Load orders and ledger, match
//  3. Enforce the registration gate
//  4. Encode the selected orders and write the sales TXT
//  5. Write the run summary and archive the order export
func (c *Converter) Process(ctx context.Context, opts Options) (*ProcessResult, error) {
	runID := uuid.New().String()
	started := c.now()
	log := c.logger.With().Str("run_id", runID).Str("command", "process").Logger()

	operator := opts.OperatorCode
	if operator == "" {
		operator = c.cfg.OperatorCode
	}

	// =========================================================================
	// STEP 1: VALIDATE SETTINGS
	// =========================================================================

	settingsCheck := validation.ValidateSettings(validation.RunSettings{
		OrdersPath:          opts.OrdersPath,
		DocumentNumberStart: opts.DocumentNumberStart,
		OperatorCode:        operator,
	})
	if err := settingsCheck.Err(); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 2: LOAD AND MATCH
	// =========================================================================

	orders, ledger, err := c.load(ctx, opts, log)
	if err != nil {
		return nil, err
	}

	result := matcher.Match(orders, ledger)
	out := &ProcessResult{RunID: runID, Match: result}

	// =========================================================================
	// STEP 3: REGISTRATION GATE
	// =========================================================================

	gate := validation.ValidateCandidates(result.Candidates, opts.AllowUnregistered)
	for _, problem := range gate.Errors {
		if problem.Severity == validation.SeverityWarning {
			log.Warn().Str("code", problem.Field).Str("name", problem.Value).Msg(problem.Message)
			out.Warnings = append(out.Warnings, problem.Error())
		}
	}
	if err := gate.Err(); err != nil {
		return nil, fmt.Errorf("register the new customers first: %w", err)
	}

	// =========================================================================
	// STEP 4: ENCODE
	// =========================================================================

	selected, err := selectOrders(result.Orders, opts.SelectSalesIDs)
	if err != nil {
		return nil, err
	}
	out.SelectedOrders = len(selected)

	date := opts.Date
	if date.IsZero() {
		date = started
	}
	rows := c.encoder.Rows(selected, encoder.Settings{
		DocumentNumberStart: opts.DocumentNumberStart,
		OperatorCode:        operator,
		Date:                date,
		DefaultBuyerName:    c.cfg.DefaultBuyerName,
	})
	out.SalesRows = len(rows)

	log.Info().
		Int("orders", len(selected)).
		Int("rows", len(rows)).
		Str("document_start", opts.DocumentNumberStart).
		Msg("encoded sales slips")

	if opts.DryRun {
		return out, nil
	}

	if err := c.files.EnsureDirectories(); err != nil {
		return nil, err
	}

	out.SalesPath = c.files.OutputPath(utils.GenerateOutputFileName(c.cfg.SalesFileFormat, started, map[string]string{"run": runID}))
	if err := textwriter.WriteFile(out.SalesPath, encoder.JoinRows(rows), textwriter.DefaultWriteOptions()); err != nil {
		return nil, err
	}
	log.Info().Str("path", out.SalesPath).Msg("wrote sales file")

	if gate.WarningCount > 0 {
		path, err := c.writeRegistrations(result.Candidates, started)
		if err != nil {
			return nil, err
		}
		out.RegistrationPath = path
	}

	// =========================================================================
	// STEP 5: SUMMARY AND ARCHIVE
	// =========================================================================

	archived, err := c.files.ArchiveInputFile(opts.OrdersPath, started)
	if err != nil {
		log.Warn().Err(err).Msg("failed to archive order export")
		out.Warnings = append(out.Warnings, err.Error())
	} else if archived != opts.OrdersPath {
		out.ArchivePath = archived
	}

	outputs := []string{out.SalesPath}
	if out.RegistrationPath != "" {
		outputs = append(outputs, out.RegistrationPath)
	}
	summaryPath, err := utils.WriteSummaryLog(utils.RunSummary{
		RunID:         runID,
		Command:       "process",
		StartTime:     started,
		EndTime:       c.now(),
		OrdersFile:    opts.OrdersPath,
		OrderCount:    len(selected),
		ExistingCount: result.ExistingCount,
		NewCount:      result.NewCount,
		SalesRows:     len(rows),
		Registrations: gate.WarningCount,
		OutputFiles:   outputs,
		ArchivePath:   out.ArchivePath,
		Warnings:      out.Warnings,
	}, c.cfg.OutputDir)
	if err != nil {
		log.Warn().Err(err).Msg("failed to write run summary")
	}
	out.SummaryPath = summaryPath

	return out, nil
}

// =============================================================================
// LEDGER MAINTENANCE
// =============================================================================

// ImportLedgerCSV parses a Yayoi customer CSV and replaces the stored
// ledger with it.
func (c *Converter) ImportLedgerCSV(ctx context.Context, path string) ([]types.Customer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}
	text, err := csvparser.Decode(raw, c.cfg.LedgerEncoding)
	if err != nil {
		return nil, err
	}
	customers, err := csvparser.ParseLedger(text)
	if err != nil {
		return nil, err
	}

	for _, problem := range validation.ValidateLedger(customers).Errors {
		c.logger.Warn().Str("code", problem.Value).Msg(problem.Message)
	}

	if _, err := c.store.Save(ctx, customers); err != nil {
		return nil, err
	}
	c.logger.Info().Int("customers", len(customers)).Str("path", path).Msg("imported customer ledger")

	return customers, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// load reads the orders and the ledger for a run.
func (c *Converter) load(ctx context.Context, opts Options, log zerolog.Logger) ([]types.Order, []types.Customer, error) {
	raw, err := os.ReadFile(opts.OrdersPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read orders file: %w", err)
	}
	text, err := csvparser.Decode(raw, c.cfg.OrderEncoding)
	if err != nil {
		return nil, nil, err
	}
	orders, err := csvparser.ParseOrders(text)
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Int("orders", len(orders)).Str("path", opts.OrdersPath).Msg("parsed orders")

	var ledger []types.Customer
	if opts.LedgerPath != "" && !opts.DryRun {
		ledger, err = c.ImportLedgerCSV(ctx, opts.LedgerPath)
	} else if opts.LedgerPath != "" {
		ledger, err = c.parseLedgerFile(opts.LedgerPath)
	} else {
		ledger, err = c.store.Customers(ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(ledger) == 0 {
		log.Warn().Msg("customer ledger is empty, every buyer is a new customer")
	}

	return orders, ledger, nil
}

// parseLedgerFile reads a Yayoi customer CSV without storing it.
func (c *Converter) parseLedgerFile(path string) ([]types.Customer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}
	text, err := csvparser.Decode(raw, c.cfg.LedgerEncoding)
	if err != nil {
		return nil, err
	}
	return csvparser.ParseLedger(text)
}

// writeRegistrations writes the registration TXT for the unregistered
// candidates.
func (c *Converter) writeRegistrations(candidates []types.NewCustomerCandidate, now time.Time) (string, error) {
	path := c.files.OutputPath(utils.GenerateOutputFileName(c.cfg.CustomersFileFormat, now, nil))
	if err := textwriter.WriteFile(path, encoder.EncodeRegistrations(candidates), textwriter.DefaultWriteOptions()); err != nil {
		return "", err
	}
	return path, nil
}

// selectOrders keeps the orders whose sales ID is listed, in export order.
// An empty list selects every order.
func selectOrders(orders []types.Order, salesIDs []string) ([]types.Order, error) {
	if len(salesIDs) == 0 {
		return orders, nil
	}

	wanted := make(map[string]bool, len(salesIDs))
	for _, id := range salesIDs {
		wanted[id] = true
	}

	var selected []types.Order
	for _, order := range orders {
		if wanted[order.SalesID] {
			selected = append(selected, order)
			delete(wanted, order.SalesID)
		}
	}

	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for _, id := range salesIDs {
			if wanted[id] {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("sales IDs not found in orders: %v", missing)
	}

	return selected, nil
}
