// =============================================================================
// ColorMe to Yayoi Converter - Validation
// =============================================================================
//
// This module checks caller-supplied input before a conversion runs. It does
// not validate the converted data itself: the parser and encoder either
// produce complete output or fail with a FormatError.
//
// CHECKS:
//   1. Run settings: starting document number, operator code, input files
//   2. Registration gate: every new-customer candidate must be registered in
//      Yayoi before the sales file is produced
//   3. Ledger sanity: duplicate customer codes in the ledger snapshot
//
// ERROR HANDLING:
//   - Errors are collected, not returned one at a time
//   - "error" severity blocks the run, "warning" is reported only
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation problem.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the name of the setting or record that failed.
	Field string

	// Value is the offending value.
	Value string

	// Rule is the rule that was violated.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the outcome of a validation pass.
type ValidationResult struct {
	// IsValid is true if there are no errors of SeverityError.
	IsValid bool

	// Errors contains every problem found, warnings included.
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int
}

func newResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}
	r.WarningCount++
}

// Err returns nil for a valid result, otherwise an error joining every
// problem of SeverityError.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	var errs []error
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			errs = append(errs, e)
		}
	}
	return errors.Join(errs...)
}

// =============================================================================
// RUN SETTINGS
// =============================================================================

// RunSettings are the values a user supplies for one conversion.
type RunSettings struct {
	// OrdersPath is the ColorMe order export.
	OrdersPath string `validate:"required,file"`

	// DocumentNumberStart is the first 伝票番号.
	DocumentNumberStart string `validate:"required,number"`

	// OperatorCode is the 担当者コード.
	OperatorCode string `validate:"required,number"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ruleMessages maps validator tags to messages.
var ruleMessages = map[string]string{
	"required": "is required",
	"number":   "must contain digits only",
	"file":     "does not exist or is not a file",
}

// ValidateSettings checks the run settings.
//
// PARAMETERS:
//   - settings: The values entered for this run.
//
// RETURNS:
//   - A result with one error per failed field.
func ValidateSettings(settings RunSettings) *ValidationResult {
	result := newResult()

	err := validate.Struct(settings)
	if err == nil {
		return result
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		result.add(&ValidationError{
			Severity: SeverityError,
			Field:    "settings",
			Rule:     "internal",
			Message:  err.Error(),
		})
		return result
	}

	for _, fe := range fieldErrs {
		message, ok := ruleMessages[fe.Tag()]
		if !ok {
			message = fmt.Sprintf("failed rule %q", fe.Tag())
		}
		result.add(&ValidationError{
			Severity: SeverityError,
			Field:    fe.Field(),
			Value:    fmt.Sprint(fe.Value()),
			Rule:     fe.Tag(),
			Message:  message,
		})
	}

	return result
}

// =============================================================================
// REGISTRATION GATE
// =============================================================================

// ValidateCandidates reports every candidate not yet registered in Yayoi.
// The problems are errors unless allowUnregistered is set, in which case
// they are downgraded to warnings.
func ValidateCandidates(candidates []types.NewCustomerCandidate, allowUnregistered bool) *ValidationResult {
	result := newResult()

	severity := SeverityError
	if allowUnregistered {
		severity = SeverityWarning
	}

	for _, c := range candidates {
		if c.Registered {
			continue
		}
		result.add(&ValidationError{
			Severity: severity,
			Field:    "candidate " + c.AssignedCode,
			Value:    c.CustomerName,
			Rule:     "registered",
			Message:  "new customer is not registered in Yayoi yet",
		})
	}

	return result
}

// =============================================================================
// LEDGER
// =============================================================================

// ValidateLedger warns about customer codes that appear more than once.
// Matching still works, the first entry wins.
func ValidateLedger(ledger []types.Customer) *ValidationResult {
	result := newResult()

	seen := make(map[string]bool, len(ledger))
	for _, c := range ledger {
		if seen[c.CustomerCode] {
			result.add(&ValidationError{
				Severity: SeverityWarning,
				Field:    "customerCode",
				Value:    c.CustomerCode,
				Rule:     "unique",
				Message:  "duplicate customer code in ledger",
			})
			continue
		}
		seen[c.CustomerCode] = true
	}

	return result
}
