// =============================================================================
// ColorMe to Yayoi Converter - Customer Matcher
// =============================================================================
//
// This module reconciles the buyers found in the order export with the
// Yayoi customer ledger and reserves ledger codes for buyers that are not
// registered yet.
//
// MATCHING PRIORITY (first success wins):
//   1. E-mail address, case-insensitive
//   2. Phone number with hyphens, spaces and parentheses removed
//      (order phone, falling back to the mobile number)
//   3. Customer name, exact
//   4. No match -> new customer candidate
//
// CODE ASSIGNMENT:
//   Unmatched orders are walked in export order. An order is a duplicate of
//   an earlier candidate when it has an e-mail already seen, or has no
//   e-mail and a name already seen. Phone numbers are not consulted.
//   Non-duplicates receive max(ledger code) + 1, + 2, ...
//
// =============================================================================

package matcher

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of one matching run.
type Result struct {
	// Orders are annotated copies of the input orders, in input order.
	Orders []types.Order

	// Candidates lists one entry per distinct unmatched buyer, in order of
	// first appearance.
	Candidates []types.NewCustomerCandidate

	// ExistingCount is the number of orders matched to the ledger.
	ExistingCount int

	// NewCount is the number of orders without a ledger match. Duplicate
	// buyers are counted once per order.
	NewCount int

	// MaxCode is the largest numeric ledger code; NextCode = MaxCode + 1.
	MaxCode  int
	NextCode int
}

// =============================================================================
// MATCHING
// =============================================================================

// Match annotates every order with its ledger match or assigned code. The
// input slices are not modified.
func Match(orders []types.Order, ledger []types.Customer) Result {
	annotated := make([]types.Order, len(orders))
	copy(annotated, orders)

	result := Result{}

	for i := range annotated {
		order := &annotated[i]
		customer, method := MatchCustomer(order, ledger)
		if customer == nil {
			result.NewCount++
			continue
		}
		order.MatchedCustomer = customer
		order.MatchMethod = method
		order.CustomerCode = customer.CustomerCode
		result.ExistingCount++
	}

	result.MaxCode = MaxCustomerCode(ledger)
	result.NextCode = result.MaxCode + 1
	result.Candidates = AssignNewCustomers(annotated, result.NextCode)
	result.Orders = annotated

	return result
}

// MatchCustomer finds the ledger entry for an order's buyer. The returned
// customer points into ledger. It returns (nil, MatchNone) when nothing
// matches.
func MatchCustomer(order *types.Order, ledger []types.Customer) (*types.Customer, types.MatchMethod) {
	if order.Email != "" {
		for i := range ledger {
			if ledger[i].Email != "" && strings.EqualFold(ledger[i].Email, order.Email) {
				return &ledger[i], types.MatchByEmail
			}
		}
	}

	if phone := NormalizePhone(order.ContactPhone()); phone != "" {
		for i := range ledger {
			if ledger[i].Phone != "" && NormalizePhone(ledger[i].Phone) == phone {
				return &ledger[i], types.MatchByPhone
			}
		}
	}

	if order.CustomerName != "" {
		for i := range ledger {
			if ledger[i].Name != "" && ledger[i].Name == order.CustomerName {
				return &ledger[i], types.MatchByName
			}
		}
	}

	return nil, types.MatchNone
}

// NormalizePhone removes hyphens, parentheses and any Unicode whitespace,
// including the ideographic space (U+3000).
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '(' || r == ')' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
}

// =============================================================================
// CODE ASSIGNMENT
// =============================================================================

// MaxCustomerCode returns the largest ledger code, reading only the digits
// of each code. Codes without digits count as 0; an empty ledger yields 0.
func MaxCustomerCode(ledger []types.Customer) int {
	maxCode := 0
	for _, c := range ledger {
		if code := digitsValue(c.CustomerCode); code > maxCode {
			maxCode = code
		}
	}
	return maxCode
}

// AssignNewCustomers builds the candidate list for the unmatched orders and
// sets CustomerCode on each of them. Codes start at startCode.
func AssignNewCustomers(orders []types.Order, startCode int) []types.NewCustomerCandidate {
	var candidates []types.NewCustomerCandidate
	codeByEmail := make(map[string]string)
	codeByName := make(map[string]string)
	current := startCode

	for i := range orders {
		order := &orders[i]
		if order.MatchedCustomer != nil {
			continue
		}

		if code, ok := duplicateCode(order, codeByEmail, codeByName); ok {
			order.CustomerCode = code
			continue
		}

		code := FormatCode(current)
		current++

		candidates = append(candidates, types.NewCustomerCandidate{
			AssignedCode: code,
			CustomerName: order.CustomerName,
			Zip:          order.Zip,
			Prefecture:   order.Prefecture,
			Address:      order.Address,
			Email:        order.Email,
			Phone:        order.ContactPhone(),
		})
		order.CustomerCode = code

		if order.Email != "" {
			codeByEmail[order.Email] = code
		}
		if _, seen := codeByName[order.CustomerName]; !seen {
			codeByName[order.CustomerName] = code
		}
	}

	return candidates
}

// duplicateCode returns the code of the earlier candidate an order
// duplicates: same e-mail, or (without e-mail) same name.
func duplicateCode(order *types.Order, codeByEmail, codeByName map[string]string) (string, bool) {
	if order.Email != "" {
		code, ok := codeByEmail[order.Email]
		return code, ok
	}
	code, ok := codeByName[order.CustomerName]
	return code, ok
}

// FormatCode renders a customer code zero-padded to 6 digits.
func FormatCode(code int) string {
	return fmt.Sprintf("%06d", code)
}

// =============================================================================
// LEDGER UPDATE
// =============================================================================

// RegisterCandidates returns a new ledger with every registered candidate
// appended, and how many were appended. Candidates whose code is already in
// the ledger are not added twice.
func RegisterCandidates(ledger []types.Customer, candidates []types.NewCustomerCandidate) ([]types.Customer, int) {
	updated := make([]types.Customer, len(ledger), len(ledger)+len(candidates))
	copy(updated, ledger)

	known := make(map[string]bool, len(ledger))
	for _, c := range ledger {
		known[c.CustomerCode] = true
	}

	added := 0
	for _, candidate := range candidates {
		if !candidate.Registered || known[candidate.AssignedCode] {
			continue
		}
		updated = append(updated, types.Customer{
			CustomerCode: candidate.AssignedCode,
			Name:         candidate.CustomerName,
			Phone:        candidate.Phone,
			Email:        candidate.Email,
		})
		known[candidate.AssignedCode] = true
		added++
	}

	return updated, added
}

// digitsValue parses the digits of s, ignoring every other character.
func digitsValue(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}
