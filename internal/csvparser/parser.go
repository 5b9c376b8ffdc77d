// =============================================================================
// ColorMe to Yayoi Converter - CSV Parser Module
// =============================================================================
//
// This module turns the raw text of the two source exports into typed
// records:
//   1. ColorMe Shop order export  -> []types.Order
//   2. Yayoi customer ledger list -> []types.Customer
//
// LINE AND FIELD SPLITTING:
//   Both exports are comma separated with double-quoted fields. Quoted
//   fields may contain commas and line breaks. A quote toggles the
//   "quoted" mode; it is never copied into the field value. Doubled quotes
//   ("") inside a quoted field are NOT unescaped: each quote toggles the
//   mode, so `"a""b"` reads as `ab`.
//
//   encoding/csv is not used here because it rejects the exports' stray
//   quotes in strict mode and, in LazyQuotes mode, keeps them in the value.
//
// =============================================================================

package csvparser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

// FormatError reports malformed or incomplete input: too few lines,
// missing required columns, or no valid records after filtering.
type FormatError struct {
	// Source is "orders" or "ledger".
	Source string

	// Message describes the problem.
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// =============================================================================
// PARSER SETTINGS
// =============================================================================

const (
	// columnTolerance is how many trailing columns an order row may lack
	// before it is skipped.
	columnTolerance = 10

	// ledgerHeaderLine is the logical line holding the ledger header.
	// Lines 0-3 are the title, sort order and spacer lines.
	ledgerHeaderLine = 4
)

// Ledger column names.
const (
	ledgerCode     = "コード"
	ledgerName     = "名称"
	ledgerFurigana = "フリガナ"
	ledgerPhone    = "TEL"
	ledgerEmail    = "メールアドレス"
)

// =============================================================================
// LINE / FIELD SPLITTING
// =============================================================================

// SplitLines splits text into logical records. CR, LF and CRLF end a record
// only outside quoted mode. Quote characters are kept so that SplitFields
// can see them. Lines that are empty after trimming are dropped.
func SplitLines(text string) []string {
	var lines []string
	var current strings.Builder
	inQuotes := false

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			lines = append(lines, current.String())
		}
		current.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case (r == '\n' || r == '\r') && !inQuotes:
			flush()
			if r == '\r' && i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return lines
}

// SplitFields splits one logical line into fields. Commas separate fields
// outside quoted mode; quote characters toggle the mode and are dropped.
func SplitFields(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, current.String())

	return fields
}

// =============================================================================
// ORDER EXPORT
// =============================================================================

// ParseOrders parses a ColorMe order export.
//
// Rows sharing a sales id are merged into one Order: buyer, payment,
// shipping and discount fields come from the first row seen, items are
// concatenated. Orders keep the order in which their id first appeared.
//
// RETURNS:
//   - The orders, never empty on success.
//   - A *FormatError when the input has fewer than 2 lines, the header
//     lacks the sales id / product name columns, or no order survives.
func ParseOrders(text string) ([]types.Order, error) {
	lines := SplitLines(text)
	if len(lines) < 2 {
		return nil, &FormatError{Source: "orders", Message: "order export is empty"}
	}

	header := cleanHeaders(SplitFields(lines[0]))
	layout, err := DetectLayout(header)
	if err != nil {
		return nil, err
	}
	idx := layout.resolve(header)

	var ids []string
	orders := make(map[string]*types.Order)

	for _, line := range lines[1:] {
		columns := SplitFields(line)
		if len(columns) < len(header)-columnTolerance {
			continue
		}

		salesID := field(columns, idx.salesID)
		if salesID == "" {
			continue
		}

		o, exists := orders[salesID]
		if !exists {
			o = &types.Order{
				SalesID:        salesID,
				DeliveryID:     field(columns, idx.deliveryID),
				OrderDate:      field(columns, idx.orderDate),
				CustomerID:     field(columns, idx.customerID),
				CustomerName:   field(columns, idx.customerName),
				Zip:            field(columns, idx.zip),
				Prefecture:     field(columns, idx.prefecture),
				Address:        field(columns, idx.address),
				Email:          field(columns, idx.email),
				Phone:          field(columns, idx.phone),
				Mobile:         field(columns, idx.mobile),
				PaymentMethod:  field(columns, idx.paymentMethod),
				ShippingFee:    number(field(columns, idx.shippingFee)),
				DiscountName:   field(columns, idx.discountName),
				DiscountAmount: number(field(columns, idx.discountAmt)),
			}
			orders[salesID] = o
			ids = append(ids, salesID)
		}

		o.Items = append(o.Items, types.OrderItem{
			ProductCode: field(columns, idx.productCode),
			ProductName: field(columns, idx.productName),
			UnitPrice:   number(field(columns, idx.unitPrice)),
			Quantity:    number(field(columns, idx.quantity)),
			Subtotal:    number(field(columns, idx.subtotal)),
		})
	}

	if len(ids) == 0 {
		return nil, &FormatError{Source: "orders", Message: "no valid order rows found"}
	}

	result := make([]types.Order, 0, len(ids))
	for _, id := range ids {
		result = append(result, *orders[id])
	}

	return result, nil
}

// =============================================================================
// LEDGER EXPORT
// =============================================================================

// ParseLedger parses a Yayoi customer list export.
//
// EXPECTED LAYOUT:
//
//	line 0: title ("得意先リスト")
//	line 1: spacer
//	line 2: sort order ("コード順")
//	line 3: spacer
//	line 4: header (leading empty column, "コード", "名称", ...)
//	line 5+: data
//
// Rows without both a code and a name are skipped.
func ParseLedger(text string) ([]types.Customer, error) {
	lines := SplitLines(text)
	if len(lines) <= ledgerHeaderLine {
		return nil, &FormatError{Source: "ledger", Message: "customer list is empty"}
	}

	header := cleanHeaders(SplitFields(lines[ledgerHeaderLine]))
	codeIdx := indexOf(header, ledgerCode)
	nameIdx := indexOf(header, ledgerName)
	furiganaIdx := indexOf(header, ledgerFurigana)
	phoneIdx := indexOf(header, ledgerPhone)
	emailIdx := indexOf(header, ledgerEmail)

	if codeIdx == -1 || nameIdx == -1 {
		return nil, &FormatError{
			Source:  "ledger",
			Message: "required columns (コード, 名称) not found in header",
		}
	}

	minColumns := max(codeIdx, nameIdx) + 1

	var customers []types.Customer
	for _, line := range lines[ledgerHeaderLine+1:] {
		columns := SplitFields(strings.TrimSpace(line))
		if len(columns) < minColumns {
			continue
		}

		code := strings.TrimSpace(field(columns, codeIdx))
		name := strings.TrimSpace(field(columns, nameIdx))
		if code == "" || name == "" {
			continue
		}

		customers = append(customers, types.Customer{
			CustomerCode: code,
			Name:         name,
			Furigana:     strings.TrimSpace(field(columns, furiganaIdx)),
			Phone:        strings.TrimSpace(field(columns, phoneIdx)),
			Email:        strings.TrimSpace(field(columns, emailIdx)),
		})
	}

	if len(customers) == 0 {
		return nil, &FormatError{Source: "ledger", Message: "no valid customer rows found"}
	}

	return customers, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders trims surrounding whitespace from header names and drops a
// byte order mark left on the first one.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, "\uFEFF")
		}
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

// field returns the column at idx, or "" when the column is absent or the
// row is short.
func field(columns []string, idx int) string {
	if idx < 0 || idx >= len(columns) {
		return ""
	}
	return columns[idx]
}

// number parses a numeric column. Unparseable values become zero.
func number(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
