// =============================================================================
// ColorMe to Yayoi Converter - Shared Types
// =============================================================================
//
// This package contains the domain records shared by the parser, matcher,
// encoder and the adapters around them. Keeping them here avoids import
// cycles between:
//   - csvparser  (creates Order / Customer)
//   - matcher    (annotates Order, creates NewCustomerCandidate)
//   - encoder    (reads Order / NewCustomerCandidate)
//   - storage    (persists Customer)
//
// =============================================================================

package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ORDER TYPES
// =============================================================================

// Order is one purchase transaction from the ColorMe order export.
// Rows of the export sharing a SalesID are merged into a single Order.
type Order struct {
	// SalesID is the source-assigned key (売上ID), unique within a batch.
	SalesID string

	DeliveryID string
	OrderDate  string
	CustomerID string

	// Buyer fields. All optional.
	CustomerName string
	Zip          string
	Prefecture   string
	Address      string
	Email        string
	Phone        string
	Mobile       string

	// PaymentMethod is the free-text payment label (決済方法).
	PaymentMethod string

	// Items contains the product lines in export order. Never empty for a
	// parsed order.
	Items []OrderItem

	ShippingFee    decimal.Decimal
	DiscountName   string
	DiscountAmount decimal.Decimal

	// MatchedCustomer is set by the matcher when a ledger entry was found.
	MatchedCustomer *Customer

	// MatchMethod records which rule produced MatchedCustomer.
	MatchMethod MatchMethod

	// CustomerCode is the 得意先コード used on every encoded row: the
	// matched ledger code, or the code assigned to the new-customer
	// candidate.
	CustomerCode string
}

// OrderItem is one product line of an Order.
type OrderItem struct {
	ProductCode string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    decimal.Decimal
	Subtotal    decimal.Decimal
}

// codMarker identifies cash-on-delivery payment labels such as 代引き or 代引.
// The long form 代金引換 does not contain it and is not treated as COD.
const codMarker = "代引"

// IsCashOnDelivery reports whether the order is paid on delivery.
func (o *Order) IsCashOnDelivery() bool {
	return strings.Contains(o.PaymentMethod, codMarker)
}

// ItemsTotal returns the sum of item subtotals.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// ContactPhone returns the primary phone, falling back to the mobile number.
func (o *Order) ContactPhone() string {
	if o.Phone != "" {
		return o.Phone
	}
	return o.Mobile
}

// =============================================================================
// CUSTOMER TYPES
// =============================================================================

// Customer is one entry of the Yayoi customer ledger (得意先台帳).
// The JSON names match the persisted ledger snapshot.
type Customer struct {
	// CustomerCode is the ledger's unique key. It may contain non-digit
	// characters; its digits determine ordering.
	CustomerCode string `json:"customerCode"`
	Name         string `json:"name"`
	Furigana     string `json:"furigana"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

// NewCustomerCandidate is a buyer found in the orders with no ledger match.
type NewCustomerCandidate struct {
	// AssignedCode is the zero-padded 6 digit code reserved for the buyer.
	AssignedCode string

	CustomerName string
	Furigana     string
	Zip          string
	Prefecture   string
	Address      string
	Email        string
	Phone        string

	// Registered is flipped by the user once the customer exists in Yayoi.
	Registered bool
}

// =============================================================================
// MATCH METHOD
// =============================================================================

// MatchMethod identifies the rule that matched an order to the ledger.
type MatchMethod string

const (
	MatchNone    MatchMethod = ""
	MatchByEmail MatchMethod = "email"
	MatchByPhone MatchMethod = "phone"
	MatchByName  MatchMethod = "name"
)

// Label returns the display label used in review output.
func (m MatchMethod) Label() string {
	switch m {
	case MatchByEmail:
		return "メールアドレス一致"
	case MatchByPhone:
		return "電話番号一致"
	case MatchByName:
		return "顧客名一致"
	default:
		return "新規"
	}
}
