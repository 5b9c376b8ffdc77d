// =============================================================================
// ColorMe to Yayoi Converter - Sales Slip Encoder
// =============================================================================
//
// This module expands annotated orders into Yayoi 売上伝票 import rows.
//
// ROWS PER ORDER (line numbers restart at 1 for every order):
//   1. One row per item. Bundle products expand into one row per component
//      (component price x item quantity).
//   2. Shipping row when the shipping fee is positive.
//   3. Cash-on-delivery fee row for COD orders.
//   4. Discount row (negative amount) when a discount is present.
//
// RECORD FORMAT:
//   59 tab-separated columns per row, rows joined with CRLF. Most columns
//   are constants checked positionally by Yayoi; see buildSalesRow.
//   The text is returned as UTF-8. Conversion to Shift_JIS is done by the
//   textwriter package.
//
// =============================================================================

package encoder

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/config"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
)

// =============================================================================
// FORMAT CONSTANTS
// =============================================================================

const (
	// SalesFieldCount is the number of columns in a sales row.
	SalesFieldCount = 59

	// FieldSeparator and LineBreak delimit columns and rows.
	FieldSeparator = "\t"
	LineBreak      = "\r\n"

	DefaultOperatorCode = "11"
	DefaultBuyerName    = "テネモスショップ"

	deliveryCodeBank = "003"
	deliveryCodeCOD  = "001"

	shippingProductName = "送料"
	codFeeProductCode   = "0002"
	codFeeProductName   = "代引き手数料"
	discountProductCode = "0110"
	discountDefaultName = "クーポン割引"

	documentDateLayout = "20060102"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings are the run-level values of a sales conversion.
type Settings struct {
	// DocumentNumberStart is the first 伝票番号. Values that are not a
	// positive integer fall back to 1.
	DocumentNumberStart string

	// OperatorCode is the 担当者コード. Default: "11"
	OperatorCode string

	// Date is the 伝票日付 of every row. Zero means today.
	Date time.Time

	// DefaultBuyerName replaces an empty buyer name. Default: "テネモスショップ"
	DefaultBuyerName string
}

// firstDocumentNumber parses DocumentNumberStart.
func (s Settings) firstDocumentNumber() int {
	n, err := strconv.Atoi(strings.TrimSpace(s.DocumentNumberStart))
	if err != nil || n == 0 {
		return 1
	}
	return n
}

// =============================================================================
// ENCODER
// =============================================================================

// SalesEncoder turns annotated orders into Yayoi sales rows.
type SalesEncoder struct {
	tables config.Tables
}

// NewSalesEncoder creates an encoder using the given lookup tables.
func NewSalesEncoder(tables config.Tables) *SalesEncoder {
	return &SalesEncoder{tables: tables}
}

// salesLine carries the variable columns of one sales row.
type salesLine struct {
	date         string
	docNo        string
	customerCode string
	deliveryCode string
	operatorCode string
	lineNo       int
	productCode  string
	productName  string
	quantity     decimal.Decimal
	unitPrice    decimal.Decimal
	amount       decimal.Decimal
	buyerName    string
}

// EncodeSales renders the orders as the sales import text.
func (e *SalesEncoder) EncodeSales(orders []types.Order, settings Settings) string {
	return JoinRows(e.Rows(orders, settings))
}

// Rows builds the sales rows for the orders, each row already split into
// its 59 columns.
func (e *SalesEncoder) Rows(orders []types.Order, settings Settings) [][]string {
	operator := settings.OperatorCode
	if operator == "" {
		operator = DefaultOperatorCode
	}
	fallbackBuyer := settings.DefaultBuyerName
	if fallbackBuyer == "" {
		fallbackBuyer = DefaultBuyerName
	}
	date := settings.Date
	if date.IsZero() {
		date = time.Now()
	}
	documentDate := date.Format(documentDateLayout)
	docNo := settings.firstDocumentNumber()

	var rows [][]string

	for i := range orders {
		order := &orders[i]

		buyer := order.CustomerName
		if buyer == "" {
			buyer = fallbackBuyer
		}
		delivery := deliveryCodeBank
		if order.IsCashOnDelivery() {
			delivery = deliveryCodeCOD
		}

		lineNo := 1
		emit := func(code, name string, qty, price, amount decimal.Decimal) {
			rows = append(rows, buildSalesRow(salesLine{
				date:         documentDate,
				docNo:        padNumber(docNo, 4),
				customerCode: order.CustomerCode,
				deliveryCode: delivery,
				operatorCode: operator,
				lineNo:       lineNo,
				productCode:  code,
				productName:  name,
				quantity:     qty,
				unitPrice:    price,
				amount:       amount,
				buyerName:    buyer,
			}))
			lineNo++
		}

		for _, item := range order.Items {
			if components, ok := e.tables.Bundles[item.ProductCode]; ok {
				for _, c := range components {
					price := decimal.NewFromInt(c.Price)
					emit(c.Code, c.Name, item.Quantity, price, price.Mul(item.Quantity))
				}
				continue
			}

			name := item.ProductName
			if override, ok := e.tables.ProductNames[item.ProductCode]; ok {
				name = override
			}
			emit(item.ProductCode, name, item.Quantity, item.UnitPrice, item.Subtotal)
		}

		one := decimal.NewFromInt(1)

		if order.ShippingFee.IsPositive() {
			code, ok := e.tables.ShippingCodes[order.Prefecture]
			if !ok {
				code = e.tables.DefaultShippingCode
			}
			emit(code, shippingProductName, one, order.ShippingFee, order.ShippingFee)
		}

		if order.IsCashOnDelivery() {
			fee := CODFee(order.ItemsTotal().Add(order.ShippingFee))
			emit(codFeeProductCode, codFeeProductName, one, fee, fee)
		}

		if order.DiscountAmount.IsPositive() {
			name := order.DiscountName
			if name == "" {
				name = discountDefaultName
			}
			discount := order.DiscountAmount.Abs().Neg()
			emit(discountProductCode, name, one, discount, discount)
		}

		docNo++
	}

	return rows
}

// =============================================================================
// COD FEE
// =============================================================================

// codFeeTiers lists the cash-on-delivery fee per payment total band. Each
// band covers totals below its limit.
var codFeeTiers = []struct {
	below int64
	fee   int64
}{
	{below: 10000, fee: 330},
	{below: 30000, fee: 440},
	{below: 100000, fee: 660},
}

const codFeeMax = 1100

// CODFee returns the cash-on-delivery fee for a payment total (items plus
// shipping).
func CODFee(total decimal.Decimal) decimal.Decimal {
	for _, tier := range codFeeTiers {
		if total.LessThan(decimal.NewFromInt(tier.below)) {
			return decimal.NewFromInt(tier.fee)
		}
	}
	return decimal.NewFromInt(codFeeMax)
}

// =============================================================================
// ROW LAYOUT
// =============================================================================

// buildSalesRow lays out the 59 columns of a sales row. Columns not set
// here stay blank.
func buildSalesRow(l salesLine) []string {
	row := make([]string, SalesFieldCount)

	row[0] = "1" // 削除マーク
	row[1] = "1" // 締フラグ
	row[2] = "0"
	row[3] = l.date
	row[4] = l.docNo
	row[5] = "24" // 伝票区分
	row[6] = "2"
	row[7] = "5"
	row[8] = "1"
	row[9] = "1"
	row[10] = l.customerCode
	row[11] = l.deliveryCode
	row[12] = l.operatorCode
	row[13] = strconv.Itoa(l.lineNo)
	row[14] = "1"
	row[15] = l.productCode
	row[17] = l.productName
	row[18] = "13" // 課税区分
	row[20] = "0"
	row[21] = "0"
	row[23] = l.quantity.String()
	row[24] = l.unitPrice.String()
	row[25] = l.amount.String()
	row[27] = l.unitPrice.String()
	row[28] = "0"
	row[29] = "0"
	row[31] = "2"
	row[32] = "2"
	row[39] = l.buyerName

	return row
}

// JoinRows joins columns with tabs and rows with CRLF. There is no
// trailing line break.
func JoinRows(rows [][]string) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, FieldSeparator)
	}
	return strings.Join(lines, LineBreak)
}
