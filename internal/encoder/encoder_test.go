package encoder

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/config"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
)

// Column positions (0-based) checked by the tests.
const (
	colDate     = 3
	colDocNo    = 4
	colCustomer = 10
	colDelivery = 11
	colOperator = 12
	colLine     = 13
	colProduct  = 15
	colName     = 17
	colQuantity = 23
	colPrice    = 24
	colAmount   = 25
	colPrice2   = 27
	colBuyer    = 39
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(code, name, price, qty string) types.OrderItem {
	p, q := dec(price), dec(qty)
	return types.OrderItem{ProductCode: code, ProductName: name, UnitPrice: p, Quantity: q, Subtotal: p.Mul(q)}
}

var fixedDate = time.Date(2025, 12, 2, 9, 0, 0, 0, time.Local)

func settings() Settings {
	return Settings{DocumentNumberStart: "7", OperatorCode: "11", Date: fixedDate}
}

func TestRowsBundleExpansion(t *testing.T) {
	enc := NewSalesEncoder(config.DefaultTables())
	orders := []types.Order{{
		SalesID:       "S1",
		CustomerName:  "山田太郎",
		PaymentMethod: "銀行振込",
		CustomerCode:  "000010",
		Items:         []types.OrderItem{item("1229", "ビダソープ詰替セット", "3220", "1")},
	}}

	rows := enc.Rows(orders, settings())

	require.Len(t, rows, 2)
	assert.Equal(t, "1221", rows[0][colProduct])
	assert.Equal(t, "2420", rows[0][colAmount])
	assert.Equal(t, "1224", rows[1][colProduct])
	assert.Equal(t, "800", rows[1][colAmount])
	assert.Equal(t, "1", rows[0][colLine])
	assert.Equal(t, "2", rows[1][colLine])
}

func TestRowsBundleQuantityMultiplies(t *testing.T) {
	enc := NewSalesEncoder(config.DefaultTables())
	orders := []types.Order{{
		SalesID: "S1",
		Items:   []types.OrderItem{item("1227", "ビダソープセット", "4300", "2")},
	}}

	rows := enc.Rows(orders, settings())

	require.Len(t, rows, 3)
	assert.Equal(t, "2", rows[2][colQuantity])
	assert.Equal(t, "-100", rows[2][colPrice])
	assert.Equal(t, "-200", rows[2][colAmount])
}

func TestRowsFullOrder(t *testing.T) {
	enc := NewSalesEncoder(config.DefaultTables())
	orders := []types.Order{{
		SalesID:        "S1",
		CustomerName:   "",
		Prefecture:     "北海道",
		PaymentMethod:  "代引き",
		CustomerCode:   "000036",
		ShippingFee:    dec("1100"),
		DiscountName:   "",
		DiscountAmount: dec("500"),
		Items: []types.OrderItem{
			item("1364", "Ag・uA スプレー", "1650", "2"),
			item("9999", "その他商品", "8000", "1"),
		},
	}}

	rows := enc.Rows(orders, settings())
	require.Len(t, rows, 5)

	for i, row := range rows {
		assert.Len(t, row, SalesFieldCount)
		assert.Equal(t, "20251202", row[colDate])
		assert.Equal(t, "0007", row[colDocNo])
		assert.Equal(t, "000036", row[colCustomer])
		assert.Equal(t, "001", row[colDelivery])
		assert.Equal(t, "11", row[colOperator])
		assert.Equal(t, DefaultBuyerName, row[colBuyer])
		assert.Equal(t, row[colPrice], row[colPrice2])
		assert.Equal(t, decimalString(i+1), row[colLine])
	}

	// Product name override.
	assert.Equal(t, "Ag・uA(ｱｸﾞｱ)100mlｽﾌﾟﾚｰﾎﾞﾄﾙ", rows[0][colName])
	assert.Equal(t, "3300", rows[0][colAmount])
	assert.Equal(t, "その他商品", rows[1][colName])

	// Shipping row uses the prefecture code.
	assert.Equal(t, "0013", rows[2][colProduct])
	assert.Equal(t, "送料", rows[2][colName])
	assert.Equal(t, "1100", rows[2][colAmount])

	// COD fee on 3300 + 8000 + 1100.
	assert.Equal(t, "0002", rows[3][colProduct])
	assert.Equal(t, "440", rows[3][colAmount])

	assert.Equal(t, "0110", rows[4][colProduct])
	assert.Equal(t, "クーポン割引", rows[4][colName])
	assert.Equal(t, "-500", rows[4][colPrice])
	assert.Equal(t, "-500", rows[4][colAmount])
}

func decimalString(n int) string {
	return decimal.NewFromInt(int64(n)).String()
}

func TestRowsFixedColumns(t *testing.T) {
	enc := NewSalesEncoder(config.DefaultTables())
	orders := []types.Order{{SalesID: "S1", CustomerName: "A", Items: []types.OrderItem{item("9000", "x", "100", "1")}}}

	row := enc.Rows(orders, settings())[0]

	fixed := map[int]string{0: "1", 1: "1", 2: "0", 5: "24", 6: "2", 7: "5", 8: "1", 9: "1",
		14: "1", 16: "", 18: "13", 20: "0", 21: "0", 28: "0", 29: "0", 31: "2", 32: "2"}
	for idx, want := range fixed {
		assert.Equal(t, want, row[idx], "column %d", idx+1)
	}
	for idx := 40; idx < SalesFieldCount; idx++ {
		assert.Empty(t, row[idx], "column %d", idx+1)
	}
	assert.Equal(t, "003", row[colDelivery])
}

func TestRowsDocumentNumbering(t *testing.T) {
	enc := NewSalesEncoder(config.DefaultTables())
	orders := []types.Order{
		{SalesID: "S1", Items: []types.OrderItem{item("9000", "a", "100", "1"), item("9001", "b", "100", "1")}},
		{SalesID: "S2", Items: []types.OrderItem{item("9000", "a", "100", "1")}},
	}

	rows := enc.Rows(orders, Settings{DocumentNumberStart: "abc", Date: fixedDate})

	require.Len(t, rows, 3)
	assert.Equal(t, "0001", rows[0][colDocNo])
	assert.Equal(t, "0001", rows[1][colDocNo])
	assert.Equal(t, "0002", rows[2][colDocNo])
	assert.Equal(t, "1", rows[2][colLine])
	assert.Equal(t, DefaultOperatorCode, rows[0][colOperator])
}

func TestRowsUnknownPrefectureUsesDefaultShipping(t *testing.T) {
	enc := NewSalesEncoder(config.DefaultTables())
	orders := []types.Order{{
		SalesID:     "S1",
		Prefecture:  "",
		ShippingFee: dec("800"),
		Items:       []types.OrderItem{item("9000", "a", "100", "1")},
	}}

	rows := enc.Rows(orders, settings())

	require.Len(t, rows, 2)
	assert.Equal(t, "0010", rows[1][colProduct])
}

func TestEncodeSalesIsDeterministic(t *testing.T) {
	enc := NewSalesEncoder(config.DefaultTables())
	orders := []types.Order{
		{SalesID: "S1", CustomerName: "A", Items: []types.OrderItem{item("1229", "set", "3220", "1")}},
		{SalesID: "S2", CustomerName: "B", PaymentMethod: "代引き", Items: []types.OrderItem{item("9000", "a", "100", "3")}},
	}

	first := enc.EncodeSales(orders, settings())
	second := enc.EncodeSales(orders, settings())

	assert.Equal(t, first, second)
	assert.False(t, strings.HasSuffix(first, LineBreak))

	lines := strings.Split(first, LineBreak)
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Len(t, strings.Split(line, FieldSeparator), SalesFieldCount)
	}
}

func TestEncodeSalesEmpty(t *testing.T) {
	enc := NewSalesEncoder(config.DefaultTables())
	assert.Equal(t, "", enc.EncodeSales(nil, settings()))
}

func TestCODFeeTiers(t *testing.T) {
	cases := map[string]string{
		"0":      "330",
		"9999":   "330",
		"10000":  "440",
		"29999":  "440",
		"30000":  "660",
		"99999":  "660",
		"100000": "1100",
		"500000": "1100",
	}
	for total, fee := range cases {
		assert.Equal(t, fee, CODFee(dec(total)).String(), "total %s", total)
	}
}

func TestToHalfWidthKatakana(t *testing.T) {
	assert.Equal(t, "ｶﾞ", ToHalfWidthKatakana("ガ"))
	assert.Equal(t, "ﾔﾏﾀﾞ ﾀﾛｳ", ToHalfWidthKatakana("ヤマダ　タロウ"))
	assert.Equal(t, "ﾊﾟｰｸ･ﾋﾞﾙ", ToHalfWidthKatakana("パーク・ビル"))
	assert.Equal(t, "Yamada 山田", ToHalfWidthKatakana("Yamada 山田"))
	assert.Equal(t, "", ToHalfWidthKatakana(""))
}

func TestSplitAddress(t *testing.T) {
	cases := []struct {
		prefecture, address string
		line1, line2        string
	}{
		{"東京都", "渋谷区1-2-3 マンション101", "東京都渋谷区1-2-3", "マンション101"},
		{"大阪府", "大阪市北区梅田２丁目４－９　ブリーゼタワー", "大阪府大阪市北区梅田２丁目４－９", "ブリーゼタワー"},
		{"京都府", "京都市中京区", "京都府京都市中京区", ""},
		{"", "", "", ""},
	}
	for _, tc := range cases {
		line1, line2 := SplitAddress(tc.prefecture, tc.address)
		assert.Equal(t, tc.line1, line1, tc.address)
		assert.Equal(t, tc.line2, line2, tc.address)
	}
}

func TestSplitAddressLastNumberWins(t *testing.T) {
	line1, line2 := SplitAddress("東京都", "港区1-1 ビル2 5階")

	assert.Equal(t, "東京都港区1-1 ビル2", line1)
	assert.Equal(t, "5階", line2)
}

func TestRegistrationRow(t *testing.T) {
	row := RegistrationRow(types.NewCustomerCandidate{
		AssignedCode: "000036",
		CustomerName: "山田太郎",
		Furigana:     "ヤマダタロウ",
		Zip:          "150-0001",
		Prefecture:   "東京都",
		Address:      "渋谷区1-2-3 マンション101",
		Email:        "taro@example.com",
		Phone:        "03-1234-5678",
	})

	require.Len(t, row, RegistrationFieldCount)
	assert.Equal(t, "000036", row[0])
	assert.Equal(t, "山田太郎", row[1])
	assert.Equal(t, "ﾔﾏﾀﾞﾀﾛｳ", row[2])
	assert.Equal(t, "山田太郎", row[3])
	assert.Equal(t, "1500001", row[4])
	assert.Equal(t, "東京都渋谷区1-2-3", row[5])
	assert.Equal(t, "マンション101", row[6])
	assert.Equal(t, "様", row[10])
	assert.Equal(t, "03-1234-5678", row[11])
	assert.Equal(t, "334401", row[19])
	assert.Equal(t, "11", row[36])
	assert.Equal(t, "taro@example.com", row[38])
	assert.Equal(t, "1", row[42])
	assert.Empty(t, row[47])
}

func TestEncodeRegistrationsSkipsRegistered(t *testing.T) {
	text := EncodeRegistrations([]types.NewCustomerCandidate{
		{AssignedCode: "000036", CustomerName: "A"},
		{AssignedCode: "000037", CustomerName: "B", Registered: true},
		{AssignedCode: "000038", CustomerName: "C"},
	})

	lines := strings.Split(text, LineBreak)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "000036\tA\t"))
	assert.True(t, strings.HasPrefix(lines[1], "000038\tC\t"))
	assert.Len(t, strings.Split(lines[1], FieldSeparator), RegistrationFieldCount)
}
