package csvparser

// =============================================================================
// ORDER EXPORT LAYOUTS
// =============================================================================
//
// ColorMe Shop produces two order exports:
//
//   | Layout            | File             | Column naming                      |
//   |-------------------|------------------|------------------------------------|
//   | LayoutSalesAll    | sales_all.csv    | "購入者 名前", "購入商品 商品名" ...  |
//   | LayoutSalesDetail | sales_detail.csv | "名前", "商品名" ... (legacy)        |
//
// Both carry the sales id in "売上ID". The legacy export has no address,
// shipping or discount columns; those fields parse as empty / zero.

// SchemaLayout names the column set of one order export layout.
type SchemaLayout struct {
	// Name identifies the layout in logs and errors.
	Name string

	SalesID       string
	DeliveryID    string
	OrderDate     string
	CustomerID    string
	CustomerName  string
	Zip           string
	Prefecture    string
	Address       string
	Email         string
	Phone         string
	Mobile        string
	PaymentMethod string
	ShippingFee   string
	DiscountName  string
	DiscountAmt   string
	ProductCode   string
	ProductName   string
	UnitPrice     string
	Quantity      string
	Subtotal      string
}

// LayoutSalesAll is the detailed "all sales" export.
var LayoutSalesAll = SchemaLayout{
	Name:          "sales_all",
	SalesID:       "売上ID",
	DeliveryID:    "配送先ID",
	OrderDate:     "受注日",
	CustomerID:    "購入者 顧客ID",
	CustomerName:  "購入者 名前",
	Zip:           "購入者 郵便番号",
	Prefecture:    "購入者 都道府県",
	Address:       "購入者 住所",
	Email:         "購入者 メールアドレス",
	Phone:         "購入者 電話番号",
	Mobile:        "購入者 携帯番号",
	PaymentMethod: "決済方法",
	ShippingFee:   "送料合計",
	DiscountName:  "割引名称",
	DiscountAmt:   "割引金額",
	ProductCode:   "購入商品 型番",
	ProductName:   "購入商品 商品名",
	UnitPrice:     "購入商品 販売価格(消費税込)",
	Quantity:      "購入商品 販売個数",
	Subtotal:      "購入商品 小計",
}

// LayoutSalesDetail is the legacy one-row-per-detail export.
var LayoutSalesDetail = SchemaLayout{
	Name:          "sales_detail",
	SalesID:       "売上ID",
	DeliveryID:    "配送先ID",
	OrderDate:     "受注日",
	CustomerID:    "顧客ID",
	CustomerName:  "名前",
	Email:         "メールアドレス",
	Phone:         "電話番号",
	Mobile:        "携帯番号",
	PaymentMethod: "決済方法",
	ProductCode:   "型番",
	ProductName:   "商品名",
	UnitPrice:     "販売価格(消費税込)",
	Quantity:      "販売個数",
	Subtotal:      "小計",
}

// columnIndex holds the resolved positions of a layout's columns in one
// header row. Missing columns resolve to -1.
type columnIndex struct {
	salesID       int
	deliveryID    int
	orderDate     int
	customerID    int
	customerName  int
	zip           int
	prefecture    int
	address       int
	email         int
	phone         int
	mobile        int
	paymentMethod int
	shippingFee   int
	discountName  int
	discountAmt   int
	productCode   int
	productName   int
	unitPrice     int
	quantity      int
	subtotal      int
}

// resolve looks every column of the layout up by name.
func (l SchemaLayout) resolve(header []string) columnIndex {
	return columnIndex{
		salesID:       indexOf(header, l.SalesID),
		deliveryID:    indexOf(header, l.DeliveryID),
		orderDate:     indexOf(header, l.OrderDate),
		customerID:    indexOf(header, l.CustomerID),
		customerName:  indexOf(header, l.CustomerName),
		zip:           indexOf(header, l.Zip),
		prefecture:    indexOf(header, l.Prefecture),
		address:       indexOf(header, l.Address),
		email:         indexOf(header, l.Email),
		phone:         indexOf(header, l.Phone),
		mobile:        indexOf(header, l.Mobile),
		paymentMethod: indexOf(header, l.PaymentMethod),
		shippingFee:   indexOf(header, l.ShippingFee),
		discountName:  indexOf(header, l.DiscountName),
		discountAmt:   indexOf(header, l.DiscountAmt),
		productCode:   indexOf(header, l.ProductCode),
		productName:   indexOf(header, l.ProductName),
		unitPrice:     indexOf(header, l.UnitPrice),
		quantity:      indexOf(header, l.Quantity),
		subtotal:      indexOf(header, l.Subtotal),
	}
}

// complete reports whether the required columns were found.
func (c columnIndex) complete() bool {
	return c.salesID != -1 && c.productName != -1
}

// DetectLayout picks the layout matching the header row. The primary
// layout wins when it provides the sales id and product name columns;
// otherwise the legacy layout is tried.
func DetectLayout(header []string) (SchemaLayout, error) {
	for _, layout := range []SchemaLayout{LayoutSalesAll, LayoutSalesDetail} {
		if layout.resolve(header).complete() {
			return layout, nil
		}
	}
	return SchemaLayout{}, &FormatError{
		Source:  "orders",
		Message: "required columns (売上ID, 商品名) not found in header",
	}
}

// indexOf returns the position of name in header, or -1. An empty name
// (column absent from the layout) is always -1.
func indexOf(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
