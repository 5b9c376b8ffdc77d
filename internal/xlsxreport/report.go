// =============================================================================
// ColorMe to Yayoi Converter - Review Workbook
// =============================================================================
//
// This module writes the review workbook produced by the match step and
// reads back the registration marks the user enters in it.
//
// WORKFLOW:
//   1. `match` writes the workbook: a summary, every order with its match
//      result and customer code, and the new-customer candidates.
//   2. The user registers the candidates in Yayoi (from the registration
//      TXT) and marks each one in the 登録済 column.
//   3. `register` / `process` read the marks back with ReadCandidates.
//
// WORKBOOK STRUCTURE:
//
//   Sheet "集計"     | 項目 | 値 |
//   Sheet "受注一覧" | 売上ID | 注文日 | 購入者名 | ... | 照合方法 | 得意先コード |
//   Sheet "新規顧客" | 得意先コード | 名称 | フリガナ | ... | 登録済 |
//
// =============================================================================

package xlsxreport

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
)

// Sheet names.
const (
	SheetSummary    = "集計"
	SheetOrders     = "受注一覧"
	SheetCandidates = "新規顧客"
)

// RegisteredMark is written for registered candidates and offered in the
// drop-down of the 登録済 column.
const RegisteredMark = "済"

// =============================================================================
// REPORT STRUCTURE
// =============================================================================

// Summary holds the counts shown on the summary sheet.
type Summary struct {
	RunID         string
	GeneratedAt   time.Time
	OrdersFile    string
	OrderCount    int
	ExistingCount int
	NewCount      int
	LedgerSize    int
	MaxCode       int
	NextCode      string
}

// Report is the content of one review workbook.
type Report struct {
	Summary    Summary
	Orders     []types.Order
	Candidates []types.NewCustomerCandidate
}

// =============================================================================
// CANDIDATE SHEET LAYOUT
// =============================================================================

// candidateColumns defines the column positions of the candidate sheet.
// All column indices are 0-based (A=0, B=1, ...).
type candidateColumns struct {
	CodeColumn       int
	NameColumn       int
	FuriganaColumn   int
	ZipColumn        int
	PrefectureColumn int
	AddressColumn    int
	EmailColumn      int
	PhoneColumn      int
	RegisteredColumn int

	// DataStartRow is the row number where data begins (0-based).
	// Default: 1 (Row 2)
	DataStartRow int
}

// defaultCandidateColumns returns the layout written by Write.
func defaultCandidateColumns() candidateColumns {
	return candidateColumns{
		CodeColumn:       0, // Column A
		NameColumn:       1, // Column B
		FuriganaColumn:   2, // Column C
		ZipColumn:        3, // Column D
		PrefectureColumn: 4, // Column E
		AddressColumn:    5, // Column F
		EmailColumn:      6, // Column G
		PhoneColumn:      7, // Column H
		RegisteredColumn: 8, // Column I
		DataStartRow:     1, // Row 2
	}
}

var (
	summaryHeader   = []interface{}{"項目", "値"}
	ordersHeader    = []interface{}{"売上ID", "注文日", "購入者名", "メールアドレス", "電話番号", "決済方法", "商品合計", "送料", "割引", "照合方法", "得意先コード", "照合先名称"}
	candidateHeader = []interface{}{"得意先コード", "名称", "フリガナ", "郵便番号", "都道府県", "住所", "メールアドレス", "電話番号", "登録済"}
)

// =============================================================================
// WRITING
// =============================================================================

// Write creates the review workbook at path.
//
// PARAMETERS:
//   - path: The .xlsx file to create.
//   - report: The match results to show.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func Write(path string, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	for _, name := range []string{SheetOrders, SheetCandidates} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, report.Summary, headerStyle); err != nil {
		return err
	}
	if err := writeOrders(f, report.Orders, headerStyle); err != nil {
		return err
	}
	if err := writeCandidates(f, report.Candidates, headerStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save review workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, s Summary, headerStyle int) error {
	rows := [][]interface{}{
		summaryHeader,
		{"実行ID", s.RunID},
		{"作成日時", s.GeneratedAt.Format("2006/01/02 15:04")},
		{"受注ファイル", s.OrdersFile},
		{"受注件数", s.OrderCount},
		{"既存顧客", s.ExistingCount},
		{"新規顧客", s.NewCount},
		{"顧客台帳件数", s.LedgerSize},
		{"最大得意先コード", s.MaxCode},
		{"次の得意先コード", s.NextCode},
	}
	if err := writeRows(f, SheetSummary, rows); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetSummary, "A", "B", 24); err != nil {
		return err
	}
	return f.SetRowStyle(SheetSummary, 1, 1, headerStyle)
}

func writeOrders(f *excelize.File, orders []types.Order, headerStyle int) error {
	rows := make([][]interface{}, 0, len(orders)+1)
	rows = append(rows, ordersHeader)

	for i := range orders {
		o := &orders[i]
		matchedName := ""
		if o.MatchedCustomer != nil {
			matchedName = o.MatchedCustomer.Name
		}
		rows = append(rows, []interface{}{
			o.SalesID,
			o.OrderDate,
			o.CustomerName,
			o.Email,
			o.ContactPhone(),
			o.PaymentMethod,
			o.ItemsTotal().InexactFloat64(),
			o.ShippingFee.InexactFloat64(),
			o.DiscountAmount.InexactFloat64(),
			o.MatchMethod.Label(),
			o.CustomerCode,
			matchedName,
		})
	}

	if err := writeRows(f, SheetOrders, rows); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetOrders, "A", "L", 16); err != nil {
		return err
	}
	return f.SetRowStyle(SheetOrders, 1, 1, headerStyle)
}

func writeCandidates(f *excelize.File, candidates []types.NewCustomerCandidate, headerStyle int) error {
	rows := make([][]interface{}, 0, len(candidates)+1)
	rows = append(rows, candidateHeader)

	for _, c := range candidates {
		mark := ""
		if c.Registered {
			mark = RegisteredMark
		}
		rows = append(rows, []interface{}{
			c.AssignedCode,
			c.CustomerName,
			c.Furigana,
			c.Zip,
			c.Prefecture,
			c.Address,
			c.Email,
			c.Phone,
			mark,
		})
	}

	if err := writeRows(f, SheetCandidates, rows); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetCandidates, "A", "I", 18); err != nil {
		return err
	}
	if err := f.SetRowStyle(SheetCandidates, 1, 1, headerStyle); err != nil {
		return err
	}

	if len(candidates) == 0 {
		return nil
	}

	// Drop-down for the registration mark.
	col, _ := excelize.ColumnNumberToName(defaultCandidateColumns().RegisteredColumn + 1)
	dv := excelize.NewDataValidation(true)
	dv.Sqref = fmt.Sprintf("%s2:%s%d", col, col, len(candidates)+1)
	if err := dv.SetDropList([]string{RegisteredMark}); err != nil {
		return err
	}
	return f.AddDataValidation(SheetCandidates, dv)
}

// writeRows writes rows starting at A1.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// =============================================================================
// READING
// =============================================================================

// ReadCandidates reads the candidate sheet of a review workbook, including
// the registration marks entered by the user.
//
// PARAMETERS:
//   - path: The review workbook.
//
// RETURNS:
//   - The candidates in sheet order. Rows without a code are skipped.
//   - An error if the workbook or the candidate sheet cannot be read.
func ReadCandidates(path string) ([]types.NewCustomerCandidate, error) {
	columns := defaultCandidateColumns()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open review workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(SheetCandidates); err != nil || idx < 0 {
		return nil, fmt.Errorf("review workbook has no %s sheet", SheetCandidates)
	}

	rows, err := f.GetRows(SheetCandidates)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var candidates []types.NewCustomerCandidate
	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]

		getCell := func(index int) string {
			if index < len(row) {
				return strings.TrimSpace(row[index])
			}
			return ""
		}

		code := getCell(columns.CodeColumn)
		if code == "" {
			continue
		}

		candidates = append(candidates, types.NewCustomerCandidate{
			AssignedCode: code,
			CustomerName: getCell(columns.NameColumn),
			Furigana:     getCell(columns.FuriganaColumn),
			Zip:          getCell(columns.ZipColumn),
			Prefecture:   getCell(columns.PrefectureColumn),
			Address:      getCell(columns.AddressColumn),
			Email:        getCell(columns.EmailColumn),
			Phone:        getCell(columns.PhoneColumn),
			Registered:   isRegisteredMark(getCell(columns.RegisteredColumn)),
		})
	}

	return candidates, nil
}

// isRegisteredMark accepts the marks people commonly type into a checkbox
// column.
func isRegisteredMark(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case RegisteredMark, "済み", "○", "〇", "✓", "✔", "x", "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}
