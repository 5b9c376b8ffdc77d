package xlsxreport

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
)

func sampleReport() Report {
	matched := &types.Customer{CustomerCode: "000010", Name: "山田太郎"}
	return Report{
		Summary: Summary{
			RunID:         "run-1",
			GeneratedAt:   time.Date(2025, 12, 2, 9, 0, 0, 0, time.Local),
			OrdersFile:    "orders.csv",
			OrderCount:    2,
			ExistingCount: 1,
			NewCount:      1,
			LedgerSize:    35,
			MaxCode:       35,
			NextCode:      "000036",
		},
		Orders: []types.Order{
			{
				SalesID:         "S1",
				CustomerName:    "山田太郎",
				MatchedCustomer: matched,
				MatchMethod:     types.MatchByEmail,
				CustomerCode:    "000010",
				ShippingFee:     decimal.NewFromInt(800),
				Items:           []types.OrderItem{{Subtotal: decimal.NewFromInt(3300)}},
			},
			{SalesID: "S2", CustomerName: "佐藤花子", CustomerCode: "000036"},
		},
		Candidates: []types.NewCustomerCandidate{
			{AssignedCode: "000036", CustomerName: "佐藤花子", Furigana: "サトウハナコ", Zip: "150-0001", Prefecture: "東京都", Address: "渋谷区1-2-3", Email: "hanako@example.com", Phone: "090-0000-0000"},
			{AssignedCode: "000037", CustomerName: "鈴木一郎", Registered: true},
		},
	}
}

func TestWriteAndReadCandidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.xlsx")
	require.NoError(t, Write(path, sampleReport()))

	candidates, err := ReadCandidates(path)
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, sampleReport().Candidates[0], candidates[0])
	assert.Equal(t, "000037", candidates[1].AssignedCode)
	assert.True(t, candidates[1].Registered)
}

func TestWriteOrdersSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.xlsx")
	require.NoError(t, Write(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetOrders, SheetCandidates}, f.GetSheetList())

	rows, err := f.GetRows(SheetOrders)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "売上ID", rows[0][0])
	assert.Equal(t, "S1", rows[1][0])
	assert.Equal(t, "3300", rows[1][6])
	assert.Equal(t, "メールアドレス一致", rows[1][9])
	assert.Equal(t, "000010", rows[1][10])
	assert.Equal(t, "山田太郎", rows[1][11])
	assert.Equal(t, "新規", rows[2][9])

	next, err := f.GetCellValue(SheetSummary, "B10")
	require.NoError(t, err)
	assert.Equal(t, "000036", next)
}

func TestReadCandidatesUserMarks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.xlsx")
	require.NoError(t, Write(path, sampleReport()))

	// Simulate the user ticking the first candidate and clearing the second.
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(SheetCandidates, "I2", "○"))
	require.NoError(t, f.SetCellValue(SheetCandidates, "I3", ""))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	candidates, err := ReadCandidates(path)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.True(t, candidates[0].Registered)
	assert.False(t, candidates[1].Registered)
}

func TestReadCandidatesMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := ReadCandidates(path)
	assert.ErrorContains(t, err, "has no 新規顧客 sheet")
}

func TestIsRegisteredMark(t *testing.T) {
	for _, v := range []string{"済", "○", "✓", "Yes", "TRUE", "1", " x "} {
		assert.True(t, isRegisteredMark(v), v)
	}
	for _, v := range []string{"", "no", "0", "未"} {
		assert.False(t, isRegisteredMark(v), v)
	}
}
