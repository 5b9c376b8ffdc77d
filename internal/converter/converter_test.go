package converter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/config"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/encoder"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/storage"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/xlsxreport"
)

const ordersCSV = `売上ID,受注日,購入者 顧客ID,購入者 名前,購入者 郵便番号,購入者 都道府県,購入者 住所,購入者 メールアドレス,購入者 電話番号,購入者 携帯番号,決済方法,送料合計,割引名称,割引金額,購入商品 型番,購入商品 商品名,購入商品 販売価格(消費税込),購入商品 販売個数,購入商品 小計,配送先ID
S1,2025/12/01,C1,山田太郎,150-0001,東京都,渋谷区1-2-3,taro@example.com,03-1111-2222,,銀行振込,800,,0,9000,テスト商品,1000,2,2000,D1
S2,2025/12/01,C2,鈴木一郎,530-0001,大阪府,大阪市北区1-1 ビル2F,ichiro@example.com,06-1111-2222,,代引き,800,,0,1229,ビダソープ詰替セット,3220,1,3220,D2
`

const ledgerCSV = `得意先台帳
弥生販売
出力日 2025/12/01
範囲 全件
コード,名称,フリガナ,TEL,メールアドレス
000001,山田太郎,ヤマダタロウ,03-1111-2222,taro@example.com
000035,佐藤花子,サトウハナコ,,
`

var runDate = time.Date(2025, 12, 2, 10, 0, 0, 0, time.Local)

type fixture struct {
	conv       *Converter
	store      *storage.Store
	dir        string
	ordersPath string
	ledgerPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	ordersPath := filepath.Join(dir, "sales_all.csv")
	require.NoError(t, os.WriteFile(ordersPath, []byte(ordersCSV), 0644))
	ledgerPath := filepath.Join(dir, "customers.csv")
	require.NoError(t, os.WriteFile(ledgerPath, []byte(ledgerCSV), 0644))

	cfg := &config.MainConfig{
		OutputDir:           filepath.Join(dir, "output"),
		InputArchiveDir:     filepath.Join(dir, "input_archive"),
		OrderEncoding:       "utf-8",
		LedgerEncoding:      "utf-8",
		SalesFileFormat:     "ya_sales_{date}.txt",
		CustomersFileFormat: "ya_n_cstmers_{date}.txt",
		ReviewFileFormat:    "review_{date}.xlsx",
		OperatorCode:        "11",
		DefaultBuyerName:    "テネモスショップ",
	}
	store := storage.NewStore(storage.NewFileBackend(filepath.Join(dir, "data", "ledger.json")))

	conv := New(cfg, config.DefaultTables(), store, zerolog.Nop())
	conv.now = func() time.Time { return runDate }

	return &fixture{conv: conv, store: store, dir: dir, ordersPath: ordersPath, ledgerPath: ledgerPath}
}

func readShiftJIS(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	require.NoError(t, err)
	return string(text)
}

func TestMatchWritesReviewAndRegistration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.conv.Match(ctx, Options{OrdersPath: f.ordersPath, LedgerPath: f.ledgerPath})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Match.ExistingCount)
	assert.Equal(t, 1, result.Match.NewCount)
	assert.Equal(t, 2, result.LedgerSize)
	require.Len(t, result.Match.Candidates, 1)
	assert.Equal(t, "000036", result.Match.Candidates[0].AssignedCode)

	assert.Equal(t, filepath.Join(f.dir, "output", "review_20251202.xlsx"), result.ReviewPath)
	assert.FileExists(t, result.ReviewPath)

	registration := readShiftJIS(t, result.RegistrationPath)
	assert.True(t, strings.HasPrefix(registration, "000036\t鈴木一郎\t"))
	assert.Contains(t, registration, "大阪府大阪市北区1-1\tビル2F")

	// The ledger CSV replaced the stored snapshot.
	stored, err := f.store.Customers(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestMatchDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.conv.Match(ctx, Options{OrdersPath: f.ordersPath, LedgerPath: f.ledgerPath, DryRun: true})
	require.NoError(t, err)

	assert.Empty(t, result.ReviewPath)
	assert.NoDirExists(t, filepath.Join(f.dir, "output"))

	_, err = f.store.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProcessRequiresRegistration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.conv.Process(ctx, Options{OrdersPath: f.ordersPath, LedgerPath: f.ledgerPath, DocumentNumberStart: "10"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register the new customers first")
	assert.Contains(t, err.Error(), "candidate 000036")
}

func TestProcessValidatesSettings(t *testing.T) {
	f := newFixture(t)

	_, err := f.conv.Process(context.Background(), Options{OrdersPath: f.ordersPath})
	assert.ErrorContains(t, err, "DocumentNumberStart: is required")
}

func TestFullWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	matched, err := f.conv.Match(ctx, Options{OrdersPath: f.ordersPath, LedgerPath: f.ledgerPath})
	require.NoError(t, err)

	// Nothing ticked yet.
	_, err = f.conv.Register(ctx, matched.ReviewPath, false)
	assert.ErrorIs(t, err, ErrNothingRegistered)

	book, err := excelize.OpenFile(matched.ReviewPath)
	require.NoError(t, err)
	require.NoError(t, book.SetCellValue(xlsxreport.SheetCandidates, "I2", xlsxreport.RegisteredMark))
	require.NoError(t, book.Save())
	require.NoError(t, book.Close())

	added, err := f.conv.Register(ctx, matched.ReviewPath, false)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	// Registering the same workbook twice adds nothing.
	added, err = f.conv.Register(ctx, matched.ReviewPath, false)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	result, err := f.conv.Process(ctx, Options{OrdersPath: f.ordersPath, DocumentNumberStart: "10", Date: runDate})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Match.ExistingCount)
	assert.Empty(t, result.Match.Candidates)
	assert.Equal(t, 6, result.SalesRows)
	assert.Empty(t, result.RegistrationPath)
	assert.FileExists(t, result.SummaryPath)

	sales := readShiftJIS(t, result.SalesPath)
	lines := strings.Split(sales, encoder.LineBreak)
	require.Len(t, lines, 6)

	first := strings.Split(lines[0], encoder.FieldSeparator)
	assert.Equal(t, "20251202", first[3])
	assert.Equal(t, "0010", first[4])
	assert.Equal(t, "000001", first[10])
	assert.Equal(t, "003", first[11])

	cod := strings.Split(lines[5], encoder.FieldSeparator)
	assert.Equal(t, "0011", cod[4])
	assert.Equal(t, "000036", cod[10])
	assert.Equal(t, "001", cod[11])
	assert.Equal(t, "0002", cod[15])
	assert.Equal(t, "330", cod[25])

	stored, err := f.store.Customers(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, types.Customer{CustomerCode: "000036", Name: "鈴木一郎", Phone: "06-1111-2222", Email: "ichiro@example.com"}, stored[2])
}

func TestProcessAllowUnregistered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.conv.Process(ctx, Options{
		OrdersPath:          f.ordersPath,
		LedgerPath:          f.ledgerPath,
		DocumentNumberStart: "1",
		AllowUnregistered:   true,
		SelectSalesIDs:      []string{"S2"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SelectedOrders)
	assert.Equal(t, 4, result.SalesRows)
	require.Len(t, result.Warnings, 1)
	assert.FileExists(t, result.RegistrationPath)
}

func TestProcessArchivesInput(t *testing.T) {
	f := newFixture(t)
	f.conv.files.ArchiveOnSuccess = true

	result, err := f.conv.Process(context.Background(), Options{
		OrdersPath:          f.ordersPath,
		LedgerPath:          f.ledgerPath,
		DocumentNumberStart: "1",
		AllowUnregistered:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.dir, "input_archive", "sales_all.csv"), result.ArchivePath)
	assert.NoFileExists(t, f.ordersPath)
}

func TestProcessArchivesInputByDate(t *testing.T) {
	f := newFixture(t)
	cfg := *f.conv.cfg
	cfg.ArchiveInput = true
	cfg.ArchiveByDate = true
	conv := New(&cfg, config.DefaultTables(), f.store, zerolog.Nop())
	conv.now = func() time.Time { return runDate }

	result, err := conv.Process(context.Background(), Options{
		OrdersPath:          f.ordersPath,
		LedgerPath:          f.ledgerPath,
		DocumentNumberStart: "1",
		AllowUnregistered:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(f.dir, "input_archive", "2025", "12", "02", "sales_all.csv"), result.ArchivePath)
	assert.FileExists(t, result.ArchivePath)
}

func TestSelectOrders(t *testing.T) {
	orders := []types.Order{{SalesID: "S1"}, {SalesID: "S2"}, {SalesID: "S3"}}

	all, err := selectOrders(orders, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	picked, err := selectOrders(orders, []string{"S3", "S1"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "S1", picked[0].SalesID)
	assert.Equal(t, "S3", picked[1].SalesID)

	_, err = selectOrders(orders, []string{"S1", "S9"})
	assert.ErrorContains(t, err, "S9")
}
