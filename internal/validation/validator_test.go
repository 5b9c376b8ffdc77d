package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
)

func ordersFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte("売上ID\n"), 0644))
	return path
}

func TestValidateSettingsValid(t *testing.T) {
	result := ValidateSettings(RunSettings{
		OrdersPath:          ordersFile(t),
		DocumentNumberStart: "120",
		OperatorCode:        "11",
	})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.Err())
}

func TestValidateSettingsMissingDocumentNumber(t *testing.T) {
	result := ValidateSettings(RunSettings{
		OrdersPath:   ordersFile(t),
		OperatorCode: "11",
	})

	require.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "DocumentNumberStart", result.Errors[0].Field)
	assert.Equal(t, "required", result.Errors[0].Rule)
	assert.ErrorContains(t, result.Err(), "DocumentNumberStart: is required")
}

func TestValidateSettingsRejectsBadValues(t *testing.T) {
	result := ValidateSettings(RunSettings{
		OrdersPath:          filepath.Join(t.TempDir(), "missing.csv"),
		DocumentNumberStart: "12a",
		OperatorCode:        "-1",
	})

	assert.False(t, result.IsValid)
	assert.Equal(t, 3, result.ErrorCount)

	rules := map[string]string{}
	for _, e := range result.Errors {
		rules[e.Field] = e.Rule
	}
	assert.Equal(t, map[string]string{
		"OrdersPath":          "file",
		"DocumentNumberStart": "number",
		"OperatorCode":        "number",
	}, rules)
}

func TestValidateCandidates(t *testing.T) {
	candidates := []types.NewCustomerCandidate{
		{AssignedCode: "000036", CustomerName: "A", Registered: true},
		{AssignedCode: "000037", CustomerName: "B"},
	}

	strict := ValidateCandidates(candidates, false)
	assert.False(t, strict.IsValid)
	assert.Equal(t, 1, strict.ErrorCount)
	assert.Equal(t, "candidate 000037", strict.Errors[0].Field)

	lenient := ValidateCandidates(candidates, true)
	assert.True(t, lenient.IsValid)
	assert.Equal(t, 1, lenient.WarningCount)
	assert.NoError(t, lenient.Err())
}

func TestValidateLedgerDuplicates(t *testing.T) {
	result := ValidateLedger([]types.Customer{
		{CustomerCode: "000001"},
		{CustomerCode: "000002"},
		{CustomerCode: "000001"},
	})

	assert.True(t, result.IsValid)
	assert.Equal(t, 1, result.WarningCount)
	assert.Equal(t, "000001", result.Errors[0].Value)
}
