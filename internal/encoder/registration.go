package encoder

import (
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/types"
)

// RegistrationFieldCount is the number of columns in a customer
// registration row (得意先台帳 import).
const RegistrationFieldCount = 48

// EncodeRegistrations renders the import text for candidates that are not
// yet registered in Yayoi. Registered candidates are skipped.
func EncodeRegistrations(candidates []types.NewCustomerCandidate) string {
	var rows [][]string
	for _, c := range candidates {
		if c.Registered {
			continue
		}
		rows = append(rows, RegistrationRow(c))
	}
	return JoinRows(rows)
}

// RegistrationRow lays out the 48 columns for one candidate. Columns not
// set here stay blank.
func RegistrationRow(c types.NewCustomerCandidate) []string {
	line1, line2 := SplitAddress(c.Prefecture, c.Address)

	row := make([]string, RegistrationFieldCount)
	row[0] = c.AssignedCode
	row[1] = c.CustomerName
	row[2] = ToHalfWidthKatakana(c.Furigana)
	row[3] = c.CustomerName // 略称
	row[4] = zipDigits(c.Zip)
	row[5] = line1
	row[6] = line2
	row[10] = "様"
	row[11] = c.Phone
	row[19] = "334401" // 指定売上伝票
	row[22] = "2"
	row[23] = "1"
	row[27] = "5"
	row[29] = "1"
	row[31] = "1"
	row[34] = "1"
	row[35] = "1"
	row[36] = "11" // 担当者コード
	row[38] = c.Email
	row[40] = "1"
	row[42] = "1"

	return row
}
