package csvparser

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Supported source encodings.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw export bytes to text. Both exports are read as UTF-8
// unless order_encoding or ledger_encoding selects shift_jis. A leading
// UTF-8 byte order mark is dropped so that the first header name matches.
func Decode(raw []byte, encoding string) (string, error) {
	switch normalizeEncoding(encoding) {
	case EncodingUTF8:
		return string(bytes.TrimPrefix(raw, utf8BOM)), nil
	case EncodingShiftJIS:
		decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
		if err != nil {
			return "", fmt.Errorf("failed to decode shift_jis input: %w", err)
		}
		return string(decoded), nil
	default:
		return "", fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

// normalizeEncoding folds the spellings accepted in configuration.
func normalizeEncoding(encoding string) string {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8
	case "shift_jis", "shift-jis", "sjis", "cp932", "windows-31j":
		return EncodingShiftJIS
	default:
		return encoding
	}
}
