// =============================================================================
// ColorMe to Yayoi Converter - Import File Writer
// =============================================================================
//
// This module writes encoded Yayoi import text to disk. The encoders produce
// UTF-8 text; Yayoi reads Shift_JIS, so the conversion happens here.
//
// OUTPUT:
//   - Shift_JIS by default ("utf-8" available for inspection)
//   - Characters Shift_JIS cannot represent are replaced, not rejected
//   - No byte order mark, no trailing line break added
//
// =============================================================================

package textwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// Supported output encodings.
const (
	EncodingShiftJIS = "shift_jis"
	EncodingUTF8     = "utf-8"
)

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// WriteOptions contains options for writing an import file.
type WriteOptions struct {
	// Encoding is the output encoding.
	// Default: "shift_jis"
	Encoding string

	// FileMode is the permission of the created file.
	// Default: 0644
	FileMode os.FileMode
}

// DefaultWriteOptions returns the default write options.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Encoding: EncodingShiftJIS,
		FileMode: 0644,
	}
}

// =============================================================================
// ENCODING
// =============================================================================

// Encode converts UTF-8 text into the requested encoding.
//
// PARAMETERS:
//   - text: The import text produced by an encoder.
//   - enc: "shift_jis" or "utf-8".
//
// RETURNS:
//   - The encoded bytes.
//   - An error for an unknown encoding or malformed input.
func Encode(text, enc string) ([]byte, error) {
	switch strings.ToLower(enc) {
	case EncodingShiftJIS, "sjis", "shift-jis", "cp932", "windows-31j":
		encoder := encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
		out, err := encoder.Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("failed to encode as Shift_JIS: %w", err)
		}
		return out, nil

	case EncodingUTF8, "utf8":
		return []byte(text), nil

	default:
		return nil, fmt.Errorf("unsupported output encoding %q", enc)
	}
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// WriteFile encodes text and writes it to path, creating the parent
// directory when needed.
func WriteFile(path, text string, options WriteOptions) error {
	if options.Encoding == "" {
		options.Encoding = EncodingShiftJIS
	}
	if options.FileMode == 0 {
		options.FileMode = 0644
	}

	data, err := Encode(text, options.Encoding)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, data, options.FileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
