// =============================================================================
// ColorMe to Yayoi Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the ColorMe to Yayoi Converter CLI. It
// delegates command execution to the cmd package.
//
// USAGE:
//   yayoi-converter ledger import   - Store the Yayoi customer list
//   yayoi-converter match           - Match orders, write the review workbook
//   yayoi-converter register        - Add reviewed customers to the ledger
//   yayoi-converter process         - Write the Yayoi sales slip TXT
//   yayoi-converter version         - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, matching, encoding, storage and reporting
//   - pkg/           : Shared file utilities
//   - configs/       : Main configuration and lookup tables
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/colorme-yayoi-converter/cmd"
)

func main() {
	cmd.Execute()
}
