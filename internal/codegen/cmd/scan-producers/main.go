package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Alia5/factorygen/internal/codegen/meta"
	"github.com/Alia5/factorygen/internal/codegen/scanner"
)

// Dumps the scanner's view of the given package directories as JSON.
// Usage: go run ./internal/codegen/cmd/scan-producers [dir...]
func main() {
	dirs := os.Args[1:]
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	mod, err := scanner.FindModule(dirs[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to find module: %v\n", err)
		os.Exit(1)
	}

	pkgs, err := scanner.ScanPackages(dirs, mod)
	for _, pe := range meta.ProcessingErrors(err) {
		fmt.Fprintf(os.Stderr, "%v\n", pe)
	}
	if pkgs == nil && err != nil {
		fmt.Fprintf(os.Stderr, "failed to scan packages: %v\n", err)
		os.Exit(1)
	}

	output, err := json.MarshalIndent(pkgs, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(output))
}
