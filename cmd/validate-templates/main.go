// validate-templates parses the dashboard view templates and exits non-zero
// when any of them fails to parse or a required define block is missing.
// CI runs it against the source tree before the views are embedded.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verdantlabs/bloomcal/internal/httpcontroller"
)

func main() {
	var templatesDir string
	flag.StringVar(&templatesDir, "dir", "internal/httpcontroller/views", "Directory containing template files")
	flag.Parse()

	absDir, err := filepath.Abs(templatesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving path: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Validating templates in: %s\n", absDir)

	result, err := httpcontroller.ValidateTemplates(absDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(result.String())

	if result.HasIssues() {
		os.Exit(1)
	}
}
