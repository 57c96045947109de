package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/rulesmith/pkg/adapters/file"
)

// RunLookupTable writes the document lookup table for docsDir to outPath,
// or to w when outPath is empty or "-".
func RunLookupTable(docsDir, outPath string, w io.Writer) (int, error) {
	if docsDir == "" {
		return 0, fmt.Errorf("docs directory is required")
	}
	if outPath == "" || outPath == "-" {
		return file.BuildLookupTable(docsDir, w)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create lookup table: %w", err)
	}
	n, err := file.BuildLookupTable(docsDir, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
