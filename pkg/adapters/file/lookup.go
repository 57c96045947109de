package file

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// LookupTable maps a document ID to the files that carry it. More than one
// path for an ID is kept so lookups can report the ambiguity.
type LookupTable map[string][]string

// BuildLookupTable writes one "id<TAB>path" line for every document file
// under docsDir, sorted by path.
func BuildLookupTable(docsDir string, w io.Writer) (int, error) {
	matches, err := doublestar.Glob(os.DirFS(docsDir), "**/*"+DocumentSuffix)
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", docsDir, err)
	}
	sort.Strings(matches)

	bw := bufio.NewWriter(w)
	for _, m := range matches {
		id := strings.TrimSuffix(filepath.Base(filepath.FromSlash(m)), DocumentSuffix)
		if id == "" {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", id, filepath.Join(docsDir, filepath.FromSlash(m))); err != nil {
			return 0, err
		}
	}
	return len(matches), bw.Flush()
}

// ReadLookupTable parses the output of BuildLookupTable.
func ReadLookupTable(r io.Reader) (LookupTable, error) {
	t := LookupTable{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		id, path, ok := strings.Cut(text, "\t")
		if !ok || id == "" || path == "" {
			return nil, fmt.Errorf("lookup table line %d: expected id<TAB>path", line)
		}
		t[id] = append(t[id], path)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lookup table: %w", err)
	}
	return t, nil
}

// LoadLookupTable reads a lookup table file.
func LoadLookupTable(path string) (LookupTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup table: %w", err)
	}
	defer f.Close()
	return ReadLookupTable(f)
}
