package file

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/rulesmith/internal/logging"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
	"github.com/bmatcuk/doublestar/v4"
	cache_pkg "github.com/patrickmn/go-cache"
)

// DocumentSuffix ends the name of every document file.
const DocumentSuffix = "-doc.json.gz"

// Corpus implements ports.Corpus over a directory of gzip-compressed JSON
// documents sharded two levels deep (e.g. docs/AA/wiki_00/123-doc.json.gz).
// Safe for concurrent use.
type Corpus struct {
	docsDir string
	fsys    fs.FS
	lookup  LookupTable
	cache   *cache_pkg.Cache
	logger  *slog.Logger
}

// Option configures a Corpus.
type Option func(*Corpus)

// WithLookupTable resolves document IDs through t instead of searching the tree.
func WithLookupTable(t LookupTable) Option {
	return func(c *Corpus) {
		c.lookup = t
	}
}

// WithCacheTTL keeps decoded documents in memory for ttl. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Corpus) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = cache_pkg.New(ttl, 2*ttl)
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Corpus) {
		c.logger = logger
	}
}

// NewCorpus opens the corpus rooted at docsDir. Documents are cached for
// five minutes unless WithCacheTTL says otherwise.
func NewCorpus(docsDir string, opts ...Option) *Corpus {
	c := &Corpus{
		docsDir: docsDir,
		fsys:    os.DirFS(docsDir),
		cache:   cache_pkg.New(5*time.Minute, 10*time.Minute),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RandomDocument walks the two shard levels at random and opens a random
// document in the directory it lands on.
func (c *Corpus) RandomDocument(ctx context.Context, rng ports.RandomSource) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := c.docsDir
	for level := 0; level < 2; level++ {
		subdirs, err := listDirs(dir)
		if err != nil {
			return nil, err
		}
		if len(subdirs) == 0 {
			return nil, fmt.Errorf("%w: no shard directories in %s", domain.ErrEmptyCorpus, dir)
		}
		dir = filepath.Join(dir, subdirs[rng.Intn(len(subdirs))])
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+DocumentSuffix))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no documents in %s", domain.ErrEmptyCorpus, dir)
	}
	return c.open(files[rng.Intn(len(files))])
}

// GetDocument loads a document by ID. It fails with
// domain.ErrCorpusInconsistent unless exactly one file carries the ID.
func (c *Corpus) GetDocument(ctx context.Context, docID string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.cache != nil {
		if v, ok := c.cache.Get(docID); ok {
			return v.(*domain.Document), nil
		}
	}

	path, err := c.resolve(docID)
	if err != nil {
		return nil, err
	}
	doc, err := c.open(path)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(docID, doc, cache_pkg.DefaultExpiration)
	}
	return doc, nil
}

// GetSentence resolves a search hit locator to its sentence.
func (c *Corpus) GetSentence(ctx context.Context, loc domain.Locator) (*domain.Sentence, error) {
	doc, err := c.GetDocument(ctx, loc.DocID)
	if err != nil {
		return nil, err
	}
	if loc.SentenceIndex < 0 || loc.SentenceIndex >= len(doc.Sentences) {
		return nil, fmt.Errorf("%w: document %s has no sentence %d",
			domain.ErrCorpusInconsistent, doc.ID, loc.SentenceIndex)
	}
	s := doc.Sentences[loc.SentenceIndex]
	return &s, nil
}

func (c *Corpus) resolve(docID string) (string, error) {
	var paths []string
	if c.lookup != nil {
		paths = c.lookup[docID]
	} else {
		matches, err := doublestar.Glob(c.fsys, "**/"+escapeMeta(docID)+DocumentSuffix)
		if err != nil {
			return "", fmt.Errorf("failed to search for document %s: %w", docID, err)
		}
		for _, m := range matches {
			paths = append(paths, filepath.Join(c.docsDir, filepath.FromSlash(m)))
		}
	}

	switch len(paths) {
	case 1:
		return paths[0], nil
	case 0:
		return "", fmt.Errorf("%w: %w: %s", domain.ErrCorpusInconsistent, domain.ErrDocumentNotFound, docID)
	default:
		c.logger.Error("Document id resolves to several files", "doc_id", docID, "paths", paths)
		return "", fmt.Errorf("%w: %w: %d files for %s", domain.ErrCorpusInconsistent, domain.ErrAmbiguousDocument, len(paths), docID)
	}
}

func (c *Corpus) open(path string) (*domain.Document, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Document loaded", "doc_id", doc.ID, "path", path, "sentences", len(doc.Sentences))
	return doc, nil
}

// ReadDocument decodes one gzip-compressed document file. A document
// without an id takes it from the file name.
func ReadDocument(path string) (*domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer zr.Close()

	var doc domain.Document
	if err := json.NewDecoder(zr).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if doc.ID == "" {
		doc.ID = strings.TrimSuffix(filepath.Base(path), DocumentSuffix)
	}
	return &doc, nil
}

func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

// escapeMeta quotes glob metacharacters so an ID only matches itself.
func escapeMeta(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[]{}\`, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
