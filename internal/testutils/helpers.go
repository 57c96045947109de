package testutils

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/rulesmith/pkg/adapters/memory"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
	"github.com/aretw0/rulesmith/pkg/query"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSearcher implements ports.Searcher.
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, p query.Pattern, maxHits int) (*domain.SearchResult, error) {
	args := m.Called(ctx, p.String(), maxHits)
	res, _ := args.Get(0).(*domain.SearchResult)
	return res, args.Error(1)
}

// MockCorpus implements ports.Corpus.
type MockCorpus struct {
	mock.Mock
}

func (m *MockCorpus) RandomDocument(ctx context.Context, rng ports.RandomSource) (*domain.Document, error) {
	args := m.Called(ctx)
	doc, _ := args.Get(0).(*domain.Document)
	return doc, args.Error(1)
}

func (m *MockCorpus) GetDocument(ctx context.Context, docID string) (*domain.Document, error) {
	args := m.Called(ctx, docID)
	doc, _ := args.Get(0).(*domain.Document)
	return doc, args.Error(1)
}

func (m *MockCorpus) GetSentence(ctx context.Context, loc domain.Locator) (*domain.Sentence, error) {
	args := m.Called(ctx, loc)
	s, _ := args.Get(0).(*domain.Sentence)
	return s, args.Error(1)
}

// Result builds a search result with totalHits and no hits.
func Result(totalHits int) *domain.SearchResult {
	return &domain.SearchResult{TotalHits: totalHits}
}

// Sentence builds a sentence whose word, lemma and tag fields are the
// space-separated tokens given. An empty lemmas or tags reuses words.
func Sentence(t *testing.T, words, lemmas, tags string) *domain.Sentence {
	t.Helper()
	if lemmas == "" {
		lemmas = strings.ToLower(words)
	}
	if tags == "" {
		tags = words
	}
	s, err := domain.NewSentence(map[string][]string{
		"word":  strings.Fields(words),
		"lemma": strings.Fields(lemmas),
		"tag":   strings.Fields(tags),
	})
	require.NoError(t, err)
	return s
}

// FixtureBackend returns an in-memory corpus and searcher loaded with the
// contract documents.
func FixtureBackend() (*memory.Corpus, *memory.Searcher) {
	corpus := memory.NewCorpus(ports.ContractDocuments()...)
	return corpus, memory.NewSearcher(corpus)
}

// WriteDocument writes doc gzip-compressed to dir/<shard1>/<shard2>/<id>-doc.json.gz
// and returns the file path.
func WriteDocument(t *testing.T, dir, shard1, shard2 string, doc domain.Document) string {
	t.Helper()

	target := filepath.Join(dir, shard1, shard2)
	require.NoError(t, os.MkdirAll(target, 0755))

	path := filepath.Join(target, doc.ID+"-doc.json.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := gzip.NewWriter(f)
	require.NoError(t, json.NewEncoder(zw).Encode(doc))
	require.NoError(t, zw.Close())
	return path
}

// SetupDocsDir writes docs into a sharded temporary corpus directory,
// alternating between two shards, and returns its path.
func SetupDocsDir(t *testing.T, docs ...domain.Document) string {
	t.Helper()

	dir := t.TempDir()
	shards := [][2]string{{"AA", "wiki_00"}, {"AB", "wiki_01"}}
	for i, d := range docs {
		s := shards[i%len(shards)]
		WriteDocument(t, dir, s[0], s[1], d)
	}
	return dir
}
