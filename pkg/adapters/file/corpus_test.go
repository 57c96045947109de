package file_test

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/rulesmith/internal/testutils"
	"github.com/aretw0/rulesmith/pkg/adapters/file"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCorpus_Contract(t *testing.T) {
	dir := testutils.SetupDocsDir(t, ports.ContractDocuments()...)
	ports.RunCorpusContract(t, file.NewCorpus(dir))
}

func TestFileCorpus_ContractWithLookupTable(t *testing.T) {
	dir := testutils.SetupDocsDir(t, ports.ContractDocuments()...)

	var buf bytes.Buffer
	n, err := file.BuildLookupTable(dir, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	table, err := file.ReadLookupTable(&buf)
	require.NoError(t, err)
	ports.RunCorpusContract(t, file.NewCorpus(dir, file.WithLookupTable(table), file.WithCacheTTL(0)))
}

func TestFileCorpus_AmbiguousDocument(t *testing.T) {
	docs := ports.ContractDocuments()
	dir := testutils.SetupDocsDir(t, docs...)
	testutils.WriteDocument(t, dir, "ZZ", "wiki_99", docs[0])

	_, err := file.NewCorpus(dir).GetDocument(context.Background(), docs[0].ID)
	assert.ErrorIs(t, err, domain.ErrCorpusInconsistent)
	assert.ErrorIs(t, err, domain.ErrAmbiguousDocument)
}

func TestFileCorpus_IDIsNotAPattern(t *testing.T) {
	dir := testutils.SetupDocsDir(t, ports.ContractDocuments()...)

	_, err := file.NewCorpus(dir).GetDocument(context.Background(), "d*")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestFileCorpus_CachesDocuments(t *testing.T) {
	docs := ports.ContractDocuments()
	dir := t.TempDir()
	path := testutils.WriteDocument(t, dir, "AA", "wiki_00", docs[0])
	c := file.NewCorpus(dir, file.WithCacheTTL(time.Minute))
	ctx := context.Background()

	_, err := c.GetDocument(ctx, docs[0].ID)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	doc, err := c.GetDocument(ctx, docs[0].ID)
	require.NoError(t, err)
	assert.Len(t, doc.Sentences, 2)
}

func TestFileCorpus_EmptyTree(t *testing.T) {
	dir := t.TempDir()
	c := file.NewCorpus(dir)
	rng := rand.New(rand.NewSource(1))

	_, err := c.RandomDocument(context.Background(), rng)
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "AA", "wiki_00"), 0755))
	_, err = c.RandomDocument(context.Background(), rng)
	assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
}

func TestReadDocument_IDFromFileName(t *testing.T) {
	dir := t.TempDir()
	doc := ports.ContractDocuments()[1]
	doc.ID = ""
	path := testutils.WriteDocument(t, dir, "AA", "wiki_00", doc)
	require.NoError(t, os.Rename(path, filepath.Join(filepath.Dir(path), "4242"+file.DocumentSuffix)))

	got, err := file.ReadDocument(filepath.Join(filepath.Dir(path), "4242"+file.DocumentSuffix))
	require.NoError(t, err)
	assert.Equal(t, "4242", got.ID)
	assert.Equal(t, 4, got.Sentences[0].NumTokens)
}

func TestReadDocument_NotGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1"+file.DocumentSuffix)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, err := file.ReadDocument(path)
	assert.Error(t, err)
}

func TestLookupTable(t *testing.T) {
	docs := ports.ContractDocuments()
	dir := testutils.SetupDocsDir(t, docs...)
	testutils.WriteDocument(t, dir, "ZZ", "wiki_99", docs[1])

	var buf bytes.Buffer
	_, err := file.BuildLookupTable(dir, &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "d1\t"+dir))

	table, err := file.ReadLookupTable(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Len(t, table["d1"], 1)
	assert.Len(t, table["d2"], 2)

	c := file.NewCorpus(dir, file.WithLookupTable(table))
	_, err = c.GetDocument(context.Background(), "d2")
	assert.ErrorIs(t, err, domain.ErrAmbiguousDocument)
}

func TestReadLookupTable_Malformed(t *testing.T) {
	_, err := file.ReadLookupTable(strings.NewReader("d1 /no/tab\n"))
	assert.ErrorContains(t, err, "line 1")
}
