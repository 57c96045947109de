package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/ports"
)

// Corpus implements ports.Corpus over documents held in memory.
// Safe for concurrent use.
type Corpus struct {
	mu    sync.RWMutex
	docs  []domain.Document
	index map[string]int
}

// NewCorpus creates a corpus holding docs in the given order.
// A later document with a repeated ID replaces the earlier one.
func NewCorpus(docs ...domain.Document) *Corpus {
	c := &Corpus{index: make(map[string]int)}
	for _, d := range docs {
		c.Add(d)
	}
	return c
}

// Add inserts or replaces a document.
func (c *Corpus) Add(doc domain.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.index[doc.ID]; ok {
		c.docs[i] = doc
		return
	}
	c.index[doc.ID] = len(c.docs)
	c.docs = append(c.docs, doc)
}

// RandomDocument returns a uniformly random document.
func (c *Corpus) RandomDocument(ctx context.Context, rng ports.RandomSource) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.docs) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	doc := c.docs[rng.Intn(len(c.docs))]
	return &doc, nil
}

// GetDocument loads a document by ID.
func (c *Corpus) GetDocument(ctx context.Context, docID string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[docID]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrCorpusInconsistent, domain.ErrDocumentNotFound, docID)
	}
	doc := c.docs[i]
	return &doc, nil
}

// GetSentence resolves a locator to its sentence.
func (c *Corpus) GetSentence(ctx context.Context, loc domain.Locator) (*domain.Sentence, error) {
	doc, err := c.GetDocument(ctx, loc.DocID)
	if err != nil {
		return nil, err
	}
	return sentenceAt(doc, loc)
}

func sentenceAt(doc *domain.Document, loc domain.Locator) (*domain.Sentence, error) {
	if loc.SentenceIndex < 0 || loc.SentenceIndex >= len(doc.Sentences) {
		return nil, fmt.Errorf("%w: document %s has no sentence %d",
			domain.ErrCorpusInconsistent, doc.ID, loc.SentenceIndex)
	}
	s := doc.Sentences[loc.SentenceIndex]
	return &s, nil
}

// each calls fn for every sentence in corpus order until fn returns false.
func (c *Corpus) each(fn func(loc domain.Locator, s *domain.Sentence) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lucene := 0
	for _, d := range c.docs {
		for i := range d.Sentences {
			loc := domain.Locator{DocID: d.ID, SentenceIndex: i, LuceneDoc: lucene}
			lucene++
			if !fn(loc, &d.Sentences[i]) {
				return
			}
		}
	}
}
