package ports

import (
	"context"

	"github.com/aretw0/rulesmith/pkg/domain"
)

// RandomSource is the randomness a Corpus uses to pick documents.
// *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// Corpus gives read access to the documents behind the search index.
type Corpus interface {
	// RandomDocument returns a uniformly random document.
	RandomDocument(ctx context.Context, rng RandomSource) (*domain.Document, error)

	// GetDocument loads a document by ID.
	// It returns an error wrapping domain.ErrCorpusInconsistent when the ID
	// resolves to zero or more than one document.
	GetDocument(ctx context.Context, docID string) (*domain.Document, error)

	// GetSentence resolves a search hit locator to its sentence.
	GetSentence(ctx context.Context, loc domain.Locator) (*domain.Sentence, error)
}
