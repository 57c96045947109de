package domain

import "errors"

// ErrCorpusInconsistent marks accessor failures that indicate the on-disk
// corpus and the index disagree. Runs must abort when they see it.
var ErrCorpusInconsistent = errors.New("corpus inconsistent with index")

// ErrDocumentNotFound is returned when a document ID resolves to no file.
var ErrDocumentNotFound = errors.New("document not found")

// ErrAmbiguousDocument is returned when a document ID resolves to more than one file.
var ErrAmbiguousDocument = errors.New("document id is ambiguous")

// ErrNoEligibleSentence is returned when a document has no sentence long enough to seed a rule.
var ErrNoEligibleSentence = errors.New("no eligible sentence")

// ErrSpanWithoutSentence is returned when a seed carries a span but no sentence.
var ErrSpanWithoutSentence = errors.New("span given without a sentence")

// ErrInvalidSpan is returned when a span falls outside its sentence or exceeds the maximum length.
var ErrInvalidSpan = errors.New("invalid span")

// ErrUnknownField is returned when a sentence does not carry the requested token field.
var ErrUnknownField = errors.New("unknown token field")

// ErrTimeout is returned when a bounded generation runs past its deadline.
var ErrTimeout = errors.New("generation timed out")

// ErrEmptyCorpus is returned when a random document is requested from a corpus with no documents.
var ErrEmptyCorpus = errors.New("corpus has no documents")

// ErrSearchFailed is returned when the search index cannot answer a query.
var ErrSearchFailed = errors.New("search failed")

// ErrInvalidConfig is returned when settings or per-request overrides are rejected.
var ErrInvalidConfig = errors.New("invalid configuration")
