package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

const tokensFieldType = "ai.lum.odinson.TokensField"

// Sentence is an ordered sequence of tokens. Fields maps a field name
// (word, lemma, tag, ...) to one value per token.
type Sentence struct {
	NumTokens int
	Fields    map[string][]string
}

// NewSentence builds a sentence from parallel field columns.
// The token count is taken from the first column; all columns must agree.
func NewSentence(fields map[string][]string) (*Sentence, error) {
	n := -1
	for name, tokens := range fields {
		if n == -1 {
			n = len(tokens)
			continue
		}
		if len(tokens) != n {
			return nil, fmt.Errorf("field %q has %d tokens, expected %d", name, len(tokens), n)
		}
	}
	if n < 1 {
		return nil, fmt.Errorf("sentence must have at least one token")
	}
	return &Sentence{NumTokens: n, Fields: fields}, nil
}

// Token returns the value of field at token index i.
func (s *Sentence) Token(field string, i int) (string, error) {
	tokens, ok := s.Fields[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if i < 0 || i >= len(tokens) {
		return "", fmt.Errorf("token %d out of range [0,%d)", i, len(tokens))
	}
	return tokens[i], nil
}

type sentenceJSON struct {
	NumTokens int         `json:"numTokens"`
	Fields    []fieldJSON `json:"fields"`
}

type fieldJSON struct {
	Type   string   `json:"$type,omitempty"`
	Name   string   `json:"name"`
	Tokens []string `json:"tokens,omitempty"`
}

// UnmarshalJSON decodes the index document format. Non-token fields
// (dependency graphs, dates) are skipped.
func (s *Sentence) UnmarshalJSON(data []byte) error {
	var raw sentenceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.NumTokens = raw.NumTokens
	s.Fields = make(map[string][]string, len(raw.Fields))
	for _, f := range raw.Fields {
		if f.Tokens == nil {
			continue
		}
		s.Fields[f.Name] = f.Tokens
	}
	return nil
}

// MarshalJSON encodes the sentence in the index document format.
func (s Sentence) MarshalJSON() ([]byte, error) {
	raw := sentenceJSON{NumTokens: s.NumTokens}
	for _, name := range sortedKeys(s.Fields) {
		raw.Fields = append(raw.Fields, fieldJSON{
			Type:   tokensFieldType,
			Name:   name,
			Tokens: s.Fields[name],
		})
	}
	return json.Marshal(raw)
}

// Document is one corpus file: an identifier plus its sentences.
type Document struct {
	ID        string          `json:"id"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Sentences []Sentence      `json:"sentences"`
}

// EligibleSentences returns the indices of sentences with more than minTokens tokens.
func (d *Document) EligibleSentences(minTokens int) []int {
	var idx []int
	for i := range d.Sentences {
		if d.Sentences[i].NumTokens > minTokens {
			idx = append(idx, i)
		}
	}
	return idx
}

// Span is a half-open token interval [Start, Stop).
type Span struct {
	Start int `json:"start"`
	Stop  int `json:"stop"`
}

// Len returns the number of tokens covered.
func (s Span) Len() int { return s.Stop - s.Start }

// Validate checks the span against a sentence length and a maximum span length.
func (s Span) Validate(numTokens, maxLen int) error {
	switch {
	case s.Start < 0 || s.Stop <= s.Start:
		return fmt.Errorf("%w: [%d,%d) is empty or negative", ErrInvalidSpan, s.Start, s.Stop)
	case s.Stop > numTokens:
		return fmt.Errorf("%w: stop %d exceeds %d tokens", ErrInvalidSpan, s.Stop, numTokens)
	case maxLen > 0 && s.Len() > maxLen:
		return fmt.Errorf("%w: length %d exceeds maximum %d", ErrInvalidSpan, s.Len(), maxLen)
	}
	return nil
}

// Locator identifies the sentence a search hit belongs to.
type Locator struct {
	DocID         string `json:"doc_id"`
	SentenceIndex int    `json:"sentence_index"`
	LuceneDoc     int    `json:"lucene_doc,omitempty"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
