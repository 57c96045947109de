package ports

import (
	"strings"

	"github.com/aretw0/rulesmith/pkg/domain"
)

// ContractDocuments is the corpus every Searcher and Corpus contract run
// expects its adapter to be backed by.
func ContractDocuments() []domain.Document {
	return []domain.Document{
		{
			ID: "d1",
			Sentences: []domain.Sentence{
				fixtureSentence(
					"The quick brown fox jumps over the lazy dog .",
					"the quick brown fox jump over the lazy dog .",
					"DT JJ JJ NN VBZ IN DT JJ NN .",
				),
				fixtureSentence(
					"A quick red fox ran .",
					"a quick red fox run .",
					"DT JJ JJ NN VBD .",
				),
			},
		},
		{
			ID: "d2",
			Sentences: []domain.Sentence{
				fixtureSentence(
					"The dog sleeps .",
					"the dog sleep .",
					"DT NN VBZ .",
				),
				fixtureSentence(
					"Brown dogs bark loudly at night .",
					"brown dog bark loudly at night .",
					"JJ NNS VBP RB IN NN .",
				),
			},
		},
	}
}

func fixtureSentence(words, lemmas, tags string) domain.Sentence {
	w := strings.Fields(words)
	return domain.Sentence{
		NumTokens: len(w),
		Fields: map[string][]string{
			"word":  w,
			"lemma": strings.Fields(lemmas),
			"tag":   strings.Fields(tags),
		},
	}
}
