package domain

import "time"

// RecordSentence is one sentence matched by a saved rule.
type RecordSentence struct {
	Locator Locator  `json:"locator"`
	Words   []string `json:"words"`
	Matches []Match  `json:"matches"`
}

// RuleRecord is what the orchestration layer saves for an accepted rule.
type RuleRecord struct {
	ID         string           `json:"id"`
	Rule       string           `json:"query"`
	TotalHits  int              `json:"total_hits"`
	NumMatches int              `json:"num_matches"`
	Sentences  []RecordSentence `json:"sentences"`
	CreatedAt  time.Time        `json:"created_at"`
}
