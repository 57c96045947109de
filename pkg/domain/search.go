package domain

// Match is a matched token interval [Start, End) inside a hit's sentence.
type Match struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Hit is one matching sentence and the matches found in it.
type Hit struct {
	Locator Locator `json:"locator"`
	Matches []Match `json:"matches"`
}

// SearchResult is the answer to one query. TotalHits counts every matching
// sentence in the index, while Hits holds at most the requested number.
type SearchResult struct {
	TotalHits int   `json:"total_hits"`
	Hits      []Hit `json:"hits"`
}
