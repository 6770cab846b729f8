package search

import (
	"strings"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// Field weights for keyword matching.
const (
	phraseTitleWeight   = 0.5
	phraseContentWeight = 0.3
	phraseSummaryWeight = 0.2
	wordTitleWeight     = 0.1
	wordContentWeight   = 0.05
	wordSummaryWeight   = 0.05
)

// LexicalScore scores a document by substring containment of the whole query
// and of each query word in its title, text and summary.
// The score is additive and never negative; no match scores exactly 0.
func LexicalScore(doc *domdoc.Document, q *query.Query) float64 {
	title := strings.ToLower(doc.Title())
	content := strings.ToLower(doc.Text())
	summary := strings.ToLower(doc.Summary())
	phrase := q.Lower()

	var score float64
	if strings.Contains(title, phrase) {
		score += phraseTitleWeight
	}
	if strings.Contains(content, phrase) {
		score += phraseContentWeight
	}
	if strings.Contains(summary, phrase) {
		score += phraseSummaryWeight
	}

	for _, w := range q.Words() {
		if strings.Contains(title, w) {
			score += wordTitleWeight
		}
		if strings.Contains(content, w) {
			score += wordContentWeight
		}
		if strings.Contains(summary, w) {
			score += wordSummaryWeight
		}
	}
	return score
}
