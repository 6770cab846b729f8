package query

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// MinWordLen is the minimum rune length (exclusive) of a query word used for scoring.
const MinWordLen = 2

// leadWords mark a query as a question when it starts with one of them.
var leadWords = []string{
	"what", "how", "why", "when", "where", "which", "who",
	"can", "does", "is", "are", "find", "explain", "describe",
}

// Query is a validated free-text search query.
type Query struct {
	raw   string
	lower string
	words []string
}

// Parse validates raw input and prepares its case-folded forms.
func Parse(raw string) (Query, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Query{}, domain.ErrEmptyQuery
	}

	lower := strings.ToLower(trimmed)
	var words []string
	for _, w := range strings.Fields(lower) {
		if utf8.RuneCountInString(w) > MinWordLen {
			words = append(words, w)
		}
	}

	return Query{raw: trimmed, lower: lower, words: words}, nil
}

// Raw returns the trimmed query as typed by the caller.
func (q *Query) Raw() string { return q.raw }

// Lower returns the case-folded query.
func (q *Query) Lower() string { return q.lower }

// Words returns the case-folded query words longer than MinWordLen runes.
func (q *Query) Words() []string { return q.words }

// IsQuestion reports whether the query looks like a question or an instruction.
// Lead words are matched as plain prefixes, so "isolation" counts too.
func (q *Query) IsQuestion() bool {
	if strings.HasSuffix(q.raw, "?") {
		return true
	}
	for _, w := range leadWords {
		if strings.HasPrefix(q.lower, w) {
			return true
		}
	}
	return false
}
