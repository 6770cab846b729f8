package search

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// Highlight extraction limits, in runes.
const (
	maxHighlights     = 3
	phraseWindow      = 50
	wordWindow        = 40
	minHighlightWord  = 4
	highlightEllipsis = "..."
)

// ExtractHighlights returns up to three excerpts of text around query matches.
// Whole-query matches come first with a wider window; query words of at least
// four runes fill the remaining slots with a narrower one, skipping duplicates.
func ExtractHighlights(text string, q *query.Query) []string {
	if text == "" {
		return []string{}
	}

	orig := []rune(text)
	// strings.ToLower maps rune by rune, so indexes in both slices line up.
	folded := []rune(strings.ToLower(text))
	if len(folded) != len(orig) {
		return []string{}
	}

	highlights := make([]string, 0, maxHighlights)
	seen := make(map[string]struct{}, maxHighlights)

	phrase := []rune(q.Lower())
	for i := indexRunes(folded, phrase, 0); i >= 0 && len(highlights) < maxHighlights; i = indexRunes(folded, phrase, i+len(phrase)) {
		h := excerpt(orig, i, len(phrase), phraseWindow)
		seen[h] = struct{}{}
		highlights = append(highlights, h)
	}

	for _, w := range q.Words() {
		if len(highlights) >= maxHighlights {
			break
		}
		if utf8.RuneCountInString(w) < minHighlightWord {
			continue
		}
		word := []rune(w)
		for i := indexRunes(folded, word, 0); i >= 0 && len(highlights) < maxHighlights; i = indexRunes(folded, word, i+len(word)) {
			h := excerpt(orig, i, len(word), wordWindow)
			if _, dup := seen[h]; dup {
				continue
			}
			seen[h] = struct{}{}
			highlights = append(highlights, h)
		}
	}
	return highlights
}

// excerpt cuts a window of radius runes around text[at:at+n], marking truncated ends.
func excerpt(text []rune, at, n, radius int) string {
	start := max(0, at-radius)
	end := min(len(text), at+n+radius)

	var b strings.Builder
	if start > 0 {
		b.WriteString(highlightEllipsis)
	}
	b.WriteString(string(text[start:end]))
	if end < len(text) {
		b.WriteString(highlightEllipsis)
	}
	return b.String()
}

// indexRunes returns the first index >= from of needle in haystack, or -1.
func indexRunes(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	last := len(haystack) - len(needle)
outer:
	for i := from; i <= last; i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}
