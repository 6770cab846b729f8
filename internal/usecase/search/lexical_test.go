package search

import (
	"math"
	"testing"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

func TestLexicalScore(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		text    string
		summary string
		query   string
		want    float64
	}{
		{"no match", "Invoice", "payment due", "", "revenue", 0},
		{"content phrase and word", "Annual Report", "revenue growth was strong", "", "revenue", 0.35},
		{"title phrase and word", "Revenue Plan", "", "", "revenue", 0.6},
		{"summary phrase and word", "", "", "Revenue up", "revenue", 0.25},
		{"case insensitive everywhere", "REVENUE", "Revenue", "reVenue", "Revenue", 1.2},
		{"words only", "Growth plan", "quarterly revenue numbers", "", "revenue growth", 0.15},
		{"short words ignored", "An ox", "", "", "an ox", 0.5},
		{"empty document", "", "", "", "anything", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := domdoc.Reconstruct(domdoc.Attributes{Title: tc.title, Text: tc.text, Summary: tc.summary})
			got := LexicalScore(&doc, mustQuery(tc.query))
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("LexicalScore = %f, want %f", got, tc.want)
			}
			if got < 0 {
				t.Errorf("LexicalScore must be non-negative, got %f", got)
			}
		})
	}
}
