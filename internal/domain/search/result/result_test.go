package result

import (
	"math"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/domain/document"
)

func TestScoredCandidate_Fuse(t *testing.T) {
	doc := document.Reconstruct(document.Attributes{ID: "doc-1"})
	c := NewCandidate(doc, 0.5)
	c.SetSemantic(0.8)
	c.Fuse(0.6, 0.4)

	if got := c.Hybrid(); math.Abs(got-0.62) > 1e-9 {
		t.Errorf("Hybrid() = %f, want 0.62", got)
	}
	if !c.HasSemantic() {
		t.Error("HasSemantic() = false after SetSemantic")
	}
	got := c.Document()
	if got.ID() != "doc-1" {
		t.Errorf("Document().ID() = %q", got.ID())
	}
}

func TestScoredCandidate_MissingSemanticCountsAsZero(t *testing.T) {
	c := NewCandidate(document.Document{}, 1.0)
	c.Fuse(0.6, 0.4)

	if c.HasSemantic() {
		t.Error("HasSemantic() = true without semantic score")
	}
	if got := c.Hybrid(); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("Hybrid() = %f, want 0.6", got)
	}
}

func TestRecent(t *testing.T) {
	c := Recent(document.Reconstruct(document.Attributes{ID: "r"}))
	if c.Hybrid() != 0 || len(c.Highlights()) != 0 {
		t.Errorf("recent candidate should have zero score and no highlights, got %f %v", c.Hybrid(), c.Highlights())
	}
}

func TestDegradation_Warning(t *testing.T) {
	tests := []struct {
		d    Degradation
		want string
	}{
		{None, ""},
		{EmbeddingUnavailable, ""},
		{AnswerUnavailable, ""},
		{NoMatches, "No matches found. Showing recent documents."},
		{RankingFailed, "Search error. Showing recent documents."},
	}
	for _, tc := range tests {
		if got := tc.d.Warning(); got != tc.want {
			t.Errorf("%q.Warning() = %q, want %q", tc.d, got, tc.want)
		}
	}
}
