package result

import "github.com/kailas-cloud/docsearch/internal/domain/document"

// Degradation tags a stage outcome that fell back instead of failing.
type Degradation string

// Degradation reasons.
const (
	None                 Degradation = ""
	EmbeddingUnavailable Degradation = "embedding_unavailable"
	NoMatches            Degradation = "no_matches"
	RankingFailed        Degradation = "ranking_failed"
	AnswerUnavailable    Degradation = "answer_unavailable"
)

// Warning returns the caller-visible message for degradations that change the result set.
func (d Degradation) Warning() string {
	switch d {
	case NoMatches:
		return "No matches found. Showing recent documents."
	case RankingFailed:
		return "Search error. Showing recent documents."
	default:
		return ""
	}
}

// ScoredCandidate is a document scored for a single search request.
type ScoredCandidate struct {
	doc         document.Document
	lexical     float64
	semantic    float64
	hasSemantic bool
	hybrid      float64
	highlights  []string
}

// NewCandidate creates a candidate with its lexical score.
func NewCandidate(doc document.Document, lexical float64) ScoredCandidate {
	return ScoredCandidate{doc: doc, lexical: lexical}
}

// Recent creates a zero-score candidate used by the recency fallback.
func Recent(doc document.Document) ScoredCandidate {
	return ScoredCandidate{doc: doc}
}

// SetSemantic records the cosine similarity against the query embedding.
func (c *ScoredCandidate) SetSemantic(score float64) {
	c.semantic = score
	c.hasSemantic = true
}

// Fuse computes the hybrid score; a missing semantic score counts as 0.
func (c *ScoredCandidate) Fuse(lexicalWeight, semanticWeight float64) {
	c.hybrid = lexicalWeight*c.lexical + semanticWeight*c.semantic
}

// SetHighlights attaches the excerpts shown with the result.
func (c *ScoredCandidate) SetHighlights(h []string) { c.highlights = h }

// Document returns the scored document.
func (c *ScoredCandidate) Document() document.Document { return c.doc }

// Lexical returns the keyword score.
func (c *ScoredCandidate) Lexical() float64 { return c.lexical }

// Semantic returns the cosine similarity, 0 when absent.
func (c *ScoredCandidate) Semantic() float64 { return c.semantic }

// HasSemantic reports whether a semantic score was computed.
func (c *ScoredCandidate) HasSemantic() bool { return c.hasSemantic }

// Hybrid returns the fused score.
func (c *ScoredCandidate) Hybrid() float64 { return c.hybrid }

// Highlights returns up to three excerpts.
func (c *ScoredCandidate) Highlights() []string { return c.highlights }
