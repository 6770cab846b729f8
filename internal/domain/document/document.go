package document

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// MaxTextSize is the maximum extracted text size in bytes.
const MaxTextSize = 10 << 20 // 10MB, same as the upload limit

// Attributes carries the raw fields of a document between layers.
type Attributes struct {
	ID        string
	OwnerID   string
	Title     string
	FileName  string
	FileType  string
	URL       string
	Text      string
	Summary   string
	Insights  []string
	Embedding []float32
	CreatedAt time.Time
}

// Document is the document aggregate (immutable value object).
// Search reads it; only the document use case creates or replaces it.
type Document struct {
	id        string
	ownerID   string
	title     string
	fileName  string
	fileType  string
	url       string
	text      string
	summary   string
	insights  []string
	embedding []float32
	createdAt time.Time
}

// New validates and creates a Document.
// ID and owner are required, at least one of title/file name must be set, text is capped at MaxTextSize.
func New(a Attributes) (Document, error) {
	if a.ID == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if a.OwnerID == "" {
		return Document{}, fmt.Errorf("owner is required")
	}
	if strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.FileName) == "" {
		return Document{}, fmt.Errorf("title or file name is required")
	}
	if len(a.Text) > MaxTextSize {
		return Document{}, fmt.Errorf("text too large (max %d bytes)", MaxTextSize)
	}
	if a.Title == "" {
		a.Title = a.FileName
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	d := Reconstruct(a)
	d.insights = slices.Clone(a.Insights)
	d.embedding = slices.Clone(a.Embedding)
	return d, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(a Attributes) Document {
	return Document{
		id:        a.ID,
		ownerID:   a.OwnerID,
		title:     a.Title,
		fileName:  a.FileName,
		fileType:  a.FileType,
		url:       a.URL,
		text:      a.Text,
		summary:   a.Summary,
		insights:  a.Insights,
		embedding: a.Embedding,
		createdAt: a.CreatedAt,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// OwnerID returns the identity of the caller who owns the document.
func (d *Document) OwnerID() string { return d.ownerID }

// Title returns the display title.
func (d *Document) Title() string { return d.title }

// FileName returns the original file name.
func (d *Document) FileName() string { return d.fileName }

// FileType returns the original MIME type.
func (d *Document) FileType() string { return d.fileType }

// URL returns the object storage location of the original file.
func (d *Document) URL() string { return d.url }

// Text returns the extracted plain text.
func (d *Document) Text() string { return d.text }

// Summary returns the generated abstract.
func (d *Document) Summary() string { return d.summary }

// Insights returns the generated key insights.
func (d *Document) Insights() []string { return d.insights }

// Embedding returns the embedding vector (empty when generation failed).
func (d *Document) Embedding() []float32 { return d.embedding }

// HasEmbedding reports whether the document can take part in vector scoring.
func (d *Document) HasEmbedding() bool { return len(d.embedding) > 0 }

// CreatedAt returns the creation timestamp.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// Attributes returns a copy of the raw fields.
func (d *Document) Attributes() Attributes {
	return Attributes{
		ID: d.id, OwnerID: d.ownerID, Title: d.title, FileName: d.fileName,
		FileType: d.fileType, URL: d.url, Text: d.text, Summary: d.summary,
		Insights: slices.Clone(d.insights), Embedding: slices.Clone(d.embedding),
		CreatedAt: d.createdAt,
	}
}

// WithEmbedding returns a copy with the given embedding set.
func (d *Document) WithEmbedding(v []float32) Document {
	c := *d
	c.embedding = v
	return c
}

// SortNewestFirst orders documents by creation time, most recent first.
// Ties keep their relative order.
func SortNewestFirst(docs []Document) {
	slices.SortStableFunc(docs, func(a, b Document) int {
		return b.createdAt.Compare(a.createdAt)
	})
}
