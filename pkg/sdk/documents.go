package sdk

import (
	"context"
	"fmt"
	"time"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
)

// DocumentService manages one owner's documents.
type DocumentService struct {
	ownerID string
	svc     documentUseCase
	obs     *observer
}

// Add stores a document, enriching it with a summary, key insights and an
// embedding when the matching providers are configured.
func (s *DocumentService) Add(ctx context.Context, doc NewDocument) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("add_document", start, err) }()

	d, err := s.svc.Ingest(ctx, s.ownerID, documentuc.IngestInput{
		Title:    doc.Title,
		FileName: doc.FileName,
		FileType: doc.FileType,
		URL:      doc.URL,
		Text:     doc.Text,
	})
	if err != nil {
		return Document{}, fmt.Errorf("add document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get_document", start, err) }()

	d, err := s.svc.Get(ctx, s.ownerID, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// List returns all documents of the owner, newest first.
func (s *DocumentService) List(ctx context.Context) (_ []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("list_documents", start, err) }()

	docs, err := s.svc.List(ctx, s.ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = fromInternalDocument(&docs[i])
	}
	return out, nil
}

// Delete removes a document by ID.
func (s *DocumentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("delete_document", start, err) }()

	if err = s.svc.Delete(ctx, s.ownerID, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func fromInternalDocument(d *domdoc.Document) Document {
	return Document{
		ID:           d.ID(),
		OwnerID:      d.OwnerID(),
		Title:        d.Title(),
		FileName:     d.FileName(),
		FileType:     d.FileType(),
		URL:          d.URL(),
		Text:         d.Text(),
		Summary:      d.Summary(),
		Insights:     d.Insights(),
		HasEmbedding: d.HasEmbedding(),
		CreatedAt:    d.CreatedAt(),
	}
}
