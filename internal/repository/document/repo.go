package document

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores documents as one hash per document, keyed by owner and ID.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository. An empty prefix uses domain.DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Upsert creates or fully replaces a document.
func (r *Repo) Upsert(ctx context.Context, doc *domdoc.Document) error {
	key := r.docKey(doc.OwnerID(), doc.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(doc)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a document of the owner by ID.
func (r *Repo) Get(ctx context.Context, ownerID, id string) (domdoc.Document, error) {
	key := r.docKey(ownerID, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	doc := parseHashFields(m)
	if doc.OwnerID() != ownerID || doc.ID() != id {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// ListByOwner returns every document of the owner, in no particular order.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]domdoc.Document, error) {
	pattern := r.ownerPrefix(ownerID) + "*"
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return []domdoc.Document{}, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	docs := make([]domdoc.Document, 0, len(hashes))
	for _, m := range hashes {
		// Deleted between SCAN and HGETALL.
		if len(m) == 0 {
			continue
		}
		doc := parseHashFields(m)
		if doc.OwnerID() != ownerID {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// UpdateEmbedding replaces the embedding of an existing document.
func (r *Repo) UpdateEmbedding(ctx context.Context, ownerID, id string, vec []float32) error {
	key := r.docKey(ownerID, id)
	if err := r.ensureExists(ctx, key); err != nil {
		return err
	}
	if err := r.store.HSet(ctx, key, map[string]string{fieldEmbedding: encodeVector(vec)}); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Delete removes a document of the owner.
func (r *Repo) Delete(ctx context.Context, ownerID, id string) error {
	key := r.docKey(ownerID, id)
	if err := r.ensureExists(ctx, key); err != nil {
		return err
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) ensureExists(ctx context.Context, key string) error {
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// ownerPrefix returns the key prefix of an owner's documents. Owner and document IDs are
// base64url-encoded in keys, so they never contain the ':' separator or SCAN glob characters.
func (r *Repo) ownerPrefix(ownerID string) string {
	return r.prefix + "doc:" + keySegment(ownerID) + ":"
}

func (r *Repo) docKey(ownerID, id string) string {
	return r.ownerPrefix(ownerID) + keySegment(id)
}

func keySegment(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
