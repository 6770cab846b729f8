package document

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"time"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// Hash field names.
const (
	fieldID        = "id"
	fieldOwner     = "owner_id"
	fieldTitle     = "title"
	fieldFileName  = "file_name"
	fieldFileType  = "file_type"
	fieldURL       = "url"
	fieldText      = "text"
	fieldSummary   = "summary"
	fieldInsights  = "insights"
	fieldEmbedding = "embedding"
	fieldCreatedAt = "created_at"
)

// buildHashFields converts a domain Document into a flat map[string]string for HSET.
// Every field is written so an update fully replaces the previous version.
func buildHashFields(doc *domdoc.Document) map[string]string {
	insights, _ := json.Marshal(doc.Insights()) // []string always marshals
	return map[string]string{
		fieldID:        doc.ID(),
		fieldOwner:     doc.OwnerID(),
		fieldTitle:     doc.Title(),
		fieldFileName:  doc.FileName(),
		fieldFileType:  doc.FileType(),
		fieldURL:       doc.URL(),
		fieldText:      doc.Text(),
		fieldSummary:   doc.Summary(),
		fieldInsights:  string(insights),
		fieldEmbedding: encodeVector(doc.Embedding()),
		fieldCreatedAt: doc.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
}

// parseHashFields converts a flat hash map back into a domain Document.
// Malformed optional fields are dropped rather than failing the whole document.
func parseHashFields(m map[string]string) domdoc.Document {
	var insights []string
	if raw := m[fieldInsights]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &insights)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, m[fieldCreatedAt])

	return domdoc.Reconstruct(domdoc.Attributes{
		ID:        m[fieldID],
		OwnerID:   m[fieldOwner],
		Title:     m[fieldTitle],
		FileName:  m[fieldFileName],
		FileType:  m[fieldFileType],
		URL:       m[fieldURL],
		Text:      m[fieldText],
		Summary:   m[fieldSummary],
		Insights:  insights,
		Embedding: decodeVector(m[fieldEmbedding]),
		CreatedAt: createdAt,
	})
}

// encodeVector serializes []float32 as base64 of 4 little-endian bytes per float.
// Base64 keeps the field valid UTF-8 for stores that keep hashes as JSON.
func encodeVector(v []float32) string {
	if len(v) == 0 {
		return ""
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// decodeVector deserializes encodeVector output; anything malformed decodes to nil.
func decodeVector(s string) []float32 {
	if s == "" {
		return nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
