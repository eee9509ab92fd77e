package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// PIISensitivity is the ingestion-time sensitivity label of a chunk.
type PIISensitivity string

const (
	PIINone   PIISensitivity = "none"
	PIILow    PIISensitivity = "low"
	PIIMedium PIISensitivity = "medium"
	PIIHigh   PIISensitivity = "high"
)

// Document is a source file registered at ingestion time.
type Document struct {
	ID      string
	Path    string
	ModTime time.Time
}

// ChunkMetadata is stamped into every chunk for traceability.
// TotalChunks is only known once all chunks of a document exist, so the
// chunker fills it in a second pass.
type ChunkMetadata struct {
	DocID        string `json:"doc_id"`
	ChunkIndex   int    `json:"chunk_index"`
	TotalChunks  int    `json:"total_chunks"`
	StartChar    int    `json:"start_char"`
	EndChar      int    `json:"end_char"`
	HasOverlap   bool   `json:"has_overlap"`
	SectionTitle string `json:"section_title,omitempty"`
}

// TextChunk is an immutable fragment produced at ingestion time.
type TextChunk struct {
	Text        string        `json:"text"`
	Metadata    ChunkMetadata `json:"metadata"`
	ContentHash string        `json:"content_hash"`
}

// NewTextChunk builds a chunk and derives its content hash from the text.
func NewTextChunk(text string, meta ChunkMetadata) TextChunk {
	return TextChunk{Text: text, Metadata: meta, ContentHash: ContentHash(text)}
}

// ContentHash returns a short deterministic digest of chunk text, used for
// deduplication-by-content across re-ingestions.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:6])
}

// DocumentChunk is a retrieval-time candidate returned by the retriever.
// The pipeline treats these as read-only value objects; missing fields are
// tolerated with empty defaults rather than failing the query.
type DocumentChunk struct {
	ID       string
	Text     string
	Source   string
	DocID    string
	Filename string
	// Score is the similarity in [0,1] reported by the retriever,
	// nil when the retriever supplies none.
	Score          *float64
	PIISensitivity PIISensitivity
}

// RetrievalResult is the candidate pool for one query.
type RetrievalResult struct {
	Query  string
	Chunks []DocumentChunk
}

// ScoredChunk is a ranked candidate. Recomputed every query, never persisted.
type ScoredChunk struct {
	Chunk      DocumentChunk
	Score      float64
	Components map[string]float64
	Rank       int
}

// Citation points an answer back to a source chunk.
type Citation struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

// Result is the packaged outcome of one query.
type Result struct {
	Answer       string
	Query        string
	ChunksUsed   []DocumentChunk
	Sources      []string
	Metrics      map[string]any
	PIISensitive bool
	ChunkIDs     []string
	Citations    []Citation
}

// Product is one active service/account in a subject snapshot.
type Product struct {
	ServiceType string
	ServiceKey  string
	Status      string
	Extra       map[string]string
}

// Transaction is one recent movement (payment, transfer, grade) in a
// subject snapshot.
type Transaction struct {
	Timestamp   time.Time
	Type        string
	Amount      float64
	Currency    string
	Description string
	Extra       map[string]string
}

// Snapshot is structured per-subject data folded into the prompt alongside
// or instead of document chunks. Personal fields arrive pre-masked by the
// caller according to viewer role; this core never redacts.
type Snapshot struct {
	SubjectKey         string
	Products           []Product
	RecentTransactions []Transaction
	DisplayName        string
	DocumentID         string
	TaxID              string
	Email              string
	Phone              string
}

// HasData reports whether the snapshot carries anything worth answering
// from when no document candidates exist.
func (s *Snapshot) HasData() bool {
	if s == nil {
		return false
	}
	return len(s.Products) > 0 || len(s.RecentTransactions) > 0
}
