package port

import "ragassist/internal/domain"

// Chunker splits raw document text into bounded fragments with metadata.
type Chunker interface {
	Chunk(text, docID string) ([]domain.TextChunk, error)
}
