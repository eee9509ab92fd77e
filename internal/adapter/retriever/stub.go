package retriever

import (
	"context"

	"ragassist/internal/domain"
)

// Stub returns a fixed candidate pool. Useful for tests and for running the
// pipeline without an embedding backend.
type Stub struct {
	Chunks []domain.DocumentChunk
	Err    error
}

func (s *Stub) Retrieve(ctx context.Context, query string, k int, subjectID, contextType string) (domain.RetrievalResult, error) {
	if s.Err != nil {
		return domain.RetrievalResult{}, s.Err
	}
	chunks := s.Chunks
	if len(chunks) > k {
		chunks = chunks[:k]
	}
	return domain.RetrievalResult{Query: query, Chunks: chunks}, nil
}
