package port

import (
	"context"

	"ragassist/internal/domain"
)

// Retriever is the external semantic-search collaborator.
type Retriever interface {
	// Retrieve returns the top-k candidate chunks for the query, optionally
	// scoped to a subject and a context type ("public_docs", "educational",
	// empty for all). Implementations return an empty pool, never an error,
	// when no reasonable result exists.
	Retrieve(ctx context.Context, query string, k int, subjectID, contextType string) (domain.RetrievalResult, error)
}
