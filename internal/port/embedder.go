package port

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorStore stores and searches embedding vectors.
type VectorStore interface {
	// Upsert adds or updates vectors in the store.
	Upsert(items []VectorItem) error

	// Search finds the k nearest vectors to the query, optionally filtered
	// by exact metadata matches.
	Search(query []float32, k int, filter map[string]string) ([]VectorResult, error)

	// Delete removes vectors by their IDs.
	Delete(ids []string) error

	// Count returns the number of vectors in the store.
	Count() (int, error)
}

// VectorItem is a vector to be stored together with its chunk payload.
type VectorItem struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
}

// VectorResult is one search hit.
type VectorResult struct {
	ID       string
	Score    float64
	Metadata map[string]string
}
