// Package retriever turns vector-store hits into candidate chunk pools.
package retriever

import (
	"context"
	"fmt"

	"ragassist/internal/adapter/analyzer"
	"ragassist/internal/domain"
	"ragassist/internal/port"
)

// VectorRetriever embeds the query and searches a vector store. The chunk
// payload travels as vector metadata, so the same retriever works over any
// port.VectorStore backend.
type VectorRetriever struct {
	embedder port.Embedder
	vectors  port.VectorStore
	expand   bool
}

// NewVectorRetriever creates a retriever. With expand enabled the query is
// searched in several rule-based variants and results are fused by best
// score.
func NewVectorRetriever(embedder port.Embedder, vectors port.VectorStore, expand bool) *VectorRetriever {
	return &VectorRetriever{embedder: embedder, vectors: vectors, expand: expand}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string, k int, subjectID, contextType string) (domain.RetrievalResult, error) {
	result := domain.RetrievalResult{Query: query}
	if k <= 0 {
		return result, nil
	}

	queries := []string{query}
	if r.expand {
		queries = analyzer.SearchVariants(query)
	}

	vectors, err := r.embedder.Embed(queries)
	if err != nil {
		return result, fmt.Errorf("embed query: %w", err)
	}

	base := make(map[string]string)
	if contextType != "" {
		base["context_type"] = contextType
	}
	// Ingested documents carry no subject metadata, so a subject scope runs
	// as an additional filtered search on top of the public one; both result
	// sets fuse below by best score.
	filters := []map[string]string{base}
	if subjectID != "" {
		scoped := map[string]string{"subject_id": subjectID}
		if contextType != "" {
			scoped["context_type"] = contextType
		}
		filters = append(filters, scoped)
	}

	best := make(map[string]port.VectorResult)
	var order []string
	for _, vec := range vectors {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		for _, filter := range filters {
			hits, err := r.vectors.Search(vec, k, filter)
			if err != nil {
				return result, fmt.Errorf("vector search: %w", err)
			}
			for _, hit := range hits {
				prev, seen := best[hit.ID]
				if !seen {
					order = append(order, hit.ID)
				}
				if !seen || hit.Score > prev.Score {
					best[hit.ID] = hit
				}
			}
		}
	}

	for _, id := range order {
		result.Chunks = append(result.Chunks, toChunk(best[id]))
		if len(result.Chunks) >= k {
			break
		}
	}
	return result, nil
}

// toChunk rebuilds a candidate from vector metadata. Missing fields default
// to empty; the pipeline downstream tolerates them.
func toChunk(hit port.VectorResult) domain.DocumentChunk {
	score := normalizeScore(hit.Score)
	return domain.DocumentChunk{
		ID:             hit.ID,
		Text:           hit.Metadata["text"],
		Source:         hit.Metadata["source"],
		DocID:          hit.Metadata["doc_id"],
		Filename:       hit.Metadata["filename"],
		Score:          &score,
		PIISensitivity: domain.PIISensitivity(hit.Metadata["pii_sensitivity"]),
	}
}

// normalizeScore maps cosine similarity from [-1,1] to [0,1], clamped.
func normalizeScore(s float64) float64 {
	n := (s + 1) / 2
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
