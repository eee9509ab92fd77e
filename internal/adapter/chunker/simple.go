package chunker

import (
	"strings"

	"ragassist/internal/domain"
)

// SimpleChunker accumulates whitespace-separated words up to a character
// limit, with no overlap and no structure awareness. Kept for indexes built
// before the semantic chunker existed.
type SimpleChunker struct {
	maxLen int
}

func NewSimpleChunker(maxLen int) *SimpleChunker {
	return &SimpleChunker{maxLen: maxLen}
}

// Chunk splits text at word boundaries. Offsets are positions in the
// space-joined word stream, not the raw input.
func (c *SimpleChunker) Chunk(text, docID string) ([]domain.TextChunk, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	var (
		texts []string
		cur   []string
		size  int
	)
	for _, w := range words {
		add := len(w)
		if len(cur) > 0 {
			add++
		}
		if len(cur) > 0 && size+add > c.maxLen {
			texts = append(texts, strings.Join(cur, " "))
			cur = cur[:0]
			size = 0
			add = len(w)
		}
		cur = append(cur, w)
		size += add
	}
	if len(cur) > 0 {
		texts = append(texts, strings.Join(cur, " "))
	}

	total := len(texts)
	chunks := make([]domain.TextChunk, 0, total)
	pos := 0
	for i, t := range texts {
		chunks = append(chunks, domain.NewTextChunk(t, domain.ChunkMetadata{
			DocID:       docID,
			ChunkIndex:  i,
			TotalChunks: total,
			StartChar:   pos,
			EndChar:     pos + len(t),
		}))
		pos += len(t) + 1
	}
	return chunks, nil
}
