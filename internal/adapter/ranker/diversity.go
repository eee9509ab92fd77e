package ranker

import (
	"strings"

	"ragassist/internal/domain"
)

// docKey groups chunks by their originating document for the per-document
// caps. Falls back through filename, then source, then a shared bucket.
func docKey(ch domain.DocumentChunk) string {
	if ch.Filename != "" {
		return strings.ToLower(ch.Filename)
	}
	if ch.Source != "" {
		return strings.ToLower(ch.Source)
	}
	return "unknown"
}

// SelectDiverse walks the ranked list best first, admitting chunks until
// limit while capping how many may come from any single document. A
// document the user explicitly mentioned gets the higher maxFromMentioned
// cap; everything else gets maxPerDoc. Relative order is preserved.
func SelectDiverse(scored []domain.ScoredChunk, limit int, mentionedDoc string, maxPerDoc, maxFromMentioned int) []domain.ScoredChunk {
	if limit <= 0 {
		return nil
	}

	perDoc := make(map[string]int)
	var selected []domain.ScoredChunk

	for _, sc := range scored {
		key := docKey(sc.Chunk)

		docCap := maxPerDoc
		if mentionedDoc != "" && strings.Contains(key, mentionedDoc) {
			docCap = maxFromMentioned
		}

		if perDoc[key] >= docCap {
			continue
		}
		perDoc[key]++
		selected = append(selected, sc)

		if len(selected) >= limit {
			break
		}
	}
	return selected
}
