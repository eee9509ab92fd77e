package ranker

import (
	"ragassist/internal/adapter/analyzer"
	"ragassist/internal/domain"
)

// Deduplicate drops chunks whose character-trigram Jaccard similarity with
// an already kept chunk reaches threshold. The list is walked in rank order
// so of two near-duplicates the better ranked one survives.
func Deduplicate(scored []domain.ScoredChunk, threshold float64) []domain.ScoredChunk {
	if len(scored) < 2 {
		return scored
	}

	kept := make([]domain.ScoredChunk, 0, len(scored))
	grams := make([]map[string]struct{}, 0, len(scored))

	for _, sc := range scored {
		g := trigrams(sc.Chunk.Text)

		dup := false
		for _, kg := range grams {
			if jaccard(g, kg) >= threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, sc)
		grams = append(grams, g)
	}
	return kept
}

// trigrams builds the character 3-gram set over normalized text. Texts
// shorter than three runes fall back to a single gram of the whole text so
// they still compare equal to identical short texts.
func trigrams(text string) map[string]struct{} {
	runes := []rune(analyzer.Normalize(text))

	set := make(map[string]struct{})
	if len(runes) < 3 {
		if len(runes) > 0 {
			set[string(runes)] = struct{}{}
		}
		return set
	}
	for i := 0; i+3 <= len(runes); i++ {
		set[string(runes[i:i+3])] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	inter := 0
	for g := range a {
		if _, ok := b[g]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
