// Package ranker scores, diversifies and deduplicates retrieval candidates.
// Scores are recomputed per query and never persisted.
package ranker

import (
	"sort"
	"strings"

	"ragassist/config"
	"ragassist/internal/adapter/analyzer"
	"ragassist/internal/domain"
)

// HybridScorer combines retriever similarity with lexical signals from the
// query analysis. The final score is additive and unbounded: boosts stack
// on purpose so strongly-signaled chunks outrank everything.
type HybridScorer struct {
	cfg config.RetrieveConfig
}

func NewHybridScorer(cfg config.RetrieveConfig) *HybridScorer {
	return &HybridScorer{cfg: cfg}
}

// Neutral similarity assumed for retrievers that report no score.
const defaultSemantic = 0.5

// Score ranks candidates for one query. Candidates whose similarity falls
// below min_similarity are discarded before any boost can rescue them;
// candidates without a similarity get the neutral prior, subject to the
// same floor. The returned slice is sorted best first with 1-based ranks
// stamped; ties keep retriever order.
func (s *HybridScorer) Score(chunks []domain.DocumentChunk, a analyzer.Analysis) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, 0, len(chunks))

	for _, ch := range chunks {
		semantic := defaultSemantic
		if ch.Score != nil {
			semantic = *ch.Score
		}
		if semantic < s.cfg.MinSimilarity {
			continue
		}

		normText := analyzer.Normalize(ch.Text)
		keyword := keywordRatio(normText, a.Keywords)
		mention := mentionSignal(ch, a.MentionedDoc)
		topic := topicSignal(ch, normText, a.Topics)

		score := semantic*s.cfg.SemanticWeight +
			keyword*s.cfg.KeywordWeight +
			mention*s.cfg.MentionBoost +
			topic*s.cfg.TopicBoost

		scored = append(scored, domain.ScoredChunk{
			Chunk: ch,
			Score: score,
			Components: map[string]float64{
				"semantic": semantic,
				"keyword":  keyword,
				"mention":  mention,
				"topic":    topic,
			},
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}

// keywordRatio is the fraction of query keywords present in the chunk.
// Keywords are also matched against the text with spaces removed, so a
// compound keyword still hits text where the words appear separated.
func keywordRatio(normText string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	noSpace := strings.ReplaceAll(normText, " ", "")

	matched := 0
	for _, kw := range keywords {
		if strings.Contains(normText, kw) || strings.Contains(noSpace, kw) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

// mentionSignal is 1 when the chunk belongs to the explicitly mentioned
// document, 0 otherwise.
func mentionSignal(ch domain.DocumentChunk, mentioned string) float64 {
	if mentioned == "" {
		return 0
	}
	if strings.Contains(strings.ToLower(ch.Filename), mentioned) {
		return 1
	}
	return 0
}

// topicSignal averages per-topic evidence: a topic in the filename counts
// double a topic only found in the body. Filename matches are stronger
// because file names in this corpus name their subject.
func topicSignal(ch domain.DocumentChunk, normText string, topics []string) float64 {
	if len(topics) == 0 {
		return 0
	}
	filename := strings.ToLower(ch.Filename)

	var total float64
	for _, t := range topics {
		switch {
		case strings.Contains(filename, t):
			total += 2.0
		case strings.Contains(normText, t):
			total += 0.5
		}
	}
	return total / float64(len(topics))
}
