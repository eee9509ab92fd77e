// Package analyzer extracts retrieval signals from user queries: keywords,
// explicit document mentions, topic terms and full-list intent. Everything
// is heuristic pattern matching, no ML.
package analyzer

import (
	"regexp"
	"sort"
	"strings"
)

// Analysis holds the signals extracted from one query.
type Analysis struct {
	Keywords     []string
	MentionedDoc string
	Topics       []string
	FullList     bool
}

const (
	maxKeywords = 15
	maxTopics   = 5
)

var wordRe = regexp.MustCompile(`[a-z]+`)

// Mention patterns, tried in order; the first match wins. Later patterns
// are deliberately broader fallbacks, so the order is load-bearing.
var mentionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]+\.pdf)"`),
	regexp.MustCompile(`'([^']+\.pdf)'`),
	regexp.MustCompile(`([a-z0-9_-]+\.pdf)`),
	regexp.MustCompile(`(?:segun|de|del|en)\s+(?:el\s+)?(?:documento|archivo|libro|texto)\s+([a-z0-9_-]+)`),
	regexp.MustCompile(`(?:documento|archivo|libro)\s+([a-z0-9_-]+)`),
	regexp.MustCompile(`(?:el|la|del)\s+([a-z]+[_-][a-z0-9_-]+)`),
}

var mentionNameRe = regexp.MustCompile(`^[a-z0-9_-]+$`)

var topicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:asignatura|materia|curso|clase|taller|seminario)\s+(?:de\s+)?([a-z]+)`),
	regexp.MustCompile(`(?:carrera|licenciatura|maestria|doctorado|especializacion|diplomado)\s+(?:de|en)\s+([a-z]+)`),
	regexp.MustCompile(`(?:documento|manual|guia|libro|texto|programa)\s+(?:de|sobre)\s+([a-z]+)`),
	regexp.MustCompile(`(?:sobre|acerca\s+de|respecto\s+a|referente\s+a)\s+([a-z]+)`),
	regexp.MustCompile(`(?:el|la)\s+([a-z]{5,})\s+(?:del|de\s+la|que|es)`),
}

var fullListPhrases = []string{
	"toda la lista",
	"lista completa",
	"todas las",
	"toda la",
	"enumerame",
	"enumera",
	"enumerar",
	"dame la lista",
	"dame toda la lista",
	"listar",
	"toda lista",
	"la lista completa",
}

// Analyze extracts all query signals in one pass.
func Analyze(query string) Analysis {
	return Analysis{
		Keywords:     ExtractKeywords(query),
		MentionedDoc: ExtractMentionedDoc(query),
		Topics:       ExtractTopics(query),
		FullList:     IsFullListRequest(query),
	}
}

// ExtractKeywords returns lowercase accent-stripped tokens of length >= 3,
// stopword-filtered, deduplicated and sorted longest first as a proxy for
// specificity, capped at maxKeywords.
func ExtractKeywords(query string) []string {
	normalized := Normalize(query)
	words := wordRe.FindAllString(normalized, -1)

	seen := make(map[string]struct{})
	var keywords []string
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		if _, stop := keywordStopwords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		return len(keywords[i]) > len(keywords[j])
	})

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

// ExtractMentionedDoc detects an explicitly named document. The result is
// lowercase with any .pdf suffix stripped, or empty when nothing matches.
func ExtractMentionedDoc(query string) string {
	queryLower := strings.ToLower(query)

	for _, pattern := range mentionPatterns {
		m := pattern.FindStringSubmatch(queryLower)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		name = strings.TrimSuffix(name, ".pdf")
		if len(name) >= 3 && mentionNameRe.MatchString(name) {
			return name
		}
	}
	return ""
}

// ExtractTopics derives likely topic terms from contextual templates, then
// falls back to long significant words. Pattern matches come first because
// they are stronger evidence; the combined list is deduplicated and capped.
func ExtractTopics(query string) []string {
	normalized := Normalize(query)

	var topics []string
	for _, pattern := range topicPatterns {
		for _, m := range pattern.FindAllStringSubmatch(normalized, -1) {
			t := m[1]
			if len(t) < 4 {
				continue
			}
			if _, stop := structuralStopwords[t]; stop {
				continue
			}
			topics = append(topics, t)
		}
	}

	topics = append(topics, significantTerms(normalized, 5)...)

	seen := make(map[string]struct{})
	var result []string
	for _, t := range topics {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		result = append(result, t)
		if len(result) == maxTopics {
			break
		}
	}
	return result
}

// significantTerms returns non-stopword words of at least minLen characters,
// longest first, deduplicated. Input must already be normalized.
func significantTerms(normalized string, minLen int) []string {
	words := wordRe.FindAllString(normalized, -1)

	var significant []string
	for _, w := range words {
		if len(w) < minLen {
			continue
		}
		if _, stop := structuralStopwords[w]; stop {
			continue
		}
		if _, stop := keywordStopwords[w]; stop {
			continue
		}
		significant = append(significant, w)
	}

	sort.SliceStable(significant, func(i, j int) bool {
		return len(significant[i]) > len(significant[j])
	})

	seen := make(map[string]struct{})
	var unique []string
	for _, w := range significant {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		unique = append(unique, w)
	}
	return unique
}

// IsFullListRequest reports whether the user explicitly asks for an
// exhaustive enumeration rather than a summary. The orchestrator widens the
// selection limit and the prompt builder adds an enumeration instruction.
func IsFullListRequest(query string) bool {
	if query == "" {
		return false
	}
	q := strings.ToLower(query)
	for _, phrase := range fullListPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}
