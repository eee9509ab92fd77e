package ranker

import (
	"fmt"
	"testing"

	"ragassist/config"
	"ragassist/internal/adapter/analyzer"
	"ragassist/internal/domain"
)

func testRetrieveConfig() config.RetrieveConfig {
	return config.DefaultConfig().Retrieve
}

func chunk(id, text, filename string, score *float64) domain.DocumentChunk {
	return domain.DocumentChunk{
		ID:       id,
		Text:     text,
		Filename: filename,
		Source:   filename,
		Score:    score,
	}
}

func f(v float64) *float64 { return &v }

func TestScoreSemanticMonotonic(t *testing.T) {
	s := NewHybridScorer(testRetrieveConfig())

	chunks := []domain.DocumentChunk{
		chunk("a", "texto sin relacion alguna", "a.pdf", f(0.3)),
		chunk("b", "texto sin relacion alguna", "b.pdf", f(0.9)),
	}
	scored := s.Score(chunks, analyzer.Analysis{})
	if len(scored) != 2 {
		t.Fatalf("got %d scored, want 2", len(scored))
	}
	if scored[0].Chunk.ID != "b" {
		t.Errorf("higher similarity should rank first, got %q", scored[0].Chunk.ID)
	}
	if scored[0].Score <= scored[1].Score {
		t.Errorf("scores not descending: %g, %g", scored[0].Score, scored[1].Score)
	}
	if scored[0].Rank != 1 || scored[1].Rank != 2 {
		t.Errorf("ranks = %d, %d, want 1, 2", scored[0].Rank, scored[1].Rank)
	}
}

func TestScoreMinSimilarityFloor(t *testing.T) {
	s := NewHybridScorer(testRetrieveConfig()) // min_similarity 0.12

	chunks := []domain.DocumentChunk{
		chunk("low", "prestamo hipotecario con tasa preferencial", "prestamos.pdf", f(0.05)),
		chunk("ok", "otro texto", "otro.pdf", f(0.13)),
	}
	// Strong lexical signals must not rescue a below-floor candidate.
	a := analyzer.Analyze("requisitos del prestamo hipotecario segun el documento prestamos.pdf")

	scored := s.Score(chunks, a)
	for _, sc := range scored {
		if sc.Chunk.ID == "low" {
			t.Fatal("candidate below min_similarity survived scoring")
		}
	}
	if len(scored) != 1 {
		t.Errorf("got %d scored, want 1", len(scored))
	}
}

func TestScoreNilSimilarityGetsNeutralDefault(t *testing.T) {
	s := NewHybridScorer(testRetrieveConfig())

	scored := s.Score([]domain.DocumentChunk{
		chunk("a", "texto", "a.pdf", nil),
	}, analyzer.Analysis{})
	if len(scored) != 1 {
		t.Fatalf("unscored candidate was dropped")
	}
	if got := scored[0].Components["semantic"]; got != 0.5 {
		t.Errorf("semantic component = %g, want 0.5", got)
	}
}

func TestScoreNilSimilaritySubjectToFloor(t *testing.T) {
	cfg := testRetrieveConfig()
	cfg.MinSimilarity = 0.6
	s := NewHybridScorer(cfg)

	scored := s.Score([]domain.DocumentChunk{
		chunk("a", "texto", "a.pdf", nil),
	}, analyzer.Analysis{})
	if len(scored) != 0 {
		t.Errorf("neutral 0.5 prior must not pass a 0.6 floor, got %d scored", len(scored))
	}
}

func TestScoreKeywordRatio(t *testing.T) {
	s := NewHybridScorer(testRetrieveConfig())

	a := analyzer.Analysis{Keywords: []string{"hipotecario", "tasa"}}
	scored := s.Score([]domain.DocumentChunk{
		chunk("both", "el prestamo hipotecario tiene una tasa fija", "x.pdf", f(0.5)),
		chunk("one", "el prestamo hipotecario es a veinte anos", "y.pdf", f(0.5)),
		chunk("none", "la cuenta corriente no genera intereses", "z.pdf", f(0.5)),
	}, a)

	byID := map[string]domain.ScoredChunk{}
	for _, sc := range scored {
		byID[sc.Chunk.ID] = sc
	}
	if byID["both"].Components["keyword"] != 1.0 {
		t.Errorf("keyword ratio = %g, want 1.0", byID["both"].Components["keyword"])
	}
	if byID["one"].Components["keyword"] != 0.5 {
		t.Errorf("keyword ratio = %g, want 0.5", byID["one"].Components["keyword"])
	}
	if byID["none"].Components["keyword"] != 0 {
		t.Errorf("keyword ratio = %g, want 0", byID["none"].Components["keyword"])
	}
	if !(byID["both"].Score > byID["one"].Score && byID["one"].Score > byID["none"].Score) {
		t.Error("keyword matches should order the candidates")
	}
}

func TestScoreKeywordMatchesAcrossSpaces(t *testing.T) {
	if keywordRatio("abc def", []string{"abcdef"}) != 1.0 {
		t.Error("keyword should match text with spaces removed")
	}
}

func TestScoreKeywordAccentInsensitive(t *testing.T) {
	ratio := keywordRatio(analyzer.Normalize("La evaluación será el lunes"), []string{"evaluacion"})
	if ratio != 1.0 {
		t.Errorf("accented text should match unaccented keyword, ratio = %g", ratio)
	}
}

func TestScoreMentionBoost(t *testing.T) {
	s := NewHybridScorer(testRetrieveConfig())

	a := analyzer.Analysis{MentionedDoc: "reglamento"}
	scored := s.Score([]domain.DocumentChunk{
		chunk("other", "mismo texto", "manual.pdf", f(0.5)),
		chunk("hit", "mismo texto", "reglamento_interno.pdf", f(0.5)),
	}, a)

	if scored[0].Chunk.ID != "hit" {
		t.Errorf("mentioned document should rank first, got %q", scored[0].Chunk.ID)
	}
	if scored[0].Components["mention"] != 1.0 {
		t.Errorf("mention component = %g, want 1.0", scored[0].Components["mention"])
	}
}

func TestScoreTopicFilenameOutweighsBody(t *testing.T) {
	s := NewHybridScorer(testRetrieveConfig())

	a := analyzer.Analysis{Topics: []string{"matematicas"}}
	scored := s.Score([]domain.DocumentChunk{
		chunk("body", "el curso de matematicas cubre algebra", "programa.pdf", f(0.5)),
		chunk("file", "el contenido cubre algebra", "matematicas.pdf", f(0.5)),
	}, a)

	if scored[0].Chunk.ID != "file" {
		t.Errorf("filename topic match should rank first, got %q", scored[0].Chunk.ID)
	}
	if scored[0].Components["topic"] != 2.0 {
		t.Errorf("filename topic component = %g, want 2.0", scored[0].Components["topic"])
	}
	if scored[1].Components["topic"] != 0.5 {
		t.Errorf("body topic component = %g, want 0.5", scored[1].Components["topic"])
	}
}

func TestScoreTieKeepsRetrieverOrder(t *testing.T) {
	s := NewHybridScorer(testRetrieveConfig())

	var chunks []domain.DocumentChunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, chunk(fmt.Sprintf("c%d", i), "texto igual", "doc.pdf", f(0.5)))
	}
	scored := s.Score(chunks, analyzer.Analysis{})
	for i, sc := range scored {
		if want := fmt.Sprintf("c%d", i); sc.Chunk.ID != want {
			t.Errorf("position %d: got %q, want %q", i, sc.Chunk.ID, want)
		}
	}
}

func TestScoreEmptyInput(t *testing.T) {
	s := NewHybridScorer(testRetrieveConfig())
	if got := s.Score(nil, analyzer.Analysis{}); len(got) != 0 {
		t.Errorf("got %d scored from empty input", len(got))
	}
}
