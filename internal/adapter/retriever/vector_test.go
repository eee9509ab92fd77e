package retriever

import (
	"context"
	"testing"

	"ragassist/internal/domain"
	"ragassist/internal/port"
)

// fakeEmbedder returns a fixed vector per input, recording calls.
type fakeEmbedder struct {
	calls [][]string
}

func (f *fakeEmbedder) Embed(texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int    { return 3 }
func (f *fakeEmbedder) ModelName() string { return "fake" }

// fakeVectorStore returns canned hits and records filters. searchFn, when
// set, picks the hits per filter.
type fakeVectorStore struct {
	hits     []port.VectorResult
	filters  []map[string]string
	searchFn func(filter map[string]string) []port.VectorResult
}

func (f *fakeVectorStore) Upsert(items []port.VectorItem) error { return nil }
func (f *fakeVectorStore) Delete(ids []string) error            { return nil }
func (f *fakeVectorStore) Count() (int, error)                  { return len(f.hits), nil }

func (f *fakeVectorStore) Search(query []float32, k int, filter map[string]string) ([]port.VectorResult, error) {
	f.filters = append(f.filters, filter)
	hits := f.hits
	if f.searchFn != nil {
		hits = f.searchFn(filter)
	}
	if len(hits) > k {
		return hits[:k], nil
	}
	return hits, nil
}

func hit(id string, score float64, meta map[string]string) port.VectorResult {
	return port.VectorResult{ID: id, Score: score, Metadata: meta}
}

func TestRetrieveBuildsChunksFromMetadata(t *testing.T) {
	vs := &fakeVectorStore{hits: []port.VectorResult{
		hit("c1", 0.8, map[string]string{
			"text":            "contenido del manual",
			"source":          "docs/manual.pdf",
			"filename":        "manual.pdf",
			"doc_id":          "docs/manual.pdf",
			"pii_sensitivity": "none",
		}),
	}}
	r := NewVectorRetriever(&fakeEmbedder{}, vs, false)

	result, err := r.Retrieve(context.Background(), "consulta", 10, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(result.Chunks))
	}
	ch := result.Chunks[0]
	if ch.Text != "contenido del manual" || ch.Filename != "manual.pdf" {
		t.Errorf("chunk fields not mapped: %+v", ch)
	}
	if ch.Score == nil {
		t.Fatal("score missing")
	}
	// Cosine 0.8 normalizes to 0.9.
	if *ch.Score < 0.89 || *ch.Score > 0.91 {
		t.Errorf("normalized score = %g, want 0.9", *ch.Score)
	}
}

func TestRetrievePassesFilters(t *testing.T) {
	vs := &fakeVectorStore{}
	r := NewVectorRetriever(&fakeEmbedder{}, vs, false)

	_, err := r.Retrieve(context.Background(), "consulta", 5, "subj-1", "educational")
	if err != nil {
		t.Fatal(err)
	}
	// One unfiltered-by-subject search plus one subject-scoped search.
	if len(vs.filters) != 2 {
		t.Fatalf("got %d searches, want 2", len(vs.filters))
	}
	public := vs.filters[0]
	if public["context_type"] != "educational" {
		t.Errorf("public filter = %v", public)
	}
	if _, ok := public["subject_id"]; ok {
		t.Error("public search must not be subject-filtered")
	}
	scoped := vs.filters[1]
	if scoped["context_type"] != "educational" || scoped["subject_id"] != "subj-1" {
		t.Errorf("scoped filter = %v", scoped)
	}
}

func TestRetrieveSubjectScopeKeepsPublicCorpus(t *testing.T) {
	// Ingested documents carry no subject metadata; a subject-scoped query
	// must still see them alongside the subject's own vectors.
	vs := &fakeVectorStore{searchFn: func(filter map[string]string) []port.VectorResult {
		if filter["subject_id"] == "s1" {
			return []port.VectorResult{hit("own", 0.6, map[string]string{"text": "dato del sujeto"})}
		}
		return []port.VectorResult{hit("pub", 0.8, map[string]string{"text": "documento publico"})}
	}}
	r := NewVectorRetriever(&fakeEmbedder{}, vs, false)

	result, err := r.Retrieve(context.Background(), "consulta", 10, "s1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("got %d chunks, want public + subject", len(result.Chunks))
	}
	ids := map[string]bool{}
	for _, ch := range result.Chunks {
		ids[ch.ID] = true
	}
	if !ids["pub"] || !ids["own"] {
		t.Errorf("chunks = %v, want both pub and own", ids)
	}
}

func TestRetrieveEmptyStoreNoError(t *testing.T) {
	r := NewVectorRetriever(&fakeEmbedder{}, &fakeVectorStore{}, false)

	result, err := r.Retrieve(context.Background(), "consulta", 10, "", "")
	if err != nil {
		t.Fatalf("empty store must not error: %v", err)
	}
	if len(result.Chunks) != 0 {
		t.Errorf("got %d chunks from empty store", len(result.Chunks))
	}
}

func TestRetrieveExpansionFusesByBestScore(t *testing.T) {
	emb := &fakeEmbedder{}
	vs := &fakeVectorStore{hits: []port.VectorResult{
		hit("c1", 0.5, map[string]string{"text": "a"}),
	}}
	r := NewVectorRetriever(emb, vs, true)

	result, err := r.Retrieve(context.Background(), "requisitos del prestamo hipotecario", 10, "", "")
	if err != nil {
		t.Fatal(err)
	}
	// Several variants searched, but the duplicate hit appears once.
	if len(emb.calls) != 1 || len(emb.calls[0]) < 2 {
		t.Errorf("expected one batched embed of multiple variants, got %v", emb.calls)
	}
	if len(result.Chunks) != 1 {
		t.Errorf("duplicate hits not fused: %d chunks", len(result.Chunks))
	}
}

func TestRetrieveZeroK(t *testing.T) {
	r := NewVectorRetriever(&fakeEmbedder{}, &fakeVectorStore{}, false)
	result, err := r.Retrieve(context.Background(), "consulta", 0, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Chunks) != 0 {
		t.Errorf("got %d chunks for k=0", len(result.Chunks))
	}
}

func TestStubRetriever(t *testing.T) {
	s := &Stub{Chunks: make([]domain.DocumentChunk, 5)}
	result, err := s.Retrieve(context.Background(), "q", 3, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Chunks) != 3 {
		t.Errorf("got %d chunks, want 3", len(result.Chunks))
	}
}
