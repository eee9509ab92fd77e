package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ragassist/internal/adapter/chunker"
	"ragassist/internal/adapter/fs"
	"ragassist/internal/adapter/store"
	"ragassist/internal/port"
)

type fakeEmbedder struct{ calls int }

func (f *fakeEmbedder) Embed(texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}
func (f *fakeEmbedder) Dimension() int    { return 3 }
func (f *fakeEmbedder) ModelName() string { return "fake" }

func newIngestFixture(t *testing.T) (*IngestUseCase, *store.Store, *store.BoltVectorStore, string) {
	t.Helper()

	root := t.TempDir()
	st, err := store.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	vs, err := store.NewBoltVectorStore(st)
	if err != nil {
		t.Fatal(err)
	}

	u := NewIngestUseCase(
		fs.NewWalker([]string{"**/*.txt"}, nil),
		chunker.NewSemanticChunker(500, 50, 100),
		st,
		&fakeEmbedder{},
		vs,
		"public_docs",
		nil,
	)
	return u, st, vs, root
}

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestIngestIndexesDocuments(t *testing.T) {
	u, st, vs, root := newIngestFixture(t)
	writeDoc(t, root, "docs/manual.txt", "El manual describe los procedimientos de atención al cliente.")

	stats, err := u.Run(context.Background(), root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Indexed != 1 || stats.Chunks == 0 {
		t.Errorf("stats = %+v", stats)
	}

	chunks, err := st.GetChunks("docs/manual.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("no chunks stored")
	}

	n, _ := vs.Count()
	if n != len(chunks) {
		t.Errorf("vector count = %d, want %d", n, len(chunks))
	}

	hits, err := vs.Search([]float32{1, 0, 0}, 5, map[string]string{"context_type": "public_docs"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) == 0 {
		t.Fatal("no vector hits")
	}
	meta := hits[0].Metadata
	if meta["filename"] != "manual.txt" || meta["doc_id"] != "docs/manual.txt" || meta["text"] == "" {
		t.Errorf("vector metadata incomplete: %v", meta)
	}
}

func TestIngestSkipsUnchangedFiles(t *testing.T) {
	u, _, _, root := newIngestFixture(t)
	writeDoc(t, root, "a.txt", "Contenido sin cambios entre corridas.")

	if _, err := u.Run(context.Background(), root, nil); err != nil {
		t.Fatal(err)
	}
	stats, err := u.Run(context.Background(), root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Skipped != 1 || stats.Indexed != 0 {
		t.Errorf("second run stats = %+v, want 1 skipped", stats)
	}
}

func TestIngestProgressCallback(t *testing.T) {
	u, _, _, root := newIngestFixture(t)
	writeDoc(t, root, "a.txt", "uno")
	writeDoc(t, root, "b.txt", "dos")

	var seen []string
	_, err := u.Run(context.Background(), root, func(file string, done, total int) {
		seen = append(seen, file)
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 {
		t.Errorf("progress called %d times, want 2", len(seen))
	}
}

func TestIngestWithoutVectorBackend(t *testing.T) {
	root := t.TempDir()
	st, err := store.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	var noVectors port.VectorStore
	u := NewIngestUseCase(
		fs.NewWalker(nil, nil),
		chunker.NewSemanticChunker(500, 50, 100),
		st,
		nil,
		noVectors,
		"",
		nil,
	)

	writeDoc(t, root, "a.txt", "Texto plano sin índice vectorial.")
	stats, err := u.Run(context.Background(), root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Indexed != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
