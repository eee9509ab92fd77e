package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"ragassist/internal/adapter/fs"
	"ragassist/internal/adapter/store"
	"ragassist/internal/domain"
	"ragassist/internal/logger"
	"ragassist/internal/port"
)

// IngestUseCase discovers documents, chunks them and indexes the chunks in
// the document store and the vector store. Re-runs are incremental: a file
// whose modification time is unchanged is skipped.
type IngestUseCase struct {
	walker   *fs.Walker
	chunker  port.Chunker
	store    *store.Store
	embedder port.Embedder
	vectors  port.VectorStore
	// ContextType stamped on every indexed chunk; retrieval filters on it.
	contextType string
	log         *slog.Logger
}

func NewIngestUseCase(
	walker *fs.Walker,
	chunker port.Chunker,
	st *store.Store,
	embedder port.Embedder,
	vectors port.VectorStore,
	contextType string,
	log *slog.Logger,
) *IngestUseCase {
	if log == nil {
		log = logger.Discard()
	}
	return &IngestUseCase{
		walker:      walker,
		chunker:     chunker,
		store:       st,
		embedder:    embedder,
		vectors:     vectors,
		contextType: contextType,
		log:         log,
	}
}

// IngestStats summarizes one ingestion run.
type IngestStats struct {
	Scanned int
	Indexed int
	Skipped int
	Chunks  int
}

// Progress is called after each file with the running counts.
type Progress func(file string, done, total int)

// Run ingests all documents under root. Individual file failures are
// logged and skipped; the run keeps going.
func (u *IngestUseCase) Run(ctx context.Context, root string, progress Progress) (IngestStats, error) {
	var stats IngestStats

	files, err := u.walker.Walk(root)
	if err != nil {
		return stats, fmt.Errorf("walk %s: %w", root, err)
	}
	stats.Scanned = len(files)

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if existing, found, err := u.store.GetDocument(file.RelPath); err == nil && found &&
			existing.ModTime.Equal(file.ModTime) {
			stats.Skipped++
			if progress != nil {
				progress(file.RelPath, i+1, len(files))
			}
			continue
		}

		n, err := u.ingestFile(file)
		if err != nil {
			u.log.Error("ingest failed", "file", file.RelPath, "error", err)
		} else {
			stats.Indexed++
			stats.Chunks += n
		}

		if progress != nil {
			progress(file.RelPath, i+1, len(files))
		}
	}

	u.log.Info("ingestion complete",
		"scanned", stats.Scanned,
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"chunks", stats.Chunks)
	return stats, nil
}

func (u *IngestUseCase) ingestFile(file fs.FileInfo) (int, error) {
	text, err := fs.ReadFile(file)
	if err != nil {
		return 0, err
	}

	chunks, err := u.chunker.Chunk(text, file.RelPath)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}

	if err := u.store.PutChunks(file.RelPath, chunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	if err := u.store.PutDocument(domain.Document{
		ID:      file.RelPath,
		Path:    file.AbsPath,
		ModTime: file.ModTime,
	}); err != nil {
		return 0, fmt.Errorf("store document: %w", err)
	}

	if u.embedder != nil && u.vectors != nil && len(chunks) > 0 {
		if err := u.indexVectors(file, chunks); err != nil {
			return 0, fmt.Errorf("index vectors: %w", err)
		}
	}
	return len(chunks), nil
}

// indexVectors embeds the chunks and upserts them with the chunk payload as
// metadata, so retrieval can rebuild candidates without a second lookup.
func (u *IngestUseCase) indexVectors(file fs.FileInfo, chunks []domain.TextChunk) error {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors, err := u.embedder.Embed(texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	items := make([]port.VectorItem, len(chunks))
	for i, ch := range chunks {
		items[i] = port.VectorItem{
			ID:     store.ChunkID(file.RelPath, ch.Metadata.ChunkIndex),
			Vector: vectors[i],
			Metadata: map[string]string{
				"text":         ch.Text,
				"doc_id":       file.RelPath,
				"filename":     filename(file.RelPath),
				"source":       file.RelPath,
				"context_type": u.contextType,
			},
		}
	}
	return u.vectors.Upsert(items)
}

func filename(relPath string) string {
	for i := len(relPath) - 1; i >= 0; i-- {
		if relPath[i] == '/' {
			return relPath[i+1:]
		}
	}
	return relPath
}
