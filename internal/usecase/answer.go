// Package usecase wires the retrieval pipeline: analyze, retrieve, rank,
// select, assemble, generate, package.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ragassist/config"
	"ragassist/internal/adapter/analyzer"
	"ragassist/internal/adapter/llm"
	"ragassist/internal/adapter/prompt"
	"ragassist/internal/adapter/ranker"
	"ragassist/internal/domain"
	"ragassist/internal/logger"
	"ragassist/internal/port"
)

// User-facing fallback messages. Collaborator failures are downgraded to
// these; a raw error never reaches the caller as an answer.
const (
	errorMessage  = "Error procesando la consulta. Por favor intente nuevamente."
	noInfoMessage = "No encontré información relevante en la documentación disponible para responder tu consulta."
)

const noInfoMentionedFmt = "No encontré información sobre %q en la documentación disponible."

// salvageLimit caps how many raw candidates back an answer when diversity
// selection comes up empty.
const salvageLimit = 3

// Request is one question against the pipeline.
type Request struct {
	Query       string
	SubjectID   string
	ContextType string
	Snapshot    *domain.Snapshot
	History     []prompt.Turn
	// RegulatoryStrict disables answer caching for this request so every
	// answer is generated fresh.
	RegulatoryStrict bool
}

// AnswerUseCase orchestrates one question end to end. Answer never returns
// an error: failures degrade to fallback answers with the cause recorded in
// the result metrics and the log.
type AnswerUseCase struct {
	retriever port.Retriever
	llm       port.LLM
	cache     port.AnswerCache
	builder   *prompt.Builder
	scorer    *ranker.HybridScorer
	cfg       config.RetrieveConfig
	log       *slog.Logger
}

func NewAnswerUseCase(
	retriever port.Retriever,
	generator port.LLM,
	answerCache port.AnswerCache,
	builder *prompt.Builder,
	cfg config.RetrieveConfig,
	log *slog.Logger,
) *AnswerUseCase {
	if answerCache == nil {
		answerCache = nullCache{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &AnswerUseCase{
		retriever: retriever,
		llm:       generator,
		cache:     answerCache,
		builder:   builder,
		scorer:    ranker.NewHybridScorer(cfg),
		cfg:       cfg,
		log:       log,
	}
}

func cacheKey(req Request) string {
	subject := req.SubjectID
	if subject == "" {
		subject = "anon"
	}
	contextType := req.ContextType
	if contextType == "" {
		contextType = "all"
	}
	return subject + "::" + contextType + "::" + strings.ToLower(strings.TrimSpace(req.Query))
}

// Answer runs the full pipeline for one request. A panic anywhere in the
// pipeline degrades to the fixed error answer like any collaborator error.
func (u *AnswerUseCase) Answer(ctx context.Context, req Request) (result domain.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			u.log.Error("panic while answering", "panic", r)
			result = errorResult(req.Query, fmt.Errorf("panic: %v", r))
		}
	}()

	key := cacheKey(req)
	if !req.RegulatoryStrict {
		if cached, ok := u.cache.GetAnswer(key); ok {
			u.log.Debug("answer cache hit", "key", key)
			return domain.Result{
				Answer:  cached,
				Query:   req.Query,
				Metrics: map[string]any{"cache_hit": true},
			}
		}
	}

	analysis := analyzer.Analyze(req.Query)

	retrieval, err := u.retriever.Retrieve(ctx, req.Query, u.cfg.TopK, req.SubjectID, req.ContextType)
	if err != nil {
		u.log.Error("retrieval failed", "error", err)
		return errorResult(req.Query, err)
	}
	candidates := retrieval.Chunks

	if len(candidates) == 0 {
		return u.answerWithoutDocuments(ctx, req, analysis, key)
	}

	scored := u.scorer.Score(candidates, analysis)
	if u.cfg.UseDedup {
		scored = ranker.Deduplicate(scored, u.cfg.DedupThreshold)
	}

	limit := u.cfg.SelectionBudget
	if analysis.FullList {
		limit = u.cfg.TopK
	}
	selected := ranker.SelectDiverse(scored, limit, analysis.MentionedDoc, u.cfg.MaxPerDoc, u.cfg.MaxFromMentioned)

	if len(selected) == 0 {
		// Every candidate fell below the similarity floor. The best raw
		// candidates travel with the result so operators can see what was
		// almost relevant, but no answer is generated from them.
		salvage := candidates
		if len(salvage) > salvageLimit {
			salvage = salvage[:salvageLimit]
		}
		u.log.Warn("selection empty after ranking", "candidates", len(candidates))
		return domain.Result{
			Answer:     noInfoAnswer(analysis),
			Query:      req.Query,
			ChunksUsed: salvage,
			Metrics:    map[string]any{"candidates": len(candidates), "selected": 0},
		}
	}

	chunks := make([]domain.DocumentChunk, 0, len(selected))
	for _, sc := range selected {
		chunks = append(chunks, sc.Chunk)
	}

	promptText := u.builder.Build(req.Query, contextBlocks(req.Snapshot, chunks), req.History, analysis.FullList)

	answer, err := u.llm.Generate(ctx, promptText)
	if err != nil {
		u.log.Error("generation failed", "error", err)
		return errorResult(req.Query, err)
	}

	result = packageResult(req.Query, answer, chunks)
	result.Metrics["candidates"] = len(candidates)
	result.Metrics["selected"] = len(selected)
	result.Metrics["full_list"] = analysis.FullList
	result.Metrics["elapsed_ms"] = time.Since(start).Milliseconds()

	if !req.RegulatoryStrict {
		u.cache.SetAnswer(key, answer)
	}

	u.log.Info("answered",
		"candidates", len(candidates),
		"selected", len(selected),
		"elapsed_ms", time.Since(start).Milliseconds())
	return result
}

// answerWithoutDocuments handles the empty candidate pool: answer from the
// subject snapshot when it has data, otherwise a fixed no-information
// message. The no-information message is never cached so a later ingestion
// is picked up immediately.
func (u *AnswerUseCase) answerWithoutDocuments(ctx context.Context, req Request, analysis analyzer.Analysis, key string) domain.Result {
	if req.Snapshot.HasData() {
		promptText := u.builder.Build(req.Query, contextBlocks(req.Snapshot, nil), req.History, analysis.FullList)

		answer, err := u.llm.Generate(ctx, promptText)
		if err != nil {
			u.log.Error("snapshot-only generation failed", "error", err)
			return errorResult(req.Query, err)
		}
		if !req.RegulatoryStrict {
			u.cache.SetAnswer(key, answer)
		}
		return domain.Result{
			Answer:  answer,
			Query:   req.Query,
			Metrics: map[string]any{"candidates": 0, "selected": 0, "snapshot_only": true},
		}
	}

	return domain.Result{
		Answer:  noInfoAnswer(analysis),
		Query:   req.Query,
		Metrics: map[string]any{"candidates": 0, "selected": 0},
	}
}

// noInfoAnswer names the mentioned document when the analyzer found one,
// so the user knows which document came up empty.
func noInfoAnswer(analysis analyzer.Analysis) string {
	if analysis.MentionedDoc != "" {
		return fmt.Sprintf(noInfoMentionedFmt, analysis.MentionedDoc)
	}
	return noInfoMessage
}

// AnswerStream runs the pipeline and returns the generation as a token
// stream. Streamed answers are never written to the cache; cached answers
// and fallback messages stream as a single fragment.
func (u *AnswerUseCase) AnswerStream(ctx context.Context, req Request) (stream port.TokenStream) {
	defer func() {
		if r := recover(); r != nil {
			u.log.Error("panic while answering", "panic", r)
			stream = llm.NewStaticStream(errorMessage)
		}
	}()

	if !req.RegulatoryStrict {
		if cached, ok := u.cache.GetAnswer(cacheKey(req)); ok {
			return llm.NewStaticStream(cached)
		}
	}

	analysis := analyzer.Analyze(req.Query)

	retrieval, err := u.retriever.Retrieve(ctx, req.Query, u.cfg.TopK, req.SubjectID, req.ContextType)
	if err != nil {
		u.log.Error("retrieval failed", "error", err)
		return llm.NewStaticStream(errorMessage)
	}
	candidates := retrieval.Chunks

	var chunks []domain.DocumentChunk
	if len(candidates) == 0 {
		if !req.Snapshot.HasData() {
			return llm.NewStaticStream(noInfoAnswer(analysis))
		}
	} else {
		scored := u.scorer.Score(candidates, analysis)
		if u.cfg.UseDedup {
			scored = ranker.Deduplicate(scored, u.cfg.DedupThreshold)
		}
		limit := u.cfg.SelectionBudget
		if analysis.FullList {
			limit = u.cfg.TopK
		}
		selected := ranker.SelectDiverse(scored, limit, analysis.MentionedDoc, u.cfg.MaxPerDoc, u.cfg.MaxFromMentioned)
		if len(selected) == 0 {
			return llm.NewStaticStream(noInfoAnswer(analysis))
		}
		for _, sc := range selected {
			chunks = append(chunks, sc.Chunk)
		}
	}

	promptText := u.builder.Build(req.Query, contextBlocks(req.Snapshot, chunks), req.History, analysis.FullList)

	stream, err = u.llm.GenerateStream(ctx, promptText)
	if err != nil {
		u.log.Error("stream generation failed", "error", err)
		return llm.NewStaticStream(errorMessage)
	}
	return stream
}

// contextBlocks renders the prompt context: the subject snapshot first when
// present, then one block per selected chunk.
func contextBlocks(snapshot *domain.Snapshot, chunks []domain.DocumentChunk) []string {
	var blocks []string
	if snapshot.HasData() {
		blocks = append(blocks, prompt.RenderSnapshot(snapshot))
	}
	for _, ch := range chunks {
		blocks = append(blocks, fmt.Sprintf("[Documento: %s] %s", chunkLabel(ch), ch.Text))
	}
	return blocks
}

func chunkLabel(ch domain.DocumentChunk) string {
	if ch.Filename != "" {
		return ch.Filename
	}
	if ch.Source != "" {
		return ch.Source
	}
	return "desconocido"
}

// packageResult assembles the final result: deduplicated sources in first
// appearance order, chunk IDs, citations and the PII flag.
func packageResult(query, answer string, chunks []domain.DocumentChunk) domain.Result {
	result := domain.Result{
		Answer:     answer,
		Query:      query,
		ChunksUsed: chunks,
		Metrics:    map[string]any{},
	}

	seen := make(map[string]struct{})
	for _, ch := range chunks {
		label := chunkLabel(ch)
		if _, dup := seen[label]; !dup {
			seen[label] = struct{}{}
			result.Sources = append(result.Sources, label)
		}
		result.ChunkIDs = append(result.ChunkIDs, ch.ID)
		result.Citations = append(result.Citations, domain.Citation{ID: ch.ID, Source: label})
		if ch.PIISensitivity == domain.PIIHigh {
			result.PIISensitive = true
		}
	}
	return result
}

func errorResult(query string, err error) domain.Result {
	return domain.Result{
		Answer:  errorMessage,
		Query:   query,
		Metrics: map[string]any{"error": err.Error()},
	}
}

// nullCache is the no-op cache used when caching is disabled.
type nullCache struct{}

func (nullCache) GetAnswer(string) (string, bool) { return "", false }
func (nullCache) SetAnswer(string, string)        {}
