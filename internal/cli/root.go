// Package cli implements the ragassist command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ragassist/config"
	"ragassist/internal/adapter/cache"
	"ragassist/internal/adapter/embedding"
	"ragassist/internal/adapter/llm"
	"ragassist/internal/adapter/prompt"
	"ragassist/internal/adapter/retriever"
	"ragassist/internal/adapter/store"
	"ragassist/internal/logger"
	"ragassist/internal/port"
	"ragassist/internal/usecase"
)

var (
	flagConfig string
	flagDir    string
)

var rootCmd = &cobra.Command{
	Use:   "ragassist",
	Short: "Asistente de consultas sobre documentación local",
	Long: `ragassist indexa documentos locales y responde preguntas en español
sobre su contenido usando recuperación semántica y un modelo de lenguaje.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "ruta del archivo de configuración")
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "d", ".", "directorio de trabajo")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chunksCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	// Optional: API keys and overrides from a local .env.
	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.LoadFromDir(flagDir)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	return cfg, logger.Setup(cfg.Logging.Level), nil
}

// openStores opens the index database and the configured vector backend.
func openStores(cfg *config.Config) (*store.Store, port.VectorStore, error) {
	if err := config.EnsureDataDir(flagDir); err != nil {
		return nil, nil, err
	}
	st, err := store.Open(config.IndexDBPath(flagDir))
	if err != nil {
		return nil, nil, err
	}

	var vectors port.VectorStore
	switch cfg.Vector.Backend {
	case "qdrant":
		q := retriever.NewQdrant(cfg.Vector.URL, os.Getenv(cfg.Vector.APIKeyEnv),
			cfg.Vector.Collection, embeddingDimension(cfg))
		if err := q.EnsureCollection(); err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("qdrant: %w", err)
		}
		vectors = q
	default:
		vectors, err = store.NewBoltVectorStore(st)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
	}
	return st, vectors, nil
}

func newEmbedder(cfg *config.Config) port.Embedder {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.BaseURL,
			os.Getenv(cfg.Embedding.APIKeyEnv), cfg.Embedding.Model, cfg.Embedding.BatchSize)
	default:
		return embedding.NewOllamaEmbedder(cfg.Embedding.BaseURL, cfg.Embedding.Model)
	}
}

func embeddingDimension(cfg *config.Config) int {
	if d := newEmbedder(cfg).Dimension(); d > 0 {
		return d
	}
	// Unknown model: resolved lazily by the embedder, but collection
	// creation needs a size up front.
	return 768
}

// newAnswerUseCase wires the full question-answering stack.
func newAnswerUseCase(cfg *config.Config, log *slog.Logger) (*usecase.AnswerUseCase, func(), error) {
	st, vectors, err := openStores(cfg)
	if err != nil {
		return nil, nil, err
	}

	ret := retriever.NewVectorRetriever(newEmbedder(cfg), vectors, cfg.Retrieve.UseExpansion)
	generator := llm.NewOllama(cfg.LLM.BaseURL, cfg.LLM.Model,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)
	answerCache := cache.NewAnswerCache(cfg.Cache.MaxEntries,
		time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	builder := prompt.NewBuilder(cfg.Prompt.Domain, cfg.Prompt.ContextBudgetChars)

	u := usecase.NewAnswerUseCase(ret, generator, answerCache, builder, cfg.Retrieve, log)
	return u, func() { st.Close() }, nil
}
