package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragassist/config"
	"ragassist/internal/adapter/chunker"
	"ragassist/internal/adapter/fs"
	"ragassist/internal/port"
	"ragassist/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [ruta]",
	Short: "Indexa los documentos de un directorio",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		root := flagDir
		if len(args) == 1 {
			root = args[0]
		}

		st, vectors, err := openStores(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		u := usecase.NewIngestUseCase(
			fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes),
			newChunker(cfg),
			st,
			newEmbedder(cfg),
			vectors,
			cfg.Ingest.ContextType,
			log,
		)

		var bar *progressbar.ProgressBar
		stats, err := u.Run(cmd.Context(), root, func(file string, done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("indexando"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			bar.Add(1)
		})
		if err != nil {
			return err
		}

		fmt.Printf("Documentos: %d indexados, %d sin cambios (de %d)\n",
			stats.Indexed, stats.Skipped, stats.Scanned)
		fmt.Printf("Fragmentos generados: %d\n", stats.Chunks)
		return nil
	},
}

func newChunker(cfg *config.Config) port.Chunker {
	if cfg.Chunking.Mode == "simple" {
		return chunker.NewSimpleChunker(cfg.Chunking.ChunkSize)
	}
	return chunker.NewSemanticChunker(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap, cfg.Chunking.MinChunkSize)
}
