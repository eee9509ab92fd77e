package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// chunksCmd previews how a file would be split, for tuning chunking
// parameters without touching the index.
var chunksCmd = &cobra.Command{
	Use:   "chunks <archivo>",
	Short: "Muestra cómo se fragmentaría un archivo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		chunks, err := newChunker(cfg).Chunk(string(data), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%d fragmentos (modo %s, tamaño %d, solapamiento %d)\n\n",
			len(chunks), cfg.Chunking.Mode, cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
		for _, ch := range chunks {
			m := ch.Metadata
			fmt.Printf("--- fragmento %d/%d [%d:%d] %d caracteres",
				m.ChunkIndex+1, m.TotalChunks, m.StartChar, m.EndChar, len(ch.Text))
			if m.SectionTitle != "" {
				fmt.Printf("  sección: %s", m.SectionTitle)
			}
			if m.HasOverlap {
				fmt.Print("  (con solapamiento)")
			}
			fmt.Println()

			preview := ch.Text
			if len(preview) > 160 {
				preview = preview[:160] + "…"
			}
			fmt.Println(preview)
			fmt.Println()
		}
		return nil
	},
}
