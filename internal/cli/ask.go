package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ragassist/internal/usecase"
)

var (
	flagQuery       string
	flagSubject     string
	flagContextType string
	flagStream      bool
	flagStrict      bool
)

var askCmd = &cobra.Command{
	Use:   "ask [pregunta]",
	Short: "Responde una pregunta sobre la documentación indexada",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := flagQuery
		if query == "" {
			query = strings.Join(args, " ")
		}
		if strings.TrimSpace(query) == "" {
			return fmt.Errorf("falta la pregunta: usá -q o pasala como argumento")
		}

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		u, closeStores, err := newAnswerUseCase(cfg, log)
		if err != nil {
			return err
		}
		defer closeStores()

		req := usecase.Request{
			Query:            query,
			SubjectID:        flagSubject,
			ContextType:      flagContextType,
			RegulatoryStrict: flagStrict,
		}

		if flagStream {
			stream := u.AnswerStream(cmd.Context(), req)
			defer stream.Close()
			for {
				tok, err := stream.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				fmt.Print(tok)
			}
			fmt.Println()
			return nil
		}

		result := u.Answer(cmd.Context(), req)
		fmt.Println(result.Answer)

		if len(result.Sources) > 0 {
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "Fuentes:")
			for _, src := range result.Sources {
				fmt.Fprintf(os.Stderr, "  - %s\n", src)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "pregunta a responder")
	askCmd.Flags().StringVar(&flagSubject, "subject", "", "identificador del sujeto (filtra la búsqueda)")
	askCmd.Flags().StringVar(&flagContextType, "context-type", "", "tipo de contexto (public_docs, educational)")
	askCmd.Flags().BoolVar(&flagStream, "stream", false, "emitir la respuesta token a token")
	askCmd.Flags().BoolVar(&flagStrict, "strict", false, "desactivar la caché de respuestas")
}
