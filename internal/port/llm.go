package port

import "context"

// TokenStream is a finite, non-restartable sequence of text fragments.
// Next returns io.EOF once the stream is exhausted. Close releases the
// underlying generation; dropping a stream mid-flight cancels it.
type TokenStream interface {
	Next() (string, error)
	Close() error
}

// LLM is the external text-generation collaborator.
type LLM interface {
	// Generate produces the full completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream produces the completion as a lazy token stream.
	// Implementations may degrade to a single Generate call yielding one
	// fragment.
	GenerateStream(ctx context.Context, prompt string) (TokenStream, error)
}
