package driven

import "context"

// EmbeddingService generates vector embeddings from text.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// Output order matches input order regardless of any server-side
	// reordering.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
