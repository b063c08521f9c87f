package port

import "context"

// Embedder generates a vector embedding for a single text.
type Embedder interface {
	// Embed sends the text to the embedding model and returns its vector.
	// All vectors produced by one embedder have the same dimensionality.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// Translator normalizes a search keyword into the canonical language of
// the stored embedding texts (English) before it is embedded.
type Translator interface {
	Translate(ctx context.Context, keyword string) (string, error)
}
