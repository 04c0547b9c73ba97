// Package enrich generates vector embeddings for record text ahead of the
// primary-store write. Enrichment is best-effort: the store consumes the
// error without failing the write.
package enrich

import (
	"context"
	"fmt"
	"time"
)

const embedTimeout = 5 * time.Second

// EmbedClient is the interface to the embedding backend.
type EmbedClient interface {
	Embed(ctx context.Context, model string, text string) ([]float32, error)
}

// Enricher wraps an embedding backend with the configured model.
type Enricher struct {
	client EmbedClient
	model  string
}

// New creates an Enricher using the given client and model name.
func New(client EmbedClient, model string) *Enricher {
	return &Enricher{client: client, model: model}
}

// Embed returns the embedding vector for text. An empty text yields a nil
// vector and no error. Failures are returned to the caller, which is
// expected to log and continue rather than abort the surrounding write.
func (e *Enricher) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	vec, err := e.client.Embed(ctx, e.model, text)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	return vec, nil
}
