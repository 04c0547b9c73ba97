package ollama

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// EnsureReady checks that Ollama is running and all required models are
// available locally, then warms up the extraction model so the first
// classification call doesn't pay the cold-load penalty.
// Returns a non-nil error if Ollama is unreachable or a model is missing.
func EnsureReady(ctx context.Context, c *Client, models []string, w io.Writer) error {
	if !c.IsRunning(ctx) {
		return fmt.Errorf("Ollama is not running. Start it with: ollama serve")
	}

	var missing []string
	for _, model := range models {
		if c.HasModel(ctx, model) {
			fmt.Fprintf(w, "model %s: ready\n", model)
			continue
		}
		missing = append(missing, model)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing models: %s. Pull them with: ollama pull <model>", strings.Join(missing, ", "))
	}

	if len(models) == 0 {
		return nil
	}

	// Warm up the extraction model by sending a trivial chat request so it
	// stays loaded in memory for low-latency command classification.
	extractModel := models[0]
	fmt.Fprintf(w, "model %s: warming up...\n", extractModel)
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := c.Chat(warmCtx, extractModel, []Message{
		{Role: "user", Content: "ping"},
	}, nil); err != nil {
		fmt.Fprintf(w, "model %s: warm-up failed (non-fatal): %v\n", extractModel, err)
	} else {
		fmt.Fprintf(w, "model %s: warm\n", extractModel)
	}

	return nil
}
