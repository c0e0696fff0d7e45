// Package llm is the boundary to the coaching model. Everything above it
// deals in plain strings and the reply envelope; transport details stay here.
package llm

import "context"

// Client completes a single prompt pair. Implementations must honor the
// context deadline.
type Client interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
