package llm

import "context"

// Client is the interface for upstream completion calls.
// Implementations handle retries internally; the caller always receives
// either a Response or a classified *UpstreamFailure.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
