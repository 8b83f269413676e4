package llm

import "context"

// rateLimitedClient wraps a Client with a semaphore so a burst of webhook
// deliveries cannot stampede the upstream API key. The wait suspends only the
// calling relay invocation and honours context cancellation.
type rateLimitedClient struct {
	inner     Client
	semaphore chan struct{}
}

// NewRateLimitedClient caps the number of in-flight Generate calls.
func NewRateLimitedClient(inner Client, maxConcurrent int) Client {
	if maxConcurrent < 1 {
		maxConcurrent = 3
	}
	return &rateLimitedClient{
		inner:     inner,
		semaphore: make(chan struct{}, maxConcurrent),
	}
}

func (r *rateLimitedClient) Generate(ctx context.Context, req Request) (Response, error) {
	select {
	case r.semaphore <- struct{}{}:
		defer func() { <-r.semaphore }()
	case <-ctx.Done():
		return Response{}, &UpstreamFailure{Kind: FailureUpstream, Detail: "slot wait aborted: " + ctx.Err().Error()}
	}
	return r.inner.Generate(ctx, req)
}
