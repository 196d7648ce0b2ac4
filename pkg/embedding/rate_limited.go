package embedding

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedProvider waits for a token before every upstream call so bursts
// of writes stay under the provider's request quota.
type RateLimitedProvider struct {
	next    EmbeddingProvider
	limiter *rate.Limiter
}

var _ EmbeddingProvider = (*RateLimitedProvider)(nil)

// NewRateLimitedProvider allows perSecond calls with a burst of one.
func NewRateLimitedProvider(next EmbeddingProvider, perSecond float64) *RateLimitedProvider {
	return &RateLimitedProvider{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (p *RateLimitedProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.next.Generate(ctx, text)
}
