package llm

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"
)

type limitedCompleter struct {
	next    Completer
	limiter *rate.Limiter
}

// Limited caps c at perMinute calls with a small burst. A call that cannot
// get a slot before its context deadline fails as rate limited instead of
// waiting. perMinute <= 0 returns c unchanged.
func Limited(c Completer, perMinute int) Completer {
	if perMinute <= 0 {
		return c
	}
	burst := max(1, perMinute/10)
	return &limitedCompleter{
		next:    c,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst),
	}
}

func (l *limitedCompleter) Complete(ctx context.Context, req Request) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", &StatusError{StatusCode: http.StatusTooManyRequests, Body: "local rate limit: " + err.Error()}
	}
	return l.next.Complete(ctx, req)
}
