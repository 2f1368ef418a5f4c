// Package httputils builds the retrying, rate-limited HTTP client the
// fetch client performs all origin requests with.
package httputils

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/kvasirlabs/grokipedia-go/pkg/limiter"
)

// Options configures NewRetryableHTTPClient.
type Options struct {
	// Timeout applies per attempt, not across retries.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Zero disables retrying.
	MaxRetries int

	// BackoffBase is the unit for the exponential backoff (attempt n
	// sleeps BackoffBase << n). Defaults to one second.
	BackoffBase time.Duration

	// RateLimiter paces every outbound attempt, retries included.
	RateLimiter limiter.Limiter

	TLSConfig *tls.Config

	Log *logrus.Entry
}

// NewRetryableHTTPClient returns a standard *http.Client whose
// transport retries retryable failures with exponential backoff and
// takes the shared rate limiter before every attempt.
func NewRetryableHTTPClient(opts Options) *http.Client {
	backoffBase := opts.BackoffBase
	if backoffBase <= 0 {
		backoffBase = time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: opts.TLSConfig,
		},
	}
	retryClient.RetryMax = opts.MaxRetries
	retryClient.CheckRetry = checkRetry
	retryClient.Backoff = exponentialBackoff(backoffBase)
	retryClient.Logger = nil
	// Hand the final response back instead of a synthesized "giving
	// up" error, so the caller can classify the failure itself.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	// The hook runs before each attempt, outside the per-attempt
	// Timeout, so time spent queued at the limiter is never charged
	// against the network attempt.
	rl := opts.RateLimiter
	log := opts.Log
	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if log != nil && attempt > 0 {
			log.Debugf("Retrying %s %s (attempt %d)", req.Method, req.URL, attempt+1)
		}
		if rl != nil {
			rl.Take()
		}
	}

	return retryClient.StandardClient()
}

// checkRetry implements the retry classification: 429 and 5xx are
// retryable, 404 and every other 4xx are terminal, transport errors
// follow the default policy (connection failures and timeouts retry,
// certificate and URL errors do not).
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, nil
	case resp.StatusCode >= 500:
		return true, nil
	default:
		return false, nil
	}
}

// exponentialBackoff sleeps base*2^n before retry n, with two extra
// doublings when the origin answered 429.
func exponentialBackoff(base time.Duration) retryablehttp.Backoff {
	return func(_, _ time.Duration, attempt int, resp *http.Response) time.Duration {
		shift := attempt
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			shift += 2
		}
		if shift > 16 {
			shift = 16
		}
		return base * (1 << shift)
	}
}
