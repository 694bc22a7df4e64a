package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultMaxRedirects = 5

var (
	ErrInvalidTimeout   = errors.New("probe timeout must be positive")
	ErrInvalidRedirects = errors.New("probe redirect limit cannot be negative")
)

// Prober performs one bounded check of a URL. Implementations must be safe
// for concurrent use and must enforce their own timeout.
type Prober interface {
	Check(ctx context.Context, rawURL string) Outcome
}

// ProberFunc adapts an ordinary function to the Prober interface.
type ProberFunc func(ctx context.Context, rawURL string) Outcome

func (f ProberFunc) Check(ctx context.Context, rawURL string) Outcome {
	return f(ctx, rawURL)
}

// Factory builds a Prober. The monitor calls it once per worker so that
// workers never share a client.
type Factory func() (Prober, error)

// HTTPProber checks a URL with a single GET request.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a prober whose requests give up after timeout and
// follow at most maxRedirects redirects.
func NewHTTPProber(timeout time.Duration, maxRedirects int) (*HTTPProber, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidTimeout, timeout)
	}
	if maxRedirects < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRedirects, maxRedirects)
	}

	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	return &HTTPProber{client: client}, nil
}

// HTTPFactory returns a Factory producing independent HTTPProbers.
func HTTPFactory(timeout time.Duration, maxRedirects int) Factory {
	return func() (Prober, error) {
		return NewHTTPProber(timeout, maxRedirects)
	}
}

// Check sends a GET request to rawURL. Every HTTP response, whatever its
// status, is a Success; transport errors (refused, DNS, timeout, too many
// redirects) are a Failure.
func (p *HTTPProber) Check(ctx context.Context, rawURL string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Failure(fmt.Sprintf("invalid request: %v", err))
	}

	res, err := p.client.Do(req)
	if err != nil {
		return Failure(fmt.Sprintf("request error: %v", err))
	}
	defer res.Body.Close()

	// Drain so the connection can be reused by the next probe.
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	return Success(res.StatusCode)
}
