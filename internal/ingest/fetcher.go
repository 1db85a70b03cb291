package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

// Fetcher downloads pages and archives with per-domain rate limiting and
// retries. State portal downloads are large and slow; be polite.
type Fetcher struct {
	UserAgent      string
	MaxRetries     int
	RequestTimeout time.Duration
	DomainDelay    time.Duration
	MaxBodySize    int
}

func NewFetcher(cfg FetchConfig) *Fetcher {
	timeout := 60 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	retries := 3
	if cfg.MaxRetries > 0 {
		retries = cfg.MaxRetries
	}
	delay := time.Second
	if cfg.RateLimitRPS > 0 {
		delay = time.Duration(float64(time.Second) / cfg.RateLimitRPS)
	}

	return &Fetcher{
		UserAgent:      "ca-lobby-ingest/1.0 (+https://github.com/Ingramml/ca-lobby-mono)",
		MaxRetries:     retries,
		RequestTimeout: timeout,
		DomainDelay:    delay,
		MaxBodySize:    512 * 1024 * 1024,
	}
}

// Fetch retrieves a URL and returns the response body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.RequestTimeout)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob: "*" + parsed.Hostname() + "*",
		Delay:      f.DomainDelay,
	}); err != nil {
		return nil, err
	}

	var body []byte
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = bytes.Clone(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	for attempt := 0; attempt <= f.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		body, fetchErr = nil, nil
		if err := c.Visit(rawURL); err != nil && fetchErr == nil {
			fetchErr = err
		}
		c.Wait()
		if fetchErr == nil && body != nil {
			return body, nil
		}
	}
	return nil, fmt.Errorf("fetch %s failed after %d attempts: %w", rawURL, f.MaxRetries+1, fetchErr)
}
