// Package scrape fetches question listings from the public forum,
// extracts raw questions from the HTML, and backfills answers from
// question content.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	// One request per 31s keeps us under the site's crawl budget.
	defaultCrawlDelay = 31 * time.Second
	maxAttempts       = 3
	backoffBase       = 20 * time.Second
	userAgent         = "gatebank-scraper/1.0"
)

// Client is a rate-limited HTTP fetcher with retry on transient
// failures.
type Client struct {
	http       *http.Client
	crawlDelay time.Duration
	sleep      func(context.Context, time.Duration) error

	lastFetch time.Time
}

func NewClient() *Client {
	return &Client{
		http:       &http.Client{Timeout: defaultTimeout},
		crawlDelay: defaultCrawlDelay,
		sleep:      sleepCtx,
	}
}

// NewClientWithDelay overrides the crawl delay (tests, local mirrors).
func NewClientWithDelay(delay time.Duration) *Client {
	c := NewClient()
	c.crawlDelay = delay
	return c
}

// Fetch GETs one URL, honoring the crawl delay since the previous
// fetch and retrying 429/5xx responses with exponential backoff
// (20s, 40s). Other HTTP errors fail immediately.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if wait := c.crawlDelay - time.Since(c.lastFetch); wait > 0 && !c.lastFetch.IsZero() {
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, retryable, err := c.fetchOnce(ctx, url)
		if err == nil {
			c.lastFetch = time.Now()
			return body, nil
		}
		lastErr = err
		if !retryable || attempt == maxAttempts {
			break
		}
		backoff := backoffBase << (attempt - 1)
		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}
	c.lastFetch = time.Now()
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return body, false, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
