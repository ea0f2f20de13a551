package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html/charset"

	"github.com/krau/ocw-saver/pkg/ocw"
)

const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Client performs the GET requests of a run: listing pages, resource pages and assets.
type Client struct {
	http      *http.Client
	userAgent string
	attempts  int
	interval  time.Duration
}

type Option func(*Client)

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRetry sets the total number of attempts per request and the initial backoff interval.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if interval > 0 {
			c.interval = interval
		}
	}
}

func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		http:      httpClient,
		userAgent: DefaultUserAgent,
		attempts:  1,
		interval:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.interval
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.attempts-1)), ctx)
}

// Get issues a GET request and returns the response of the first attempt that
// answered 2xx. The caller closes the body. Failures are *ocw.FetchError.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	logger := log.FromContext(ctx)
	var resp *http.Response
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(&ocw.FetchError{URL: rawURL, Err: err})
		}
		req.Header.Set("User-Agent", c.userAgent)
		r, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(&ocw.FetchError{URL: rawURL, Err: ctx.Err()})
			}
			return &ocw.FetchError{URL: rawURL, Err: err}
		}
		if r.StatusCode < 200 || r.StatusCode >= 300 {
			r.Body.Close()
			fetchErr := &ocw.FetchError{URL: rawURL, StatusCode: r.StatusCode}
			if fetchErr.Permanent() {
				return backoff.Permanent(fetchErr)
			}
			return fetchErr
		}
		resp = r
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("Request failed, retrying", "url", rawURL, "err", err, "next", next)
	}
	if err := backoff.RetryNotify(operation, c.newBackoff(ctx), notify); err != nil {
		var fetchErr *ocw.FetchError
		if errors.As(err, &fetchErr) {
			return nil, err
		}
		return nil, &ocw.FetchError{URL: rawURL, Err: err}
	}
	return resp, nil
}

// Document fetches an HTML page and parses it, decoding it to UTF-8 first
// according to its Content-Type or <meta> charset.
func (c *Client) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &ocw.FetchError{URL: rawURL, Err: fmt.Errorf("failed to decode body: %w", err)}
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, &ocw.FetchError{URL: rawURL, Err: fmt.Errorf("failed to parse html: %w", err)}
	}
	return doc, nil
}
