package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// Kind classifies a fetched resource by its content type.
type Kind int

const (
	// KindHTML covers text/html and anything else we try to parse as a page.
	KindHTML Kind = iota
	// KindPDF marks application/pdf responses and .pdf URLs.
	KindPDF
)

// ErrRobotsDisallowed reports that the target host's robots.txt forbids
// fetching the requested path for our user agent.
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// Client wraps http.Client with fixed per-kind timeouts, a per-host
// politeness limiter, and an optional robots.txt gate. There is no retry:
// a failed URL is the caller's to skip, not to hammer.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string

	// PageTimeout bounds HTML page fetches. Zero means 20s.
	PageTimeout time.Duration
	// PDFTimeout bounds PDF downloads, which are larger and come from
	// slower sources. Zero means 60s.
	PDFTimeout time.Duration

	// RespectRobots enables the robots.txt check before each fetch.
	RespectRobots bool
	// PerHostInterval spaces successive requests to one host.
	// Zero disables pacing.
	PerHostInterval time.Duration

	// RedirectMaxHops caps redirect following to avoid loops. Zero means 5.
	RedirectMaxHops int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	robots   map[string]*robotstxt.RobotsData
}

// GetPage issues a GET for an HTML page or a page-like resource and
// classifies the response. The classification is advisory: a page URL can
// turn out to be a PDF, and callers route the body accordingly.
func (c *Client) GetPage(ctx context.Context, rawURL string) ([]byte, Kind, error) {
	body, ct, err := c.get(ctx, rawURL, c.pageTimeout(), nil)
	if err != nil {
		return nil, KindHTML, err
	}
	return body, Classify(ct, rawURL), nil
}

// GetPDF downloads a PDF with a longer timeout and a header set that
// reduces blocking by document servers. The declared content type is
// returned so callers can verify the target really is a PDF.
func (c *Client) GetPDF(ctx context.Context, rawURL string) ([]byte, string, error) {
	headers := map[string]string{
		"Accept":          "application/pdf,*/*",
		"Accept-Language": "fr-FR,fr;q=0.9,en;q=0.8",
	}
	return c.get(ctx, rawURL, c.pdfTimeout(), headers)
}

// Classify maps a response content type and URL to a resource kind.
func Classify(contentType, rawURL string) Kind {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "pdf") {
		return KindPDF
	}
	u := strings.ToLower(rawURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if strings.HasSuffix(u, ".pdf") {
		return KindPDF
	}
	return KindHTML
}

func (c *Client) get(ctx context.Context, rawURL string, timeout time.Duration, headers map[string]string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse url: %w", err)
	}
	if !isHTTPScheme(u) {
		return nil, "", fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
	}

	if c.RespectRobots {
		allowed, err := c.robotsAllow(ctx, u)
		if err == nil && !allowed {
			return nil, "", fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
	}
	if err := c.waitHost(ctx, u.Host); err != nil {
		return nil, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return b, resp.Header.Get("Content-Type"), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func (c *Client) pageTimeout() time.Duration {
	if c.PageTimeout > 0 {
		return c.PageTimeout
	}
	return 20 * time.Second
}

func (c *Client) pdfTimeout() time.Duration {
	if c.PDFTimeout > 0 {
		return c.PDFTimeout
	}
	return 60 * time.Second
}

// waitHost paces requests to one host through a shared limiter.
func (c *Client) waitHost(ctx context.Context, host string) error {
	if c.PerHostInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	if c.limiters == nil {
		c.limiters = make(map[string]*rate.Limiter)
	}
	lim, ok := c.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(c.PerHostInterval), 1)
		c.limiters[host] = lim
	}
	c.mu.Unlock()
	return lim.Wait(ctx)
}

// robotsAllow checks the host's robots.txt, fetching and caching it on
// first contact. An unreachable or unparsable robots.txt allows the fetch.
func (c *Client) robotsAllow(ctx context.Context, u *url.URL) (bool, error) {
	c.mu.Lock()
	if c.robots == nil {
		c.robots = make(map[string]*robotstxt.RobotsData)
	}
	data, ok := c.robots[u.Host]
	c.mu.Unlock()

	if !ok {
		data = c.fetchRobots(ctx, u)
		c.mu.Lock()
		c.robots[u.Host] = data
		c.mu.Unlock()
	}
	if data == nil {
		return true, nil
	}
	return data.TestAgent(u.Path, c.UserAgent), nil
}

func (c *Client) fetchRobots(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
