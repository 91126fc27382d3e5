// Package fetch retrieves source documents through an ordered list of
// retrieval strategies. The only direct channel (the discussion site's JSON
// export) is frequently rate-limited for server-side requesters, so the
// client tries an authenticated scraping proxy first (when a token is
// configured), then public CORS relays, then direct access as last resort.
package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scan-service/core"
)

const (
	// placeholders recognized in relay templates
	placeholderURL = "{url}" // replaced with the query-escaped target
	placeholderRaw = "{raw}" // replaced with the target verbatim

	rateLimitPause = 2 * time.Second
)

// userAgents rotate per attempt to avoid trivial bot-blocking.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// defaultMirrorHosts rewrites hosts to their less-restrictive mirrors.
var defaultMirrorHosts = map[string]string{
	"www.reddit.com": "old.reddit.com",
	"reddit.com":     "old.reddit.com",
}

type Options struct {
	// Token enables the authenticated scraping proxy strategy.
	Token string
	// ScraperURL is the authenticated proxy endpoint.
	ScraperURL string
	// Relays are public relay URL templates carrying a {url} or {raw}
	// placeholder for the target. Tried in order after the scraper proxy.
	Relays []string
	// Timeout bounds every individual request.
	Timeout time.Duration
	// MirrorHosts overrides the host rewrite table; nil selects the default.
	MirrorHosts map[string]string
}

type Client struct {
	log    *slog.Logger
	client http.Client
	opts   Options
}

func NewClient(log *slog.Logger, opts Options) (*Client, error) {
	if opts.Token != "" && opts.ScraperURL == "" {
		return nil, fmt.Errorf("scraper token configured without a scraper url")
	}
	for _, tmpl := range opts.Relays {
		if !strings.Contains(tmpl, placeholderURL) && !strings.Contains(tmpl, placeholderRaw) {
			return nil, fmt.Errorf("relay template %q has no target placeholder", tmpl)
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MirrorHosts == nil {
		opts.MirrorHosts = defaultMirrorHosts
	}
	return &Client{
		log:    log,
		client: http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}, nil
}

func (c *Client) ProxyEnabled() bool {
	return c.opts.Token != ""
}

type strategy struct {
	name   string
	target string
}

func (c *Client) strategies(target string) []strategy {
	var list []strategy
	if c.opts.Token != "" {
		list = append(list, strategy{"scraper", c.scraperTarget(target)})
	}
	for _, tmpl := range c.opts.Relays {
		list = append(list, strategy{relayName(tmpl), expandRelay(tmpl, target)})
	}
	return append(list, strategy{"direct", target})
}

// FetchJSON normalizes the source URL, then walks the strategy list until one
// yields a parseable, structurally valid document. It fails with
// core.ErrFetchFailed only when every strategy is exhausted.
func (c *Client) FetchJSON(ctx context.Context, src string) (map[string]any, error) {
	target := c.normalize(src)

	var lastErr error
	for _, st := range c.strategies(target) {
		text, err := c.fetchText(ctx, st.name, st.target)
		if err != nil {
			c.log.Warn("fetch strategy failed", "strategy", st.name, "url", truncate(src), "error", err)
			lastErr = err
			if isRateLimited(err) {
				// back off before the next strategy to avoid compounding
				// the upstream limit
				if err := sleepCtx(ctx, rateLimitPause); err != nil {
					return nil, fmt.Errorf("%w: %w", core.ErrFetchFailed, err)
				}
			}
			continue
		}

		var payload any
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			c.log.Warn("fetch strategy returned invalid JSON", "strategy", st.name, "url", truncate(src), "error", err)
			lastErr = fmt.Errorf("invalid JSON: %w", err)
			continue
		}

		doc, err := documentShape(payload)
		if err != nil {
			c.log.Warn("fetch strategy returned unexpected structure", "strategy", st.name, "url", truncate(src))
			lastErr = err
			continue
		}

		c.log.Debug("fetch strategy succeeded", "strategy", st.name, "url", truncate(src))
		return doc, nil
	}

	return nil, fmt.Errorf("%w for %s: %w", core.ErrFetchFailed, truncate(src), lastErr)
}

// FetchText retrieves a source's raw body through the authenticated proxy
// only. Non-threaded text sources carry no JSON listing, and the public
// relays are not reliable enough for them to be worth a fallback chain.
func (c *Client) FetchText(ctx context.Context, src string) (string, error) {
	if c.opts.Token == "" {
		return "", core.ErrProxyDisabled
	}
	text, err := c.fetchText(ctx, "scraper", c.scraperTarget(src))
	if err != nil {
		return "", fmt.Errorf("%w for %s: %w", core.ErrFetchFailed, truncate(src), err)
	}
	return text, nil
}

// statusError distinguishes rate-limit responses so the caller can pause
// before the next strategy.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.code)
}

func isRateLimited(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == http.StatusTooManyRequests
}

func (c *Client) fetchText(ctx context.Context, name, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("cannot create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	c.log.Debug("trying fetch strategy", "strategy", name, "url", truncate(target))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot get response: %w", err)
	}
	defer c.closeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &statusError{code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("cannot read response body: %w", err)
	}

	// some relays hand the upstream's gzip body through without decoding it
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		if unz, err := gunzip(raw); err == nil {
			raw = unz
		}
	}

	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response body")
	}
	return text, nil
}

// documentShape accepts a direct object, or a listing+comments pair where the
// comments element (the second) is the object of interest.
func documentShape(payload any) (map[string]any, error) {
	switch doc := payload.(type) {
	case map[string]any:
		return doc, nil
	case []any:
		if len(doc) == 0 {
			return nil, fmt.Errorf("empty array payload")
		}
		pick := doc[0]
		if len(doc) > 1 {
			pick = doc[1]
		}
		if obj, ok := pick.(map[string]any); ok {
			return obj, nil
		}
		return nil, fmt.Errorf("array payload does not contain an object")
	default:
		return nil, fmt.Errorf("unexpected payload structure")
	}
}

// normalize rewrites the source to its mirror host when applicable and
// enforces a .json-suffixed path.
func (c *Client) normalize(src string) string {
	src = strings.TrimSpace(src)
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return src
	}
	if mirror, ok := c.opts.MirrorHosts[u.Host]; ok {
		u.Host = mirror
	}
	if !strings.HasSuffix(u.Path, ".json") {
		u.Path = strings.TrimSuffix(u.Path, "/") + ".json"
	}
	return u.String()
}

func (c *Client) scraperTarget(target string) string {
	return fmt.Sprintf("%s?api_key=%s&url=%s", c.opts.ScraperURL, c.opts.Token, url.QueryEscape(target))
}

func expandRelay(tmpl, target string) string {
	expanded := strings.ReplaceAll(tmpl, placeholderURL, url.QueryEscape(target))
	return strings.ReplaceAll(expanded, placeholderRaw, target)
}

func relayName(tmpl string) string {
	if u, err := url.Parse(tmpl); err == nil && u.Host != "" {
		return u.Host
	}
	return "relay"
}

func gunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func (c *Client) closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		c.log.Warn("failed to close response body", "error", err)
	}
}

func truncate(s string) string {
	if len(s) > 80 {
		return s[:80]
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
