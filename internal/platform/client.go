package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"pulse-go/internal/config"
	"pulse-go/internal/pulse"
)

const (
	defaultTimeout = 30 * time.Second
	// Upper bound on a response body we are willing to parse.
	maxResponseBytes = 4 << 20
)

// authStyle is how the credential is attached to upstream requests.
type authStyle int

const (
	authBearer authStyle = iota // Authorization: Bearer <token>
	authQuery                   // ?access_token=<token>
)

// client is the upstream HTTP client shared by every adapter. Each adapter
// owns one, so rate limits and timeouts are per platform.
type client struct {
	platform pulse.Platform
	baseURL  string
	auth     authStyle
	http     *http.Client
	limiter  *rate.Limiter
}

// newClient builds a client from cfg, falling back to defaultBaseURL and the
// package defaults for zero values. A zero request rate disables limiting.
func newClient(p pulse.Platform, defaultBaseURL string, auth authStyle, cfg config.PlatformConfig) *client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &client{
		platform: p,
		baseURL:  strings.TrimRight(baseURL, "/"),
		auth:     auth,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, burst),
	}
}

// request describes one upstream call. Body, when set, is sent as JSON.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
}

func (c *client) get(ctx context.Context, credential, path string, query url.Values) (gjson.Result, error) {
	return c.do(ctx, credential, request{method: http.MethodGet, path: path, query: query})
}

func (c *client) post(ctx context.Context, credential, path string, query url.Values, body any) (gjson.Result, error) {
	return c.do(ctx, credential, request{method: http.MethodPost, path: path, query: query, body: body})
}

// do performs req and returns the parsed JSON document. Limiter waits, network
// failures and timeouts become transport errors; HTTP statuses >= 400 and
// error payloads become upstream errors.
func (c *client) do(ctx context.Context, credential string, req request) (gjson.Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, pulse.TransportError(c.platform, fmt.Errorf("waiting for rate limiter: %w", err))
	}

	query := url.Values{}
	for k, v := range req.query {
		query[k] = v
	}
	if c.auth == authQuery {
		query.Set("access_token", credential)
	}
	target := c.baseURL + req.path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("building request: %w", redactURL(err, c.baseURL+req.path))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.auth == authBearer {
		httpReq.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return gjson.Result{}, pulse.TransportError(c.platform, redactURL(err, c.baseURL+req.path))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, pulse.TransportError(c.platform, fmt.Errorf("reading response: %w", err))
	}

	if msg, failed := upstreamFailure(resp.StatusCode, raw); failed {
		return gjson.Result{}, pulse.UpstreamError(c.platform, msg)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, pulse.UpstreamError(c.platform, "malformed response body")
	}
	return gjson.ParseBytes(raw), nil
}

// redactURL replaces the URL quoted by a *url.Error with safeURL. The request
// URL may carry the access token and these errors end up in logs and API responses.
func redactURL(err error, safeURL string) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{Op: urlErr.Op, URL: safeURL, Err: urlErr.Err}
}

// upstreamFailure extracts the platform's error message. All four platforms
// report errors under an "error" key; ShortVideo also sends it on success
// with code "ok".
func upstreamFailure(status int, raw []byte) (string, bool) {
	var msg string
	if gjson.ValidBytes(raw) {
		e := gjson.GetBytes(raw, "error")
		switch {
		case !e.Exists():
		case e.Type == gjson.String:
			msg = e.String()
		case e.Get("code").String() == "ok":
		default:
			msg = e.Get("message").String()
			if msg == "" {
				msg = e.Raw
			}
		}
	}

	if msg != "" {
		return msg, true
	}
	if status >= http.StatusBadRequest {
		return fmt.Sprintf("HTTP %d", status), true
	}
	return "", false
}

// insightValue returns the latest value of a Graph-style insights metric,
// or 0 when the metric is absent.
func insightValue(doc gjson.Result, metric string) int64 {
	values := doc.Get(fmt.Sprintf(`data.#(name==%q).values`, metric)).Array()
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1].Get("value").Int()
}

// capItems truncates items to limit. Upstreams may ignore the requested page size.
func capItems(items []gjson.Result, limit int) []gjson.Result {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

// topPicker keeps the item with the strictly greatest signal; the first item wins ties.
type topPicker struct {
	best   *pulse.TopItem
	signal int64
}

func (p *topPicker) offer(signal int64, item pulse.TopItem) {
	if p.best != nil && signal <= p.signal {
		return
	}
	p.best = &item
	p.signal = signal
}
