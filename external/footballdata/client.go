package footballdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/riskibarqy/predictz/internal/platform/resilience"
	"github.com/riskibarqy/predictz/internal/usecase"
)

const (
	defaultBaseURL = "https://api.football-data.org/v4"
	defaultTimeout = 12 * time.Second
	authHeader     = "X-Auth-Token"
	maxBodyBytes   = 6 << 20
)

var errFootballDataTransient = crerr.New("football-data transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the football-data.org v4 REST API. Errors are wrapped
// around the usecase sentinels so the fetcher can branch on them.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.Group[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker.Normalize()),
	}
}

// ListMatches calls the bulk endpoint for every code at once.
func (c *Client) ListMatches(ctx context.Context, date string, codes []string) ([]fixture.Record, error) {
	query := map[string]string{
		"dateFrom": date,
		"dateTo":   date,
	}
	if len(codes) > 0 {
		query["competitions"] = strings.Join(codes, ",")
	}

	var envelope matchesEnvelope
	if err := c.doJSON(ctx, "/matches", query, &envelope); err != nil {
		return nil, fmt.Errorf("list matches date=%s: %w", date, err)
	}
	return envelope.records(), nil
}

func (c *Client) ListCompetitionMatches(ctx context.Context, code, date string) ([]fixture.Record, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: competition code is required", usecase.ErrInvalidInput)
	}

	query := map[string]string{
		"dateFrom": date,
		"dateTo":   date,
	}
	var envelope matchesEnvelope
	if err := c.doJSON(ctx, "/competitions/"+url.PathEscape(code)+"/matches", query, &envelope); err != nil {
		return nil, fmt.Errorf("list matches competition=%s date=%s: %w", code, date, err)
	}
	return envelope.records(), nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	raw, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
		var body []byte
		execErr := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isCircuitFailure)
		return body, execErr
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "football-data circuit breaker rejected request", "state", string(c.breaker.State()))
		return fmt.Errorf("%w: fixtures provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode provider payload")
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set(authHeader, c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = classifyTransportError(err)
			if !stderrors.Is(lastErr, errFootballDataTransient) {
				c.logger.WarnContext(ctx, "football-data unreachable", "url", fullURL, "error", lastErr)
				return nil, lastErr
			}
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFootballDataTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			default:
				lastErr = statusError(resp.StatusCode, raw)
				if !isRetryableStatus(resp.StatusCode) {
					return nil, lastErr
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "football-data request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// statusError maps provider status codes onto usecase sentinels. 429 is
// never retried here; the fetcher owns the rate-limit cool-down.
func statusError(code int, body []byte) error {
	detail := fmt.Sprintf("provider status=%d body=%s", code, abbreviateBody(body))
	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", usecase.ErrRateLimited, detail)
	case code == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", usecase.ErrUnsupported, detail)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", usecase.ErrForbidden, detail)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", usecase.ErrNotFound, detail)
	case isRetryableStatus(code):
		return fmt.Errorf("%w: %s", errFootballDataTransient, detail)
	default:
		return fmt.Errorf("%s", detail)
	}
}

// classifyTransportError separates "no network at all" from a slow or
// flaky provider. Only the former aborts a fetch.
func classifyTransportError(err error) error {
	var dnsErr *net.DNSError
	if stderrors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	var opErr *net.OpError
	if stderrors.As(err, &opErr) && opErr.Op == "dial" && !opErr.Timeout() {
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	return fmt.Errorf("%w: send request: %v", errFootballDataTransient, err)
}

// isCircuitFailure counts only lost connectivity. A 5xx or a timeout from
// one competition must not stop the fetcher from trying the next one.
func isCircuitFailure(err error) bool {
	return err != nil && stderrors.Is(err, usecase.ErrDependencyUnavailable)
}

func isRetryableStatus(code int) bool {
	return code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
