package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"brandpulse/internal/domain"
)

const userAgent = "BrandPulse/1.0"

// Config holds gateway configuration.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Breaker        *BreakerConfig
}

// Client is the only component that talks to the BrandPulse backend.
type Client struct {
	httpClient     *http.Client
	apiURL         string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	breaker        *gobreaker.CircuitBreaker
	logger         *slog.Logger
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Temporary reports whether the failure came from the server side.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// New creates a gateway client. A nil cfg.Breaker disables the circuit breaker.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiURL:         strings.TrimRight(cfg.BaseURL, "/") + "/api",
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("component", "gateway"),
	}

	if cfg.Breaker != nil {
		c.breaker = newBreaker(*cfg.Breaker, c.logger)
	}

	return c
}

// SearchNews asks the backend for articles mentioning keyword. An empty
// result is returned as a non-nil empty slice.
func (c *Client) SearchNews(ctx context.Context, keyword string) ([]domain.Article, error) {
	var resp searchResponse
	if err := c.call(ctx, http.MethodPost, "/news/search", searchRequest{Keyword: keyword}, &resp); err != nil {
		return nil, fmt.Errorf("search news: %w", err)
	}

	if resp.Articles == nil {
		resp.Articles = []domain.Article{}
	}

	c.logger.Debug("search completed",
		"keyword", keyword,
		"articles", len(resp.Articles),
	)

	return resp.Articles, nil
}

// SaveArticle stores article in the remote watchlist and returns the stored
// copy, which carries a backend-assigned id and saved_at.
func (c *Client) SaveArticle(ctx context.Context, article domain.Article) (*domain.Article, error) {
	req := saveRequest{
		Title:     article.Title,
		Link:      article.Link,
		Published: article.Published,
		Summary:   article.Summary,
		Source:    article.Source,
		Sentiment: article.Sentiment,
		Keyword:   article.Keyword,
	}

	var saved domain.Article
	if err := c.call(ctx, http.MethodPost, "/watchlist/save", req, &saved); err != nil {
		return nil, fmt.Errorf("save article %s: %w", article.ID, err)
	}

	return &saved, nil
}

// ListWatchlist returns the full remote watchlist.
func (c *Client) ListWatchlist(ctx context.Context) ([]domain.Article, error) {
	var articles []domain.Article
	if err := c.callWithRetry(ctx, http.MethodGet, "/watchlist", &articles); err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}

	if articles == nil {
		articles = []domain.Article{}
	}

	return articles, nil
}

// RemoveArticle deletes id from the remote watchlist. The backend answers
// 404 for unknown ids, which surfaces as a *StatusError.
func (c *Client) RemoveArticle(ctx context.Context, id string) error {
	var resp messageResponse
	if err := c.call(ctx, http.MethodDelete, "/watchlist/"+url.PathEscape(id), nil, &resp); err != nil {
		return fmt.Errorf("remove article %s: %w", id, err)
	}

	c.logger.Debug("article removed", "id", id, "message", resp.Message)

	return nil
}

// AnalyzeSentiment classifies a single headline on the backend.
func (c *Client) AnalyzeSentiment(ctx context.Context, headline string) (domain.Sentiment, error) {
	var resp sentimentResponse
	if err := c.call(ctx, http.MethodPost, "/news/analyze-sentiment", sentimentRequest{Headline: headline}, &resp); err != nil {
		return "", fmt.Errorf("analyze sentiment: %w", err)
	}
	return resp.Sentiment, nil
}

// Ping calls the API root and returns its banner.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var resp messageResponse
	if err := c.callWithRetry(ctx, http.MethodGet, "/", &resp); err != nil {
		return "", fmt.Errorf("ping: %w", err)
	}
	return resp.Message, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	if c.breaker == nil {
		return c.doRequest(ctx, method, path, body, out)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.doRequest(ctx, method, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return err
}

func (c *Client) callWithRetry(ctx context.Context, method, path string, out any) error {
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.call(ctx, method, path, nil, out)
		if err == nil {
			return nil
		}

		if attempt == c.maxAttempts || !retryable(err) {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"method", method,
			"path", path,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	if c.maxAttempts > 1 {
		return fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var detail errorResponse
		if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&detail) == nil {
			se.Detail = detail.Detail
		}
		return se
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}
