package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/suite"

	"brandpulse/internal/domain"
)

type ClientTestSuite struct {
	suite.Suite
	server *httptest.Server
	logger *slog.Logger
}

func (s *ClientTestSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func (s *ClientTestSuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
		s.server = nil
	}
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) serve(routes func(r chi.Router)) {
	r := chi.NewRouter()
	r.Route("/api", routes)
	s.server = httptest.NewServer(r)
}

func (s *ClientTestSuite) client(mutate func(*Config)) *Client {
	cfg := Config{
		BaseURL:        s.server.URL + "/",
		Timeout:        2 * time.Second,
		MaxAttempts:    1,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *ClientTestSuite) TestSearchNews() {
	s.serve(func(r chi.Router) {
		r.Post("/news/search", func(w http.ResponseWriter, r *http.Request) {
			var req searchRequest
			s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
			s.Equal("Tesla", req.Keyword)
			s.Equal("application/json", r.Header.Get("Content-Type"))
			s.Equal(userAgent, r.Header.Get("User-Agent"))

			writeJSON(w, http.StatusOK, map[string]any{
				"articles": []map[string]any{
					{"id": "a1", "title": "Tesla beats estimates", "sentiment": "positive", "keyword": "Tesla"},
					{"id": "a2", "title": "Recall announced", "sentiment": "negative", "keyword": "Tesla"},
				},
			})
		})
	})

	articles, err := s.client(nil).SearchNews(context.Background(), "Tesla")

	s.Require().NoError(err)
	s.Require().Len(articles, 2)
	s.Equal("a1", articles[0].ID)
	s.Equal(domain.SentimentPositive, articles[0].Sentiment)
	s.Equal(domain.SentimentNegative, articles[1].Sentiment)
}

func (s *ClientTestSuite) TestSearchNews_NoArticles() {
	s.serve(func(r chi.Router) {
		r.Post("/news/search", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"articles": nil, "message": "No articles found"})
		})
	})

	articles, err := s.client(nil).SearchNews(context.Background(), "zzzz")

	s.Require().NoError(err)
	s.NotNil(articles)
	s.Empty(articles)
}

func (s *ClientTestSuite) TestSearchNews_ServerError() {
	s.serve(func(r chi.Router) {
		r.Post("/news/search", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "feed unavailable"})
		})
	})

	articles, err := s.client(nil).SearchNews(context.Background(), "Tesla")

	s.Nil(articles)
	s.Require().Error(err)
	var se *StatusError
	s.Require().True(errors.As(err, &se))
	s.Equal(http.StatusInternalServerError, se.StatusCode)
	s.Equal("feed unavailable", se.Detail)
	s.Contains(err.Error(), "search news")
}

func (s *ClientTestSuite) TestSearchNews_Unreachable() {
	s.serve(func(r chi.Router) {})
	c := s.client(nil)
	s.server.Close()
	s.server = nil

	_, err := c.SearchNews(context.Background(), "Tesla")

	s.Require().Error(err)
	s.Contains(err.Error(), "execute request")
}

func (s *ClientTestSuite) TestSaveArticle() {
	savedAt := time.Date(2025, 10, 14, 9, 0, 0, 0, time.UTC)

	s.serve(func(r chi.Router) {
		r.Post("/watchlist/save", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
			s.NotContains(body, "id")
			s.Equal("Tesla beats estimates", body["title"])
			s.Equal("positive", body["sentiment"])
			s.Equal("Tesla", body["keyword"])

			body["id"] = "server-id"
			body["saved_at"] = savedAt
			writeJSON(w, http.StatusOK, body)
		})
	})

	saved, err := s.client(nil).SaveArticle(context.Background(), domain.Article{
		ID:        "a1",
		Title:     "Tesla beats estimates",
		Link:      "https://news.example.com/a1",
		Sentiment: domain.SentimentPositive,
		Keyword:   "Tesla",
	})

	s.Require().NoError(err)
	s.Equal("server-id", saved.ID)
	s.Require().NotNil(saved.SavedAt)
	s.True(savedAt.Equal(*saved.SavedAt))
}

func (s *ClientTestSuite) TestListWatchlist() {
	s.serve(func(r chi.Router) {
		r.Get("/watchlist", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []domain.Article{
				{ID: "w1", Title: "One", Keyword: "Apple"},
				{ID: "w2", Title: "Two", Keyword: "Tesla"},
			})
		})
	})

	articles, err := s.client(nil).ListWatchlist(context.Background())

	s.Require().NoError(err)
	s.Require().Len(articles, 2)
	s.Equal("Apple", articles[0].Keyword)
}

func (s *ClientTestSuite) TestListWatchlist_RetriesServerErrors() {
	var hits atomic.Int32
	s.serve(func(r chi.Router) {
		r.Get("/watchlist", func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			writeJSON(w, http.StatusOK, []domain.Article{})
		})
	})

	articles, err := s.client(func(c *Config) { c.MaxAttempts = 3 }).ListWatchlist(context.Background())

	s.Require().NoError(err)
	s.Empty(articles)
	s.Equal(int32(3), hits.Load())
}

func (s *ClientTestSuite) TestListWatchlist_DoesNotRetryClientErrors() {
	var hits atomic.Int32
	s.serve(func(r chi.Router) {
		r.Get("/watchlist", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		})
	})

	_, err := s.client(func(c *Config) { c.MaxAttempts = 3 }).ListWatchlist(context.Background())

	s.Require().Error(err)
	s.Equal(int32(1), hits.Load())
}

func (s *ClientTestSuite) TestRemoveArticle() {
	var removed string
	s.serve(func(r chi.Router) {
		r.Delete("/watchlist/{id}", func(w http.ResponseWriter, r *http.Request) {
			removed = chi.URLParam(r, "id")
			writeJSON(w, http.StatusOK, messageResponse{Message: "Article removed from watchlist"})
		})
	})

	err := s.client(nil).RemoveArticle(context.Background(), "w1")

	s.Require().NoError(err)
	s.Equal("w1", removed)
}

func (s *ClientTestSuite) TestRemoveArticle_NotFound() {
	s.serve(func(r chi.Router) {
		r.Delete("/watchlist/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Article not found"})
		})
	})

	err := s.client(nil).RemoveArticle(context.Background(), "missing")

	s.Require().Error(err)
	var se *StatusError
	s.Require().True(errors.As(err, &se))
	s.Equal(http.StatusNotFound, se.StatusCode)
	s.False(se.Temporary())
}

func (s *ClientTestSuite) TestAnalyzeSentimentAndPing() {
	s.serve(func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, messageResponse{Message: "BrandPulse API"})
		})
		r.Post("/news/analyze-sentiment", func(w http.ResponseWriter, r *http.Request) {
			var req sentimentRequest
			s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
			s.Equal("Shares tumble", req.Headline)
			writeJSON(w, http.StatusOK, sentimentResponse{Sentiment: domain.SentimentNegative})
		})
	})
	c := s.client(nil)

	banner, err := c.Ping(context.Background())
	s.Require().NoError(err)
	s.Equal("BrandPulse API", banner)

	sentiment, err := c.AnalyzeSentiment(context.Background(), "Shares tumble")
	s.Require().NoError(err)
	s.Equal(domain.SentimentNegative, sentiment)
}

func (s *ClientTestSuite) TestBreakerOpensAfterServerErrors() {
	var hits atomic.Int32
	s.serve(func(r chi.Router) {
		r.Post("/news/search", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		})
	})

	c := s.client(func(c *Config) {
		c.Breaker = &BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			FailureThreshold: 0.5,
			MinRequests:      2,
		}
	})

	for i := 0; i < 2; i++ {
		_, err := c.SearchNews(context.Background(), "Tesla")
		s.Require().Error(err)
	}

	_, err := c.SearchNews(context.Background(), "Tesla")

	s.Require().Error(err)
	s.True(errors.Is(err, gobreaker.ErrOpenState))
	s.Equal(int32(2), hits.Load())
}

func (s *ClientTestSuite) TestBreakerIgnoresClientErrors() {
	s.True(countsAsSuccess(nil))
	s.True(countsAsSuccess(&StatusError{StatusCode: http.StatusNotFound}))
	s.True(countsAsSuccess(context.Canceled))
	s.False(countsAsSuccess(&StatusError{StatusCode: http.StatusInternalServerError}))
	s.False(countsAsSuccess(errors.New("connection refused")))
}

func (s *ClientTestSuite) TestCalculateBackoff() {
	s.serve(func(r chi.Router) {})
	c := s.client(func(c *Config) {
		c.InitialBackoff = 100 * time.Millisecond
		c.MaxBackoff = 300 * time.Millisecond
	})

	s.Equal(100*time.Millisecond, c.calculateBackoff(1))
	s.Equal(200*time.Millisecond, c.calculateBackoff(2))
	s.Equal(300*time.Millisecond, c.calculateBackoff(3))
}
