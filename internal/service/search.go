package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"brandpulse/internal/domain"
)

// KeyEnter is the only key that triggers a search from the input field.
const KeyEnter = "Enter"

var validate = validator.New()

type searchQuery struct {
	Keyword string `validate:"required"`
}

// SearchState is a point-in-time copy of a SearchSession.
type SearchState struct {
	Keyword  string
	Articles []domain.Article
	Loading  bool
	SavedIDs map[string]bool
	Stats    domain.SentimentStats
}

// SearchSession backs the dashboard view: the pending keyword, the latest
// result set with its sentiment counts, and the ids saved during this
// session. Methods never return errors; every outcome is reported through
// the Notifier.
//
// Overlapping Search calls are not sequenced. Each applies its own result
// when it resolves, so the last response to arrive wins and the first one
// to finish clears the loading flag.
type SearchSession struct {
	gateway  Gateway
	notifier Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	keyword  string
	articles []domain.Article
	loading  bool
	savedIDs map[string]struct{}
	stats    domain.SentimentStats
}

func NewSearchSession(gateway Gateway, notifier Notifier, logger *slog.Logger) *SearchSession {
	return &SearchSession{
		gateway:  gateway,
		notifier: notifier,
		logger:   logger.With("session", "search"),
		articles: []domain.Article{},
		savedIDs: make(map[string]struct{}),
	}
}

func (s *SearchSession) SetKeyword(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyword = text
}

// HandleKey runs Search when key is KeyEnter and ignores anything else.
func (s *SearchSession) HandleKey(ctx context.Context, key string) {
	if key != KeyEnter {
		return
	}
	s.Search(ctx)
}

// Search queries the gateway with the current keyword. On failure the
// previous results stay in place.
func (s *SearchSession) Search(ctx context.Context) {
	s.mu.Lock()
	keyword := s.keyword
	s.mu.Unlock()

	if err := validate.Struct(searchQuery{Keyword: strings.TrimSpace(keyword)}); err != nil {
		s.notifier.Notify(
			"Search Error",
			"Please enter a company or keyword to start tracking.",
			domain.SeverityError,
		)
		return
	}

	s.setLoading(true)
	defer s.setLoading(false)

	articles, err := s.gateway.SearchNews(ctx, keyword)
	if err != nil {
		s.logger.Error("search failed", "keyword", keyword, "error", err)
		s.notifier.Notify(
			"Connection Error",
			"Failed to fetch news. Please check your connection and try again.",
			domain.SeverityError,
		)
		return
	}

	if articles == nil {
		articles = []domain.Article{}
	}
	stats := domain.Aggregate(articles)

	s.mu.Lock()
	s.articles = articles
	s.stats = stats
	s.mu.Unlock()

	s.logger.Info("search completed",
		"keyword", keyword,
		"articles", len(articles),
		"positive", stats.Positive,
		"negative", stats.Negative,
		"neutral", stats.Neutral,
	)

	if len(articles) == 0 {
		s.notifier.Notify(
			"No Results Found",
			fmt.Sprintf("We couldn't find any recent news for %q.", keyword),
			domain.SeverityInfo,
		)
	}
}

// SaveArticle persists article to the remote watchlist. Articles already
// saved in this session are not submitted again.
func (s *SearchSession) SaveArticle(ctx context.Context, article domain.Article) {
	if s.IsSaved(article.ID) {
		s.logger.Debug("article already saved", "id", article.ID)
		return
	}

	if _, err := s.gateway.SaveArticle(ctx, article); err != nil {
		s.logger.Error("save failed", "id", article.ID, "error", err)
		s.notifier.Notify(
			"Save Failed",
			"We couldn't save this article. Please try again.",
			domain.SeverityError,
		)
		return
	}

	s.mu.Lock()
	s.savedIDs[article.ID] = struct{}{}
	s.mu.Unlock()

	s.notifier.Notify(
		"Article Saved",
		"This article has been successfully added to your watchlist.",
		domain.SeveritySuccess,
	)
}

func (s *SearchSession) IsSaved(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.savedIDs[id]
	return ok
}

func (s *SearchSession) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SearchSession) Keyword() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyword
}

func (s *SearchSession) Articles() []domain.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Article{}, s.articles...)
}

func (s *SearchSession) Stats() domain.SentimentStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *SearchSession) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make(map[string]bool, len(s.savedIDs))
	for id := range s.savedIDs {
		saved[id] = true
	}

	return SearchState{
		Keyword:  s.keyword,
		Articles: append([]domain.Article{}, s.articles...),
		Loading:  s.loading,
		SavedIDs: saved,
		Stats:    s.stats,
	}
}

func (s *SearchSession) setLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}
