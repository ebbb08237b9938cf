package service

import (
	"context"
	"log/slog"
	"sync"

	"brandpulse/internal/domain"
)

// WatchlistSession mirrors the remote watchlist for the watchlist view. It
// is filled by Load and only shrinks after the backend confirms a removal.
// Saves made from a SearchSession are not reflected until the next Load.
type WatchlistSession struct {
	gateway  Gateway
	notifier Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	articles []domain.Article
	loading  bool
}

// NewWatchlistSession returns a session in the loading state with an empty
// article list; call Load to populate it.
func NewWatchlistSession(gateway Gateway, notifier Notifier, logger *slog.Logger) *WatchlistSession {
	return &WatchlistSession{
		gateway:  gateway,
		notifier: notifier,
		logger:   logger.With("session", "watchlist"),
		articles: []domain.Article{},
		loading:  true,
	}
}

// Load fetches the full watchlist. A failed reload keeps what was there.
func (w *WatchlistSession) Load(ctx context.Context) {
	w.setLoading(true)
	defer w.setLoading(false)

	articles, err := w.gateway.ListWatchlist(ctx)
	if err != nil {
		w.logger.Error("load watchlist failed", "error", err)
		w.notifier.Notify(
			"Error Loading Watchlist",
			"We couldn't load your saved articles. Please refresh the page.",
			domain.SeverityError,
		)
		return
	}

	if articles == nil {
		articles = []domain.Article{}
	}

	w.mu.Lock()
	w.articles = articles
	w.mu.Unlock()

	w.logger.Info("watchlist loaded", "articles", len(articles))
}

// Remove deletes id remotely and drops it locally once that succeeded.
func (w *WatchlistSession) Remove(ctx context.Context, id string) {
	if err := w.gateway.RemoveArticle(ctx, id); err != nil {
		w.logger.Error("remove failed", "id", id, "error", err)
		w.notifier.Notify(
			"Removal Failed",
			"We couldn't remove this article. Please try again.",
			domain.SeverityError,
		)
		return
	}

	w.mu.Lock()
	kept := make([]domain.Article, 0, len(w.articles))
	for _, a := range w.articles {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	w.articles = kept
	w.mu.Unlock()

	w.notifier.Notify(
		"Article Removed",
		"The article has been removed from your watchlist.",
		domain.SeverityInfo,
	)
}

func (w *WatchlistSession) Articles() []domain.Article {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.Article{}, w.articles...)
}

func (w *WatchlistSession) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.articles)
}

func (w *WatchlistSession) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

func (w *WatchlistSession) setLoading(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = v
}
